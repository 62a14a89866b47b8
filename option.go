package idtoken

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/idtoken-dev/go-idtoken/jwks"
)

// Option configures Client construction. Options validate their arguments
// and construction fails on the first invalid one.
type Option func(*clientConfig) error

// Sentinel errors for configuration validation.
var (
	ErrValidatorNil    = errors.New("validator cannot be nil")
	ErrNoKeyProvider   = errors.New("a key provider is required (use WithKeyProvider)")
	ErrKeyProviderNil  = errors.New("key provider cannot be nil")
	ErrHTTPClientNil   = errors.New("HTTP client cannot be nil")
	ErrCacheTTLInvalid = errors.New("cache TTL must be positive")
	ErrClockNil        = errors.New("clock cannot be nil")
	ErrLoggerNil       = errors.New("logger cannot be nil")
	ErrMetricsNil      = errors.New("metrics cannot be nil")
	ErrTracerNil       = errors.New("tracer cannot be nil")
	ErrClientIDEmpty   = errors.New("client ID cannot be empty")
	ErrProjectIDEmpty  = errors.New("project ID cannot be empty")
)

// clientConfig collects the provider-independent pieces of a Client so the
// generic constructors can share one options implementation.
type clientConfig struct {
	keyProvider jwks.KeyProvider
	httpClient  *http.Client
	fallbackTTL time.Duration
	clock       Clock
	logger      Logger
	metrics     Metrics
	tracer      Tracer
}

func newClientConfig(opts []Option) (*clientConfig, error) {
	cfg := &clientConfig{
		clock:   systemClock{},
		logger:  NoopLogger{},
		metrics: &NoopMetrics{},
		tracer:  &NoopTracer{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return cfg, nil
}

// keyProviderOrDefault returns the configured provider, or builds the
// default caching provider over endpoint when none was supplied. The
// client's HTTP client, cache TTL and clock flow into a default provider
// only; a provider supplied via WithKeyProvider keeps its own.
func (cfg *clientConfig) keyProviderOrDefault(endpoint string) (jwks.KeyProvider, error) {
	if cfg.keyProvider != nil {
		return cfg.keyProvider, nil
	}

	providerOpts := []jwks.ProviderOption{jwks.WithEndpoint(endpoint)}
	if cfg.httpClient != nil {
		providerOpts = append(providerOpts, jwks.WithHTTPClient(cfg.httpClient))
	}
	if cfg.fallbackTTL > 0 {
		providerOpts = append(providerOpts, jwks.WithFallbackTTL(cfg.fallbackTTL))
	}
	if _, ok := cfg.clock.(systemClock); !ok {
		providerOpts = append(providerOpts, jwks.WithClock(cfg.clock))
	}
	return jwks.NewCachingProvider(providerOpts...)
}

// WithKeyProvider sets the key provider tokens are verified against,
// replacing the default caching provider. Required with New, since a custom
// validator implies no well-known key endpoint.
func WithKeyProvider(kp jwks.KeyProvider) Option {
	return func(cfg *clientConfig) error {
		if kp == nil {
			return ErrKeyProviderNil
		}
		cfg.keyProvider = kp
		return nil
	}
}

// WithHTTPClient sets the HTTP client the default key provider fetches key
// sets with. Ignored when WithKeyProvider supplies a provider.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *clientConfig) error {
		if client == nil {
			return ErrHTTPClientNil
		}
		cfg.httpClient = client
		return nil
	}
}

// WithCacheTTL sets how long the default key provider keeps a fetched key
// set when the response carries no usable Cache-Control max-age directive.
// Ignored when WithKeyProvider supplies a provider.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cfg *clientConfig) error {
		if ttl <= 0 {
			return ErrCacheTTLInvalid
		}
		cfg.fallbackTTL = ttl
		return nil
	}
}

// WithClock sets the clock verifications are evaluated against. The same
// clock drives the default key provider's cache freshness, so one fake
// clock can steer a whole test.
//
// Default: the system clock.
func WithClock(clock Clock) Option {
	return func(cfg *clientConfig) error {
		if clock == nil {
			return ErrClockNil
		}
		cfg.clock = clock
		return nil
	}
}

// WithLogger sets the logger verification failures are reported to at debug
// level.
//
// Default: NoopLogger.
func WithLogger(logger Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return ErrLoggerNil
		}
		cfg.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink verification counts and durations are
// recorded to.
//
// Default: NoopMetrics.
func WithMetrics(metrics Metrics) Option {
	return func(cfg *clientConfig) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		cfg.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer a span per verification is started on.
//
// Default: NoopTracer.
func WithTracer(tracer Tracer) Option {
	return func(cfg *clientConfig) error {
		if tracer == nil {
			return ErrTracerNil
		}
		cfg.tracer = tracer
		return nil
	}
}

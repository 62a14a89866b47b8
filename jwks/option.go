package jwks

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Clock supplies the current instant. Injectable so cache freshness can be
// driven by a simulated clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ProviderOption configures Provider and CachingProvider construction.
type ProviderOption func(*providerConfig) error

type providerConfig struct {
	endpoint     string
	issuerURL    *url.URL
	client       *http.Client
	fetchTimeout time.Duration
	fallbackTTL  time.Duration
	clock        Clock
}

func newProviderConfig(opts []ProviderOption) (*providerConfig, error) {
	cfg := &providerConfig{
		client:       &http.Client{},
		fetchTimeout: 30 * time.Second,
		fallbackTTL:  time.Minute,
		clock:        systemClock{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if cfg.endpoint == "" && cfg.issuerURL == nil {
		return nil, fmt.Errorf("an endpoint is required, use WithEndpoint or WithIssuerURL")
	}
	return cfg, nil
}

func (cfg *providerConfig) newProvider() *Provider {
	return &Provider{
		endpoint:     cfg.endpoint,
		issuerURL:    cfg.issuerURL,
		client:       cfg.client,
		fetchTimeout: cfg.fetchTimeout,
	}
}

// WithEndpoint sets the key set URL directly, skipping OIDC discovery.
func WithEndpoint(endpoint string) ProviderOption {
	return func(cfg *providerConfig) error {
		if endpoint == "" {
			return fmt.Errorf("endpoint cannot be empty")
		}
		cfg.endpoint = endpoint
		return nil
	}
}

// WithIssuerURL sets the OIDC issuer whose well-known configuration names
// the key set endpoint. Discovery happens lazily on the first lookup and is
// retried on failure.
func WithIssuerURL(issuerURL *url.URL) ProviderOption {
	return func(cfg *providerConfig) error {
		if issuerURL == nil {
			return fmt.Errorf("issuer URL cannot be nil")
		}
		cfg.issuerURL = issuerURL
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for key set fetches and
// discovery.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(cfg *providerConfig) error {
		if client == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		cfg.client = client
		return nil
	}
}

// WithFetchTimeout bounds a single key set fetch, including the fetches a
// CachingProvider runs detached from caller contexts.
//
// Default: 30 seconds.
func WithFetchTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch timeout must be positive")
		}
		cfg.fetchTimeout = timeout
		return nil
	}
}

// WithFallbackTTL sets how long a CachingProvider keeps a fetched set whose
// response carried no usable Cache-Control max-age directive. Ignored by the
// non-caching Provider.
//
// Default: 1 minute.
func WithFallbackTTL(ttl time.Duration) ProviderOption {
	return func(cfg *providerConfig) error {
		if ttl <= 0 {
			return fmt.Errorf("fallback TTL must be positive")
		}
		cfg.fallbackTTL = ttl
		return nil
	}
}

// WithClock sets the clock a CachingProvider derives freshness deadlines
// from. Ignored by the non-caching Provider.
//
// Default: the system clock.
func WithClock(clock Clock) ProviderOption {
	return func(cfg *providerConfig) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		cfg.clock = clock
		return nil
	}
}

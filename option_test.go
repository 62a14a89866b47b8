package idtoken

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idtoken-dev/go-idtoken/jwks"
)

func TestClientOptionsValidation(t *testing.T) {
	testCases := []struct {
		name    string
		option  Option
		wantErr error
	}{
		{
			name:    "it rejects a nil key provider",
			option:  WithKeyProvider(nil),
			wantErr: ErrKeyProviderNil,
		},
		{
			name:    "it rejects a nil HTTP client",
			option:  WithHTTPClient(nil),
			wantErr: ErrHTTPClientNil,
		},
		{
			name:    "it rejects a zero cache TTL",
			option:  WithCacheTTL(0),
			wantErr: ErrCacheTTLInvalid,
		},
		{
			name:    "it rejects a negative cache TTL",
			option:  WithCacheTTL(-time.Minute),
			wantErr: ErrCacheTTLInvalid,
		},
		{
			name:    "it rejects a nil clock",
			option:  WithClock(nil),
			wantErr: ErrClockNil,
		},
		{
			name:    "it rejects a nil logger",
			option:  WithLogger(nil),
			wantErr: ErrLoggerNil,
		},
		{
			name:    "it rejects nil metrics",
			option:  WithMetrics(nil),
			wantErr: ErrMetricsNil,
		},
		{
			name:    "it rejects a nil tracer",
			option:  WithTracer(nil),
			wantErr: ErrTracerNil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cfg, err := newClientConfig([]Option{testCase.option})

			assert.ErrorIs(t, err, testCase.wantErr)
			assert.Contains(t, err.Error(), "invalid option")
			assert.Nil(t, cfg)
		})
	}
}

func TestNewClientConfigDefaults(t *testing.T) {
	cfg, err := newClientConfig(nil)
	require.NoError(t, err)

	assert.Nil(t, cfg.keyProvider)
	assert.Nil(t, cfg.httpClient)
	assert.Zero(t, cfg.fallbackTTL)
	assert.IsType(t, systemClock{}, cfg.clock)
	assert.IsType(t, NoopLogger{}, cfg.logger)
	assert.IsType(t, &NoopMetrics{}, cfg.metrics)
	assert.IsType(t, &NoopTracer{}, cfg.tracer)
}

func TestNewClientConfigAppliesOptions(t *testing.T) {
	keyProvider := jwks.NewStaticProvider(jwks.NewSet())
	httpClient := &http.Client{Timeout: 3 * time.Second}
	clock := inWindowClock()
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	tracer := &recordingTracer{}

	cfg, err := newClientConfig([]Option{
		WithKeyProvider(keyProvider),
		WithHTTPClient(httpClient),
		WithCacheTTL(10 * time.Minute),
		WithClock(clock),
		WithLogger(logger),
		WithMetrics(metrics),
		WithTracer(tracer),
	})
	require.NoError(t, err)

	assert.Same(t, keyProvider, cfg.keyProvider)
	assert.Same(t, httpClient, cfg.httpClient)
	assert.Equal(t, 10*time.Minute, cfg.fallbackTTL)
	assert.Equal(t, time.Unix(testInWindow, 0), cfg.clock.Now())
	assert.Same(t, logger, cfg.logger)
	assert.Same(t, metrics, cfg.metrics)
	assert.Same(t, tracer, cfg.tracer)
}

func TestKeyProviderOrDefault(t *testing.T) {
	t.Run("it keeps a configured provider", func(t *testing.T) {
		keyProvider := jwks.NewStaticProvider(jwks.NewSet())
		cfg, err := newClientConfig([]Option{WithKeyProvider(keyProvider)})
		require.NoError(t, err)

		got, err := cfg.keyProviderOrDefault(jwks.GoogleSignInCertsURL)
		require.NoError(t, err)
		assert.Same(t, keyProvider, got)
	})

	t.Run("it builds a caching provider by default", func(t *testing.T) {
		cfg, err := newClientConfig(nil)
		require.NoError(t, err)

		got, err := cfg.keyProviderOrDefault(jwks.GoogleSignInCertsURL)
		require.NoError(t, err)
		assert.IsType(t, &jwks.CachingProvider{}, got)
	})

	t.Run("it forwards client settings into the default provider", func(t *testing.T) {
		cfg, err := newClientConfig([]Option{
			WithHTTPClient(&http.Client{Timeout: time.Second}),
			WithCacheTTL(time.Minute),
			WithClock(inWindowClock()),
		})
		require.NoError(t, err)

		got, err := cfg.keyProviderOrDefault(jwks.FirebaseCertsURL)
		require.NoError(t, err)
		assert.IsType(t, &jwks.CachingProvider{}, got)
	})
}

func TestOptionSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrValidatorNil,
		ErrNoKeyProvider,
		ErrKeyProviderNil,
		ErrHTTPClientNil,
		ErrCacheTTLInvalid,
		ErrClockNil,
		ErrLoggerNil,
		ErrMetricsNil,
		ErrTracerNil,
		ErrClientIDEmpty,
		ErrProjectIDEmpty,
	}

	for _, sentinel := range sentinels {
		assert.True(t, errors.Is(sentinel, sentinel))
		assert.NotEmpty(t, sentinel.Error())
	}
}

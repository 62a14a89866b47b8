package idtoken

import (
	"context"
	"errors"
	"time"

	"github.com/idtoken-dev/go-idtoken/jwks"
	"github.com/idtoken-dev/go-idtoken/validator"
)

// Client verifies ID tokens of one identity provider: one claims policy,
// one key provider. It is immutable after construction and safe for
// concurrent use; a single client is meant to be shared across all requests
// of a process so verifications share the key cache.
type Client[C validator.Claims] struct {
	validator   validator.Validator[C]
	keyProvider jwks.KeyProvider
	clock       Clock
	logger      Logger
	metrics     Metrics
	tracer      Tracer
}

// New builds a client around a custom claims policy. The key provider must
// be supplied with WithKeyProvider; with a custom validator there is no
// well-known endpoint to default to.
func New[C validator.Claims](v validator.Validator[C], opts ...Option) (*Client[C], error) {
	if v == nil {
		return nil, ErrValidatorNil
	}
	cfg, err := newClientConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.keyProvider == nil {
		return nil, ErrNoKeyProvider
	}
	return newClient(v, cfg.keyProvider, cfg), nil
}

func newClient[C validator.Claims](v validator.Validator[C], kp jwks.KeyProvider, cfg *clientConfig) *Client[C] {
	return &Client[C]{
		validator:   v,
		keyProvider: kp,
		clock:       cfg.clock,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		tracer:      cfg.tracer,
	}
}

// VerifyToken verifies tokenString and returns its claims. The payload
// segment is decoded as claims only; use VerifyTokenWithPayload or a
// provider client's VerifyIDToken for the profile fields.
func (c *Client[C]) VerifyToken(ctx context.Context, tokenString string) (*Token[NoPayload, C], error) {
	return VerifyTokenWithPayload[NoPayload](ctx, c, tokenString)
}

// CheckToken implements TokenVerifier, so a client can be handed straight
// to Middleware or the gRPC interceptors. The claims stored in the request
// context are the *Token[NoPayload, C] returned by VerifyToken.
func (c *Client[C]) CheckToken(ctx context.Context, tokenString string) (any, error) {
	token, err := c.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// VerifyTokenWithPayload verifies tokenString with c and decodes the payload
// segment a second time into P. It is a package-level function because Go
// methods cannot introduce type parameters of their own.
func VerifyTokenWithPayload[P any, C validator.Claims](ctx context.Context, c *Client[C], tokenString string) (*Token[P, C], error) {
	now := c.clock.Now()

	span := c.tracer.StartSpan(SpanVerification)
	defer span.Finish()

	token, err := verify[P](ctx, c, tokenString, now)

	outcome := "success"
	if err != nil {
		outcome = errorOutcome(err)
		span.SetTag("error", outcome)
		c.logger.Debugf("token verification failed: %v", err)
	}
	tags := map[string]string{"outcome": outcome}
	c.metrics.IncCounter(MetricVerifications, tags)
	c.metrics.ObserveHistogram(MetricVerificationDuration, c.clock.Now().Sub(now).Seconds(), tags)

	return token, err
}

func verify[P any, C validator.Claims](ctx context.Context, c *Client[C], tokenString string, now time.Time) (*Token[P, C], error) {
	unverified, err := Parse[P](tokenString, c.validator, now)
	if err != nil {
		return nil, err
	}
	return unverified.VerifyContext(ctx, c.keyProvider)
}

// errorOutcome flattens a verification error into a low-cardinality label.
func errorOutcome(err error) string {
	switch {
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenSchema):
		return "schema"
	case errors.Is(err, ErrClaimsInvalid):
		return "claims"
	case errors.Is(err, jwks.ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, jwks.ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, jwks.ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, jwks.ErrSignatureInvalid):
		return "signature_invalid"
	default:
		return "error"
	}
}

// GoogleClient verifies Google Sign-In ID tokens minted for one OAuth
// client ID.
type GoogleClient struct {
	*Client[validator.GoogleSignInClaims]
}

// NewGoogleSignIn builds a client for Google Sign-In ID tokens. Unless
// WithKeyProvider overrides it, keys come from Google's certs endpoint
// through a caching provider.
func NewGoogleSignIn(clientID string, opts ...Option) (*GoogleClient, error) {
	if clientID == "" {
		return nil, ErrClientIDEmpty
	}
	cfg, err := newClientConfig(opts)
	if err != nil {
		return nil, err
	}
	kp, err := cfg.keyProviderOrDefault(jwks.GoogleSignInCertsURL)
	if err != nil {
		return nil, err
	}
	return &GoogleClient{Client: newClient(validator.NewGoogleSignIn(clientID), kp, cfg)}, nil
}

// VerifyIDToken verifies tokenString and returns it with the Google Sign-In
// profile payload decoded.
func (g *GoogleClient) VerifyIDToken(ctx context.Context, tokenString string) (*GoogleToken, error) {
	return VerifyTokenWithPayload[validator.GoogleSignInPayload](ctx, g.Client, tokenString)
}

// CheckToken implements TokenVerifier. It shadows the embedded client's so
// middleware handlers find a fully typed *GoogleToken in the context.
func (g *GoogleClient) CheckToken(ctx context.Context, tokenString string) (any, error) {
	token, err := g.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return token, nil
}

// FirebaseClient verifies Firebase Authentication ID tokens of one project.
type FirebaseClient struct {
	*Client[validator.FirebaseClaims]
}

// NewFirebase builds a client for Firebase Authentication ID tokens. Unless
// WithKeyProvider overrides it, keys come from the securetoken service
// account endpoint through a caching provider.
func NewFirebase(projectID string, opts ...Option) (*FirebaseClient, error) {
	if projectID == "" {
		return nil, ErrProjectIDEmpty
	}
	cfg, err := newClientConfig(opts)
	if err != nil {
		return nil, err
	}
	kp, err := cfg.keyProviderOrDefault(jwks.FirebaseCertsURL)
	if err != nil {
		return nil, err
	}
	return &FirebaseClient{Client: newClient(validator.NewFirebase(projectID), kp, cfg)}, nil
}

// VerifyIDToken verifies tokenString and returns it with the Firebase
// profile payload decoded.
func (f *FirebaseClient) VerifyIDToken(ctx context.Context, tokenString string) (*FirebaseToken, error) {
	return VerifyTokenWithPayload[validator.FirebasePayload](ctx, f.Client, tokenString)
}

// CheckToken implements TokenVerifier. It shadows the embedded client's so
// middleware handlers find a fully typed *FirebaseToken in the context.
func (f *FirebaseClient) CheckToken(ctx context.Context, tokenString string) (any, error) {
	token, err := f.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return token, nil
}

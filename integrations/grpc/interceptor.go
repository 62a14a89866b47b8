package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	idtoken "github.com/idtoken-dev/go-idtoken"
)

// Interceptor guards gRPC services with ID token verification. Tokens are
// read from incoming metadata, verified through a TokenVerifier (normally a
// client from the root package) and the verified token is stored in the
// handler context for GetClaims.
type Interceptor struct {
	verifier            idtoken.TokenVerifier
	extractor           TokenExtractor
	errorHandler        ErrorHandler
	excludedMethods     map[string]bool
	credentialsOptional bool
	logger              idtoken.Logger
}

// Option configures Interceptor construction.
type Option func(*Interceptor) error

// Sentinel errors for interceptor configuration validation.
var (
	ErrVerifierNil       = errors.New("verifier cannot be nil")
	ErrErrorHandlerNil   = errors.New("error handler cannot be nil")
	ErrTokenExtractorNil = errors.New("token extractor cannot be nil")
	ErrExclusionsEmpty   = errors.New("excluded method list cannot be empty")
	ErrLoggerNil         = errors.New("logger cannot be nil")
)

// New builds an Interceptor around a verifier, usually a client:
//
//	client, err := idtoken.NewFirebase(projectID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	interceptor, err := grpcauth.New(client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
func New(verifier idtoken.TokenVerifier, opts ...Option) (*Interceptor, error) {
	if verifier == nil {
		return nil, ErrVerifierNil
	}

	interceptor := &Interceptor{
		verifier:        verifier,
		extractor:       MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
		logger:          idtoken.NoopLogger{},
	}

	for _, opt := range opts {
		if err := opt(interceptor); err != nil {
			return nil, err
		}
	}

	return interceptor, nil
}

// WithCredentialsOptional lets calls without a token through, with no claims
// in the context. A presented token is always verified, optional or not.
//
// Default: false, calls without a token are rejected.
func WithCredentialsOptional(value bool) Option {
	return func(i *Interceptor) error {
		i.credentialsOptional = value
		return nil
	}
}

// WithErrorHandler replaces the DefaultErrorHandler. The handler receives
// idtoken.ErrTokenMissing when no token was presented, the extractor's error
// when one was presented unusably, and the verification pipeline's error
// otherwise; whatever it returns is what the client sees.
func WithErrorHandler(h ErrorHandler) Option {
	return func(i *Interceptor) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		i.errorHandler = h
		return nil
	}
}

// WithTokenExtractor replaces the MetadataTokenExtractor.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		i.extractor = e
		return nil
	}
}

// WithExcludedMethods skips verification for the named methods, given in
// full form: "/package.Service/Method". Typical for health checks and
// reflection:
//
//	grpcauth.WithExcludedMethods("/grpc.health.v1.Health/Check")
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		if len(methods) == 0 {
			return ErrExclusionsEmpty
		}
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithInterceptorLogger sets the logger for the interceptor's own flow. The
// verifier keeps its own logger.
//
// Default: idtoken.NoopLogger.
func WithInterceptorLogger(logger idtoken.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return ErrLoggerNil
		}
		i.logger = logger
		return nil
	}
}

// UnaryServerInterceptor returns the interceptor for unary calls. On success
// the handler runs with the verified token in its context; on failure the
// handler never runs and the error handler's status is returned.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			i.logger.Debugf("skipping token verification for excluded method %s", info.FullMethod)
			return handler(ctx, req)
		}

		ctx, err := i.verify(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

// StreamServerInterceptor returns the interceptor for streaming calls. The
// stream handed to the handler carries the verified token in its context.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if i.excludedMethods[info.FullMethod] {
			i.logger.Debugf("skipping token verification for excluded method %s", info.FullMethod)
			return handler(srv, ss)
		}

		ctx, err := i.verify(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// verify extracts and verifies the call's token, returning the context the
// handler should run under.
func (i *Interceptor) verify(ctx context.Context, method string) (context.Context, error) {
	token, err := i.extractor(ctx)
	if err != nil {
		// Not a missing token: the metadata held credentials the extractor
		// could not make sense of.
		i.logger.Errorf("failed to extract token from metadata for %s: %v", method, err)
		return ctx, i.errorHandler(err)
	}

	if token == "" {
		if i.credentialsOptional {
			i.logger.Debugf("no credentials provided for %s, continuing without claims", method)
			return ctx, nil
		}
		return ctx, i.errorHandler(idtoken.ErrTokenMissing)
	}

	verified, err := i.verifier.CheckToken(ctx, token)
	if err != nil {
		i.logger.Warnf("token verification failed for %s: %v", method, err)
		return ctx, i.errorHandler(err)
	}

	return idtoken.SetClaims(ctx, verified), nil
}

// wrappedServerStream overrides the stream context with one carrying the
// verified token.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

package idtoken

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// TokenVerifier is the seam between transports and clients. Client,
// GoogleClient and FirebaseClient implement it; the returned value is
// whatever token type the verifier produces and goes into the request
// context as-is.
type TokenVerifier interface {
	CheckToken(ctx context.Context, tokenString string) (any, error)
}

// ExclusionHandler reports whether a request should skip verification
// entirely, for health checks and other public paths.
type ExclusionHandler func(r *http.Request) bool

// Middleware guards an http.Handler with ID token verification. Build one
// with NewMiddleware and wrap handlers with CheckToken.
type Middleware struct {
	verifier            TokenVerifier
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	exclusionHandler    ExclusionHandler
	credentialsOptional bool
	validateOnOptions   bool
	logger              Logger
}

// MiddlewareOption configures Middleware construction.
type MiddlewareOption func(*Middleware) error

// Sentinel errors for middleware configuration validation.
var (
	ErrVerifierNil       = errors.New("verifier cannot be nil")
	ErrErrorHandlerNil   = errors.New("error handler cannot be nil")
	ErrTokenExtractorNil = errors.New("token extractor cannot be nil")
	ErrExclusionsEmpty   = errors.New("exclusion URL list cannot be empty")
)

// NewMiddleware builds a Middleware around a verifier, usually a client:
//
//	client, err := idtoken.NewGoogleSignIn(clientID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mw, err := idtoken.NewMiddleware(client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.Handle("/api", mw.CheckToken(apiHandler))
func NewMiddleware(verifier TokenVerifier, opts ...MiddlewareOption) (*Middleware, error) {
	if verifier == nil {
		return nil, ErrVerifierNil
	}

	m := &Middleware{
		verifier:          verifier,
		errorHandler:      DefaultErrorHandler,
		tokenExtractor:    AuthHeaderTokenExtractor,
		validateOnOptions: true,
		logger:            NoopLogger{},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return m, nil
}

// WithCredentialsOptional lets requests without any token through,
// unverified and with no claims in the context. A presented token is still
// fully verified.
//
// Default: false (credentials required).
func WithCredentialsOptional(value bool) MiddlewareOption {
	return func(m *Middleware) error {
		m.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests are verified like any
// other method.
//
// Default: true.
func WithValidateOnOptions(value bool) MiddlewareOption {
	return func(m *Middleware) error {
		m.validateOnOptions = value
		return nil
	}
}

// WithErrorHandler replaces the response written for rejected requests. See
// ErrorHandler for the contract.
//
// Default: DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithTokenExtractor replaces where the token is read from.
//
// Default: AuthHeaderTokenExtractor.
func WithTokenExtractor(e TokenExtractor) MiddlewareOption {
	return func(m *Middleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithExclusionURLs skips verification for requests whose full URL or path
// equals one of the given strings.
func WithExclusionURLs(exclusions []string) MiddlewareOption {
	return func(m *Middleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionsEmpty
		}
		m.exclusionHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithExclusionHandler skips verification for requests the handler matches,
// for patterns WithExclusionURLs' exact matching cannot express.
func WithExclusionHandler(h ExclusionHandler) MiddlewareOption {
	return func(m *Middleware) error {
		m.exclusionHandler = h
		return nil
	}
}

// WithMiddlewareLogger sets the logger request rejections are reported to.
//
// Default: NoopLogger.
func WithMiddlewareLogger(logger Logger) MiddlewareOption {
	return func(m *Middleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// CheckToken wraps next with token verification. On success the verified
// token is stored in the request context for GetClaims; on failure the
// error handler writes the response and next never runs.
func (m *Middleware) CheckToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionHandler != nil && m.exclusionHandler(r) {
			m.logger.Debugf("skipping token verification for excluded URL %s", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		if !m.validateOnOptions && r.Method == http.MethodOptions {
			m.logger.Debugf("skipping token verification for OPTIONS request")
			next.ServeHTTP(w, r)
			return
		}

		token, err := m.tokenExtractor(r)
		if err != nil {
			// Not ErrTokenMissing: the extractor found credentials it could
			// not make sense of.
			m.logger.Errorf("failed to extract token from request: %v", err)
			m.errorHandler(w, r, fmt.Errorf("error extracting token: %w", err))
			return
		}

		if token == "" {
			if m.credentialsOptional {
				m.logger.Debugf("no credentials provided, continuing without claims")
				next.ServeHTTP(w, r)
				return
			}
			m.errorHandler(w, r, ErrTokenMissing)
			return
		}

		verified, err := m.verifier.CheckToken(r.Context(), token)
		if err != nil {
			m.logger.Warnf("token verification failed: %v", err)
			m.errorHandler(w, r, &invalidError{details: err})
			return
		}

		r = r.Clone(SetClaims(r.Context(), verified))
		next.ServeHTTP(w, r)
	})
}

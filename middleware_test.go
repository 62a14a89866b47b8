package idtoken

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idtoken-dev/go-idtoken/validator"
)

func TestMiddlewareCheckToken(t *testing.T) {
	client, err := NewGoogleSignIn(testClientID,
		WithKeyProvider(testKeyProvider(testKeyID)),
		WithClock(inWindowClock()),
	)
	require.NoError(t, err)

	validToken := "Bearer " + signTestToken(t, testKeyID, testPrivateKey, testGoogleClaims())
	forgedToken := "Bearer " + signTestToken(t, testKeyID, testOtherKey, testGoogleClaims())

	testCases := []struct {
		name           string
		options        []MiddlewareOption
		method         string
		token          string
		path           string
		wantStatusCode int
		wantBody       string
		wantClaims     bool
		wantEmail      string
	}{
		{
			name:           "it lets a valid token through and stores it",
			method:         http.MethodGet,
			token:          validToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
			wantClaims:     true,
			wantEmail:      "hello@example.com",
		},
		{
			name:           "it verifies tokens on OPTIONS requests by default",
			method:         http.MethodOptions,
			token:          forgedToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Token is invalid."}`,
		},
		{
			name: "it skips verification on OPTIONS when configured",
			options: []MiddlewareOption{
				WithValidateOnOptions(false),
			},
			method:         http.MethodOptions,
			token:          forgedToken,
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
		{
			name:           "it rejects a request without a token",
			method:         http.MethodGet,
			token:          "",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"message":"Token is missing."}`,
		},
		{
			name: "it lets a request without a token through when credentials are optional",
			options: []MiddlewareOption{
				WithCredentialsOptional(true),
			},
			method:         http.MethodGet,
			token:          "",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
		{
			name: "it still verifies a presented token when credentials are optional",
			options: []MiddlewareOption{
				WithCredentialsOptional(true),
			},
			method:         http.MethodGet,
			token:          forgedToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Token is invalid."}`,
		},
		{
			name:           "it rejects a token signed by the wrong key",
			method:         http.MethodGet,
			token:          forgedToken,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       `{"message":"Token is invalid."}`,
		},
		{
			name:           "it surfaces extractor errors through the error handler",
			method:         http.MethodGet,
			token:          "NotBearer xyz",
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `{"message":"Something went wrong while verifying the token."}`,
		},
		{
			name: "it calls a custom error handler",
			options: []MiddlewareOption{
				WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusForbidden)
					_, _ = fmt.Fprintf(w, `{"message":"Custom error."}`)
				}),
			},
			method:         http.MethodGet,
			token:          forgedToken,
			wantStatusCode: http.StatusForbidden,
			wantBody:       `{"message":"Custom error."}`,
		},
		{
			name: "it reads the token from a custom extractor",
			options: []MiddlewareOption{
				WithTokenExtractor(ParameterTokenExtractor("id_token")),
			},
			method:         http.MethodGet,
			path:           "/?id_token=" + signTestToken(t, testKeyID, testPrivateKey, testGoogleClaims()),
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
			wantClaims:     true,
			wantEmail:      "hello@example.com",
		},
		{
			name: "it skips excluded paths without a token",
			options: []MiddlewareOption{
				WithExclusionURLs([]string{"/health", "/public"}),
			},
			method:         http.MethodGet,
			path:           "/health",
			token:          "",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
		{
			name: "it still guards paths outside the exclusion list",
			options: []MiddlewareOption{
				WithExclusionURLs([]string{"/health", "/public"}),
			},
			method:         http.MethodGet,
			path:           "/secure",
			token:          "",
			wantStatusCode: http.StatusBadRequest,
			wantBody:       `{"message":"Token is missing."}`,
		},
		{
			name: "it skips requests matched by a custom exclusion handler",
			options: []MiddlewareOption{
				WithExclusionHandler(func(r *http.Request) bool {
					return r.URL.Path == "/metrics"
				}),
			},
			method:         http.MethodGet,
			path:           "/metrics",
			token:          "",
			wantStatusCode: http.StatusOK,
			wantBody:       `{"message":"Authenticated."}`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			middleware, err := NewMiddleware(client, testCase.options...)
			require.NoError(t, err)

			var gotClaims bool
			var gotEmail string
			var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotClaims = HasClaims(r.Context())
				if token, err := GetClaims[*GoogleToken](r.Context()); err == nil {
					gotEmail = token.Payload().Email
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"message":"Authenticated."}`))
			})

			testServer := httptest.NewServer(middleware.CheckToken(handler))
			defer testServer.Close()

			request, err := http.NewRequest(testCase.method, testServer.URL+testCase.path, nil)
			require.NoError(t, err)
			if testCase.token != "" {
				request.Header.Add("Authorization", testCase.token)
			}

			response, err := testServer.Client().Do(request)
			require.NoError(t, err)
			defer response.Body.Close()

			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)

			assert.Equal(t, testCase.wantStatusCode, response.StatusCode)
			assert.Equal(t, "application/json", response.Header.Get("Content-Type"))
			assert.Equal(t, testCase.wantBody, string(body))
			assert.Equal(t, testCase.wantClaims, gotClaims)
			assert.Equal(t, testCase.wantEmail, gotEmail)
		})
	}
}

func TestMiddlewareErrorUnwrapping(t *testing.T) {
	// A custom error handler can classify rejections down to the pipeline's
	// typed errors.
	client, err := NewGoogleSignIn(testClientID,
		WithKeyProvider(testKeyProvider(testKeyID)),
		WithClock(fixedClock(testExpiresAt+1)),
	)
	require.NoError(t, err)

	var gotErr error
	middleware, err := NewMiddleware(client,
		WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			gotErr = err
			w.WriteHeader(http.StatusUnauthorized)
		}),
	)
	require.NoError(t, err)

	handler := middleware.CheckToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+signTestToken(t, testKeyID, testPrivateKey, testGoogleClaims()))
	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.Error(t, gotErr)
	assert.ErrorIs(t, gotErr, ErrTokenInvalid)
	assert.ErrorIs(t, gotErr, ErrClaimsInvalid)

	var expErr *validator.ExpiredError
	assert.ErrorAs(t, gotErr, &expErr)
}

func TestNewMiddleware(t *testing.T) {
	verifier := verifierFunc(func(ctx context.Context, tokenString string) (any, error) {
		return nil, errors.New("unused")
	})

	t.Run("it rejects a nil verifier", func(t *testing.T) {
		_, err := NewMiddleware(nil)
		assert.ErrorIs(t, err, ErrVerifierNil)
	})

	t.Run("it rejects a nil error handler", func(t *testing.T) {
		_, err := NewMiddleware(verifier, WithErrorHandler(nil))
		assert.ErrorIs(t, err, ErrErrorHandlerNil)
	})

	t.Run("it rejects a nil token extractor", func(t *testing.T) {
		_, err := NewMiddleware(verifier, WithTokenExtractor(nil))
		assert.ErrorIs(t, err, ErrTokenExtractorNil)
	})

	t.Run("it rejects an empty exclusion list", func(t *testing.T) {
		_, err := NewMiddleware(verifier, WithExclusionURLs(nil))
		assert.ErrorIs(t, err, ErrExclusionsEmpty)
	})

	t.Run("it rejects a nil logger", func(t *testing.T) {
		_, err := NewMiddleware(verifier, WithMiddlewareLogger(nil))
		assert.ErrorIs(t, err, ErrLoggerNil)
	})
}

// verifierFunc adapts a function to TokenVerifier for tests.
type verifierFunc func(ctx context.Context, tokenString string) (any, error)

func (f verifierFunc) CheckToken(ctx context.Context, tokenString string) (any, error) {
	return f(ctx, tokenString)
}

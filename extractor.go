package idtoken

import (
	"errors"
	"net/http"
	"strings"
)

// TokenExtractor pulls a token string out of a request. An error means a
// token was presented but unusably formed; a plain absent token is ("", nil)
// so the middleware can apply its credentials-optional policy.
type TokenExtractor func(r *http.Request) (string, error)

// AuthHeaderTokenExtractor extracts the token from the Authorization header,
// expecting the Bearer scheme.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil // No error, just no token.
	}

	authHeaderParts := strings.Fields(authHeader)
	if len(authHeaderParts) != 2 || strings.ToLower(authHeaderParts[0]) != "bearer" {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}

	return authHeaderParts[1], nil
}

// CookieTokenExtractor builds a TokenExtractor reading the named cookie.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err == http.ErrNoCookie {
			return "", nil // No cookie, then no token, so no error.
		}

		return cookie.Value, nil
	}
}

// ParameterTokenExtractor builds a TokenExtractor reading the named query
// string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor tries extractors in order and takes the first
// non-empty token. An extractor error stops the chain immediately.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			token, err := ex(r)
			if err != nil {
				return "", err
			}

			if token != "" {
				return token, nil
			}
		}
		return "", nil
	}
}

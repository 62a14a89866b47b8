package idtoken

import (
	"context"
	"errors"
	"fmt"
)

// contextKey is unexported so only this package can create the key and no
// other package's context values can collide with it.
type contextKey int

const claimsKey contextKey = iota

// ErrClaimsNotFound is returned by GetClaims when the context holds no
// verified token, or one of a different type than requested.
var ErrClaimsNotFound = errors.New("no verified token found in context")

// GetClaims retrieves the verified token the middleware stored in the
// context. T must match what the verifier produced: *GoogleToken behind a
// GoogleClient, *FirebaseToken behind a FirebaseClient, *Token[NoPayload, C]
// behind a plain Client[C].
//
// Example:
//
//	token, err := idtoken.GetClaims[*idtoken.GoogleToken](r.Context())
//	if err != nil {
//	    http.Error(w, "no token", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(token.Claims().Subject)
func GetClaims[T any](ctx context.Context) (T, error) {
	var zero T

	val := ctx.Value(claimsKey)
	if val == nil {
		return zero, ErrClaimsNotFound
	}

	claims, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: context holds %T, not %T", ErrClaimsNotFound, val, zero)
	}

	return claims, nil
}

// MustGetClaims is GetClaims or panic. Use it only behind middleware that
// cannot have let the request through without a verified token.
func MustGetClaims[T any](ctx context.Context) T {
	claims, err := GetClaims[T](ctx)
	if err != nil {
		panic(err)
	}
	return claims
}

// SetClaims stores a verified token in the context. Middleware and
// interceptors call this; handlers normally only read.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// HasClaims reports whether the context holds a verified token of any type.
func HasClaims(ctx context.Context) bool {
	return ctx.Value(claimsKey) != nil
}

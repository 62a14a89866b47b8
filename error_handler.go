package idtoken

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTokenMissing is passed to the error handler when no token was
	// presented and credentials are required.
	ErrTokenMissing = errors.New("token missing")

	// ErrTokenInvalid is matched by the error passed to the error handler
	// when a presented token failed verification. Unwrap reaches the
	// underlying pipeline error.
	ErrTokenInvalid = errors.New("token invalid")
)

// ErrorHandler writes the response when the middleware rejects a request.
// The error is ErrTokenMissing when no token was presented, matches
// ErrTokenInvalid when verification failed, and is the extractor's error
// otherwise. A custom handler must handle all three, or requests that
// should be rejected may pass through with a broken response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler responds 400 to a missing token, 401 to an invalid
// one and 500 to anything else, each with a small JSON body.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, ErrTokenMissing):
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Token is missing."}`))
	case errors.Is(err, ErrTokenInvalid):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token is invalid."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while verifying the token."}`))
	}
}

// invalidError wraps a verification failure so it matches ErrTokenInvalid
// while Unwrap keeps the pipeline's typed error reachable for errors.Is and
// errors.As. Not exported: Is and Unwrap are the whole interface.
type invalidError struct {
	details error
}

func (e invalidError) Is(target error) bool {
	return target == ErrTokenInvalid
}

func (e invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenInvalid, e.details)
}

func (e invalidError) Unwrap() error {
	return e.details
}

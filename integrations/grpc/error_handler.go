package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	idtoken "github.com/idtoken-dev/go-idtoken"
	"github.com/idtoken-dev/go-idtoken/jwks"
	"github.com/idtoken-dev/go-idtoken/validator"
)

// ErrorHandler converts a rejection into the error returned to the caller,
// normally a gRPC status error.
type ErrorHandler func(err error) error

// DefaultErrorHandler maps verification failures onto gRPC status codes.
// Missing and bad credentials become Unauthenticated; tokens minted for a
// different relying party or by a different issuer become PermissionDenied;
// malformed authorization metadata becomes InvalidArgument; key set trouble
// becomes Internal so infrastructure failures are not mistaken for bad
// tokens. Anything unrecognized also reads as Unauthenticated, keeping the
// verifier's internals out of client-visible messages.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, idtoken.ErrTokenMissing):
		return status.Error(codes.Unauthenticated, "missing credentials")

	case errors.Is(err, ErrMultipleAuthHeaders),
		errors.Is(err, ErrInvalidAuthFormat),
		errors.Is(err, ErrUnsupportedScheme):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, jwks.ErrFetchFailed),
		errors.Is(err, jwks.ErrKeyNotFound):
		return status.Error(codes.Internal, "unable to verify token")

	// The specific claim classes come before the ErrClaimsInvalid catch-all.
	case errors.Is(err, validator.ErrExpired):
		return status.Error(codes.Unauthenticated, "token expired")
	case errors.Is(err, validator.ErrInvalidIssuer):
		return status.Error(codes.PermissionDenied, "invalid issuer")
	case errors.Is(err, validator.ErrInvalidAudience):
		return status.Error(codes.PermissionDenied, "invalid audience")
	case errors.Is(err, idtoken.ErrClaimsInvalid):
		return status.Error(codes.Unauthenticated, "invalid token claims")

	case errors.Is(err, jwks.ErrSignatureInvalid):
		return status.Error(codes.Unauthenticated, "invalid signature")
	case errors.Is(err, jwks.ErrUnsupportedAlgorithm):
		return status.Error(codes.Unauthenticated, "unsupported signing algorithm")

	case errors.Is(err, idtoken.ErrTokenMalformed),
		errors.Is(err, idtoken.ErrTokenSchema):
		return status.Error(codes.Unauthenticated, "malformed token")

	default:
		return status.Error(codes.Unauthenticated, "invalid token")
	}
}

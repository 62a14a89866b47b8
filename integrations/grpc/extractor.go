package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

// TokenExtractor pulls a token string out of an incoming call's context. An
// error means a token was presented but unusably formed; a plain absent
// token is ("", nil) so the interceptor can apply its credentials-optional
// policy.
type TokenExtractor func(ctx context.Context) (string, error)

// Extraction errors. The DefaultErrorHandler maps all three to
// codes.InvalidArgument: the call itself is malformed, not its credentials.
var (
	// ErrMultipleAuthHeaders reports more than one authorization metadata
	// entry on the call.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat reports an authorization entry that is not two
	// space-separated parts.
	ErrInvalidAuthFormat = errors.New("authorization metadata format must be Bearer {token}")

	// ErrUnsupportedScheme reports an authorization scheme other than
	// Bearer.
	ErrUnsupportedScheme = errors.New("unsupported authorization scheme, expected Bearer")
)

// MetadataTokenExtractor extracts the token from the authorization metadata
// entry, expecting the Bearer scheme. gRPC lowercases incoming metadata
// keys, so only the lowercase key is consulted.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil // No metadata, then no token, so no error.
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil
	}
	if len(authHeaders) > 1 {
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 {
		return "", ErrInvalidAuthFormat
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return "", ErrUnsupportedScheme
	}

	return parts[1], nil
}

package grpc

import (
	"context"

	idtoken "github.com/idtoken-dev/go-idtoken"
)

// GetClaims retrieves the verified token the interceptor stored in the
// context. T must match what the verifier produced, *idtoken.GoogleToken or
// *idtoken.FirebaseToken for the stock clients:
//
//	func (s *server) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.User, error) {
//	    token, err := grpcauth.GetClaims[*idtoken.FirebaseToken](ctx)
//	    if err != nil {
//	        return nil, status.Error(codes.Internal, "no verified token")
//	    }
//	    return s.lookupUser(ctx, token.Claims().Subject)
//	}
func GetClaims[T any](ctx context.Context) (T, error) {
	return idtoken.GetClaims[T](ctx)
}

// MustGetClaims is GetClaims or panic. Use it only behind an interceptor
// that cannot have let the call through without a verified token.
func MustGetClaims[T any](ctx context.Context) T {
	return idtoken.MustGetClaims[T](ctx)
}

// HasClaims reports whether the context holds a verified token of any type.
// Useful with WithCredentialsOptional, where handlers see both kinds of
// calls.
func HasClaims(ctx context.Context) bool {
	return idtoken.HasClaims(ctx)
}

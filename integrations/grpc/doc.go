/*
Package grpc guards gRPC services with ID token verification.

The interceptor reads a Bearer token from the call's authorization metadata,
verifies it through a client from the root package and stores the verified
token in the handler context. Both unary and streaming calls are covered.

# Quick Start

	import (
	    "google.golang.org/grpc"

	    idtoken "github.com/idtoken-dev/go-idtoken"
	    grpcauth "github.com/idtoken-dev/go-idtoken/integrations/grpc"
	)

	func main() {
	    client, err := idtoken.NewFirebase("my-project")
	    if err != nil {
	        log.Fatal(err)
	    }

	    interceptor, err := grpcauth.New(client)
	    if err != nil {
	        log.Fatal(err)
	    }

	    server := grpc.NewServer(
	        grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
	        grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
	    )
	    // Register services and serve...
	}

Handlers read the verified token back with GetClaims:

	func (s *server) GetUser(ctx context.Context, req *pb.GetUserRequest) (*pb.User, error) {
	    token := grpcauth.MustGetClaims[*idtoken.FirebaseToken](ctx)
	    return s.lookupUser(ctx, token.Claims().Subject)
	}

# Rejections

The DefaultErrorHandler turns failures into status errors: missing or bad
credentials are codes.Unauthenticated, tokens minted for another audience
or issuer are codes.PermissionDenied, malformed authorization metadata is
codes.InvalidArgument, and key set failures are codes.Internal. Replace the
mapping with WithErrorHandler.

Health checks and other public methods skip verification via
WithExcludedMethods; WithCredentialsOptional lets unauthenticated calls
through while still verifying any token that is presented.
*/
package grpc

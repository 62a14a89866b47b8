/*
Package idtoken verifies Google Sign-In and Firebase Authentication ID
tokens.

A client checks a compact RS256 token end to end: claims policy first
(audience, issuer, time window), then signature against the provider's
published keys, which are fetched on demand and cached per the endpoint's
Cache-Control max-age. Only a token that passed every stage comes back, as
a typed Token carrying its claims and profile payload.

# Quick Start

	import "github.com/idtoken-dev/go-idtoken"

	func main() {
	    client, err := idtoken.NewGoogleSignIn("your-client-id.apps.googleusercontent.com")
	    if err != nil {
	        log.Fatal(err)
	    }

	    token, err := client.VerifyIDToken(ctx, tokenString)
	    if err != nil {
	        log.Fatal(err)
	    }

	    fmt.Println(token.Claims().Subject, token.Payload().Email)
	}

Firebase works the same way with NewFirebase and the project ID. Share one
client across the whole process: it is safe for concurrent use and all
verifications share its key cache.

# Verification Order

The pipeline order is part of the contract. Claims are validated strictly
before any key material is touched, so a token that is both expired and
signed by an unknown key reports the expiry, and no network request is made
for a token that fails policy. Within parsing, the header segment is decoded
first, then the signature, then the payload.

# Errors

Every failure is a typed error carrying the offending values, classifiable
with errors.Is:

  - ErrTokenMalformed: missing segments, bad base64url (SegmentError,
    SegmentCountError)
  - ErrTokenSchema: a segment is not the JSON its position calls for
    (SchemaError)
  - ErrClaimsInvalid: policy failures; unwraps to the validator package's
    typed errors such as validator.ErrExpired
  - jwks.ErrKeyNotFound vs jwks.ErrFetchFailed: key absent from a fetched
    set vs the set being unobtainable
  - jwks.ErrUnsupportedAlgorithm, jwks.ErrSignatureInvalid: the signature
    stage; signature failures are deliberately opaque

# HTTP Middleware

Middleware guards handlers and stores the verified token in the request
context:

	mw, err := idtoken.NewMiddleware(client)
	if err != nil {
	    log.Fatal(err)
	}
	http.Handle("/api", mw.CheckToken(apiHandler))

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    token := idtoken.MustGetClaims[*idtoken.GoogleToken](r.Context())
	    fmt.Fprintf(w, "hello, %s", token.Payload().Name)
	}

gRPC interceptors live in integrations/grpc.

# Observability

WithLogger, WithMetrics and WithTracer hook verification into logrus, zap
or zerolog, Prometheus, and OpenTelemetry. All default to no-ops.

# Custom Providers

New builds a client for any issuer from a validator.Validator
implementation and a key provider:

	client, err := idtoken.New[myClaims](myPolicy,
	    idtoken.WithKeyProvider(provider),
	)

The jwks package offers caching, always-fetch and static providers, and can
discover the key endpoint from an issuer URL's OIDC configuration.
*/
package idtoken

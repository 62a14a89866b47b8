package idtoken

import "github.com/idtoken-dev/go-idtoken/validator"

// NoPayload is the payload type for verifications that only need the
// registered claims. VerifyToken uses it so the payload segment is decoded
// once as claims and the second view is free.
type NoPayload struct{}

// Token is a verified ID token. The only way to obtain one is a successful
// signature check via UnverifiedToken.Verify, so holding a *Token is proof
// the claims passed policy and the signature matched a provider key.
//
// P is the caller's view of the provider-specific payload fields, C the
// registered claims type the policy validated.
type Token[P any, C validator.Claims] struct {
	claims  C
	payload P
}

// Claims returns the registered claims the policy validated.
func (t *Token[P, C]) Claims() C { return t.claims }

// Payload returns the provider-specific payload fields.
func (t *Token[P, C]) Payload() P { return t.payload }

// GoogleToken is a verified Google Sign-In ID token with its profile
// payload decoded.
type GoogleToken = Token[validator.GoogleSignInPayload, validator.GoogleSignInClaims]

// FirebaseToken is a verified Firebase Authentication ID token with its
// profile payload decoded.
type FirebaseToken = Token[validator.FirebasePayload, validator.FirebaseClaims]

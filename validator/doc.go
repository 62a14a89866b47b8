/*
Package validator implements the claims policies for supported identity
providers.

A policy decides whether the registered claims of a decoded token are
acceptable for a given relying party at a given instant. Policies are pure:
they read only the claims and the instant they are handed, never the system
clock, and they hold no mutable state, so a single policy value can be shared
by any number of goroutines.

Two providers are supported:

  - GoogleSignIn validates tokens minted for a Google Sign-In OAuth client.
  - Firebase validates Firebase Authentication ID tokens for a project.

Each policy has a matching claims type (GoogleSignInClaims, FirebaseClaims)
and a typed payload with the provider's standard profile fields
(GoogleSignInPayload, FirebasePayload).

Validation failures are reported through typed errors that carry the
offending and expected values; see the Err* sentinels for errors.Is matching:

	err := policy.ValidateClaims(claims, now)
	if errors.Is(err, validator.ErrExpired) {
	    var expired *validator.ExpiredError
	    errors.As(err, &expired)
	    log.Printf("token expired at %d, now %d", expired.ExpiresAt, expired.Now)
	}
*/
package validator

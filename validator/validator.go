package validator

import "time"

// Claims is the minimal view of registered claims the verification pipeline
// needs from any claims type. Timestamps are unix seconds, matching the JWT
// NumericDate wire representation.
type Claims interface {
	GetIssuedAt() int64
	GetExpiresAt() int64
}

// Validator is a claims policy for one identity provider. ValidateClaims
// reports whether claims are acceptable at the given instant.
//
// Implementations must be pure functions of (claims, now): no system clock
// reads, no I/O, no mutation. The pipeline calls ValidateClaims before any
// key material is looked up, so a policy rejection is always surfaced ahead
// of key retrieval and signature errors.
type Validator[C Claims] interface {
	ValidateClaims(claims C, now time.Time) error
}

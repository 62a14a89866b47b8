package validator

import (
	"errors"
	"fmt"
)

// Sentinel errors for claims policy failures. The errors returned by
// ValidateClaims are typed structs carrying the offending values; these
// sentinels exist so callers can classify them with errors.Is without
// caring about the values.
var (
	// ErrInvalidAudience is matched when the aud claim does not name the
	// relying party the policy was built for.
	ErrInvalidAudience = errors.New("invalid audience")

	// ErrInvalidIssuer is matched when the iss claim is not one of the
	// provider's accepted issuers.
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrExpired is matched when the token's expiry is in the past.
	ErrExpired = errors.New("token expired")

	// ErrIssuedAfterExpiry is matched when iat is later than exp, which no
	// well-formed token can have.
	ErrIssuedAfterExpiry = errors.New("token issued after expiry")

	// ErrAuthenticatedInFuture is matched when a Firebase token claims an
	// authentication instant that has not happened yet.
	ErrAuthenticatedInFuture = errors.New("token authenticated in the future")

	// ErrIssuedInFuture is matched when a Firebase token claims an issue
	// instant that has not happened yet.
	ErrIssuedInFuture = errors.New("token issued in the future")
)

// AudienceError reports an aud claim that does not match the expected
// relying party identifier.
type AudienceError struct {
	Audience string // aud claim found in the token
	Expected string // client or project ID the policy validates for
}

func (e *AudienceError) Error() string {
	return fmt.Sprintf("invalid audience %q, expected %q", e.Audience, e.Expected)
}

func (e *AudienceError) Is(target error) bool { return target == ErrInvalidAudience }

// IssuerError reports an iss claim outside the provider's accepted set.
type IssuerError struct {
	Issuer   string   // iss claim found in the token
	Accepted []string // issuers the policy accepts
}

func (e *IssuerError) Error() string {
	return fmt.Sprintf("invalid issuer %q, accepted issuers are %v", e.Issuer, e.Accepted)
}

func (e *IssuerError) Is(target error) bool { return target == ErrInvalidIssuer }

// ExpiredError reports a token whose exp claim is strictly before now.
// A token expiring exactly at now is still valid.
type ExpiredError struct {
	ExpiresAt int64 // exp claim, unix seconds
	Now       int64 // instant the token was checked at, unix seconds
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("token expired at %d, checked at %d", e.ExpiresAt, e.Now)
}

func (e *ExpiredError) Is(target error) bool { return target == ErrExpired }

// IssuedAfterExpiryError reports a token whose iat claim is later than its
// exp claim. iat equal to exp is accepted.
type IssuedAfterExpiryError struct {
	IssuedAt  int64 // iat claim, unix seconds
	ExpiresAt int64 // exp claim, unix seconds
}

func (e *IssuedAfterExpiryError) Error() string {
	return fmt.Sprintf("token issued at %d, after its expiry %d", e.IssuedAt, e.ExpiresAt)
}

func (e *IssuedAfterExpiryError) Is(target error) bool { return target == ErrIssuedAfterExpiry }

// AuthTimeError reports a Firebase auth_time claim in the future.
type AuthTimeError struct {
	AuthTime int64 // auth_time claim, unix seconds
	Now      int64 // instant the token was checked at, unix seconds
}

func (e *AuthTimeError) Error() string {
	return fmt.Sprintf("token authenticated at %d, which is after %d", e.AuthTime, e.Now)
}

func (e *AuthTimeError) Is(target error) bool { return target == ErrAuthenticatedInFuture }

// IssuedAtError reports an iat claim in the future.
type IssuedAtError struct {
	IssuedAt int64 // iat claim, unix seconds
	Now      int64 // instant the token was checked at, unix seconds
}

func (e *IssuedAtError) Error() string {
	return fmt.Sprintf("token issued at %d, which is after %d", e.IssuedAt, e.Now)
}

func (e *IssuedAtError) Is(target error) bool { return target == ErrIssuedInFuture }

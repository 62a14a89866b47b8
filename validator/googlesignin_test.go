package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "37772117408-qjqo9hca513pdcunumt7gk08ii6te8is.apps.googleusercontent.com"

func testGoogleClaims() GoogleSignInClaims {
	return GoogleSignInClaims{
		Issuer:    GoogleIssuer,
		Subject:   "106240898948249532536",
		Audience:  testClientID,
		IssuedAt:  1607561874,
		ExpiresAt: 1607565474,
	}
}

func TestGoogleSignInValidateClaims(t *testing.T) {
	policy := NewGoogleSignIn(testClientID)
	inWindow := time.Unix(1607562079, 0)

	t.Run("it accepts claims issued for the configured client", func(t *testing.T) {
		claims := testGoogleClaims()
		assert.NoError(t, policy.ValidateClaims(claims, inWindow))
	})

	t.Run("it accepts the bare issuer form", func(t *testing.T) {
		claims := testGoogleClaims()
		claims.Issuer = GoogleIssuerBare
		assert.NoError(t, policy.ValidateClaims(claims, inWindow))
	})

	t.Run("it rejects a mismatched audience with both values", func(t *testing.T) {
		claims := testGoogleClaims()
		claims.Audience = "another-client.apps.googleusercontent.com"

		err := policy.ValidateClaims(claims, inWindow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidAudience))

		var audErr *AudienceError
		require.True(t, errors.As(err, &audErr))
		assert.Equal(t, "another-client.apps.googleusercontent.com", audErr.Audience)
		assert.Equal(t, testClientID, audErr.Expected)
	})

	t.Run("it rejects an unknown issuer", func(t *testing.T) {
		claims := testGoogleClaims()
		claims.Issuer = "https://accounts.example.com"

		err := policy.ValidateClaims(claims, inWindow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidIssuer))

		var issErr *IssuerError
		require.True(t, errors.As(err, &issErr))
		assert.Equal(t, "https://accounts.example.com", issErr.Issuer)
		assert.Equal(t, []string{GoogleIssuer, GoogleIssuerBare}, issErr.Accepted)
	})

	t.Run("it reports the audience before the issuer when both are wrong", func(t *testing.T) {
		claims := testGoogleClaims()
		claims.Audience = "other-client"
		claims.Issuer = "https://accounts.example.com"

		err := policy.ValidateClaims(claims, inWindow)
		assert.True(t, errors.Is(err, ErrInvalidAudience))
		assert.False(t, errors.Is(err, ErrInvalidIssuer))
	})

	t.Run("it accepts a token expiring exactly now", func(t *testing.T) {
		claims := testGoogleClaims()
		assert.NoError(t, policy.ValidateClaims(claims, time.Unix(claims.ExpiresAt, 0)))
	})

	t.Run("it rejects a token one second past expiry", func(t *testing.T) {
		claims := testGoogleClaims()

		err := policy.ValidateClaims(claims, time.Unix(claims.ExpiresAt+1, 0))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrExpired))

		var expErr *ExpiredError
		require.True(t, errors.As(err, &expErr))
		assert.Equal(t, claims.ExpiresAt, expErr.ExpiresAt)
		assert.Equal(t, claims.ExpiresAt+1, expErr.Now)
	})

	t.Run("it checks expiry against the supplied instant only", func(t *testing.T) {
		// A now far in the past keeps even an anciently issued token valid.
		claims := testGoogleClaims()
		assert.NoError(t, policy.ValidateClaims(claims, time.Unix(claims.IssuedAt, 0)))
	})
}

package validator

import "time"

// Issuers accepted for Google Sign-In tokens. Google has emitted both forms.
const (
	GoogleIssuer     = "https://accounts.google.com"
	GoogleIssuerBare = "accounts.google.com"
)

// GoogleSignInClaims are the registered claims of a Google Sign-In ID token.
type GoogleSignInClaims struct {
	Issuer          string `json:"iss"`
	Subject         string `json:"sub"`
	Audience        string `json:"aud"`
	AuthorizedParty string `json:"azp"`
	IssuedAt        int64  `json:"iat"`
	ExpiresAt       int64  `json:"exp"`
}

func (c GoogleSignInClaims) GetIssuedAt() int64  { return c.IssuedAt }
func (c GoogleSignInClaims) GetExpiresAt() int64 { return c.ExpiresAt }

// GoogleSignInPayload holds the profile fields Google includes in Sign-In
// ID tokens beyond the registered claims.
type GoogleSignInPayload struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Locale        string `json:"locale"`
	HostedDomain  string `json:"hd,omitempty"`
}

// GoogleSignIn is the claims policy for Google Sign-In ID tokens issued to
// one OAuth client.
//
// Checks run in a fixed order and the first failure wins: audience, then
// issuer, then expiry. A token expiring exactly at now is accepted.
type GoogleSignIn struct {
	clientID string
}

// NewGoogleSignIn returns a policy validating tokens minted for the given
// OAuth client ID.
func NewGoogleSignIn(clientID string) *GoogleSignIn {
	return &GoogleSignIn{clientID: clientID}
}

// ValidateClaims implements Validator[GoogleSignInClaims].
func (v *GoogleSignIn) ValidateClaims(claims GoogleSignInClaims, now time.Time) error {
	if claims.Audience != v.clientID {
		return &AudienceError{Audience: claims.Audience, Expected: v.clientID}
	}
	if claims.Issuer != GoogleIssuer && claims.Issuer != GoogleIssuerBare {
		return &IssuerError{
			Issuer:   claims.Issuer,
			Accepted: []string{GoogleIssuer, GoogleIssuerBare},
		}
	}
	if claims.ExpiresAt < now.Unix() {
		return &ExpiredError{ExpiresAt: claims.ExpiresAt, Now: now.Unix()}
	}
	return nil
}

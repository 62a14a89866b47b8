package validator

import "time"

// FirebaseIssuerPrefix is the issuer prefix for Firebase Authentication
// tokens; the project ID completes it.
const FirebaseIssuerPrefix = "https://securetoken.google.com/"

// FirebaseClaims are the registered claims of a Firebase Authentication
// ID token.
type FirebaseClaims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Audience  string `json:"aud"`
	AuthTime  int64  `json:"auth_time"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (c FirebaseClaims) GetIssuedAt() int64  { return c.IssuedAt }
func (c FirebaseClaims) GetExpiresAt() int64 { return c.ExpiresAt }

// FirebaseInfo is the nested firebase object carried by Firebase ID tokens.
type FirebaseInfo struct {
	SignInProvider string              `json:"sign_in_provider"`
	Identities     map[string][]string `json:"identities"`
}

// FirebasePayload holds the profile fields Firebase includes in ID tokens
// beyond the registered claims. Absent fields stay at their zero value.
type FirebasePayload struct {
	Name          string       `json:"name,omitempty"`
	Picture       string       `json:"picture,omitempty"`
	Email         string       `json:"email,omitempty"`
	EmailVerified bool         `json:"email_verified,omitempty"`
	PhoneNumber   string       `json:"phone_number,omitempty"`
	UserID        string       `json:"user_id,omitempty"`
	Firebase      FirebaseInfo `json:"firebase,omitempty"`
}

// Firebase is the claims policy for Firebase Authentication ID tokens of one
// project.
//
// Checks run in a fixed order and the first failure wins: audience, issuer,
// authentication instant, issue instant, expiry. auth_time and iat equal to
// now are accepted, as is exp equal to now.
type Firebase struct {
	projectID string
	issuer    string
}

// NewFirebase returns a policy validating tokens of the given Firebase
// project.
func NewFirebase(projectID string) *Firebase {
	return &Firebase{
		projectID: projectID,
		issuer:    FirebaseIssuerPrefix + projectID,
	}
}

// ValidateClaims implements Validator[FirebaseClaims].
func (v *Firebase) ValidateClaims(claims FirebaseClaims, now time.Time) error {
	if claims.Audience != v.projectID {
		return &AudienceError{Audience: claims.Audience, Expected: v.projectID}
	}
	if claims.Issuer != v.issuer {
		return &IssuerError{Issuer: claims.Issuer, Accepted: []string{v.issuer}}
	}
	ts := now.Unix()
	if ts < claims.AuthTime {
		return &AuthTimeError{AuthTime: claims.AuthTime, Now: ts}
	}
	if ts < claims.IssuedAt {
		return &IssuedAtError{IssuedAt: claims.IssuedAt, Now: ts}
	}
	if claims.ExpiresAt < ts {
		return &ExpiredError{ExpiresAt: claims.ExpiresAt, Now: ts}
	}
	return nil
}

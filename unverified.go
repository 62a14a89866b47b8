package idtoken

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/idtoken-dev/go-idtoken/jwks"
	"github.com/idtoken-dev/go-idtoken/validator"
)

// UnverifiedToken is a parsed token whose claims passed policy validation
// but whose signature has not been checked. It is inert: nothing can be
// read from it except the header, and the only way forward is Verify.
//
// The signed body is retained as the verbatim header+"."+payload substring
// of the original token string. Re-encoding decoded bytes could produce a
// different serialization than the issuer signed, so the original bytes are
// the only safe input to the signature primitive.
type UnverifiedToken[P any, C validator.Claims] struct {
	header     Header
	signedBody []byte
	signature  []byte
	claims     C
	payload    P
}

var segmentOrder = [3]Segment{SegmentHeader, SegmentPayload, SegmentSignature}

// Parse splits, decodes and policy-validates a compact token string without
// touching key material. Claims are checked against v at the supplied
// instant before any key lookup can happen, so a token that is both expired
// and signed by an unknown key reports the expiry.
//
// The stages run in a fixed order, each fatal: segment split, header decode
// and parse, signature decode, payload decode, claims parse, policy
// validation, payload parse. Claims and payload are two independent JSON
// views over the same payload bytes.
func Parse[P any, C validator.Claims](tokenString string, v validator.Validator[C], now time.Time) (*UnverifiedToken[P, C], error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) > len(segmentOrder) {
		return nil, &SegmentCountError{Count: len(parts)}
	}
	for i, part := range parts {
		if part == "" {
			return nil, &SegmentError{Segment: segmentOrder[i]}
		}
	}
	if len(parts) < len(segmentOrder) {
		return nil, &SegmentError{Segment: segmentOrder[len(parts)]}
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, &SegmentError{Segment: SegmentHeader, Cause: err}
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, &SchemaError{Part: PartHeader, Cause: err}
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, &SegmentError{Segment: SegmentSignature, Cause: err}
	}
	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, &SegmentError{Segment: SegmentPayload, Cause: err}
	}

	var claims C
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return nil, &SchemaError{Part: PartClaims, Cause: err}
	}
	if err := v.ValidateClaims(claims, now); err != nil {
		return nil, &ClaimsError{Cause: err}
	}

	// Structural sanity independent of any provider policy: a token issued
	// after its own expiry can never be valid. Runs after the policy so
	// expiry is still the first-reported failure.
	if iat, exp := claims.GetIssuedAt(), claims.GetExpiresAt(); iat > exp {
		return nil, &ClaimsError{Cause: &validator.IssuedAfterExpiryError{IssuedAt: iat, ExpiresAt: exp}}
	}

	var payload P
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, &SchemaError{Part: PartPayload, Cause: err}
	}

	return &UnverifiedToken[P, C]{
		header:     header,
		signedBody: []byte(tokenString[:len(parts[0])+1+len(parts[1])]),
		signature:  signature,
		claims:     claims,
		payload:    payload,
	}, nil
}

// Header returns the decoded JOSE header.
func (t *UnverifiedToken[P, C]) Header() Header { return t.header }

// Verify is VerifyContext with context.Background. Use it when no
// cancellation or deadline applies to the key retrieval.
func (t *UnverifiedToken[P, C]) Verify(kp jwks.KeyProvider) (*Token[P, C], error) {
	return t.VerifyContext(context.Background(), kp)
}

// VerifyContext looks up the header's key id with kp and checks the RS256
// signature over the retained signed body. Key retrieval failures are
// returned as-is: jwks.ErrKeyNotFound means the set had no such key,
// jwks.ErrFetchFailed matches transient retrieval problems, and signature
// failures collapse into jwks.ErrSignatureInvalid.
func (t *UnverifiedToken[P, C]) VerifyContext(ctx context.Context, kp jwks.KeyProvider) (*Token[P, C], error) {
	key, err := kp.GetKey(ctx, t.header.KeyID)
	if err != nil {
		return nil, err
	}
	if err := key.Verify(t.signedBody, t.signature); err != nil {
		return nil, err
	}
	return &Token[P, C]{claims: t.claims, payload: t.payload}, nil
}

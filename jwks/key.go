package jwks

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/golang-jwt/jwt/v5"
)

// AlgorithmRS256 is the only signing algorithm keys in this module verify.
const AlgorithmRS256 = "RS256"

var (
	// ErrUnsupportedAlgorithm is matched when a key's algorithm is anything
	// other than RS256.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

	// ErrSignatureInvalid is the single error returned for every failed
	// signature check. It deliberately carries no detail about which part
	// of the check failed.
	ErrSignatureInvalid = errors.New("signature verification failed")
)

// UnsupportedAlgorithmError reports a verification attempt with a key of an
// unsupported algorithm.
type UnsupportedAlgorithmError struct {
	Algorithm string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported signing algorithm %q, only RS256 is supported", e.Algorithm)
}

func (e *UnsupportedAlgorithmError) Is(target error) bool { return target == ErrUnsupportedAlgorithm }

// Key is a single verification key from a JSON Web Key set.
type Key struct {
	KeyID     string
	Algorithm string
	Use       string
	KeyType   string

	publicKey *rsa.PublicKey
}

// NewKey builds an RS256 verification key from already constructed key
// material, bypassing the JWK wire form.
func NewKey(kid string, publicKey *rsa.PublicKey) Key {
	return Key{KeyID: kid, Algorithm: AlgorithmRS256, KeyType: "RSA", publicKey: publicKey}
}

// Verify checks the RSASSA-PKCS1-v1_5 SHA-256 signature over signedBody.
//
// A key with an algorithm other than RS256 is rejected before any
// cryptography runs. All other failures collapse into ErrSignatureInvalid.
func (k Key) Verify(signedBody, signature []byte) error {
	if k.Algorithm != AlgorithmRS256 {
		return &UnsupportedAlgorithmError{Algorithm: k.Algorithm}
	}
	if k.publicKey == nil {
		return ErrSignatureInvalid
	}
	if err := jwt.SigningMethodRS256.Verify(string(signedBody), signature, k.publicKey); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}

// Set is a parsed JSON Web Key set.
type Set struct {
	keys []Key
}

// NewSet builds a Set from keys, preserving order.
func NewSet(keys ...Key) *Set {
	return &Set{keys: append([]Key(nil), keys...)}
}

// ParseSet parses the {"keys":[...]} wire form of a key set.
//
// RS256 keys have their RSA material decoded eagerly; a set containing an
// RS256 key with undecodable parameters is rejected as a whole. Keys of
// other algorithms are carried as-is and fail at Verify time instead, so a
// provider can rotate in keys of a newer algorithm without breaking lookups
// of the RS256 ones.
func ParseSet(data []byte) (*Set, error) {
	var wire struct {
		Keys []struct {
			Kty string `json:"kty"`
			Alg string `json:"alg"`
			Use string `json:"use"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed key set document: %w", err)
	}

	set := &Set{keys: make([]Key, 0, len(wire.Keys))}
	for i, k := range wire.Keys {
		key := Key{KeyID: k.Kid, Algorithm: k.Alg, Use: k.Use, KeyType: k.Kty}
		if k.Alg == AlgorithmRS256 {
			publicKey, err := parseRSAPublicKey(k.N, k.E)
			if err != nil {
				return nil, fmt.Errorf("key %d (kid %q): %w", i, k.Kid, err)
			}
			key.publicKey = publicKey
		}
		set.keys = append(set.keys, key)
	}
	return set, nil
}

// Key returns the first key with the given id.
func (s *Set) Key(kid string) (Key, bool) {
	for _, k := range s.keys {
		if k.KeyID == kid {
			return k, true
		}
	}
	return Key{}, false
}

// Len returns the number of keys in the set.
func (s *Set) Len() int { return len(s.keys) }

func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}
	if len(nBytes) == 0 || len(eBytes) == 0 {
		return nil, errors.New("empty RSA parameters")
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}

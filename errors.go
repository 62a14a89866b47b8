package idtoken

import (
	"errors"
	"fmt"
)

// Sentinel errors for the parsing stages. The errors returned by Parse are
// typed structs naming the offending segment or part; these sentinels exist
// so callers can classify them with errors.Is.
var (
	// ErrTokenMalformed is matched when the compact token string does not
	// have three non-empty base64url segments.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenSchema is matched when a decoded segment is not the JSON
	// document its position calls for.
	ErrTokenSchema = errors.New("token does not match the expected schema")

	// ErrClaimsInvalid is matched when well-formed claims fail the
	// provider's policy. The underlying validator error is preserved, so
	// errors.Is against validator.ErrExpired and friends works too.
	ErrClaimsInvalid = errors.New("token claims are invalid")
)

// Segment names one of the three dot-separated pieces of a compact token.
type Segment string

const (
	SegmentHeader    Segment = "header"
	SegmentPayload   Segment = "payload"
	SegmentSignature Segment = "signature"
)

// SegmentError reports a segment that is absent, empty, or not valid
// unpadded base64url. A nil Cause means the segment was missing or empty;
// otherwise Cause is the decoding error.
type SegmentError struct {
	Segment Segment
	Cause   error
}

func (e *SegmentError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("malformed token: missing %s segment", e.Segment)
	}
	return fmt.Sprintf("malformed token: %s segment: %v", e.Segment, e.Cause)
}

func (e *SegmentError) Is(target error) bool { return target == ErrTokenMalformed }
func (e *SegmentError) Unwrap() error        { return e.Cause }

// SegmentCountError reports a token with more dot-separated segments than
// the compact form allows.
type SegmentCountError struct {
	Count int
}

func (e *SegmentCountError) Error() string {
	return fmt.Sprintf("malformed token: expected 3 dot-separated segments, found %d", e.Count)
}

func (e *SegmentCountError) Is(target error) bool { return target == ErrTokenMalformed }

// Part names one of the JSON documents decoded out of a token. The claims
// and payload parts are two views over the same payload segment bytes.
type Part string

const (
	PartHeader  Part = "header"
	PartClaims  Part = "claims"
	PartPayload Part = "payload"
)

// SchemaError reports segment bytes that decoded fine but are not the JSON
// document expected at that position.
type SchemaError struct {
	Part  Part
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("token %s does not match the expected schema: %v", e.Part, e.Cause)
}

func (e *SchemaError) Is(target error) bool { return target == ErrTokenSchema }
func (e *SchemaError) Unwrap() error        { return e.Cause }

// ClaimsError wraps a claims policy failure from the validator package. It
// matches ErrClaimsInvalid and unwraps to the validator's typed error, which
// carries the offending and expected values.
type ClaimsError struct {
	Cause error
}

func (e *ClaimsError) Error() string {
	return fmt.Sprintf("invalid claims: %v", e.Cause)
}

func (e *ClaimsError) Is(target error) bool { return target == ErrClaimsInvalid }
func (e *ClaimsError) Unwrap() error        { return e.Cause }

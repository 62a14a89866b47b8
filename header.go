package idtoken

// Header is the decoded JOSE header of a compact token.
//
// Only KeyID participates in verification: it selects which key of the
// provider's set the signature is checked against. Algorithm and Type are
// carried for diagnostics only; the signature check enforces the key's
// algorithm rather than the header's, so an attacker-controlled alg value
// cannot redirect the check to a weaker primitive.
type Header struct {
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid"`
	Type      string `json:"typ"`
}

package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/goliatone/go-notion/core"
)

const (
	SignatureHeader = "X-Notion-Signature"
	SignaturePrefix = "sha256="
)

// SignatureVerifier checks the X-Notion-Signature value of a delivery.
type SignatureVerifier struct {
	Header  string
	Prefix  string
	NewHash func() hash.Hash
}

func NewSignatureVerifier() *SignatureVerifier {
	return &SignatureVerifier{
		Header:  SignatureHeader,
		Prefix:  SignaturePrefix,
		NewHash: sha256.New,
	}
}

// Sign renders the signature Notion sends for body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches HMAC-SHA256(secret, rawBody).
// A missing signature or empty body fails without hashing.
func (v *SignatureVerifier) Verify(rawBody []byte, signature string, secret string) (ok bool) {
	if signature == "" || len(rawBody) == 0 {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	mac := hmac.New(v.hashFunc(), []byte(secret))
	_, _ = mac.Write(rawBody)
	expected := v.prefix() + hex.EncodeToString(mac.Sum(nil))
	return constantTimeEqual(expected, signature)
}

// VerifyRequest reads the signature header from req and verifies its body.
func (v *SignatureVerifier) VerifyRequest(req core.InboundRequest, secret string) bool {
	return v.Verify(req.Body, req.Header(v.header()), secret)
}

func (v *SignatureVerifier) hashFunc() func() hash.Hash {
	if v != nil && v.NewHash != nil {
		return v.NewHash
	}
	return sha256.New
}

func (v *SignatureVerifier) prefix() string {
	if v != nil && v.Prefix != "" {
		return v.Prefix
	}
	return SignaturePrefix
}

func (v *SignatureVerifier) header() string {
	if v != nil && strings.TrimSpace(v.Header) != "" {
		return v.Header
	}
	return SignatureHeader
}

// constantTimeEqual checks length first, then accumulates the XOR of every
// byte pair so the comparison time does not depend on where they differ.
func constantTimeEqual(expected string, actual string) bool {
	if len(expected) != len(actual) {
		return false
	}
	var mismatch byte
	for i := 0; i < len(expected); i++ {
		mismatch |= expected[i] ^ actual[i]
	}
	return mismatch == 0
}

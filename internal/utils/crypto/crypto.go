package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ComputeSignature returns the hex HMAC-SHA256 of the newline-joined parts.
func ComputeSignature(secret string, parts ...string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature compares signature against the expected one in constant time.
func VerifySignature(signature, secret string, parts ...string) bool {
	expected := ComputeSignature(secret, parts...)
	return hmac.Equal([]byte(signature), []byte(expected))
}

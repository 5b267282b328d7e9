package webhook

import (
	"crypto/hmac"   // HMAC computation and constant-time compare
	"crypto/sha256" // SHA-256 hash
	"encoding/hex"  // Hex encoding of the digest
)

// VerifySignature reports whether the raw callback body is authentic.
// An absent signature is accepted only when required is false; PawaPay does
// not sign every delivery, so permissive mode exists as an explicit
// configuration choice rather than a hard default.
func VerifySignature(body []byte, signature, secret string, required bool) bool {
	// No signature header: pass or fail on the configured mode
	if signature == "" {
		return !required
	}
	mac := hmac.New(sha256.New, []byte(secret)) // HMAC-SHA256 keyed with the shared secret
	mac.Write(body)                             // Digest the raw body
	expected := hex.EncodeToString(mac.Sum(nil))
	// Constant-time comparison against the provided signature
	return hmac.Equal([]byte(expected), []byte(signature))
}

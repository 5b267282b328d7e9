package webhook

import (
	"crypto/hmac"   // HMAC computation for expected signatures
	"crypto/sha256" // SHA-256 hash
	"encoding/hex"  // Hex encoding of the digest
	"testing"       // Test framework

	"github.com/stretchr/testify/assert" // Assertions
)

// sign computes the hex HMAC-SHA256 a genuine gateway delivery would carry
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// TestVerifySignature covers signed, tampered and unsigned deliveries in both modes
func TestVerifySignature(t *testing.T) {
	body := []byte(`{"depositId":"dep_1","status":"COMPLETED"}`)
	secret := "shared-secret"

	// A correctly signed body passes regardless of mode
	assert.True(t, VerifySignature(body, sign(body, secret), secret, false))
	assert.True(t, VerifySignature(body, sign(body, secret), secret, true))

	// A tampered body fails against the original signature
	tampered := []byte(`{"depositId":"dep_1","status":"FAILED"}`)
	assert.False(t, VerifySignature(tampered, sign(body, secret), secret, false))

	// A signature computed with the wrong secret fails
	assert.False(t, VerifySignature(body, sign(body, "other-secret"), secret, true))

	// An absent signature passes only in permissive mode
	assert.True(t, VerifySignature(body, "", secret, false))
	assert.False(t, VerifySignature(body, "", secret, true))
}

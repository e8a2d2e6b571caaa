// Package otp generates and verifies the one-time codes sent to phone numbers at login.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CodeDigits is the fixed length of a login code. The SPA renders exactly this many inputs.
const CodeDigits = 6

// GenerateCode returns a 6-digit numeric code string (e.g. "123456").
// Uses crypto/rand for randomness.
func GenerateCode() (string, error) {
	b := make([]byte, CodeDigits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := make([]byte, CodeDigits)
	for i := 0; i < CodeDigits; i++ {
		s[i] = '0' + (b[i] % 10)
	}
	return string(s), nil
}

// HashCode returns a SHA-256 hash of the code string, hex-encoded.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// CodeEqual performs constant-time comparison of the provided code's hash with the stored hash.
func CodeEqual(providedCode, storedHash string) bool {
	providedHash := HashCode(providedCode)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}

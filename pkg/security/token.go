package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const tokenSize = 32

// GenerateToken returns a URL-safe opaque token with tokenSize bytes of
// entropy. The raw value is mailed to the user and never persisted.
func GenerateToken() (string, error) {
	b := make([]byte, tokenSize)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashLookupToken derives the deterministic lookup hash stored in place
// of a raw token. Secrets differ per token purpose so a verification
// token can never be replayed as a reset token.
func HashLookupToken(token string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))

	return hex.EncodeToString(mac.Sum(nil))
}

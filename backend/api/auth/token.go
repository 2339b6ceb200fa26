package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	TokenLength = 32
	TokenPrefix = "mlc_"
)

// GenerateToken returns a fresh random bearer token for the server's
// auth_token setting.
func GenerateToken() (string, error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes), nil
}

func HashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func ValidTokenFormat(token string) bool {
	encoded, ok := strings.CutPrefix(token, TokenPrefix)
	if !ok {
		return false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	return len(decoded) == TokenLength
}

// TokenVerifier checks presented tokens against one configured token. Only the
// hash of the configured token is held.
type TokenVerifier struct {
	hash []byte
}

func NewTokenVerifier(token string) *TokenVerifier {
	if token == "" {
		return nil
	}
	return &TokenVerifier{hash: HashToken(token)}
}

func (v *TokenVerifier) Verify(token string) bool {
	if v == nil {
		return false
	}
	return subtle.ConstantTimeCompare(v.hash, HashToken(token)) == 1
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// KeyLength is the length of a generated token in bytes (20 bytes = 40 hex chars)
const KeyLength = 20

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInactiveUser = errors.New("user inactive or deleted")
)

// GenerateKey returns a new random token key
func GenerateKey() (string, error) {
	bytes := make([]byte, KeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

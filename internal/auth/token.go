package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// InviteTokenBytes is the entropy of a raw invite token.
const InviteTokenBytes = 32

// NewInviteToken returns a fresh random invite token as a hex string. The raw
// token is mailed to the invitee; only its hash is persisted.
func NewInviteToken() (string, error) {
	buf := make([]byte, InviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken derives the stored form of an invite token: hex-encoded
// SHA-256 of the raw token concatenated with the server secret.
func HashToken(token, secret string) string {
	sum := sha256.Sum256([]byte(token + secret))
	return hex.EncodeToString(sum[:])
}

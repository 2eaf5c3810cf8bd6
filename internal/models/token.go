package models

// VerificationToken is a single-use, time-bounded invite credential. Only the
// hash of the token is stored; the raw token travels in the invite email.
type VerificationToken struct {
	// TokenHash is hex(sha256(rawToken + secret)).
	TokenHash string

	// Identifier is the email address the token was issued for.
	Identifier string

	// Expires is the Unix timestamp after which the token is dead.
	Expires int64
}

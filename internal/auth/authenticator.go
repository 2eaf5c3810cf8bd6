// Package auth covers budbudbud's sign-in paths: password accounts created
// through registration, invite tokens redeemed by mailed link, and the JWT
// session layer shared by both.
package auth

import (
	"context"

	"github.com/scorrilo/budbudbud/internal/models"
)

// Authenticator is the credential-based sign-in path. The abstraction keeps
// the RPC layer ignorant of the credential format so other methods (OAuth,
// passkeys) can slot in later.
type Authenticator interface {
	// Register creates a new account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's
	// policy (length, format).
	ValidateCredential(credential string) error
}

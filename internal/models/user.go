package models

// User represents a registered or invited account.
//
// A user created through the invite flow starts with EmailVerified nil and
// InvitedByID/InvitedAt set; verification happens when the invite token is
// redeemed.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's unique email address.
	Email string

	// Name is the global display name. Group-scoped names live on the
	// membership row.
	Name string

	// PasswordHash is empty for invited users who have not set a password.
	PasswordHash string

	// EmailVerified is the Unix timestamp of email confirmation, nil until
	// the user completed sign-in at least once.
	EmailVerified *int64

	// FirstLogin is stamped once by the firstLogin mutation.
	FirstLogin *int64

	// InvitedByID references the inviting user, empty for self-registered
	// accounts.
	InvitedByID string

	// InvitedAt is the Unix timestamp of the invitation, nil otherwise.
	InvitedAt *int64

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

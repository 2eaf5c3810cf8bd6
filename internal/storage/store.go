// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/scorrilo/budbudbud/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a uniqueness
	// constraint (duplicate membership, duplicate vote, duplicate email).
	// Callers decide whether that is an error or a benign no-op.
	ErrConflict = errors.New("already exists")
)

// Store defines the interface for budbudbud's persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store if unset. Returns ErrConflict if the email is
	// already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if
	// no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by id. Returns ErrNotFound if no such
	// user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// MarkUserInvited stamps the user with the inviter and invite time.
	MarkUserInvited(ctx context.Context, userID, inviterID string, at time.Time) error

	// MarkEmailVerified stamps the user's email verification time.
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error

	// SetFirstLogin stamps the user's first login time if not already set.
	SetFirstLogin(ctx context.Context, userID string, at time.Time) error

	// CreateGroup persists a new group. ID and CreatedAt are populated by
	// the store if unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroupDetail retrieves a group with its members (joined to each
	// user's identity) and its messages ordered by creation time ascending.
	// Returns ErrNotFound if the group does not exist.
	GetGroupDetail(ctx context.Context, groupID string) (*models.GroupDetail, error)

	// ListGroupsForUser retrieves every group the user belongs to, with
	// members but without messages.
	ListGroupsForUser(ctx context.Context, userID string) ([]models.GroupDetail, error)

	// UpdateGroupName renames a group. Returns ErrNotFound if the group
	// does not exist.
	UpdateGroupName(ctx context.Context, groupID, name string) error

	// AddMember inserts a membership row. Returns ErrConflict if the
	// (group, user) pair already exists.
	AddMember(ctx context.Context, m *models.Membership) error

	// RemoveMember deletes a membership row. Removing an absent membership
	// is not an error.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// CreateMessage appends a message to the group's board. ID and
	// CreatedAt are populated by the store if unset.
	CreateMessage(ctx context.Context, msg *models.GroupMessage) error

	// CreateMeet persists a new meet. ID and CreatedAt are populated by
	// the store if unset.
	CreateMeet(ctx context.Context, meet *models.Meet) error

	// GetMeet retrieves a meet by id, without votes. Returns ErrNotFound
	// if no such meet exists.
	GetMeet(ctx context.Context, meetID string) (*models.Meet, error)

	// ListMeetsForGroup retrieves the most recent meets for a group
	// ordered by day descending, each with nested votes (and each vote's
	// place and voter name).
	ListMeetsForGroup(ctx context.Context, groupID string, limit int) ([]models.Meet, error)

	// ValidateMeet sets validated=true, optionally recording the chosen
	// place. The flag is monotonic; validating twice is a no-op.
	ValidateMeet(ctx context.Context, meetID string, placeID *string) error

	// CreatePlace persists a new place. ID and CreatedAt are populated by
	// the store if unset. Addresses are not deduplicated.
	CreatePlace(ctx context.Context, place *models.Place) error

	// GetPlace retrieves a place by id. Returns ErrNotFound if no such
	// place exists.
	GetPlace(ctx context.Context, placeID string) (*models.Place, error)

	// CreateVote inserts a vote row. Returns ErrConflict if the user
	// already holds this exact vote.
	CreateVote(ctx context.Context, vote *models.MeetVote) error

	// DeleteVote removes the user's day-only vote (placeID nil) or a
	// specific place vote. Deleting an absent vote is not an error.
	DeleteVote(ctx context.Context, meetID, userID string, placeID *string) error

	// CreateVerificationToken persists a hashed single-use invite token.
	CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error

	// ConsumeVerificationToken deletes and returns the token row matching
	// the hash and identifier. Returns ErrNotFound if the token is
	// missing, already used, or expired.
	ConsumeVerificationToken(ctx context.Context, tokenHash, identifier string, now time.Time) (*models.VerificationToken, error)

	// Close releases any resources held by the store.
	Close() error
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/internal/storage"
)

// CreateUser persists a new user to the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, email_verified, first_login, invited_by_id, invited_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash,
		user.EmailVerified, user.FirstLogin,
		sql.NullString{String: user.InvitedByID, Valid: user.InvitedByID != ""},
		user.InvitedAt, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userColumns = "id, email, name, password_hash, email_verified, first_login, invited_by_id, invited_at, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var emailVerified, firstLogin, invitedAt sql.NullInt64
	var invitedByID sql.NullString

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&emailVerified, &firstLogin, &invitedByID, &invitedAt, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.EmailVerified = nullableInt(emailVerified)
	user.FirstLogin = nullableInt(firstLogin)
	user.InvitedAt = nullableInt(invitedAt)
	user.InvitedByID = invitedByID.String
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// GetUserByID retrieves a user by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// MarkUserInvited stamps the user with the inviter and invite time.
func (s *SQLiteStore) MarkUserInvited(ctx context.Context, userID, inviterID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET invited_by_id = ?, invited_at = ? WHERE id = ?",
		inviterID, at.Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark user invited: %w", err)
	}
	return requireRowAffected(res, "user", userID)
}

// MarkEmailVerified stamps the user's email verification time.
func (s *SQLiteStore) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET email_verified = ? WHERE id = ?",
		at.Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return requireRowAffected(res, "user", userID)
}

// SetFirstLogin stamps the user's first login time, keeping the earliest.
func (s *SQLiteStore) SetFirstLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET first_login = ? WHERE id = ? AND first_login IS NULL",
		at.Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set first login: %w", err)
	}
	return nil
}

// requireRowAffected maps a zero-row UPDATE to ErrNotFound.
func requireRowAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

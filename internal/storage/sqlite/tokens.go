package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/internal/storage"
)

// CreateVerificationToken persists a hashed single-use invite token.
func (s *SQLiteStore) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO verification_tokens (token_hash, identifier, expires) VALUES (?, ?, ?)",
		token.TokenHash, token.Identifier, token.Expires,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("verification token: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert verification token: %w", err)
	}
	return nil
}

// ConsumeVerificationToken deletes and returns the token row matching the
// hash and identifier. Expired tokens are deleted and reported as not found,
// so a token can never be redeemed twice.
func (s *SQLiteStore) ConsumeVerificationToken(ctx context.Context, tokenHash, identifier string, now time.Time) (*models.VerificationToken, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	token := &models.VerificationToken{}
	err = tx.QueryRowContext(ctx,
		"SELECT token_hash, identifier, expires FROM verification_tokens WHERE token_hash = ? AND identifier = ?",
		tokenHash, identifier,
	).Scan(&token.TokenHash, &token.Identifier, &token.Expires)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("verification token: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification token: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM verification_tokens WHERE token_hash = ?",
		tokenHash,
	); err != nil {
		return nil, fmt.Errorf("failed to delete verification token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if token.Expires <= now.Unix() {
		return nil, fmt.Errorf("verification token expired: %w", storage.ErrNotFound)
	}
	return token, nil
}

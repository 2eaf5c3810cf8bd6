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

// CreateGroup persists a new group to the database.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroupDetail retrieves a group with its members and messages.
func (s *SQLiteStore) GetGroupDetail(ctx context.Context, groupID string) (*models.GroupDetail, error) {
	detail := &models.GroupDetail{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&detail.ID, &detail.Name, &detail.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	detail.Members, err = s.listMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	detail.Messages, err = s.listMessages(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// listMembers loads the membership rows for a group, joined to each user's
// identity.
func (s *SQLiteStore) listMembers(ctx context.Context, groupID string) ([]models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ug.group_id, ug.user_id, ug.name, ug.admin, ug.created_at, u.email, u.name
		 FROM user_groups ug
		 JOIN users u ON u.id = ug.user_id
		 WHERE ug.group_id = ?
		 ORDER BY ug.created_at, ug.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Name, &m.Admin, &m.CreatedAt, &m.UserEmail, &m.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// listMessages loads the group's board ordered by creation time ascending.
func (s *SQLiteStore) listMessages(ctx context.Context, groupID string) ([]models.GroupMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, author_id, text, created_at FROM group_messages WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	var messages []models.GroupMessage
	for rows.Next() {
		var m models.GroupMessage
		if err := rows.Scan(&m.ID, &m.GroupID, &m.AuthorID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// ListGroupsForUser retrieves every group the user belongs to.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]models.GroupDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.created_at
		 FROM groups g
		 JOIN user_groups ug ON ug.group_id = g.id
		 WHERE ug.user_id = ?
		 ORDER BY g.created_at, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.GroupDetail
	for rows.Next() {
		var g models.GroupDetail
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for i := range groups {
		groups[i].Members, err = s.listMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// UpdateGroupName renames a group.
func (s *SQLiteStore) UpdateGroupName(ctx context.Context, groupID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET name = ? WHERE id = ?",
		name, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group name: %w", err)
	}
	return requireRowAffected(res, "group", groupID)
}

// AddMember inserts a membership row.
func (s *SQLiteStore) AddMember(ctx context.Context, m *models.Membership) error {
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO user_groups (group_id, user_id, name, admin, created_at) VALUES (?, ?, ?, ?, ?)",
		m.GroupID, m.UserID, m.Name, m.Admin, m.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("membership (%s, %s): %w", m.GroupID, m.UserID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM user_groups WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	return nil
}

// CreateMessage appends a message to the group's board.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *models.GroupMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_messages (id, group_id, author_id, text, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.GroupID, msg.AuthorID, msg.Text, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

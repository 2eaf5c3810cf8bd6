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

// CreateMeet persists a new meet to the database.
func (s *SQLiteStore) CreateMeet(ctx context.Context, meet *models.Meet) error {
	if meet.ID == "" {
		meet.ID = uuid.New().String()
	}
	if meet.CreatedAt == 0 {
		meet.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meets (id, group_id, day, validated, place_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		meet.ID, meet.GroupID, meet.Day, meet.Validated, meet.PlaceID, meet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meet: %w", err)
	}
	return nil
}

// GetMeet retrieves a meet by id, without votes.
func (s *SQLiteStore) GetMeet(ctx context.Context, meetID string) (*models.Meet, error) {
	meet := &models.Meet{}
	var placeID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, day, validated, place_id, created_at FROM meets WHERE id = ?",
		meetID,
	).Scan(&meet.ID, &meet.GroupID, &meet.Day, &meet.Validated, &placeID, &meet.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("meet %s: %w", meetID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meet: %w", err)
	}
	meet.PlaceID = nullableStr(placeID)
	return meet, nil
}

// ListMeetsForGroup retrieves the most recent meets for a group ordered by
// day descending, each with nested votes.
func (s *SQLiteStore) ListMeetsForGroup(ctx context.Context, groupID string, limit int) ([]models.Meet, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, day, validated, place_id, created_at FROM meets WHERE group_id = ? ORDER BY day DESC LIMIT ?",
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meets: %w", err)
	}
	defer rows.Close()

	var meets []models.Meet
	for rows.Next() {
		var m models.Meet
		var placeID sql.NullString
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Day, &m.Validated, &placeID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meet: %w", err)
		}
		m.PlaceID = nullableStr(placeID)
		meets = append(meets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meets: %w", err)
	}

	for i := range meets {
		meets[i].Votes, err = s.listVotes(ctx, meets[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return meets, nil
}

// listVotes loads the votes for a meet, each joined to its place (if any) and
// the voter's group-independent name.
func (s *SQLiteStore) listVotes(ctx context.Context, meetID string) ([]models.MeetVote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.meet_id, v.user_id, v.place_id, v.created_at, u.name,
		        p.id, p.address, p.created_at
		 FROM meet_votes v
		 JOIN users u ON u.id = v.user_id
		 LEFT JOIN places p ON p.id = v.place_id
		 WHERE v.meet_id = ?
		 ORDER BY v.created_at, v.user_id`,
		meetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	var votes []models.MeetVote
	for rows.Next() {
		var v models.MeetVote
		var placeID, pID, pAddress sql.NullString
		var pCreatedAt sql.NullInt64
		if err := rows.Scan(&v.MeetID, &v.UserID, &placeID, &v.CreatedAt, &v.UserName,
			&pID, &pAddress, &pCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.PlaceID = nullableStr(placeID)
		if pID.Valid {
			v.Place = &models.Place{
				ID:        pID.String,
				Address:   pAddress.String,
				CreatedAt: pCreatedAt.Int64,
			}
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}

// ValidateMeet sets validated=true, optionally recording the chosen place.
func (s *SQLiteStore) ValidateMeet(ctx context.Context, meetID string, placeID *string) error {
	var res sql.Result
	var err error
	if placeID != nil {
		res, err = s.db.ExecContext(ctx,
			"UPDATE meets SET validated = 1, place_id = ? WHERE id = ?",
			*placeID, meetID,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			"UPDATE meets SET validated = 1 WHERE id = ?",
			meetID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to validate meet: %w", err)
	}
	return requireRowAffected(res, "meet", meetID)
}

// CreatePlace persists a new place to the database.
func (s *SQLiteStore) CreatePlace(ctx context.Context, place *models.Place) error {
	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	if place.CreatedAt == 0 {
		place.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO places (id, address, created_at) VALUES (?, ?, ?)",
		place.ID, place.Address, place.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

// GetPlace retrieves a place by id.
func (s *SQLiteStore) GetPlace(ctx context.Context, placeID string) (*models.Place, error) {
	place := &models.Place{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, address, created_at FROM places WHERE id = ?",
		placeID,
	).Scan(&place.ID, &place.Address, &place.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("place %s: %w", placeID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return place, nil
}

// CreateVote inserts a vote row.
func (s *SQLiteStore) CreateVote(ctx context.Context, vote *models.MeetVote) error {
	if vote.CreatedAt == 0 {
		vote.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meet_votes (meet_id, user_id, place_id, created_at) VALUES (?, ?, ?, ?)",
		vote.MeetID, vote.UserID, vote.PlaceID, vote.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("vote (%s, %s): %w", vote.MeetID, vote.UserID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// DeleteVote removes the user's day-only vote (placeID nil) or a specific
// place vote. Zero rows affected is success.
func (s *SQLiteStore) DeleteVote(ctx context.Context, meetID, userID string, placeID *string) error {
	var err error
	if placeID != nil {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM meet_votes WHERE meet_id = ? AND user_id = ? AND place_id = ?",
			meetID, userID, *placeID,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"DELETE FROM meet_votes WHERE meet_id = ? AND user_id = ? AND place_id IS NULL",
			meetID, userID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

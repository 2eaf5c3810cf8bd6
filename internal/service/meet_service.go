package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/internal/storage"
	"github.com/scorrilo/budbudbud/pkg/api"
)

// upcomingMeetsLimit bounds the recent-window query.
const upcomingMeetsLimit = 5

// MeetService implements the MeetService RPC interface: proposed meeting
// days, day and place votes, and the admin validation transition.
type MeetService struct {
	guard
}

var _ api.MeetServiceHandler = (*MeetService)(nil)

// NewMeetService creates a new MeetService with the given storage backend.
func NewMeetService(store storage.Store) *MeetService {
	return &MeetService{guard{store: store}}
}

// normalizeDay truncates a timestamp to midnight UTC of its calendar day.
func normalizeDay(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// UpcomingForGroup returns the most recent meets for a group, day descending,
// with nested votes. Member-only.
func (s *MeetService) UpcomingForGroup(ctx context.Context, req *connect.Request[api.UpcomingForGroupRequest]) (*connect.Response[api.UpcomingForGroupResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	detail, err := s.requireMember(ctx, req.Msg.GroupId, me.Email)
	if err != nil {
		return nil, guardError(err)
	}

	meets, err := s.store.ListMeetsForGroup(ctx, detail.ID, upcomingMeetsLimit)
	if err != nil {
		slog.Error("UpcomingForGroup failed", "group_id", detail.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Meet, len(meets))
	for i := range meets {
		out[i] = toAPIMeet(&meets[i])
	}
	return connect.NewResponse(&api.UpcomingForGroupResponse{Meets: out}), nil
}

// CreateMeet proposes a meeting day. Member-only. The proposer's day-only
// vote is registered as a side effect.
func (s *MeetService) CreateMeet(ctx context.Context, req *connect.Request[api.CreateMeetRequest]) (*connect.Response[api.CreateMeetResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}
	if req.Msg.Day.IsZero() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("day required"))
	}

	detail, err := s.requireMember(ctx, req.Msg.GroupId, me.Email)
	if err != nil {
		return nil, guardError(err)
	}

	meet := &models.Meet{
		GroupID: detail.ID,
		Day:     normalizeDay(req.Msg.Day),
	}
	if err := s.store.CreateMeet(ctx, meet); err != nil {
		slog.Error("CreateMeet failed", "group_id", detail.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if err := s.voteDay(ctx, meet.ID, me.ID); err != nil {
		slog.Error("CreateMeet failed to record proposer vote", "meet_id", meet.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Meet created", "meet_id", meet.ID, "group_id", detail.ID, "day", meet.Day)
	meets, err := s.store.ListMeetsForGroup(ctx, detail.ID, upcomingMeetsLimit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	for i := range meets {
		if meets[i].ID == meet.ID {
			return connect.NewResponse(&api.CreateMeetResponse{Meet: toAPIMeet(&meets[i])}), nil
		}
	}
	return connect.NewResponse(&api.CreateMeetResponse{Meet: toAPIMeet(meet)}), nil
}

// voteDay records a day-only vote, treating an existing one as success.
func (s *MeetService) voteDay(ctx context.Context, meetID, userID string) error {
	err := s.store.CreateVote(ctx, &models.MeetVote{MeetID: meetID, UserID: userID})
	if err != nil && !errors.Is(err, storage.ErrConflict) {
		return err
	}
	return nil
}

// Vote records the caller's support for a meet: a day-only vote when no place
// is given, or a place vote (which implies the day vote). Member-only.
// Duplicate votes are benign no-ops.
func (s *MeetService) Vote(ctx context.Context, req *connect.Request[api.VoteRequest]) (*connect.Response[api.VoteResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	meet, err := s.store.GetMeet(ctx, req.Msg.MeetId)
	if err != nil {
		return nil, guardError(err)
	}
	if _, err := s.requireMember(ctx, meet.GroupID, me.Email); err != nil {
		return nil, guardError(err)
	}

	var place *models.Place
	if in := req.Msg.Place; in != nil {
		switch in.Type {
		case api.PlaceInputNew:
			if in.Address == "" {
				return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("place address required"))
			}
			// Addresses are not deduplicated; each new-place vote creates
			// a fresh row.
			place = &models.Place{Address: in.Address}
			if err := s.store.CreatePlace(ctx, place); err != nil {
				slog.Error("Vote failed to create place", "meet_id", meet.ID, "error", err)
				return nil, connect.NewError(connect.CodeInternal, err)
			}
		case api.PlaceInputExisting:
			place, err = s.store.GetPlace(ctx, in.Id)
			if err != nil {
				return nil, guardError(err)
			}
		default:
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("place type must be \"new\" or \"existing\""))
		}
	}

	// A place vote implies availability on the day.
	if err := s.voteDay(ctx, meet.ID, me.ID); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if place != nil {
		err := s.store.CreateVote(ctx, &models.MeetVote{
			MeetID:  meet.ID,
			UserID:  me.ID,
			PlaceID: &place.ID,
		})
		if err != nil && !errors.Is(err, storage.ErrConflict) {
			slog.Error("Vote failed", "meet_id", meet.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	return connect.NewResponse(&api.VoteResponse{}), nil
}

// RemoveVote deletes the caller's day-only vote, or a specific place vote
// when a place id is given. Removing an absent vote is a no-op. Member-only.
func (s *MeetService) RemoveVote(ctx context.Context, req *connect.Request[api.RemoveVoteRequest]) (*connect.Response[api.RemoveVoteResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	meet, err := s.store.GetMeet(ctx, req.Msg.MeetId)
	if err != nil {
		return nil, guardError(err)
	}
	if _, err := s.requireMember(ctx, meet.GroupID, me.Email); err != nil {
		return nil, guardError(err)
	}

	var placeID *string
	if req.Msg.PlaceId != "" {
		placeID = &req.Msg.PlaceId
	}
	if err := s.store.DeleteVote(ctx, meet.ID, me.ID, placeID); err != nil {
		slog.Error("RemoveVote failed", "meet_id", meet.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.RemoveVoteResponse{}), nil
}

// ValidateMeet finalizes a meet. Admin-only, irreversible; validating an
// already-validated meet leaves it validated. An optional place id records
// the chosen place.
func (s *MeetService) ValidateMeet(ctx context.Context, req *connect.Request[api.ValidateMeetRequest]) (*connect.Response[api.ValidateMeetResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	meet, err := s.store.GetMeet(ctx, req.Msg.MeetId)
	if err != nil {
		return nil, guardError(err)
	}
	detail, err := s.requireMember(ctx, meet.GroupID, me.Email)
	if err != nil {
		return nil, guardError(err)
	}
	if !isAdmin(detail, me.Email) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only admins can validate events"))
	}

	var placeID *string
	if req.Msg.PlaceId != "" {
		if _, err := s.store.GetPlace(ctx, req.Msg.PlaceId); err != nil {
			return nil, guardError(err)
		}
		placeID = &req.Msg.PlaceId
	}

	if err := s.store.ValidateMeet(ctx, meet.ID, placeID); err != nil {
		slog.Error("ValidateMeet failed", "meet_id", meet.ID, "error", err)
		return nil, guardError(err)
	}

	slog.Info("Meet validated", "meet_id", meet.ID, "group_id", meet.GroupID)
	updated, err := s.store.GetMeet(ctx, meet.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.ValidateMeetResponse{Meet: toAPIMeet(updated)}), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/internal/auth"
	"github.com/scorrilo/budbudbud/internal/mail"
	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/internal/storage"
	"github.com/scorrilo/budbudbud/pkg/api"
)

// inviteTokenTTL bounds how long an invite link stays redeemable.
const inviteTokenTTL = 24 * time.Hour

// GroupService implements the GroupService RPC interface: group lifecycle,
// membership, invitations and the message board.
type GroupService struct {
	guard
	mailer     mail.Mailer
	authSecret string
	baseURL    string
}

var _ api.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService. baseURL is the public address
// embedded in invite links; authSecret salts invite token hashes.
func NewGroupService(store storage.Store, mailer mail.Mailer, authSecret, baseURL string) *GroupService {
	return &GroupService{
		guard:      guard{store: store},
		mailer:     mailer,
		authSecret: authSecret,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// GetGroup retrieves a group with members and messages. Membership-checked.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	detail, err := s.requireMember(ctx, req.Msg.GroupId, me.Email)
	if err != nil {
		return nil, guardError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(detail)}), nil
}

// ListGroups retrieves the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	details, err := s.store.ListGroupsForUser(ctx, me.ID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", me.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	groups := make([]*api.Group, len(details))
	for i := range details {
		groups[i] = toAPIGroup(&details[i])
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: groups}), nil
}

// CreateGroup creates a group. The creator becomes its admin; listed
// co-members are added as plain members, deduplicated by id.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name required"))
	}

	slog.Info("CreateGroup request", "name", req.Msg.Name, "members_count", len(req.Msg.Members), "user_id", me.ID)

	group := &models.Group{Name: req.Msg.Name}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	creatorName := me.Name
	if creatorName == "" {
		creatorName = me.Email
	}
	if err := s.store.AddMember(ctx, &models.Membership{
		GroupID: group.ID,
		UserID:  me.ID,
		Name:    creatorName,
		Admin:   true,
	}); err != nil {
		slog.Error("CreateGroup failed to add creator", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	seen := map[string]bool{me.ID: true}
	for _, m := range req.Msg.Members {
		if m.UserId == "" || seen[m.UserId] {
			continue
		}
		seen[m.UserId] = true
		err := s.store.AddMember(ctx, &models.Membership{
			GroupID: group.ID,
			UserID:  m.UserId,
			Name:    m.Name,
			Admin:   false,
		})
		if err != nil && !errors.Is(err, storage.ErrConflict) {
			slog.Error("CreateGroup failed to add member", "group_id", group.ID, "user_id", m.UserId, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{GroupId: group.ID}), nil
}

// UpdateGroupName renames a group. Admin-only.
func (s *GroupService) UpdateGroupName(ctx context.Context, req *connect.Request[api.UpdateGroupNameRequest]) (*connect.Response[api.UpdateGroupNameResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name required"))
	}

	if _, err := s.requireAdmin(ctx, req.Msg.GroupId, me.Email); err != nil {
		return nil, guardError(err)
	}

	if err := s.store.UpdateGroupName(ctx, req.Msg.GroupId, req.Msg.Name); err != nil {
		slog.Error("UpdateGroupName failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, guardError(err)
	}

	slog.Info("Group renamed", "group_id", req.Msg.GroupId, "name", req.Msg.Name)
	return connect.NewResponse(&api.UpdateGroupNameResponse{}), nil
}

// RemoveUser removes a member from a group. Admin-only. There is no guard
// against removing the last admin.
func (s *GroupService) RemoveUser(ctx context.Context, req *connect.Request[api.RemoveUserRequest]) (*connect.Response[api.RemoveUserResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	if _, err := s.requireAdmin(ctx, req.Msg.GroupId, me.Email); err != nil {
		return nil, guardError(err)
	}

	if err := s.store.RemoveMember(ctx, req.Msg.GroupId, req.Msg.UserId); err != nil {
		slog.Error("RemoveUser failed", "group_id", req.Msg.GroupId, "user_id", req.Msg.UserId, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Member removed", "group_id", req.Msg.GroupId, "user_id", req.Msg.UserId)
	return connect.NewResponse(&api.RemoveUserResponse{}), nil
}

// NewMessage appends a message to the group board. Member-only.
func (s *GroupService) NewMessage(ctx context.Context, req *connect.Request[api.NewMessageRequest]) (*connect.Response[api.NewMessageResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}
	if req.Msg.Text == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("message text required"))
	}

	detail, err := s.requireMember(ctx, req.Msg.GroupId, me.Email)
	if err != nil {
		return nil, guardError(err)
	}

	msg := &models.GroupMessage{
		GroupID:  detail.ID,
		AuthorID: me.ID,
		Text:     req.Msg.Text,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		slog.Error("NewMessage failed", "group_id", detail.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.NewMessageResponse{
		Message: &api.Message{
			Id:        msg.ID,
			AuthorId:  msg.AuthorID,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
		},
	}), nil
}

// AddUser adds a user to the group by email. Admin-only. Unknown emails get a
// provisional account and an invite email with a single-use sign-in link.
// Already-present members are a silent success.
//
// The flow is not transactional; every step tolerates leftovers from an
// earlier partial failure so the whole call can be retried.
func (s *GroupService) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.AddUserResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}
	if _, err := netmail.ParseAddress(req.Msg.Email); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("malformed email"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("member name required"))
	}

	detail, err := s.requireAdmin(ctx, req.Msg.GroupId, me.Email)
	if err != nil {
		return nil, guardError(err)
	}

	slog.Info("AddUser request", "group_id", detail.ID, "email", req.Msg.Email, "inviter_id", me.ID)

	// Early return when the user is already in
	if detail.Member(req.Msg.Email) != nil {
		return connect.NewResponse(&api.AddUserResponse{}), nil
	}

	target, err := s.store.GetUserByEmail(ctx, req.Msg.Email)
	switch {
	case err == nil:
		if err := s.addMember(ctx, detail.ID, target.ID, req.Msg.Name); err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		slog.Info("Existing user added to group", "group_id", detail.ID, "user_id", target.ID)
		return connect.NewResponse(&api.AddUserResponse{}), nil

	case errors.Is(err, storage.ErrNotFound):
		if err := s.inviteNewUser(ctx, detail, me, req.Msg.Email, req.Msg.Name); err != nil {
			slog.Error("Invite failed", "group_id", detail.ID, "email", req.Msg.Email, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(&api.AddUserResponse{}), nil

	default:
		return nil, connect.NewError(connect.CodeInternal, err)
	}
}

// addMember inserts a membership row, treating an existing row as success.
func (s *GroupService) addMember(ctx context.Context, groupID, userID, name string) error {
	err := s.store.AddMember(ctx, &models.Membership{
		GroupID: groupID,
		UserID:  userID,
		Name:    name,
		Admin:   false,
	})
	if err != nil && !errors.Is(err, storage.ErrConflict) {
		return err
	}
	return nil
}

// inviteNewUser provisions an unverified account, issues a single-use
// verification token and sends the invite email.
func (s *GroupService) inviteNewUser(ctx context.Context, detail *models.GroupDetail, me *models.User, email, name string) error {
	invitee := &models.User{Email: email}
	err := s.store.CreateUser(ctx, invitee)
	if errors.Is(err, storage.ErrConflict) {
		// Left over from an earlier partial failure; reuse it.
		invitee, err = s.store.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return fmt.Errorf("failed to provision invitee: %w", err)
	}

	if err := s.store.MarkUserInvited(ctx, invitee.ID, me.ID, time.Now()); err != nil {
		return err
	}
	if err := s.addMember(ctx, detail.ID, invitee.ID, name); err != nil {
		return err
	}

	rawToken, err := auth.NewInviteToken()
	if err != nil {
		return err
	}
	if err := s.store.CreateVerificationToken(ctx, &models.VerificationToken{
		TokenHash:  auth.HashToken(rawToken, s.authSecret),
		Identifier: email,
		Expires:    time.Now().Add(inviteTokenTTL).Unix(),
	}); err != nil {
		return fmt.Errorf("could not create verification token: %w", err)
	}

	params := url.Values{
		"callbackUrl": {s.baseURL + "/me"},
		"token":       {rawToken},
		"email":       {email},
	}
	inviteURL := fmt.Sprintf("%s/api/auth/callback/email?%s", s.baseURL, params.Encode())

	inviterName := me.Name
	if m := detail.MemberByID(me.ID); m != nil {
		inviterName = m.Name
	}
	if inviterName == "" {
		inviterName = me.Email
	}

	if err := s.mailer.SendInvite(ctx, mail.Invite{
		To:            email,
		Name:          name,
		Inviter:       inviterName,
		GroupName:     detail.Name,
		MemberSummary: memberSummary(detail.Members),
		URL:           inviteURL,
	}); err != nil {
		return err
	}

	slog.Info("Invite sent", "group_id", detail.ID, "email", email)
	return nil
}

// memberSummary renders the current members as a human-readable list:
// "Alice", "Alice and Bob", "Alice, Bob and Carol".
func memberSummary(members []models.Membership) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

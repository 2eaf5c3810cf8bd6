// Package service implements budbudbud's RPC services: authentication,
// current user, group membership and messaging, and meeting days with votes.
//
// Every group-scoped operation funnels through the guard first: resolve the
// group, verify the requester's membership (or admin bit), and only then
// mutate. The guard performs reads only.
package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/internal/auth"
	"github.com/scorrilo/budbudbud/internal/middleware"
	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/internal/storage"
)

var (
	// ErrNotMember is returned when the requester does not belong to the group.
	ErrNotMember = errors.New("request author is not a member of this group")

	// ErrNotAdmin is returned when the requester is a member but not an admin.
	ErrNotAdmin = errors.New("request author is not group admin")
)

// guard is the single authorization checkpoint shared by all services.
type guard struct {
	store storage.Store
}

// currentUser resolves the authenticated user from the request context. The
// auth interceptor stores the session email; the user row is re-fetched so a
// stale token for a deleted account fails here.
func (g guard) currentUser(ctx context.Context) (*models.User, error) {
	email := middleware.GetEmail(ctx)
	if email == "" {
		return nil, auth.ErrMissingToken
	}
	user, err := g.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// requireMember loads the group and verifies the requester belongs to it.
func (g guard) requireMember(ctx context.Context, groupID, email string) (*models.GroupDetail, error) {
	detail, err := g.store.GetGroupDetail(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if detail.Member(email) == nil {
		return nil, ErrNotMember
	}
	return detail, nil
}

// requireAdmin loads the group and verifies the requester is one of its admins.
func (g guard) requireAdmin(ctx context.Context, groupID, email string) (*models.GroupDetail, error) {
	detail, err := g.requireMember(ctx, groupID, email)
	if err != nil {
		return nil, err
	}
	if !isAdmin(detail, email) {
		return nil, ErrNotAdmin
	}
	return detail, nil
}

// isAdmin reports whether email belongs to an admin of the already-loaded
// group. Used by callers that loaded the group for another purpose and want
// to re-check without a second fetch.
func isAdmin(detail *models.GroupDetail, email string) bool {
	m := detail.Member(email)
	return m != nil && m.Admin
}

// guardError maps guard and storage failures onto the RPC error taxonomy.
func guardError(err error) *connect.Error {
	switch {
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotAdmin):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

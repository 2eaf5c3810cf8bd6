package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/internal/storage"
	"github.com/scorrilo/budbudbud/pkg/api"
)

// UserService implements the UserService RPC interface.
type UserService struct {
	guard
}

var _ api.UserServiceHandler = (*UserService)(nil)

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store) *UserService {
	return &UserService{guard{store: store}}
}

// Me returns the current identity.
func (s *UserService) Me(ctx context.Context, req *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}
	return connect.NewResponse(&api.MeResponse{User: toAPIUser(me)}), nil
}

// FirstLogin stamps the first-login timestamp. Calling it again is a no-op;
// the original stamp is kept.
func (s *UserService) FirstLogin(ctx context.Context, req *connect.Request[api.FirstLoginRequest]) (*connect.Response[api.FirstLoginResponse], error) {
	me, err := s.currentUser(ctx)
	if err != nil {
		return nil, guardError(err)
	}

	if me.FirstLogin == nil {
		now := time.Now()
		if err := s.store.SetFirstLogin(ctx, me.ID, now); err != nil {
			slog.Error("FirstLogin failed", "user_id", me.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		stamp := now.Unix()
		me.FirstLogin = &stamp
		slog.Info("First login recorded", "user_id", me.ID)
	}

	return connect.NewResponse(&api.FirstLoginResponse{User: toAPIUser(me)}), nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/internal/auth"
	"github.com/scorrilo/budbudbud/internal/storage"
	"github.com/scorrilo/budbudbud/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	authSecret    string
	logger        *slog.Logger
}

var _ api.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service. authSecret salts
// invite token hashes and must match the secret used when tokens were issued.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, authSecret string, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		authSecret:    authSecret,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	// Validate input
	if _, err := mail.ParseAddress(req.Msg.Email); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("malformed email"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name required"))
	}

	// Register user
	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.Name, req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		if errors.Is(err, auth.ErrEmailExists) {
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		}
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	// Generate session token
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.RegisterResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	// Validate input
	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	// Authenticate user
	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	// Generate session token
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.LoginResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}

// VerifyEmail redeems an invite token: the token is consumed (single use),
// the user's email is marked verified, and a session token is issued. This is
// the sign-in path for invited users, who have no password.
func (s *AuthService) VerifyEmail(ctx context.Context, req *connect.Request[api.VerifyEmailRequest]) (*connect.Response[api.VerifyEmailResponse], error) {
	s.logger.Info("VerifyEmail request", "email", req.Msg.Email)

	if req.Msg.Email == "" || req.Msg.Token == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("email and token required"))
	}

	hash := auth.HashToken(req.Msg.Token, s.authSecret)
	if _, err := s.store.ConsumeVerificationToken(ctx, hash, req.Msg.Email, time.Now()); err != nil {
		s.logger.Warn("Token redemption failed", "email", req.Msg.Email, "error", err)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	user, err := s.store.GetUserByEmail(ctx, req.Msg.Email)
	if err != nil {
		s.logger.Error("Token redeemed for unknown user", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	now := time.Now()
	if err := s.store.MarkEmailVerified(ctx, user.ID, now); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	verified := now.Unix()
	user.EmailVerified = &verified

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Email verified", "user_id", user.ID, "email", user.Email)
	return connect.NewResponse(&api.VerifyEmailResponse{
		User:  toAPIUser(user),
		Token: token,
	}), nil
}

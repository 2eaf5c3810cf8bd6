package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/internal/auth"
	"github.com/scorrilo/budbudbud/internal/mail"
	"github.com/scorrilo/budbudbud/internal/middleware"
	"github.com/scorrilo/budbudbud/internal/storage"
	"github.com/scorrilo/budbudbud/internal/storage/sqlite"
	"github.com/scorrilo/budbudbud/pkg/api"
)

const (
	testSecret  = "test-secret"
	testBaseURL = "http://localhost:3000"
)

// fakeMailer captures outbound invites instead of sending them.
type fakeMailer struct {
	mu      sync.Mutex
	invites []mail.Invite
}

func (m *fakeMailer) SendInvite(_ context.Context, inv mail.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, inv)
	return nil
}

func (m *fakeMailer) sent() []mail.Invite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Invite(nil), m.invites...)
}

// testEnv runs the full RPC surface against a temp database.
type testEnv struct {
	server *httptest.Server
	store  storage.Store
	mailer *fakeMailer
	auth   *api.AuthServiceClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	mailer := &fakeMailer{}

	sessionOpts := []connect.HandlerOption{
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	}

	mux := http.NewServeMux()
	path, handler := api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, testSecret, logger))
	mux.Handle(path, handler)
	path, handler = api.NewUserServiceHandler(NewUserService(store), sessionOpts...)
	mux.Handle(path, handler)
	path, handler = api.NewGroupServiceHandler(NewGroupService(store, mailer, testSecret, testBaseURL), sessionOpts...)
	mux.Handle(path, handler)
	path, handler = api.NewMeetServiceHandler(NewMeetService(store), sessionOpts...)
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testEnv{
		server: server,
		store:  store,
		mailer: mailer,
		auth:   api.NewAuthServiceClient(server.Client(), server.URL),
	}
}

// bearerInterceptor attaches the session token to every outgoing call.
func bearerInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// session bundles one signed-in user's typed clients.
type session struct {
	user   *api.User
	users  *api.UserServiceClient
	groups *api.GroupServiceClient
	meets  *api.MeetServiceClient
}

func (e *testEnv) sessionFor(user *api.User, token string) *session {
	opt := connect.WithInterceptors(bearerInterceptor(token))
	return &session{
		user:   user,
		users:  api.NewUserServiceClient(e.server.Client(), e.server.URL, opt),
		groups: api.NewGroupServiceClient(e.server.Client(), e.server.URL, opt),
		meets:  api.NewMeetServiceClient(e.server.Client(), e.server.URL, opt),
	}
}

// register creates an account through the RPC surface and returns its session.
func (e *testEnv) register(t *testing.T, email, name string) *session {
	t.Helper()
	res, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: "correct horse battery",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return e.sessionFor(res.Msg.User, res.Msg.Token)
}

// createGroup creates a group as s and returns its id.
func (s *session) createGroup(t *testing.T, name string, members ...api.NewGroupMember) string {
	t.Helper()
	res, err := s.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return res.Msg.GroupId
}

// getGroup fetches a group as s.
func (s *session) getGroup(t *testing.T, groupID string) *api.Group {
	t.Helper()
	res, err := s.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("GetGroup(%s) failed: %v", groupID, err)
	}
	return res.Msg.Group
}

// assertCode fails the test unless err is a connect error with the given code.
func assertCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected code %v, got %v (%v)", code, got, err)
	}
}

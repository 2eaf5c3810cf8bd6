package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/pkg/api"
)

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")

	res, err := alice.users.Me(context.Background(), connect.NewRequest(&api.MeRequest{}))
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if res.Msg.User.Id != alice.user.Id || res.Msg.User.Email != "alice@example.com" {
		t.Errorf("unexpected identity: %+v", res.Msg.User)
	}
}

func TestMe_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	anon := api.NewUserServiceClient(env.server.Client(), env.server.URL)
	_, err := anon.Me(context.Background(), connect.NewRequest(&api.MeRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestFirstLogin_StampsOnce(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")

	first, err := alice.users.FirstLogin(context.Background(), connect.NewRequest(&api.FirstLoginRequest{}))
	if err != nil {
		t.Fatalf("FirstLogin failed: %v", err)
	}
	if first.Msg.User.FirstLogin == nil {
		t.Fatal("expected first_login to be stamped")
	}

	again, err := alice.users.FirstLogin(context.Background(), connect.NewRequest(&api.FirstLoginRequest{}))
	if err != nil {
		t.Fatalf("second FirstLogin failed: %v", err)
	}
	if again.Msg.User.FirstLogin == nil || *again.Msg.User.FirstLogin != *first.Msg.User.FirstLogin {
		t.Errorf("first_login must keep its original stamp: %v vs %v",
			again.Msg.User.FirstLogin, first.Msg.User.FirstLogin)
	}
}

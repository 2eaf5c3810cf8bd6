package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/scorrilo/budbudbud/pkg/api"
)

func TestCreateGroup_CreatorIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")

	groupID := alice.createGroup(t, "Acme")

	group := alice.getGroup(t, groupID)
	if group.Name != "Acme" {
		t.Errorf("name: expected Acme, got %q", group.Name)
	}
	if len(group.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(group.Members))
	}
	m := group.Members[0]
	if m.UserId != alice.user.Id || !m.Admin {
		t.Errorf("expected creator as admin, got %+v", m)
	}
	if m.Name != "Alice" {
		t.Errorf("member name: expected Alice, got %q", m.Name)
	}
}

func TestCreateGroup_DedupesCoMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")

	// The creator listed again and a duplicate co-member entry collapse
	// into single memberships.
	groupID := alice.createGroup(t, "Acme",
		api.NewGroupMember{UserId: bob.user.Id, Name: "Bobby"},
		api.NewGroupMember{UserId: bob.user.Id, Name: "Bobby again"},
		api.NewGroupMember{UserId: alice.user.Id, Name: "Alice twice"},
	)

	group := alice.getGroup(t, groupID)
	if len(group.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(group.Members))
	}
	for _, m := range group.Members {
		switch m.UserId {
		case alice.user.Id:
			if !m.Admin {
				t.Error("creator should be admin")
			}
		case bob.user.Id:
			if m.Admin {
				t.Error("co-member should not be admin")
			}
			if m.Name != "Bobby" {
				t.Errorf("co-member name: expected Bobby, got %q", m.Name)
			}
		default:
			t.Errorf("unexpected member %+v", m)
		}
	}
}

func TestGetGroup_NonMemberDenied(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	mallory := env.register(t, "mallory@example.com", "Mallory")

	groupID := alice.createGroup(t, "Acme")

	_, err := mallory.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestGetGroup_Unknown(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")

	_, err := alice.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: "nope"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestUpdateGroupName_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := alice.createGroup(t, "Acme", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})

	_, err := bob.groups.UpdateGroupName(context.Background(), connect.NewRequest(&api.UpdateGroupNameRequest{
		GroupId: groupID, Name: "Bob's Acme",
	}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = alice.groups.UpdateGroupName(context.Background(), connect.NewRequest(&api.UpdateGroupNameRequest{
		GroupId: groupID, Name: "Acme v2",
	}))
	if err != nil {
		t.Fatalf("UpdateGroupName failed: %v", err)
	}
	if got := alice.getGroup(t, groupID).Name; got != "Acme v2" {
		t.Errorf("name after rename: expected 'Acme v2', got %q", got)
	}
}

func TestRemoveUser_RevokesAccess(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := alice.createGroup(t, "Acme", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})

	// A plain member may not remove others.
	_, err := bob.groups.RemoveUser(context.Background(), connect.NewRequest(&api.RemoveUserRequest{
		GroupId: groupID, UserId: alice.user.Id,
	}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = alice.groups.RemoveUser(context.Background(), connect.NewRequest(&api.RemoveUserRequest{
		GroupId: groupID, UserId: bob.user.Id,
	}))
	if err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}

	_, err = bob.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupId: groupID}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestNewMessage_OrderedBoard(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	mallory := env.register(t, "mallory@example.com", "Mallory")
	groupID := alice.createGroup(t, "Acme", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})

	for _, post := range []struct {
		who  *session
		text string
	}{
		{alice, "lunch friday?"},
		{bob, "works for me"},
	} {
		_, err := post.who.groups.NewMessage(context.Background(), connect.NewRequest(&api.NewMessageRequest{
			GroupId: groupID, Text: post.text,
		}))
		if err != nil {
			t.Fatalf("NewMessage(%q) failed: %v", post.text, err)
		}
	}

	_, err := mallory.groups.NewMessage(context.Background(), connect.NewRequest(&api.NewMessageRequest{
		GroupId: groupID, Text: "hi",
	}))
	assertCode(t, err, connect.CodePermissionDenied)

	group := alice.getGroup(t, groupID)
	if len(group.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(group.Messages))
	}
	if group.Messages[0].Text != "lunch friday?" || group.Messages[1].Text != "works for me" {
		t.Errorf("messages out of order: %+v", group.Messages)
	}
	if group.Messages[0].AuthorId != alice.user.Id {
		t.Errorf("first message author: expected alice, got %s", group.Messages[0].AuthorId)
	}
}

func TestListGroups_OnlyMine(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")

	alice.createGroup(t, "Acme")
	alice.createGroup(t, "Book club", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})
	bob.createGroup(t, "Bob's own")

	res, err := bob.groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(res.Msg.Groups) != 2 {
		t.Fatalf("expected 2 groups for bob, got %d", len(res.Msg.Groups))
	}
	names := map[string]bool{}
	for _, g := range res.Msg.Groups {
		names[g.Name] = true
	}
	if !names["Book club"] || !names["Bob's own"] {
		t.Errorf("unexpected group set: %v", names)
	}
}

func TestAddUser_ExistingUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := alice.createGroup(t, "Acme")

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "bob@example.com", Name: "Bobby",
	}))
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	group := bob.getGroup(t, groupID)
	if len(group.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(group.Members))
	}
	// No invite email for an account that already exists.
	if n := len(env.mailer.sent()); n != 0 {
		t.Errorf("expected no invite email, got %d", n)
	}
}

func TestAddUser_AlreadyMemberIsNoop(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := alice.createGroup(t, "Acme", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "bob@example.com", Name: "Bob",
	}))
	if err != nil {
		t.Fatalf("AddUser for existing member failed: %v", err)
	}
	if got := len(alice.getGroup(t, groupID).Members); got != 2 {
		t.Errorf("expected 2 members, got %d", got)
	}
}

func TestAddUser_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := alice.createGroup(t, "Acme", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})

	_, err := bob.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "carol@example.com", Name: "Carol",
	}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestAddUser_MalformedEmail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	groupID := alice.createGroup(t, "Acme")

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "not-an-email", Name: "X",
	}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestAddUser_InvitesUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	groupID := alice.createGroup(t, "Acme", api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"})

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "dana@example.com", Name: "Dana",
	}))
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	invites := env.mailer.sent()
	if len(invites) != 1 {
		t.Fatalf("expected exactly 1 invite email, got %d", len(invites))
	}
	inv := invites[0]
	if inv.To != "dana@example.com" || inv.Name != "Dana" {
		t.Errorf("invite addressing wrong: %+v", inv)
	}
	if inv.Inviter != "Alice" {
		t.Errorf("inviter: expected Alice, got %q", inv.Inviter)
	}
	if inv.GroupName != "Acme" {
		t.Errorf("group name: expected Acme, got %q", inv.GroupName)
	}
	if !strings.Contains(inv.MemberSummary, " and ") {
		t.Errorf("member summary should list members, got %q", inv.MemberSummary)
	}

	u, err := url.Parse(inv.URL)
	if err != nil {
		t.Fatalf("invite URL does not parse: %v", err)
	}
	if u.Path != "/api/auth/callback/email" {
		t.Errorf("invite path: got %q", u.Path)
	}
	q := u.Query()
	if q.Get("email") != "dana@example.com" {
		t.Errorf("invite email param: got %q", q.Get("email"))
	}
	if q.Get("token") == "" {
		t.Error("invite URL carries no token")
	}

	// Dana is already a (provisional) member.
	group := alice.getGroup(t, groupID)
	if len(group.Members) != 3 {
		t.Fatalf("expected 3 members after invite, got %d", len(group.Members))
	}

	// Retrying the call is a silent success and sends no second email.
	_, err = alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "dana@example.com", Name: "Dana",
	}))
	if err != nil {
		t.Fatalf("AddUser retry failed: %v", err)
	}
	if n := len(env.mailer.sent()); n != 1 {
		t.Errorf("expected 1 invite email after retry, got %d", n)
	}
}

func TestInviteRedemption(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	groupID := alice.createGroup(t, "Acme")

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "dana@example.com", Name: "Dana",
	}))
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	inv := env.mailer.sent()[0]
	u, err := url.Parse(inv.URL)
	if err != nil {
		t.Fatalf("invite URL does not parse: %v", err)
	}
	rawToken := u.Query().Get("token")

	// Invited accounts have no password, so the password path is closed.
	_, err = env.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email: "dana@example.com", Password: "anything at all",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)

	res, err := env.auth.VerifyEmail(context.Background(), connect.NewRequest(&api.VerifyEmailRequest{
		Email: "dana@example.com", Token: rawToken,
	}))
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if res.Msg.User.EmailVerified == nil {
		t.Error("expected email_verified to be set after redemption")
	}
	if res.Msg.Token == "" {
		t.Fatal("expected a session token")
	}

	// The session works and sees the group.
	dana := env.sessionFor(res.Msg.User, res.Msg.Token)
	groupsRes, err := dana.groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups as invited user failed: %v", err)
	}
	if len(groupsRes.Msg.Groups) != 1 || groupsRes.Msg.Groups[0].Id != groupID {
		t.Errorf("invited user should see the inviting group, got %+v", groupsRes.Msg.Groups)
	}

	// The token is single use.
	_, err = env.auth.VerifyEmail(context.Background(), connect.NewRequest(&api.VerifyEmailRequest{
		Email: "dana@example.com", Token: rawToken,
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestVerifyEmail_BadToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	groupID := alice.createGroup(t, "Acme")

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "dana@example.com", Name: "Dana",
	}))
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	_, err = env.auth.VerifyEmail(context.Background(), connect.NewRequest(&api.VerifyEmailRequest{
		Email: "dana@example.com", Token: "guessed-token",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestGroupEndpoints_RequireSession(t *testing.T) {
	env := newTestEnv(t)

	anon := api.NewGroupServiceClient(env.server.Client(), env.server.URL)
	_, err := anon.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestMemberSummary(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	groupID := alice.createGroup(t, "Acme",
		api.NewGroupMember{UserId: bob.user.Id, Name: "Bob"},
		api.NewGroupMember{UserId: carol.user.Id, Name: "Carol"},
	)

	_, err := alice.groups.AddUser(context.Background(), connect.NewRequest(&api.AddUserRequest{
		GroupId: groupID, Email: "dana@example.com", Name: "Dana",
	}))
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}

	got := env.mailer.sent()[0].MemberSummary
	if got != "Alice, Bob and Carol" {
		t.Errorf("member summary: expected 'Alice, Bob and Carol', got %q", got)
	}
}

// Invite tokens expire; a redeemable window of about a day keeps stale links
// from working.
func TestInviteTokenTTL(t *testing.T) {
	if inviteTokenTTL != 24*time.Hour {
		t.Errorf("invite TTL: expected 24h, got %v", inviteTokenTTL)
	}
}

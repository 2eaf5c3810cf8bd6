package sqlite

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/scorrilo/budbudbud/internal/models"
	"github.com/scorrilo/budbudbud/internal/storage"
)

// newTestStore creates a store backed by a temp database file.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: name}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func mustCreateGroup(t *testing.T, store *SQLiteStore, name string, admins ...*models.User) *models.Group {
	t.Helper()
	group := &models.Group{Name: name}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	for _, u := range admins {
		err := store.AddMember(context.Background(), &models.Membership{
			GroupID: group.ID, UserID: u.ID, Name: u.Name, Admin: true,
		})
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	return group
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	mustCreateUser(t, store, "alice@example.com", "Alice")

	err := store.CreateUser(context.Background(), &models.User{Email: "alice@example.com"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUserByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddMember_Duplicate(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)

	err := store.AddMember(context.Background(), &models.Membership{
		GroupID: group.ID, UserID: alice.ID, Name: "Alice again",
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	detail, err := store.GetGroupDetail(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("GetGroupDetail failed: %v", err)
	}
	if len(detail.Members) != 1 {
		t.Errorf("expected 1 membership row, got %d", len(detail.Members))
	}
}

func TestGetGroupDetail_JoinsIdentity(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)

	detail, err := store.GetGroupDetail(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("GetGroupDetail failed: %v", err)
	}
	m := detail.Member("alice@example.com")
	if m == nil {
		t.Fatal("expected membership row for alice")
	}
	if !m.Admin {
		t.Error("expected alice to be admin")
	}
	if m.UserName != "Alice" {
		t.Errorf("user name: expected 'Alice', got %q", m.UserName)
	}
}

func TestGetGroupDetail_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetGroupDetail(context.Background(), "nonexistent-id")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateVote_DayVoteUnique(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)
	meet := &models.Meet{GroupID: group.ID, Day: time.Now().Unix()}
	if err := store.CreateMeet(context.Background(), meet); err != nil {
		t.Fatalf("CreateMeet failed: %v", err)
	}

	if err := store.CreateVote(context.Background(), &models.MeetVote{MeetID: meet.ID, UserID: alice.ID}); err != nil {
		t.Fatalf("first day vote failed: %v", err)
	}

	// The unique index must catch the NULL place id too.
	err := store.CreateVote(context.Background(), &models.MeetVote{MeetID: meet.ID, UserID: alice.ID})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate day vote, got %v", err)
	}

	meets, err := store.ListMeetsForGroup(context.Background(), group.ID, 5)
	if err != nil {
		t.Fatalf("ListMeetsForGroup failed: %v", err)
	}
	if len(meets) != 1 || len(meets[0].Votes) != 1 {
		t.Errorf("expected 1 meet with 1 vote, got %+v", meets)
	}
}

func TestCreateVote_PlaceVoteUnique(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)
	meet := &models.Meet{GroupID: group.ID, Day: time.Now().Unix()}
	if err := store.CreateMeet(context.Background(), meet); err != nil {
		t.Fatalf("CreateMeet failed: %v", err)
	}
	place := &models.Place{Address: "123 Main St"}
	if err := store.CreatePlace(context.Background(), place); err != nil {
		t.Fatalf("CreatePlace failed: %v", err)
	}

	vote := &models.MeetVote{MeetID: meet.ID, UserID: alice.ID, PlaceID: &place.ID}
	if err := store.CreateVote(context.Background(), vote); err != nil {
		t.Fatalf("place vote failed: %v", err)
	}
	err := store.CreateVote(context.Background(), &models.MeetVote{MeetID: meet.ID, UserID: alice.ID, PlaceID: &place.ID})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate place vote, got %v", err)
	}

	// A day-only vote is a distinct row from the place vote.
	if err := store.CreateVote(context.Background(), &models.MeetVote{MeetID: meet.ID, UserID: alice.ID}); err != nil {
		t.Errorf("day vote next to place vote failed: %v", err)
	}
}

func TestDeleteVote_AbsentIsNoop(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)
	meet := &models.Meet{GroupID: group.ID, Day: time.Now().Unix()}
	if err := store.CreateMeet(context.Background(), meet); err != nil {
		t.Fatalf("CreateMeet failed: %v", err)
	}

	if err := store.DeleteVote(context.Background(), meet.ID, alice.ID, nil); err != nil {
		t.Errorf("deleting absent vote should be a no-op, got %v", err)
	}
}

func TestDeleteVote_DayAndPlaceIndependent(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)
	meet := &models.Meet{GroupID: group.ID, Day: time.Now().Unix()}
	if err := store.CreateMeet(context.Background(), meet); err != nil {
		t.Fatalf("CreateMeet failed: %v", err)
	}
	place := &models.Place{Address: "123 Main St"}
	if err := store.CreatePlace(context.Background(), place); err != nil {
		t.Fatalf("CreatePlace failed: %v", err)
	}
	for _, v := range []*models.MeetVote{
		{MeetID: meet.ID, UserID: alice.ID},
		{MeetID: meet.ID, UserID: alice.ID, PlaceID: &place.ID},
	} {
		if err := store.CreateVote(context.Background(), v); err != nil {
			t.Fatalf("CreateVote failed: %v", err)
		}
	}

	// Deleting the day vote must not touch the place vote.
	if err := store.DeleteVote(context.Background(), meet.ID, alice.ID, nil); err != nil {
		t.Fatalf("DeleteVote failed: %v", err)
	}
	meets, err := store.ListMeetsForGroup(context.Background(), group.ID, 5)
	if err != nil {
		t.Fatalf("ListMeetsForGroup failed: %v", err)
	}
	if len(meets[0].Votes) != 1 {
		t.Fatalf("expected 1 remaining vote, got %d", len(meets[0].Votes))
	}
	if meets[0].Votes[0].PlaceID == nil {
		t.Error("remaining vote should be the place vote")
	}
}

func TestValidateMeet_Monotonic(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)
	meet := &models.Meet{GroupID: group.ID, Day: time.Now().Unix()}
	if err := store.CreateMeet(context.Background(), meet); err != nil {
		t.Fatalf("CreateMeet failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.ValidateMeet(context.Background(), meet.ID, nil); err != nil {
			t.Fatalf("ValidateMeet (call %d) failed: %v", i+1, err)
		}
		got, err := store.GetMeet(context.Background(), meet.ID)
		if err != nil {
			t.Fatalf("GetMeet failed: %v", err)
		}
		if !got.Validated {
			t.Fatalf("meet not validated after call %d", i+1)
		}
	}
}

func TestListMeetsForGroup_WindowAndOrder(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")
	group := mustCreateGroup(t, store, "Acme", alice)

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		meet := &models.Meet{GroupID: group.ID, Day: base.AddDate(0, 0, i).Unix()}
		if err := store.CreateMeet(context.Background(), meet); err != nil {
			t.Fatalf("CreateMeet failed: %v", err)
		}
	}

	meets, err := store.ListMeetsForGroup(context.Background(), group.ID, 5)
	if err != nil {
		t.Fatalf("ListMeetsForGroup failed: %v", err)
	}
	if len(meets) != 5 {
		t.Fatalf("expected 5 meets, got %d", len(meets))
	}
	for i := 1; i < len(meets); i++ {
		if meets[i-1].Day < meets[i].Day {
			t.Errorf("meets not ordered by day descending: %d before %d", meets[i-1].Day, meets[i].Day)
		}
	}
	if meets[0].Day != base.AddDate(0, 0, 6).Unix() {
		t.Errorf("expected most recent day first")
	}
}

func TestConsumeVerificationToken_SingleUse(t *testing.T) {
	store := newTestStore(t)

	token := &models.VerificationToken{
		TokenHash:  "abc123",
		Identifier: "dana@example.com",
		Expires:    time.Now().Add(24 * time.Hour).Unix(),
	}
	if err := store.CreateVerificationToken(context.Background(), token); err != nil {
		t.Fatalf("CreateVerificationToken failed: %v", err)
	}

	got, err := store.ConsumeVerificationToken(context.Background(), "abc123", "dana@example.com", time.Now())
	if err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if got.Identifier != "dana@example.com" {
		t.Errorf("identifier: expected dana@example.com, got %s", got.Identifier)
	}

	_, err = store.ConsumeVerificationToken(context.Background(), "abc123", "dana@example.com", time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second consume, got %v", err)
	}
}

func TestConsumeVerificationToken_Expired(t *testing.T) {
	store := newTestStore(t)

	token := &models.VerificationToken{
		TokenHash:  "expired",
		Identifier: "dana@example.com",
		Expires:    time.Now().Add(-time.Hour).Unix(),
	}
	if err := store.CreateVerificationToken(context.Background(), token); err != nil {
		t.Fatalf("CreateVerificationToken failed: %v", err)
	}

	_, err := store.ConsumeVerificationToken(context.Background(), "expired", "dana@example.com", time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for expired token, got %v", err)
	}
}

func TestSetFirstLogin_KeepsEarliest(t *testing.T) {
	store := newTestStore(t)

	alice := mustCreateUser(t, store, "alice@example.com", "Alice")

	first := time.Unix(1000, 0)
	if err := store.SetFirstLogin(context.Background(), alice.ID, first); err != nil {
		t.Fatalf("SetFirstLogin failed: %v", err)
	}
	if err := store.SetFirstLogin(context.Background(), alice.ID, time.Unix(2000, 0)); err != nil {
		t.Fatalf("second SetFirstLogin failed: %v", err)
	}

	got, err := store.GetUserByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.FirstLogin == nil || *got.FirstLogin != 1000 {
		t.Errorf("first login: expected 1000, got %v", got.FirstLogin)
	}
}

package models

// Group is a set of users coordinating shared meeting days.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership is the join row between a user and a group. Exactly one row per
// (GroupID, UserID) pair.
type Membership struct {
	GroupID string
	UserID  string

	// Name is the group-scoped display name chosen when the user was added.
	Name string

	// Admin grants rename, member add/remove and meet validation.
	Admin bool

	CreatedAt int64

	// Identity of the member, joined in when the group is loaded.
	UserEmail string
	UserName  string
}

// GroupMessage is one entry on a group's board. Append-only.
type GroupMessage struct {
	ID        string
	GroupID   string
	AuthorID  string
	Text      string
	CreatedAt int64
}

// GroupDetail is a group with its membership and message board, the unit the
// permission guard resolves for every group-scoped operation.
type GroupDetail struct {
	Group
	Members  []Membership
	Messages []GroupMessage
}

// Member returns the membership row for the given email, or nil.
func (g *GroupDetail) Member(email string) *Membership {
	for i := range g.Members {
		if g.Members[i].UserEmail == email {
			return &g.Members[i]
		}
	}
	return nil
}

// MemberByID returns the membership row for the given user id, or nil.
func (g *GroupDetail) MemberByID(userID string) *Membership {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

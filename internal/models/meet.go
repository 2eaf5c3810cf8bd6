package models

// Meet is a calendar day proposed for an in-person gathering.
//
// Day is normalized to midnight UTC. Validated is monotonic: once an admin
// validates a meet it never reverts.
type Meet struct {
	ID      string
	GroupID string

	// Day is the Unix timestamp of the proposed day at midnight UTC.
	Day int64

	Validated bool

	// PlaceID is the chosen place, set at validation time. Nil while the
	// meet is still being voted on.
	PlaceID *string

	CreatedAt int64

	// Votes nested under the meet, populated on list queries.
	Votes []MeetVote
}

// Place is a candidate physical address for a meet.
type Place struct {
	ID        string
	Address   string
	CreatedAt int64
}

// MeetVote is a single user's support for a meet. PlaceID nil means a
// day-only vote ("I'm available this day"); otherwise it backs a specific
// place. At most one row per (MeetID, UserID, PlaceID).
type MeetVote struct {
	MeetID  string
	UserID  string
	PlaceID *string

	CreatedAt int64

	// Joined in on list queries.
	Place    *Place
	UserName string
}

// VotesByAddress groups the meet's place votes by address for display,
// preserving first-seen address order. Day-only votes are excluded.
func (m *Meet) VotesByAddress() (addresses []string, votes map[string][]MeetVote) {
	votes = make(map[string][]MeetVote)
	for _, v := range m.Votes {
		if v.Place == nil {
			continue
		}
		addr := v.Place.Address
		if _, seen := votes[addr]; !seen {
			addresses = append(addresses, addr)
		}
		votes[addr] = append(votes[addr], v)
	}
	return addresses, votes
}

// Voters returns the distinct user ids supporting this meet, regardless of
// how many places each voted for.
func (m *Meet) Voters() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, v := range m.Votes {
		if _, ok := seen[v.UserID]; ok {
			continue
		}
		seen[v.UserID] = struct{}{}
		ids = append(ids, v.UserID)
	}
	return ids
}

package api

import "time"

// User is the wire form of an account.
type User struct {
	Id            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	EmailVerified *int64 `json:"email_verified,omitempty"`
	FirstLogin    *int64 `json:"first_login,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

// Member is one membership row of a group, joined to the user's identity.
type Member struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
	// Name is the group-scoped display name.
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// Message is one entry on a group's board.
type Message struct {
	Id        string `json:"id"`
	AuthorId  string `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
}

// Group is the wire form of a group with its members and board.
type Group struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt int64     `json:"created_at"`
	Members   []Member  `json:"members"`
	Messages  []Message `json:"messages,omitempty"`
}

// Place is a candidate address for a meet.
type Place struct {
	Id      string `json:"id"`
	Address string `json:"address"`
}

// Vote is one user's support for a meet. A nil Place means a day-only vote.
type Vote struct {
	UserId   string `json:"user_id"`
	UserName string `json:"user_name"`
	Place    *Place `json:"place,omitempty"`
}

// Meet is the wire form of a proposed meeting day.
type Meet struct {
	Id        string    `json:"id"`
	GroupId   string    `json:"group_id"`
	Day       time.Time `json:"day"`
	Validated bool      `json:"validated"`
	PlaceId   string    `json:"place_id,omitempty"`
	Votes     []Vote    `json:"votes"`
}

// PlaceInput selects a place when voting: exactly one of the two variants.
type PlaceInput struct {
	// Type is PlaceInputNew or PlaceInputExisting.
	Type string `json:"type"`
	// Address is set for the "new" variant.
	Address string `json:"address,omitempty"`
	// Id is set for the "existing" variant.
	Id string `json:"id,omitempty"`
}

// PlaceInput variants.
const (
	PlaceInputNew      = "new"
	PlaceInputExisting = "existing"
)

// AuthService messages.

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type VerifyEmailResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UserService messages.

type MeRequest struct{}

type MeResponse struct {
	User *User `json:"user"`
}

type FirstLoginRequest struct{}

type FirstLoginResponse struct {
	User *User `json:"user"`
}

// GroupService messages.

type GetGroupRequest struct {
	GroupId string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// NewGroupMember names a co-member to add at group creation time.
type NewGroupMember struct {
	UserId string `json:"user_id"`
	Name   string `json:"name"`
}

type CreateGroupRequest struct {
	Name    string           `json:"name"`
	Members []NewGroupMember `json:"members,omitempty"`
}

type CreateGroupResponse struct {
	GroupId string `json:"group_id"`
}

type UpdateGroupNameRequest struct {
	GroupId string `json:"group_id"`
	Name    string `json:"name"`
}

type UpdateGroupNameResponse struct{}

type AddUserRequest struct {
	GroupId string `json:"group_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type AddUserResponse struct{}

type RemoveUserRequest struct {
	GroupId string `json:"group_id"`
	UserId  string `json:"user_id"`
}

type RemoveUserResponse struct{}

type NewMessageRequest struct {
	GroupId string `json:"group_id"`
	Text    string `json:"text"`
}

type NewMessageResponse struct {
	Message *Message `json:"message"`
}

// MeetService messages.

type UpcomingForGroupRequest struct {
	GroupId string `json:"group_id"`
}

type UpcomingForGroupResponse struct {
	Meets []*Meet `json:"meets"`
}

type CreateMeetRequest struct {
	GroupId string    `json:"group_id"`
	Day     time.Time `json:"day"`
}

type CreateMeetResponse struct {
	Meet *Meet `json:"meet"`
}

type VoteRequest struct {
	MeetId string      `json:"meet_id"`
	Place  *PlaceInput `json:"place,omitempty"`
}

type VoteResponse struct{}

type RemoveVoteRequest struct {
	MeetId  string `json:"meet_id"`
	PlaceId string `json:"place_id,omitempty"`
}

type RemoveVoteResponse struct{}

type ValidateMeetRequest struct {
	MeetId  string `json:"meet_id"`
	PlaceId string `json:"place_id,omitempty"`
}

type ValidateMeetResponse struct {
	Meet *Meet `json:"meet"`
}

// Package api defines budbudbud's RPC surface: the wire messages, the
// procedure names, and Connect handler/client constructors for each service.
//
// The protocol is Connect unary RPC with a plain JSON codec; there is no
// protobuf schema. This package plays the role a generated package would,
// hand-written because the message schema is JSON-typed.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
)

// Procedure names, Connect-style: /<package>.<Service>/<Method>.
const (
	AuthServiceRegisterProcedure    = "/budbudbud.v1.AuthService/Register"
	AuthServiceLoginProcedure       = "/budbudbud.v1.AuthService/Login"
	AuthServiceVerifyEmailProcedure = "/budbudbud.v1.AuthService/VerifyEmail"

	UserServiceMeProcedure         = "/budbudbud.v1.UserService/Me"
	UserServiceFirstLoginProcedure = "/budbudbud.v1.UserService/FirstLogin"

	GroupServiceGetGroupProcedure        = "/budbudbud.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure      = "/budbudbud.v1.GroupService/ListGroups"
	GroupServiceCreateGroupProcedure     = "/budbudbud.v1.GroupService/CreateGroup"
	GroupServiceUpdateGroupNameProcedure = "/budbudbud.v1.GroupService/UpdateGroupName"
	GroupServiceAddUserProcedure         = "/budbudbud.v1.GroupService/AddUser"
	GroupServiceRemoveUserProcedure      = "/budbudbud.v1.GroupService/RemoveUser"
	GroupServiceNewMessageProcedure      = "/budbudbud.v1.GroupService/NewMessage"

	MeetServiceUpcomingForGroupProcedure = "/budbudbud.v1.MeetService/UpcomingForGroup"
	MeetServiceCreateMeetProcedure       = "/budbudbud.v1.MeetService/CreateMeet"
	MeetServiceVoteProcedure             = "/budbudbud.v1.MeetService/Vote"
	MeetServiceRemoveVoteProcedure       = "/budbudbud.v1.MeetService/RemoveVote"
	MeetServiceValidateMeetProcedure     = "/budbudbud.v1.MeetService/ValidateMeet"
)

// jsonCodec marshals messages with encoding/json. Registered under the name
// "json" it replaces Connect's protoJSON codec, so plain structs work as
// messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}

// AuthServiceHandler is the server API for the authentication service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	VerifyEmail(context.Context, *connect.Request[VerifyEmailRequest]) (*connect.Response[VerifyEmailResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc. It returns the path
// prefix to mount the handler on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceVerifyEmailProcedure, connect.NewUnaryHandler(AuthServiceVerifyEmailProcedure, svc.VerifyEmail, opts...))
	return "/budbudbud.v1.AuthService/", mux
}

// UserServiceHandler is the server API for the current-user service.
type UserServiceHandler interface {
	Me(context.Context, *connect.Request[MeRequest]) (*connect.Response[MeResponse], error)
	FirstLogin(context.Context, *connect.Request[FirstLoginRequest]) (*connect.Response[FirstLoginResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for svc.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(UserServiceMeProcedure, connect.NewUnaryHandler(UserServiceMeProcedure, svc.Me, opts...))
	mux.Handle(UserServiceFirstLoginProcedure, connect.NewUnaryHandler(UserServiceFirstLoginProcedure, svc.FirstLogin, opts...))
	return "/budbudbud.v1.UserService/", mux
}

// GroupServiceHandler is the server API for group membership, invitations and
// the message board.
type GroupServiceHandler interface {
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	UpdateGroupName(context.Context, *connect.Request[UpdateGroupNameRequest]) (*connect.Response[UpdateGroupNameResponse], error)
	AddUser(context.Context, *connect.Request[AddUserRequest]) (*connect.Response[AddUserResponse], error)
	RemoveUser(context.Context, *connect.Request[RemoveUserRequest]) (*connect.Response[RemoveUserResponse], error)
	NewMessage(context.Context, *connect.Request[NewMessageRequest]) (*connect.Response[NewMessageResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceUpdateGroupNameProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupNameProcedure, svc.UpdateGroupName, opts...))
	mux.Handle(GroupServiceAddUserProcedure, connect.NewUnaryHandler(GroupServiceAddUserProcedure, svc.AddUser, opts...))
	mux.Handle(GroupServiceRemoveUserProcedure, connect.NewUnaryHandler(GroupServiceRemoveUserProcedure, svc.RemoveUser, opts...))
	mux.Handle(GroupServiceNewMessageProcedure, connect.NewUnaryHandler(GroupServiceNewMessageProcedure, svc.NewMessage, opts...))
	return "/budbudbud.v1.GroupService/", mux
}

// MeetServiceHandler is the server API for meeting days and votes.
type MeetServiceHandler interface {
	UpcomingForGroup(context.Context, *connect.Request[UpcomingForGroupRequest]) (*connect.Response[UpcomingForGroupResponse], error)
	CreateMeet(context.Context, *connect.Request[CreateMeetRequest]) (*connect.Response[CreateMeetResponse], error)
	Vote(context.Context, *connect.Request[VoteRequest]) (*connect.Response[VoteResponse], error)
	RemoveVote(context.Context, *connect.Request[RemoveVoteRequest]) (*connect.Response[RemoveVoteResponse], error)
	ValidateMeet(context.Context, *connect.Request[ValidateMeetRequest]) (*connect.Response[ValidateMeetResponse], error)
}

// NewMeetServiceHandler builds an HTTP handler for svc.
func NewMeetServiceHandler(svc MeetServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(MeetServiceUpcomingForGroupProcedure, connect.NewUnaryHandler(MeetServiceUpcomingForGroupProcedure, svc.UpcomingForGroup, opts...))
	mux.Handle(MeetServiceCreateMeetProcedure, connect.NewUnaryHandler(MeetServiceCreateMeetProcedure, svc.CreateMeet, opts...))
	mux.Handle(MeetServiceVoteProcedure, connect.NewUnaryHandler(MeetServiceVoteProcedure, svc.Vote, opts...))
	mux.Handle(MeetServiceRemoveVoteProcedure, connect.NewUnaryHandler(MeetServiceRemoveVoteProcedure, svc.RemoveVote, opts...))
	mux.Handle(MeetServiceValidateMeetProcedure, connect.NewUnaryHandler(MeetServiceValidateMeetProcedure, svc.ValidateMeet, opts...))
	return "/budbudbud.v1.MeetService/", mux
}

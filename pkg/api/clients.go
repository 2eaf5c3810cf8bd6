package api

import (
	"context"

	"connectrpc.com/connect"
)

// AuthServiceClient is a typed client for the authentication service.
type AuthServiceClient struct {
	register    *connect.Client[RegisterRequest, RegisterResponse]
	login       *connect.Client[LoginRequest, LoginResponse]
	verifyEmail *connect.Client[VerifyEmailRequest, VerifyEmailResponse]
}

// NewAuthServiceClient builds a client calling baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		register:    connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:       connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		verifyEmail: connect.NewClient[VerifyEmailRequest, VerifyEmailResponse](httpClient, baseURL+AuthServiceVerifyEmailProcedure, opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) VerifyEmail(ctx context.Context, req *connect.Request[VerifyEmailRequest]) (*connect.Response[VerifyEmailResponse], error) {
	return c.verifyEmail.CallUnary(ctx, req)
}

// UserServiceClient is a typed client for the current-user service.
type UserServiceClient struct {
	me         *connect.Client[MeRequest, MeResponse]
	firstLogin *connect.Client[FirstLoginRequest, FirstLoginResponse]
}

// NewUserServiceClient builds a client calling baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	opts = clientOptions(opts)
	return &UserServiceClient{
		me:         connect.NewClient[MeRequest, MeResponse](httpClient, baseURL+UserServiceMeProcedure, opts...),
		firstLogin: connect.NewClient[FirstLoginRequest, FirstLoginResponse](httpClient, baseURL+UserServiceFirstLoginProcedure, opts...),
	}
}

func (c *UserServiceClient) Me(ctx context.Context, req *connect.Request[MeRequest]) (*connect.Response[MeResponse], error) {
	return c.me.CallUnary(ctx, req)
}

func (c *UserServiceClient) FirstLogin(ctx context.Context, req *connect.Request[FirstLoginRequest]) (*connect.Response[FirstLoginResponse], error) {
	return c.firstLogin.CallUnary(ctx, req)
}

// GroupServiceClient is a typed client for the group service.
type GroupServiceClient struct {
	getGroup        *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups      *connect.Client[ListGroupsRequest, ListGroupsResponse]
	createGroup     *connect.Client[CreateGroupRequest, CreateGroupResponse]
	updateGroupName *connect.Client[UpdateGroupNameRequest, UpdateGroupNameResponse]
	addUser         *connect.Client[AddUserRequest, AddUserResponse]
	removeUser      *connect.Client[RemoveUserRequest, RemoveUserResponse]
	newMessage      *connect.Client[NewMessageRequest, NewMessageResponse]
}

// NewGroupServiceClient builds a client calling baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = clientOptions(opts)
	return &GroupServiceClient{
		getGroup:        connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:      connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		createGroup:     connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		updateGroupName: connect.NewClient[UpdateGroupNameRequest, UpdateGroupNameResponse](httpClient, baseURL+GroupServiceUpdateGroupNameProcedure, opts...),
		addUser:         connect.NewClient[AddUserRequest, AddUserResponse](httpClient, baseURL+GroupServiceAddUserProcedure, opts...),
		removeUser:      connect.NewClient[RemoveUserRequest, RemoveUserResponse](httpClient, baseURL+GroupServiceRemoveUserProcedure, opts...),
		newMessage:      connect.NewClient[NewMessageRequest, NewMessageResponse](httpClient, baseURL+GroupServiceNewMessageProcedure, opts...),
	}
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateGroupName(ctx context.Context, req *connect.Request[UpdateGroupNameRequest]) (*connect.Response[UpdateGroupNameResponse], error) {
	return c.updateGroupName.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddUser(ctx context.Context, req *connect.Request[AddUserRequest]) (*connect.Response[AddUserResponse], error) {
	return c.addUser.CallUnary(ctx, req)
}

func (c *GroupServiceClient) RemoveUser(ctx context.Context, req *connect.Request[RemoveUserRequest]) (*connect.Response[RemoveUserResponse], error) {
	return c.removeUser.CallUnary(ctx, req)
}

func (c *GroupServiceClient) NewMessage(ctx context.Context, req *connect.Request[NewMessageRequest]) (*connect.Response[NewMessageResponse], error) {
	return c.newMessage.CallUnary(ctx, req)
}

// MeetServiceClient is a typed client for the meet service.
type MeetServiceClient struct {
	upcomingForGroup *connect.Client[UpcomingForGroupRequest, UpcomingForGroupResponse]
	createMeet       *connect.Client[CreateMeetRequest, CreateMeetResponse]
	vote             *connect.Client[VoteRequest, VoteResponse]
	removeVote       *connect.Client[RemoveVoteRequest, RemoveVoteResponse]
	validateMeet     *connect.Client[ValidateMeetRequest, ValidateMeetResponse]
}

// NewMeetServiceClient builds a client calling baseURL.
func NewMeetServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MeetServiceClient {
	opts = clientOptions(opts)
	return &MeetServiceClient{
		upcomingForGroup: connect.NewClient[UpcomingForGroupRequest, UpcomingForGroupResponse](httpClient, baseURL+MeetServiceUpcomingForGroupProcedure, opts...),
		createMeet:       connect.NewClient[CreateMeetRequest, CreateMeetResponse](httpClient, baseURL+MeetServiceCreateMeetProcedure, opts...),
		vote:             connect.NewClient[VoteRequest, VoteResponse](httpClient, baseURL+MeetServiceVoteProcedure, opts...),
		removeVote:       connect.NewClient[RemoveVoteRequest, RemoveVoteResponse](httpClient, baseURL+MeetServiceRemoveVoteProcedure, opts...),
		validateMeet:     connect.NewClient[ValidateMeetRequest, ValidateMeetResponse](httpClient, baseURL+MeetServiceValidateMeetProcedure, opts...),
	}
}

func (c *MeetServiceClient) UpcomingForGroup(ctx context.Context, req *connect.Request[UpcomingForGroupRequest]) (*connect.Response[UpcomingForGroupResponse], error) {
	return c.upcomingForGroup.CallUnary(ctx, req)
}

func (c *MeetServiceClient) CreateMeet(ctx context.Context, req *connect.Request[CreateMeetRequest]) (*connect.Response[CreateMeetResponse], error) {
	return c.createMeet.CallUnary(ctx, req)
}

func (c *MeetServiceClient) Vote(ctx context.Context, req *connect.Request[VoteRequest]) (*connect.Response[VoteResponse], error) {
	return c.vote.CallUnary(ctx, req)
}

func (c *MeetServiceClient) RemoveVote(ctx context.Context, req *connect.Request[RemoveVoteRequest]) (*connect.Response[RemoveVoteResponse], error) {
	return c.removeVote.CallUnary(ctx, req)
}

func (c *MeetServiceClient) ValidateMeet(ctx context.Context, req *connect.Request[ValidateMeetRequest]) (*connect.Response[ValidateMeetResponse], error) {
	return c.validateMeet.CallUnary(ctx, req)
}

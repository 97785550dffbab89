package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/internal/auth"
	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/models"
	"github.com/mmynk/splitgroup/internal/storage"
	"github.com/mmynk/splitgroup/pkg/api"
	"github.com/mmynk/splitgroup/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store storage.Store
	cache cache.Cache
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, c cache.Cache) *GroupService {
	return &GroupService{store: store, cache: c}
}

// CreateGroup creates a new group with the caller as creator and first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connectError(invalidArgument("name required"))
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatorID:   userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	memberships, err := s.store.ListMemberships(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{
		Group: groupToAPI(group, memberships, nil),
	}), nil
}

// GetGroup retrieves a group with its memberships.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	if _, err := callerMembership(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	memberships, err := s.store.ListMemberships(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}

	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "members_count", len(memberships))
	return connect.NewResponse(&api.GetGroupResponse{
		Group: groupToAPI(group, memberships, users),
	}), nil
}

// ListGroups retrieves the groups the caller is an active member of.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g, nil, nil)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a registered user to the group. Only the creator may add members.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID, "email", req.Msg.Email)

	group, err := s.creatorOnly(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	user, err := s.lookupUser(ctx, req.Msg.UserID, req.Msg.Email)
	if err != nil {
		return nil, connectError(err)
	}

	existing, err := s.store.GetMembership(ctx, group.ID, user.ID)
	switch {
	case err == nil && existing.Active():
		return nil, connectError(ErrAlreadyMember)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return nil, connectError(err)
	}

	membership, err := s.store.AddMember(ctx, group.ID, user.ID)
	if err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, group.ID)

	slog.Info("Member added", "group_id", group.ID, "user_id", user.ID)
	return connect.NewResponse(&api.AddMemberResponse{Member: memberToAPI(membership, user)}), nil
}

// RemoveMember marks a membership inactive. The creator may remove anyone but
// themselves; other members may only remove themselves.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	caller, err := activeCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	if req.Msg.UserID == "" {
		return nil, connectError(invalidArgument("user_id required"))
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	if req.Msg.UserID == group.CreatorID {
		return nil, connectError(invalidArgument("the group creator cannot be removed"))
	}
	if caller.UserID != group.CreatorID && caller.UserID != req.Msg.UserID {
		return nil, connectError(ErrNotCreator)
	}

	if err := s.store.SetMembershipStatus(ctx, group.ID, req.Msg.UserID, models.MembershipInactive); err != nil {
		slog.Error("RemoveMember failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, group.ID)

	slog.Info("Member removed", "group_id", group.ID, "user_id", req.Msg.UserID)
	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}

// DeleteGroup removes a group and everything recorded in it. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.creatorOnly(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, group.ID)

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// creatorOnly loads the group if the caller is its creator.
func (s *GroupService) creatorOnly(ctx context.Context, groupID string) (*models.Group, error) {
	caller, err := callerMembership(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != caller.UserID {
		return nil, ErrNotCreator
	}
	return group, nil
}

func (s *GroupService) lookupUser(ctx context.Context, userID, email string) (*models.User, error) {
	switch {
	case userID != "":
		return s.store.GetUserByID(ctx, userID)
	case email != "":
		return s.store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
	default:
		return nil, invalidArgument("user_id or email required")
	}
}

package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService backed by l.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a new group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	const op = "CreateGroup"
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	members := make([]models.Member, len(req.Msg.Members))
	for i, m := range req.Msg.Members {
		members[i] = models.Member{ID: m.MemberID, DisplayName: m.DisplayName}
	}
	creator := models.Member{ID: actorID, DisplayName: middleware.GetDisplayName(ctx)}

	group, err := s.ledger.CreateGroup(ctx, creator, ledger.GroupDraft{
		Name:     req.Msg.Name,
		Category: models.GroupCategory(req.Msg.Category),
		Currency: req.Msg.Currency,
		Members:  members,
	})
	if err != nil {
		return nil, toConnectError(op, err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	const op = "GetGroup"
	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	group, err := s.ledger.Group(ctx, actorID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	const op = "ListGroups"
	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	groups, err := s.ledger.Groups(ctx, actorID)
	if err != nil {
		return nil, toConnectError(op, err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}

	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames or recategorises a group.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	const op = "UpdateGroup"
	slog.Info("UpdateGroup request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	group, err := s.ledger.UpdateGroup(ctx, actorID, req.Msg.GroupID, req.Msg.Name, models.GroupCategory(req.Msg.Category))
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup deletes a settled group and its entries.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	const op = "DeleteGroup"
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}
	if err := s.ledger.DeleteGroup(ctx, actorID, req.Msg.GroupID); err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a member to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	const op = "AddMember"
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	member := models.Member{ID: req.Msg.MemberID, DisplayName: req.Msg.DisplayName}
	group, err := s.ledger.AddMember(ctx, actorID, req.Msg.GroupID, member, models.Role(req.Msg.Role))
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

// RemoveMember removes a settled member from a group.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	const op = "RemoveMember"
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	actorID, err := actor(ctx)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(op, err)
	}

	group, err := s.ledger.RemoveMember(ctx, actorID, req.Msg.GroupID, req.Msg.MemberID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group)}), nil
}

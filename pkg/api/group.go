package api

type GroupMember struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	JoinedAt    int64  `json:"joined_at"`
}

type Group struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Currency  string        `json:"currency"`
	CreatedBy string        `json:"created_by"`
	Members   []GroupMember `json:"members"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}

// MemberInput names a member to add, with the label to show for them.
type MemberInput struct {
	MemberID    string `json:"member_id" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type CreateGroupRequest struct {
	Name     string        `json:"name" validate:"required,max=100"`
	Category string        `json:"category,omitempty" validate:"omitempty,oneof=trip home couple other"`
	Currency string        `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Members  []MemberInput `json:"members" validate:"max=50,dive"`
}

// GroupResponse carries a single group.
type GroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	Name     string `json:"name,omitempty" validate:"max=100"`
	Category string `json:"category,omitempty" validate:"omitempty,oneof=trip home couple other"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	MemberInput
	Role string `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

type RemoveMemberRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	MemberID string `json:"member_id" validate:"required"`
}

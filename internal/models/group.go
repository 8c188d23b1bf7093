package models

// GroupCategory tags what a group is for.
type GroupCategory string

const (
	CategoryTrip   GroupCategory = "trip"
	CategoryHome   GroupCategory = "home"
	CategoryCouple GroupCategory = "couple"
	CategoryOther  GroupCategory = "other"
)

// Valid reports whether c is one of the known categories.
func (c GroupCategory) Valid() bool {
	switch c {
	case CategoryTrip, CategoryHome, CategoryCouple, CategoryOther:
		return true
	}
	return false
}

// Role is a member's permission level inside a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// GroupMember is one membership row of a group.
type GroupMember struct {
	MemberID    string
	DisplayName string
	Role        Role
	JoinedAt    int64
}

// Group is a set of members who share ledger entries.
// All entries of a group use the group's currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Lisbon 2026", "Flat 4B").
	Name string

	Category GroupCategory

	// Currency is the ISO 4217 code every entry in this group is recorded in.
	Currency string

	// CreatedBy is the member who created the group; they start as admin.
	CreatedBy string

	Members []GroupMember

	CreatedAt int64
	UpdatedAt int64
}

// Member returns the membership row for memberID, if present.
func (g *Group) Member(memberID string) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.MemberID == memberID {
			return m, true
		}
	}
	return GroupMember{}, false
}

// HasMember reports whether memberID belongs to the group.
func (g *Group) HasMember(memberID string) bool {
	_, ok := g.Member(memberID)
	return ok
}

// IsAdmin reports whether memberID is an admin of the group.
func (g *Group) IsAdmin(memberID string) bool {
	m, ok := g.Member(memberID)
	return ok && m.Role == RoleAdmin
}

// MemberIDs returns the IDs of all members in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.MemberID
	}
	return ids
}

package models

// UnknownMemberLabel is shown for member IDs whose profile is not on record.
const UnknownMemberLabel = "Unknown member"

// MemberRef is a member ID resolved for display.
// It is either a Member (profile on record) or an UnknownMember.
type MemberRef interface {
	MemberID() string
	Label() string
}

// Member is a person who can belong to groups and appear on ledger entries.
// Identity lives in an external service; this is the locally cached profile.
type Member struct {
	// ID is the opaque identifier issued by the identity service.
	ID string

	// DisplayName is the label shown next to balances and shares.
	DisplayName string

	// CreatedAt is the Unix timestamp when the profile was first recorded.
	CreatedAt int64
}

func (m *Member) MemberID() string { return m.ID }

func (m *Member) Label() string {
	if m.DisplayName == "" {
		return m.ID
	}
	return m.DisplayName
}

// UnknownMember is a member ID referenced by the ledger without a profile.
type UnknownMember struct {
	ID string
}

func (u UnknownMember) MemberID() string { return u.ID }

func (u UnknownMember) Label() string { return UnknownMemberLabel }

// ResolveMember returns the profile for id from known, or an UnknownMember.
func ResolveMember(id string, known map[string]*Member) MemberRef {
	if m, ok := known[id]; ok && m != nil {
		return m
	}
	return UnknownMember{ID: id}
}

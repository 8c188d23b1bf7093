package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupDraft describes a group to create. The creator is added as admin
// and need not be listed in Members.
type GroupDraft struct {
	Name     string
	Category models.GroupCategory
	// Currency defaults to the ledger's default currency when empty.
	Currency string
	Members  []models.Member
}

// CreateGroup creates a group owned by creator.
func (l *Ledger) CreateGroup(ctx context.Context, creator models.Member, draft GroupDraft) (*models.Group, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidRequest)
	}
	category := draft.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, category)
	}
	currency := strings.ToUpper(strings.TrimSpace(draft.Currency))
	if currency == "" {
		currency = l.defaultCurrency
	}

	group := &models.Group{
		Name:      name,
		Category:  category,
		Currency:  currency,
		CreatedBy: creator.ID,
		Members:   []models.GroupMember{{MemberID: creator.ID, Role: models.RoleAdmin}},
	}
	profiles := []models.Member{creator}
	seen := map[string]bool{creator.ID: true}
	for _, m := range draft.Members {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		group.Members = append(group.Members, models.GroupMember{MemberID: m.ID, Role: models.RoleMember})
		profiles = append(profiles, m)
	}

	for i := range profiles {
		if err := l.store.UpsertMember(ctx, &profiles[i]); err != nil {
			return nil, err
		}
	}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	l.logger.Info("Group created",
		"group_id", group.ID,
		"currency", group.Currency,
		"members", len(group.Members),
	)
	// Reload for display names.
	return l.store.GetGroup(ctx, group.ID)
}

// Group returns a group the actor belongs to.
func (l *Ledger) Group(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	return l.memberGroup(ctx, groupID, actorID)
}

// Groups returns every group the actor belongs to, newest first.
func (l *Ledger) Groups(ctx context.Context, actorID string) ([]*models.Group, error) {
	return l.store.ListGroupsForMember(ctx, actorID)
}

// UpdateGroup renames or recategorises a group. Empty fields are kept.
// Only admins may update a group; its currency never changes.
func (l *Ledger) UpdateGroup(ctx context.Context, actorID, groupID, name string, category models.GroupCategory) (*models.Group, error) {
	group, err := l.adminGroup(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		group.Name = name
	}
	if category != "" {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, category)
		}
		group.Category = category
	}
	if err := l.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	l.logger.Info("Group updated", "group_id", group.ID)
	return group, nil
}

// DeleteGroup removes a group and all its entries. It is refused while any
// pair of members still owes each other in the group, even when every
// member's net is zero.
func (l *Ledger) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	if _, err := l.adminGroup(ctx, groupID, actorID); err != nil {
		return err
	}
	entries, err := l.store.ListEntriesByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if debts := calculator.PairwiseDebts(entries); len(debts) > 0 {
		d := debts[0]
		return fmt.Errorf("%w: %s owes %s %d in group %s", ErrUnsettled, d.From, d.To, d.AmountCents, groupID)
	}
	if err := l.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}

	l.logger.Info("Group deleted", "group_id", groupID, "entries", len(entries))
	return nil
}

// AddMember adds member to a group, recording their display profile.
// Only admins may add members.
func (l *Ledger) AddMember(ctx context.Context, actorID, groupID string, member models.Member, role models.Role) (*models.Group, error) {
	if _, err := l.adminGroup(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	if member.ID == "" {
		return nil, fmt.Errorf("%w: member ID is required", ErrInvalidRequest)
	}
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, role)
	}

	if err := l.store.UpsertMember(ctx, &member); err != nil {
		return nil, err
	}
	if err := l.store.AddGroupMember(ctx, groupID, member.ID, role); err != nil {
		return nil, err
	}

	l.logger.Info("Member added", "group_id", groupID, "member_id", member.ID, "role", role)
	return l.store.GetGroup(ctx, groupID)
}

// RemoveMember removes memberID from a group. Admins may remove anyone;
// members may only leave themselves. It is refused while the member has a
// non-zero position against anyone in the group.
func (l *Ledger) RemoveMember(ctx context.Context, actorID, groupID, memberID string) (*models.Group, error) {
	group, err := l.memberGroup(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actorID != memberID && !group.IsAdmin(actorID) {
		return nil, fmt.Errorf("%w: only admins can remove other members", ErrPermissionDenied)
	}
	if !group.HasMember(memberID) {
		return nil, fmt.Errorf("member %s in group %s: %w", memberID, groupID, storage.ErrNotFound)
	}

	entries, err := l.store.ListEntriesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if other, net := openPosition(memberID, entries); net != 0 {
		return nil, fmt.Errorf("%w: %s and %s are %d apart in group %s", ErrUnsettled, memberID, other, net, groupID)
	}
	if err := l.store.RemoveGroupMember(ctx, groupID, memberID); err != nil {
		return nil, err
	}

	l.logger.Info("Member removed", "group_id", groupID, "member_id", memberID, "by", actorID)
	return l.store.GetGroup(ctx, groupID)
}

// openPosition returns the first counterparty, by ID, that memberID is
// not square with, or a zero net if there is none.
func openPosition(memberID string, entries []*models.LedgerEntry) (string, int64) {
	var other string
	var net int64
	for id, n := range calculator.PositionsOf(memberID, entries) {
		if n != 0 && (net == 0 || id < other) {
			other, net = id, n
		}
	}
	return other, net
}

// adminGroup loads a group and checks that actorID is one of its admins.
func (l *Ledger) adminGroup(ctx context.Context, groupID, actorID string) (*models.Group, error) {
	group, err := l.memberGroup(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(actorID) {
		return nil, fmt.Errorf("%w: %s is not an admin of group %s", ErrPermissionDenied, actorID, groupID)
	}
	return group, nil
}

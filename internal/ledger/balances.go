package ledger

import (
	"context"
	"sort"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// GroupView is a group's balances computed from its active entries.
type GroupView struct {
	Group    *models.Group
	Balances []calculator.MemberBalance
	Debts    []calculator.DebtEdge
	Members  map[string]models.MemberRef
}

// NetView is the viewer's position against everyone they share a group with.
type NetView struct {
	ViewerID string
	Friends  []calculator.FriendBalance
	Totals   []calculator.CurrencyTotal
	Members  map[string]models.MemberRef
}

// BalancesFor computes every member's net position in a group. Former
// members who still appear on entries are included.
func (l *Ledger) BalancesFor(ctx context.Context, actorID, groupID string) (*GroupView, error) {
	group, err := l.memberGroup(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	entries, err := l.store.ListEntriesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := calculator.GroupBalances(entries, group.MemberIDs())
	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.MemberID
	}
	refs, err := l.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &GroupView{
		Group:    group,
		Balances: balances,
		Debts:    calculator.PairwiseDebts(entries),
		Members:  refs,
	}, nil
}

// NetBalances nets viewerID's positions across every group they belong to,
// one figure per counterparty and currency.
func (l *Ledger) NetBalances(ctx context.Context, viewerID string) (*NetView, error) {
	entries, err := l.store.ListEntriesForMember(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	friends := calculator.NetAcrossGroups(viewerID, groupLedgers(entries))
	ids := make([]string, len(friends))
	for i, f := range friends {
		ids[i] = f.MemberID
	}
	refs, err := l.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &NetView{
		ViewerID: viewerID,
		Friends:  friends,
		Totals:   calculator.Totals(friends),
		Members:  refs,
	}, nil
}

// groupLedgers buckets entries by group, keeping groups in first-seen order.
func groupLedgers(entries []*models.LedgerEntry) []calculator.GroupLedger {
	index := make(map[string]int)
	var groups []calculator.GroupLedger
	for _, e := range entries {
		i, ok := index[e.GroupID]
		if !ok {
			i = len(groups)
			index[e.GroupID] = i
			groups = append(groups, calculator.GroupLedger{GroupID: e.GroupID, Currency: e.Currency})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// resolve looks up display profiles for ids; missing ones become UnknownMember.
func (l *Ledger) resolve(ctx context.Context, ids []string) (map[string]models.MemberRef, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Strings(unique)

	known, err := l.store.GetMembersByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]models.MemberRef, len(unique))
	for _, id := range unique {
		refs[id] = models.ResolveMember(id, known)
	}
	return refs, nil
}

// MembersOf resolves display profiles for every member named on entries.
func (l *Ledger) MembersOf(ctx context.Context, entries ...*models.LedgerEntry) (map[string]models.MemberRef, error) {
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.MemberIDs()...)
	}
	return l.resolve(ctx, ids)
}

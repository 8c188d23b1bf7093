package service

import (
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

// parseDate reads an optional YYYY-MM-DD date; empty means "today".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ledger.ErrInvalidRequest, s)
	}
	return d, nil
}

// expenseDraft converts wire fields into a ledger draft.
func expenseDraft(groupID string, f api.ExpenseFields) (ledger.ExpenseDraft, error) {
	date, err := parseDate(f.Date)
	if err != nil {
		return ledger.ExpenseDraft{}, err
	}
	policy := models.SplitPolicy(f.SplitType)

	participants := make([]calculator.Participant, len(f.Participants))
	for i, p := range f.Participants {
		if policy == models.SplitPercent && !p.Percent.Valid {
			return ledger.ExpenseDraft{}, fmt.Errorf("%w: %s has no percent", calculator.ErrInvalidPercent, p.MemberID)
		}
		participants[i] = calculator.Participant{
			MemberID:   p.MemberID,
			ShareCents: p.ShareCents,
			Percent:    p.Percent.Decimal,
		}
	}

	return ledger.ExpenseDraft{
		GroupID:      groupID,
		Description:  f.Description,
		AmountCents:  f.AmountCents,
		Currency:     f.Currency,
		Date:         date,
		Policy:       policy,
		PaidBy:       f.PaidBy,
		Participants: participants,
	}, nil
}

func entryType(kind models.EntryKind) string {
	if kind == models.EntryKindSettlement {
		return api.EntryTypeSettlement
	}
	return api.EntryTypeExpense
}

func toAPIEntry(e *models.LedgerEntry, refs map[string]models.MemberRef) *api.Entry {
	shares := make([]api.Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = api.Share{
			MemberID:    s.MemberID,
			DisplayName: label(refs, s.MemberID),
			ShareCents:  s.ShareCents,
			Percent:     s.Percent,
		}
	}
	return &api.Entry{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		AmountCents: e.AmountCents,
		Currency:    e.Currency,
		Date:        e.Date.Format(models.DateLayout),
		EntryType:   entryType(e.Kind),
		SplitType:   string(e.Policy),
		PaidBy:      e.PaidBy,
		CreatedBy:   e.CreatedBy,
		Shares:      shares,
		Version:     e.Version,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]api.GroupMember, len(g.Members))
	for i, m := range g.Members {
		profile := models.Member{ID: m.MemberID, DisplayName: m.DisplayName}
		members[i] = api.GroupMember{
			MemberID:    m.MemberID,
			DisplayName: profile.Label(),
			Role:        string(m.Role),
			JoinedAt:    m.JoinedAt,
		}
	}
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Category:  string(g.Category),
		Currency:  g.Currency,
		CreatedBy: g.CreatedBy,
		Members:   members,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toAPIGroupBalances(v *ledger.GroupView) *api.GetGroupBalancesResponse {
	balances := make([]api.MemberBalance, len(v.Balances))
	for i, b := range v.Balances {
		balances[i] = api.MemberBalance{
			MemberID:    b.MemberID,
			DisplayName: label(v.Members, b.MemberID),
			NetCents:    b.NetCents,
			PaidCents:   b.PaidCents,
			OwedCents:   b.OwedCents,
			Direction:   string(calculator.Direction(b.NetCents)),
		}
	}
	debts := make([]api.Debt, len(v.Debts))
	for i, d := range v.Debts {
		debts[i] = api.Debt{FromMember: d.From, ToMember: d.To, AmountCents: d.AmountCents}
	}
	return &api.GetGroupBalancesResponse{
		GroupID:  v.Group.ID,
		Currency: v.Group.Currency,
		Balances: balances,
		Debts:    debts,
	}
}

func toAPINetView(v *ledger.NetView) *api.GetCrossGroupBalancesResponse {
	friends := make([]api.FriendBalance, len(v.Friends))
	for i, f := range v.Friends {
		groups := make([]api.GroupPosition, len(f.Groups))
		for j, g := range f.Groups {
			groups[j] = api.GroupPosition{GroupID: g.GroupID, NetCents: g.NetCents}
		}
		friends[i] = api.FriendBalance{
			MemberID:    f.MemberID,
			DisplayName: label(v.Members, f.MemberID),
			Currency:    f.Currency,
			NetCents:    f.NetCents,
			Direction:   string(f.Direction),
			Groups:      groups,
		}
	}
	totals := make([]api.CurrencyTotal, len(v.Totals))
	for i, t := range v.Totals {
		totals[i] = api.CurrencyTotal{
			Currency:       t.Currency,
			OwedToYouCents: t.OwedToYouCents,
			YouOweCents:    t.YouOweCents,
		}
	}
	return &api.GetCrossGroupBalancesResponse{Friends: friends, Totals: totals}
}

func label(refs map[string]models.MemberRef, id string) string {
	if ref, ok := refs[id]; ok {
		return ref.Label()
	}
	return models.UnknownMember{ID: id}.Label()
}

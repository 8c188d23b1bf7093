package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance is one member's net position inside a group.
type MemberBalance struct {
	MemberID  string
	PaidCents int64 // credited as payer, settlements included
	OwedCents int64 // debited through shares, settlements included
	NetCents  int64 // PaidCents - OwedCents; positive = owed money
}

// DebtEdge is the netted amount one member owes another within a group.
type DebtEdge struct {
	From        string // member who owes
	To          string // member who is owed
	AmountCents int64
}

// GroupBalances computes every member's net position from a group's entries.
//
// Algorithm:
//   - For each entry: the payer is credited AmountCents
//   - Each share-holder is debited their ShareCents
//   - Settlements use the same rule: the debtor is the payer and the creditor
//     holds the full share, which cancels earlier debt
//
// members seeds zero balances for people with no entries; it may be nil.
// The result is sorted by member ID and its NetCents sum to zero.
func GroupBalances(entries []*models.LedgerEntry, members []string) []MemberBalance {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{MemberID: id}
			balances[id] = b
		}
		return b
	}

	for _, id := range members {
		get(id)
	}
	for _, e := range entries {
		get(e.PaidBy).PaidCents += e.AmountCents
		for _, s := range e.Shares {
			get(s.MemberID).OwedCents += s.ShareCents
		}
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetCents = b.PaidCents - b.OwedCents
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MemberID < result[j].MemberID })
	return result
}

// NetOf returns memberID's net position among balances, 0 if absent.
func NetOf(balances []MemberBalance, memberID string) int64 {
	for _, b := range balances {
		if b.MemberID == memberID {
			return b.NetCents
		}
	}
	return 0
}

// pairKey orders a pair so (a, b) and (b, a) land on the same key.
type pairKey struct{ lo, hi string }

// pairwise accumulates, for every unordered pair, how much hi owes lo.
// On an entry paid by P, each other share-holder m owes P exactly share_m.
func pairwise(entries []*models.LedgerEntry) map[pairKey]int64 {
	matrix := make(map[pairKey]int64)
	for _, e := range entries {
		for _, s := range e.Shares {
			if s.MemberID == e.PaidBy || s.ShareCents == 0 {
				continue
			}
			// s.MemberID owes e.PaidBy
			if s.MemberID > e.PaidBy {
				matrix[pairKey{lo: e.PaidBy, hi: s.MemberID}] += s.ShareCents
			} else {
				matrix[pairKey{lo: s.MemberID, hi: e.PaidBy}] -= s.ShareCents
			}
		}
	}
	return matrix
}

// PairwiseDebts nets the raw who-owes-whom matrix of a group into one edge
// per pair with a non-zero balance. It does not reduce the number of
// payments; every edge is between two people who actually share entries.
func PairwiseDebts(entries []*models.LedgerEntry) []DebtEdge {
	var edges []DebtEdge
	for k, amount := range pairwise(entries) {
		switch {
		case amount > 0:
			edges = append(edges, DebtEdge{From: k.hi, To: k.lo, AmountCents: amount})
		case amount < 0:
			edges = append(edges, DebtEdge{From: k.lo, To: k.hi, AmountCents: -amount})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// PositionsOf returns viewerID's signed position against every member they
// share an entry with: positive means that member owes the viewer.
// Counterparties whose position nets to zero are included with 0.
func PositionsOf(viewerID string, entries []*models.LedgerEntry) map[string]int64 {
	positions := make(map[string]int64)
	for k, amount := range pairwise(entries) {
		switch viewerID {
		case k.lo:
			positions[k.hi] += amount
		case k.hi:
			positions[k.lo] -= amount
		}
	}
	return positions
}

package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// GroupLedger is the active entries of one group the viewer belongs to.
type GroupLedger struct {
	GroupID  string
	Currency string
	Entries  []*models.LedgerEntry
}

// GroupPosition is the viewer's net against one member inside one group.
type GroupPosition struct {
	GroupID  string
	NetCents int64
}

// FriendBalance is the viewer's net against one member across all shared
// groups with the same currency. Positive means the member owes the viewer.
type FriendBalance struct {
	MemberID  string
	Currency  string
	NetCents  int64
	Direction BalanceDirection
	Groups    []GroupPosition
}

// NetAcrossGroups sums viewerID's pairwise position against every
// counterparty over all groups. Amounts in different currencies are kept
// apart. Results are sorted by member ID, then currency; per-group
// breakdowns keep the order of groups.
func NetAcrossGroups(viewerID string, groups []GroupLedger) []FriendBalance {
	type key struct{ member, currency string }
	byKey := make(map[key]*FriendBalance)

	for _, g := range groups {
		for member, net := range PositionsOf(viewerID, g.Entries) {
			k := key{member: member, currency: g.Currency}
			fb, ok := byKey[k]
			if !ok {
				fb = &FriendBalance{MemberID: member, Currency: g.Currency}
				byKey[k] = fb
			}
			fb.NetCents += net
			fb.Groups = append(fb.Groups, GroupPosition{GroupID: g.GroupID, NetCents: net})
		}
	}

	result := make([]FriendBalance, 0, len(byKey))
	for _, fb := range byKey {
		fb.Direction = Direction(fb.NetCents)
		result = append(result, *fb)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MemberID != result[j].MemberID {
			return result[i].MemberID < result[j].MemberID
		}
		return result[i].Currency < result[j].Currency
	})
	return result
}

// CurrencyTotal is the sum of a viewer's friend balances in one currency.
type CurrencyTotal struct {
	Currency       string
	OwedToYouCents int64
	YouOweCents    int64
}

// Totals adds up what the viewer is owed and owes, per currency.
func Totals(friends []FriendBalance) []CurrencyTotal {
	byCurrency := make(map[string]*CurrencyTotal)
	var order []string
	for _, f := range friends {
		t, ok := byCurrency[f.Currency]
		if !ok {
			t = &CurrencyTotal{Currency: f.Currency}
			byCurrency[f.Currency] = t
			order = append(order, f.Currency)
		}
		if f.NetCents > 0 {
			t.OwedToYouCents += f.NetCents
		} else {
			t.YouOweCents -= f.NetCents
		}
	}
	sort.Strings(order)
	totals := make([]CurrencyTotal, len(order))
	for i, c := range order {
		totals[i] = *byCurrency[c]
	}
	return totals
}

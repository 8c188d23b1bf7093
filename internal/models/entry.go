package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of an entry's occurrence date.
const DateLayout = "2006-01-02"

// EntryKind distinguishes expenses from settlements.
type EntryKind string

const (
	EntryKindExpense    EntryKind = "expense"
	EntryKindSettlement EntryKind = "settlement"
)

// SplitPolicy is the rule used to derive shares from an amount.
type SplitPolicy string

const (
	SplitEqual   SplitPolicy = "equal"
	SplitExact   SplitPolicy = "exact"
	SplitPercent SplitPolicy = "percent"
)

// Valid reports whether p is one of the known split policies.
func (p SplitPolicy) Valid() bool {
	switch p {
	case SplitEqual, SplitExact, SplitPercent:
		return true
	}
	return false
}

// LedgerEntry is one posted expense or settlement.
// It exclusively owns its Shares; both are written and replaced together.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	GroupID     string
	Description string

	// AmountCents is the total in minor currency units. Always positive.
	AmountCents int64

	// Currency is the ISO 4217 code, equal to the owning group's currency.
	Currency string

	// Date is the day the expense or payment happened (UTC, midnight).
	Date time.Time

	Kind   EntryKind
	Policy SplitPolicy

	// PaidBy is credited AmountCents. For settlements this is the debtor
	// handing money over.
	PaidBy string

	// CreatedBy is the member who recorded the entry.
	CreatedBy string

	// Shares are in participant order and sum to AmountCents.
	Shares []Share

	// Version starts at 1 and increases on every edit or void.
	Version int64

	CreatedAt int64
	UpdatedAt int64
}

// Share is one member's portion of a ledger entry.
type Share struct {
	MemberID   string
	ShareCents int64

	// Percent is the percent the share was derived from (percent policy only).
	Percent decimal.NullDecimal
}

// SharesTotal returns the sum of all share amounts.
func (e *LedgerEntry) SharesTotal() int64 {
	var total int64
	for _, s := range e.Shares {
		total += s.ShareCents
	}
	return total
}

// ShareOf returns memberID's share in cents, or 0 if they hold none.
func (e *LedgerEntry) ShareOf(memberID string) int64 {
	for _, s := range e.Shares {
		if s.MemberID == memberID {
			return s.ShareCents
		}
	}
	return 0
}

// MemberIDs returns the payer followed by every share-holder, without duplicates.
func (e *LedgerEntry) MemberIDs() []string {
	seen := map[string]bool{e.PaidBy: true}
	ids := []string{e.PaidBy}
	for _, s := range e.Shares {
		if !seen[s.MemberID] {
			seen[s.MemberID] = true
			ids = append(ids, s.MemberID)
		}
	}
	return ids
}

// Package api defines the request and response messages of the ledger.v1
// services. Messages travel as JSON; money is always integer cents.
package api

import "github.com/shopspring/decimal"

// Entry types.
const (
	EntryTypeExpense    = "expense"
	EntryTypeSettlement = "settlement"
)

// Participant is one member taking part in an expense split.
// ShareCents is read for exact splits and Percent for percent splits.
type Participant struct {
	MemberID   string              `json:"member_id" validate:"required,max=128"`
	ShareCents int64               `json:"share_cents,omitempty"`
	Percent    decimal.NullDecimal `json:"percent"`
}

// Share is one member's resolved portion of an entry.
type Share struct {
	MemberID    string              `json:"member_id"`
	DisplayName string              `json:"display_name"`
	ShareCents  int64               `json:"share_cents"`
	Percent     decimal.NullDecimal `json:"percent"`
}

// Entry is a posted expense or settlement.
type Entry struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"group_id"`
	Description string  `json:"description"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Date        string  `json:"date"`
	EntryType   string  `json:"entry_type"`
	SplitType   string  `json:"split_type"`
	PaidBy      string  `json:"paid_by"`
	CreatedBy   string  `json:"created_by"`
	Shares      []Share `json:"shares"`
	Version     int64   `json:"version"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

// ExpenseFields are the caller-editable fields of an expense.
type ExpenseFields struct {
	Description string `json:"description" validate:"max=200"`
	AmountCents int64  `json:"amount_cents"`
	// Currency defaults to the group's currency.
	Currency string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	// Date is YYYY-MM-DD and defaults to today.
	Date         string        `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SplitType    string        `json:"split_type" validate:"required,oneof=equal exact percent"`
	PaidBy       string        `json:"paid_by" validate:"required,max=128"`
	Participants []Participant `json:"participants" validate:"max=100,dive"`
}

type PostExpenseRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	ExpenseFields
}

type EditExpenseRequest struct {
	EntryID string `json:"entry_id" validate:"required"`
	Version int64  `json:"version" validate:"gt=0"`
	ExpenseFields
}

type VoidExpenseRequest struct {
	EntryID string `json:"entry_id" validate:"required"`
	Version int64  `json:"version" validate:"gt=0"`
}

type VoidExpenseResponse struct{}

type GetExpenseRequest struct {
	EntryID string `json:"entry_id" validate:"required"`
}

// EntryResponse carries a single entry.
type EntryResponse struct {
	Entry *Entry `json:"entry"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListExpensesResponse struct {
	Entries []*Entry `json:"entries"`
}

type RecordSettlementRequest struct {
	GroupID     string `json:"group_id" validate:"required"`
	FromMember  string `json:"from_member" validate:"required,max=128"`
	ToMember    string `json:"to_member" validate:"required,max=128"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Note        string `json:"note,omitempty" validate:"max=200"`
}

// MemberBalance is a member's net position within one group.
type MemberBalance struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	NetCents    int64  `json:"net_cents"`
	PaidCents   int64  `json:"paid_cents"`
	OwedCents   int64  `json:"owed_cents"`
	Direction   string `json:"direction"`
}

// Debt is the netted amount one member owes another in a group.
type Debt struct {
	FromMember  string `json:"from_member"`
	ToMember    string `json:"to_member"`
	AmountCents int64  `json:"amount_cents"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupBalancesResponse struct {
	GroupID  string          `json:"group_id"`
	Currency string          `json:"currency"`
	Balances []MemberBalance `json:"balances"`
	Debts    []Debt          `json:"debts"`
}

// GroupPosition is the caller's net against a friend inside one group.
type GroupPosition struct {
	GroupID  string `json:"group_id"`
	NetCents int64  `json:"net_cents"`
}

// FriendBalance is the caller's net against one member across shared groups.
type FriendBalance struct {
	MemberID    string          `json:"member_id"`
	DisplayName string          `json:"display_name"`
	Currency    string          `json:"currency"`
	NetCents    int64           `json:"net_cents"`
	Direction   string          `json:"direction"`
	Groups      []GroupPosition `json:"groups"`
}

type CurrencyTotal struct {
	Currency       string `json:"currency"`
	OwedToYouCents int64  `json:"owed_to_you_cents"`
	YouOweCents    int64  `json:"you_owe_cents"`
}

type GetCrossGroupBalancesRequest struct{}

type GetCrossGroupBalancesResponse struct {
	Friends []FriendBalance `json:"friends"`
	Totals  []CurrencyTotal `json:"totals"`
}

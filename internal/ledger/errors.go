package ledger

import (
	"errors"
)

// SettlementReason names why a settlement was rejected.
type SettlementReason string

const (
	ReasonSettlementNonPositive SettlementReason = "NonPositiveAmount"
	ReasonSameMember            SettlementReason = "SameMember"
	ReasonSettlementImmutable   SettlementReason = "SettlementImmutable"
)

// SettlementError reports an invalid settlement request.
type SettlementError struct {
	Reason SettlementReason
}

func (e *SettlementError) Error() string {
	return "invalid settlement: " + string(e.Reason)
}

// EntryReason names why an entry was rejected for reasons other than its split.
type EntryReason string

const (
	ReasonCurrencyMismatch EntryReason = "CurrencyMismatch"
	ReasonInvalidRequest   EntryReason = "InvalidRequest"
)

// EntryError reports an entry that does not fit its group.
type EntryError struct {
	Reason EntryReason
}

func (e *EntryError) Error() string {
	return "invalid entry: " + string(e.Reason)
}

var (
	ErrSettlementNonPositive = &SettlementError{Reason: ReasonSettlementNonPositive}
	ErrSameMember            = &SettlementError{Reason: ReasonSameMember}
	ErrSettlementImmutable   = &SettlementError{Reason: ReasonSettlementImmutable}

	ErrCurrencyMismatch = &EntryError{Reason: ReasonCurrencyMismatch}
	ErrInvalidRequest   = &EntryError{Reason: ReasonInvalidRequest}

	// ErrUnsettled is returned when a member leaves, or a group is deleted,
	// while someone still owes money in it.
	ErrUnsettled = errors.New("unsettled balance")

	// ErrPermissionDenied is returned when the acting member may not
	// perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
)

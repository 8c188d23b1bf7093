package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MaxAmountCents bounds entry amounts so amount × basis points fits in int64.
const MaxAmountCents int64 = 100_000_000_000_000

// percentScale converts a two-digit percent into basis points (33.34 -> 3334).
const percentScale = 100

// fullPercentBP is 100.00% in basis points; percentEpsilonBP is 0.01%.
const (
	fullPercentBP    = 100 * percentScale
	percentEpsilonBP = 1
)

// SplitReason names why a split was rejected.
type SplitReason string

const (
	ReasonEmptyParticipants    SplitReason = "EmptyParticipants"
	ReasonNonPositiveAmount    SplitReason = "NonPositiveAmount"
	ReasonSumMismatch          SplitReason = "SumMismatch"
	ReasonPercentSumMismatch   SplitReason = "PercentSumMismatch"
	ReasonNegativeShare        SplitReason = "NegativeShare"
	ReasonInvalidPercent       SplitReason = "InvalidPercent"
	ReasonDuplicateParticipant SplitReason = "DuplicateParticipant"
	ReasonAmountTooLarge       SplitReason = "AmountTooLarge"
	ReasonUnknownPolicy        SplitReason = "UnknownPolicy"
)

// SplitError reports an invalid split request. The package-level sentinels
// below are the only SplitError values; wrap them with fmt.Errorf to add detail.
type SplitError struct {
	Reason SplitReason
}

func (e *SplitError) Error() string {
	return "invalid split: " + string(e.Reason)
}

var (
	ErrEmptyParticipants    = &SplitError{Reason: ReasonEmptyParticipants}
	ErrNonPositiveAmount    = &SplitError{Reason: ReasonNonPositiveAmount}
	ErrSumMismatch          = &SplitError{Reason: ReasonSumMismatch}
	ErrPercentSumMismatch   = &SplitError{Reason: ReasonPercentSumMismatch}
	ErrNegativeShare        = &SplitError{Reason: ReasonNegativeShare}
	ErrInvalidPercent       = &SplitError{Reason: ReasonInvalidPercent}
	ErrDuplicateParticipant = &SplitError{Reason: ReasonDuplicateParticipant}
	ErrAmountTooLarge       = &SplitError{Reason: ReasonAmountTooLarge}
	ErrUnknownPolicy        = &SplitError{Reason: ReasonUnknownPolicy}
)

// SplitReasonOf returns the reason of the SplitError wrapped in err.
func SplitReasonOf(err error) (SplitReason, bool) {
	var se *SplitError
	if errors.As(err, &se) {
		return se.Reason, true
	}
	return "", false
}

// Participant is one member taking part in a split, in caller order.
// ShareCents is read by the exact policy and Percent by the percent policy;
// the equal policy reads neither.
type Participant struct {
	MemberID   string
	ShareCents int64
	Percent    decimal.Decimal
}

// ComputeShares splits amountCents among participants according to policy.
// The returned shares are in participant order and always sum to amountCents.
func ComputeShares(amountCents int64, policy models.SplitPolicy, participants []Participant) ([]models.Share, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount %d", ErrNonPositiveAmount, amountCents)
	}
	if amountCents > MaxAmountCents {
		return nil, fmt.Errorf("%w: amount %d exceeds %d", ErrAmountTooLarge, amountCents, MaxAmountCents)
	}
	if len(participants) == 0 {
		return nil, ErrEmptyParticipants
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p.MemberID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.MemberID)
		}
		seen[p.MemberID] = true
	}

	switch policy {
	case models.SplitEqual:
		return splitEqual(amountCents, participants), nil
	case models.SplitExact:
		return splitExact(amountCents, participants)
	case models.SplitPercent:
		return splitPercent(amountCents, participants)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

// splitEqual gives everyone floor(amount/n) and hands the remainder out one
// cent at a time from the front of the list.
func splitEqual(amountCents int64, participants []Participant) []models.Share {
	n := int64(len(participants))
	base := amountCents / n
	remainder := amountCents - base*n

	shares := make([]models.Share, len(participants))
	for i, p := range participants {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = models.Share{MemberID: p.MemberID, ShareCents: cents}
	}
	return shares
}

func splitExact(amountCents int64, participants []Participant) ([]models.Share, error) {
	shares := make([]models.Share, len(participants))
	var sum int64
	for i, p := range participants {
		if p.ShareCents < 0 {
			return nil, fmt.Errorf("%w: %s has %d", ErrNegativeShare, p.MemberID, p.ShareCents)
		}
		if p.ShareCents > MaxAmountCents {
			return nil, fmt.Errorf("%w: share of %s", ErrAmountTooLarge, p.MemberID)
		}
		sum += p.ShareCents
		shares[i] = models.Share{MemberID: p.MemberID, ShareCents: p.ShareCents}
	}
	if sum != amountCents {
		return nil, fmt.Errorf("%w: shares sum to %d, amount is %d", ErrSumMismatch, sum, amountCents)
	}
	return shares, nil
}

// splitPercent converts percents to cents proportionally to amount × pct / Σpct
// (Σpct is 100.00 unless the input used the 0.01 tolerance) using the largest
// remainder method: everyone gets the floor of their exact value, then the
// leftover cents go one each by descending fractional remainder, ties in
// participant order. The result is the rounded value reconciled to the total.
func splitPercent(amountCents int64, participants []Participant) ([]models.Share, error) {
	bps := make([]int64, len(participants))
	var totalBP int64
	for i, p := range participants {
		if p.Percent.IsNegative() {
			return nil, fmt.Errorf("%w: %s has %s%%", ErrInvalidPercent, p.MemberID, p.Percent.String())
		}
		if !p.Percent.Round(2).Equal(p.Percent) {
			return nil, fmt.Errorf("%w: %s has more than two fractional digits", ErrInvalidPercent, p.Percent.String())
		}
		if p.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: %s%% exceeds 100", ErrInvalidPercent, p.Percent.String())
		}
		bps[i] = p.Percent.Shift(2).IntPart()
		totalBP += bps[i]
	}
	if diff := totalBP - fullPercentBP; diff > percentEpsilonBP || diff < -percentEpsilonBP {
		return nil, fmt.Errorf("%w: percents sum to %s", ErrPercentSumMismatch,
			decimal.New(totalBP, -2).StringFixed(2))
	}

	type slot struct {
		index     int
		remainder int64
	}
	shares := make([]models.Share, len(participants))
	slots := make([]slot, len(participants))
	var sum int64
	for i, p := range participants {
		num := amountCents * bps[i]
		shares[i] = models.Share{
			MemberID:   p.MemberID,
			ShareCents: num / totalBP,
			Percent:    decimal.NewNullDecimal(p.Percent),
		}
		slots[i] = slot{index: i, remainder: num % totalBP}
		sum += shares[i].ShareCents
	}

	sort.SliceStable(slots, func(a, b int) bool { return slots[a].remainder > slots[b].remainder })
	for k := int64(0); k < amountCents-sum; k++ {
		shares[slots[k].index].ShareCents++
	}
	return shares, nil
}

// SumShares returns the total of shares.
func SumShares(shares []models.Share) int64 {
	var total int64
	for _, s := range shares {
		total += s.ShareCents
	}
	return total
}

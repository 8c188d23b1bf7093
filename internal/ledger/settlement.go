package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

// SettlementDraft describes a real-world payment from one member to another.
type SettlementDraft struct {
	GroupID     string
	From        string // debtor handing money over
	To          string // creditor receiving it
	AmountCents int64
	Date        time.Time
	Note        string
}

// RecordSettlement stores a payment as an exact two-share entry paid by
// From and owed entirely by To. Summed with earlier entries it cancels
// From's debt to To by exactly AmountCents.
func (l *Ledger) RecordSettlement(ctx context.Context, actorID string, draft SettlementDraft) (*models.LedgerEntry, error) {
	if draft.AmountCents <= 0 {
		l.metrics.SplitFailed(string(ReasonSettlementNonPositive))
		return nil, fmt.Errorf("%w: amount %d", ErrSettlementNonPositive, draft.AmountCents)
	}
	if draft.AmountCents > calculator.MaxAmountCents {
		l.metrics.SplitFailed(string(calculator.ReasonAmountTooLarge))
		return nil, fmt.Errorf("%w: amount %d", calculator.ErrAmountTooLarge, draft.AmountCents)
	}
	if draft.From == draft.To {
		l.metrics.SplitFailed(string(ReasonSameMember))
		return nil, fmt.Errorf("%w: %s", ErrSameMember, draft.From)
	}

	group, err := l.memberGroup(ctx, draft.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	shares := settlementShares(draft.From, draft.To, draft.AmountCents)
	if err := requireMembers(group, draft.From, shares); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		GroupID:     group.ID,
		Description: strings.TrimSpace(draft.Note),
		AmountCents: draft.AmountCents,
		Currency:    group.Currency,
		Date:        l.dateOrToday(draft.Date),
		Kind:        models.EntryKindSettlement,
		Policy:      models.SplitExact,
		PaidBy:      draft.From,
		CreatedBy:   actorID,
		Shares:      shares,
	}
	if err := l.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	l.metrics.EntryRecorded(entry.Kind, metrics.OpPost)
	l.logger.Info("Settlement recorded",
		"entry_id", entry.ID,
		"group_id", entry.GroupID,
		"from", draft.From,
		"to", draft.To,
		"amount_cents", entry.AmountCents,
	)
	return entry, nil
}

func settlementShares(from, to string, amountCents int64) []models.Share {
	return []models.Share{
		{MemberID: from, ShareCents: 0},
		{MemberID: to, ShareCents: amountCents},
	}
}

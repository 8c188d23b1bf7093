// Package ledger posts, edits and voids ledger entries and projects them
// into balances. It validates every request before touching the store and
// keeps no balance state of its own: every read is recomputed from entries.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ledger is the transport-agnostic entry point for ledger operations.
type Ledger struct {
	store           storage.Store
	metrics         *metrics.Metrics
	defaultCurrency string
	logger          *slog.Logger
	now             func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMetrics records entry writes and split failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithDefaultCurrency sets the currency of groups created without one.
func WithDefaultCurrency(currency string) Option {
	return func(l *Ledger) { l.defaultCurrency = strings.ToUpper(currency) }
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:           store,
		defaultCurrency: "USD",
		logger:          slog.Default().With("component", "ledger"),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ExpenseDraft is the caller's description of an expense to post or edit.
type ExpenseDraft struct {
	GroupID     string
	Description string
	AmountCents int64
	// Currency defaults to the group's currency when empty.
	Currency string
	// Date defaults to today (UTC) when zero.
	Date         time.Time
	Policy       models.SplitPolicy
	PaidBy       string
	Participants []calculator.Participant
}

// Post validates draft, derives its shares and stores the expense.
// actorID is the member recording it and must belong to the group.
func (l *Ledger) Post(ctx context.Context, actorID string, draft ExpenseDraft) (*models.LedgerEntry, error) {
	shares, err := l.computeShares(draft)
	if err != nil {
		return nil, err
	}

	group, err := l.memberGroup(ctx, draft.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	currency, err := checkCurrency(group, draft.Currency)
	if err != nil {
		return nil, err
	}
	if err := requireMembers(group, draft.PaidBy, shares); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		GroupID:     group.ID,
		Description: strings.TrimSpace(draft.Description),
		AmountCents: draft.AmountCents,
		Currency:    currency,
		Date:        l.dateOrToday(draft.Date),
		Kind:        models.EntryKindExpense,
		Policy:      draft.Policy,
		PaidBy:      draft.PaidBy,
		CreatedBy:   actorID,
		Shares:      shares,
	}
	if err := l.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	l.metrics.EntryRecorded(entry.Kind, metrics.OpPost)
	l.logger.Info("Expense posted",
		"entry_id", entry.ID,
		"group_id", entry.GroupID,
		"amount_cents", entry.AmountCents,
		"policy", entry.Policy,
		"shares", len(entry.Shares),
	)
	return entry, nil
}

// Edit re-derives an expense's shares from draft and replaces the stored
// entry if it is still at expectedVersion. The group of an entry never
// changes; draft.GroupID is ignored.
func (l *Ledger) Edit(ctx context.Context, actorID, entryID string, expectedVersion int64, draft ExpenseDraft) (*models.LedgerEntry, error) {
	shares, err := l.computeShares(draft)
	if err != nil {
		return nil, err
	}

	existing, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if existing.Kind == models.EntryKindSettlement {
		return nil, fmt.Errorf("%w: entry %s", ErrSettlementImmutable, entryID)
	}
	group, err := l.memberGroup(ctx, existing.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := checkCurrency(group, draft.Currency); err != nil {
		return nil, err
	}
	if err := requireMembers(group, draft.PaidBy, shares); err != nil {
		return nil, err
	}

	entry := *existing
	entry.Description = strings.TrimSpace(draft.Description)
	entry.AmountCents = draft.AmountCents
	entry.Policy = draft.Policy
	entry.PaidBy = draft.PaidBy
	entry.Shares = shares
	if !draft.Date.IsZero() {
		entry.Date = draft.Date.UTC().Truncate(24 * time.Hour)
	}
	if err := l.store.ReplaceEntry(ctx, &entry, expectedVersion); err != nil {
		return nil, err
	}

	l.metrics.EntryRecorded(entry.Kind, metrics.OpEdit)
	l.logger.Info("Expense edited",
		"entry_id", entry.ID,
		"group_id", entry.GroupID,
		"version", entry.Version,
		"amount_cents", entry.AmountCents,
	)
	return &entry, nil
}

// Void removes an entry from every balance if it is still at
// expectedVersion. Settlements are voided the same way as expenses.
func (l *Ledger) Void(ctx context.Context, actorID, entryID string, expectedVersion int64) error {
	existing, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if _, err := l.memberGroup(ctx, existing.GroupID, actorID); err != nil {
		return err
	}
	if err := l.store.VoidEntry(ctx, entryID, expectedVersion); err != nil {
		return err
	}

	l.metrics.EntryRecorded(existing.Kind, metrics.OpVoid)
	l.logger.Info("Entry voided",
		"entry_id", entryID,
		"group_id", existing.GroupID,
		"kind", existing.Kind,
	)
	return nil
}

// Entry returns an active entry the actor can see.
func (l *Ledger) Entry(ctx context.Context, actorID, entryID string) (*models.LedgerEntry, error) {
	entry, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := l.memberGroup(ctx, entry.GroupID, actorID); err != nil {
		return nil, err
	}
	return entry, nil
}

// Entries returns the active entries of a group, oldest first.
func (l *Ledger) Entries(ctx context.Context, actorID, groupID string) ([]*models.LedgerEntry, error) {
	if _, err := l.memberGroup(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return l.store.ListEntriesByGroup(ctx, groupID)
}

func (l *Ledger) computeShares(draft ExpenseDraft) ([]models.Share, error) {
	shares, err := calculator.ComputeShares(draft.AmountCents, draft.Policy, draft.Participants)
	if err != nil {
		if reason, ok := calculator.SplitReasonOf(err); ok {
			l.metrics.SplitFailed(string(reason))
		}
		return nil, err
	}
	return shares, nil
}

// memberGroup loads a group and checks that actorID belongs to it.
func (l *Ledger) memberGroup(ctx context.Context, groupID, actorID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, fmt.Errorf("%w: %s is not a member of group %s", ErrPermissionDenied, actorID, groupID)
	}
	return group, nil
}

func (l *Ledger) dateOrToday(d time.Time) time.Time {
	if d.IsZero() {
		d = l.now()
	}
	return d.UTC().Truncate(24 * time.Hour)
}

// checkCurrency returns the group's currency, rejecting a different one.
func checkCurrency(group *models.Group, currency string) (string, error) {
	if currency == "" || strings.EqualFold(currency, group.Currency) {
		return group.Currency, nil
	}
	return "", fmt.Errorf("%w: group %s uses %s, got %s", ErrCurrencyMismatch, group.ID, group.Currency, currency)
}

// requireMembers checks that the payer and every share-holder belong to group.
func requireMembers(group *models.Group, paidBy string, shares []models.Share) error {
	if !group.HasMember(paidBy) {
		return fmt.Errorf("payer %s in group %s: %w", paidBy, group.ID, storage.ErrNotFound)
	}
	for _, s := range shares {
		if !group.HasMember(s.MemberID) {
			return fmt.Errorf("participant %s in group %s: %w", s.MemberID, group.ID, storage.ErrNotFound)
		}
	}
	return nil
}

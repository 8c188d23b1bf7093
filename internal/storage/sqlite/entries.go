package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// entrySelect reads active entries joined with their shares in one
// statement, so a concurrent edit is seen either entirely or not at all.
const entrySelect = `SELECT e.id, e.group_id, e.kind, e.split_policy, e.description, e.amount_cents,
	e.currency, e.occurred_on, e.paid_by, e.created_by, e.version, e.created_at, e.updated_at,
	s.member_id, s.share_cents, s.percent_share
FROM ledger_entries e JOIN ledger_shares s ON s.entry_id = e.id
WHERE e.voided_at IS NULL AND `

const entryOrder = ` ORDER BY e.created_at, e.rowid, s.position`

// CreateEntry persists a new entry and its shares atomically.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	// Generate ID if not set
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	entry.UpdatedAt = entry.CreatedAt
	entry.Version = 1
	if entry.Date.IsZero() {
		entry.Date = time.Unix(entry.CreatedAt, 0).UTC().Truncate(24 * time.Hour)
	}
	if entry.Description == "" {
		entry.Description = generateDescription(entry)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_entries (id, group_id, kind, split_policy, description, amount_cents, currency,
			 occurred_on, paid_by, created_by, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, entry.GroupID, entry.Kind, entry.Policy, entry.Description, entry.AmountCents, entry.Currency,
			entry.Date.Format(models.DateLayout), entry.PaidBy, entry.CreatedBy, entry.Version, entry.CreatedAt, entry.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		return insertShares(ctx, tx, entry)
	})
}

func insertShares(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) error {
	for i, share := range entry.Shares {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO ledger_shares (entry_id, member_id, position, share_cents, percent_share) VALUES (?, ?, ?, ?, ?)",
			entry.ID, share.MemberID, i, share.ShareCents, share.Percent,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

// GetEntry retrieves an active entry by ID.
func (s *SQLiteStore) GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	entries, err := s.queryEntries(ctx, "e.id = ?", entryID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	return entries[0], nil
}

// ListEntriesByGroup retrieves the active entries of a group, oldest first.
func (s *SQLiteStore) ListEntriesByGroup(ctx context.Context, groupID string) ([]*models.LedgerEntry, error) {
	return s.queryEntries(ctx, "e.group_id = ?", groupID)
}

// ListEntriesForMember retrieves the active entries of every group memberID
// belongs to, oldest first.
func (s *SQLiteStore) ListEntriesForMember(ctx context.Context, memberID string) ([]*models.LedgerEntry, error) {
	return s.queryEntries(ctx,
		"e.group_id IN (SELECT group_id FROM group_members WHERE member_id = ?)", memberID)
}

func (s *SQLiteStore) queryEntries(ctx context.Context, where string, args ...any) ([]*models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, entrySelect+where+entryOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	var current *models.LedgerEntry
	for rows.Next() {
		var (
			e          models.LedgerEntry
			occurredOn string
			share      models.Share
			percent    decimal.NullDecimal
		)
		if err := rows.Scan(
			&e.ID, &e.GroupID, &e.Kind, &e.Policy, &e.Description, &e.AmountCents,
			&e.Currency, &occurredOn, &e.PaidBy, &e.CreatedBy, &e.Version, &e.CreatedAt, &e.UpdatedAt,
			&share.MemberID, &share.ShareCents, &percent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		share.Percent = percent

		if current == nil || current.ID != e.ID {
			date, err := time.Parse(models.DateLayout, occurredOn)
			if err != nil {
				return nil, fmt.Errorf("failed to parse date of entry %s: %w", e.ID, err)
			}
			e.Date = date
			current = &e
			entries = append(entries, current)
		}
		current.Shares = append(current.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// ReplaceEntry overwrites an entry's fields and its whole share set.
// The write only applies when the stored version equals expectedVersion.
func (s *SQLiteStore) ReplaceEntry(ctx context.Context, entry *models.LedgerEntry, expectedVersion int64) error {
	now := time.Now().Unix()
	if entry.Description == "" {
		entry.Description = generateDescription(entry)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE ledger_entries
			 SET split_policy = ?, description = ?, amount_cents = ?, occurred_on = ?, paid_by = ?,
			     version = version + 1, updated_at = ?
			 WHERE id = ? AND version = ? AND voided_at IS NULL`,
			entry.Policy, entry.Description, entry.AmountCents, entry.Date.Format(models.DateLayout), entry.PaidBy,
			now, entry.ID, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		if err := checkVersioned(ctx, tx, result, entry.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM ledger_shares WHERE entry_id = ?", entry.ID); err != nil {
			return fmt.Errorf("failed to delete shares: %w", err)
		}
		return insertShares(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	entry.Version = expectedVersion + 1
	entry.UpdatedAt = now
	return nil
}

// VoidEntry marks an entry inactive. Voided entries stay on disk but are
// invisible to every read.
func (s *SQLiteStore) VoidEntry(ctx context.Context, entryID string, expectedVersion int64) error {
	now := time.Now().Unix()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE ledger_entries SET voided_at = ?, version = version + 1, updated_at = ?
			 WHERE id = ? AND version = ? AND voided_at IS NULL`,
			now, now, entryID, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to void entry: %w", err)
		}
		return checkVersioned(ctx, tx, result, entryID)
	})
}

// checkVersioned tells a missing entry apart from a stale version when a
// versioned UPDATE touched no rows.
func checkVersioned(ctx context.Context, tx *sql.Tx, result sql.Result, entryID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var voided sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT voided_at FROM ledger_entries WHERE id = ?", entryID).Scan(&voided)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && voided.Valid) {
		return fmt.Errorf("entry %s: %w", entryID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check entry: %w", err)
	}
	return fmt.Errorf("entry %s: %w", entryID, storage.ErrConflict)
}

// generateDescription creates a fallback description from the entry's shares.
func generateDescription(entry *models.LedgerEntry) string {
	if entry.Kind == models.EntryKindSettlement {
		return "Settlement"
	}
	ids := make([]string, 0, len(entry.Shares))
	for _, share := range entry.Shares {
		ids = append(ids, share.MemberID)
	}
	if len(ids) == 0 {
		return fmt.Sprintf("Expense - %s", entry.Date.Format("Jan 2, 2006"))
	}
	if len(ids) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(ids, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(ids[:2], ", "),
		len(ids)-2,
	)
}

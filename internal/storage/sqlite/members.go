package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// UpsertMember records a member profile, refreshing the display name if the
// member is already known.
func (s *SQLiteStore) UpsertMember(ctx context.Context, member *models.Member) error {
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, display_name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name
		 WHERE excluded.display_name <> ''`,
		member.ID, member.DisplayName, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}

// GetMembersByIDs retrieves multiple members by their IDs.
// Returns a map of member ID to Member object.
// Members that don't exist are omitted from the result.
func (s *SQLiteStore) GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error) {
	members := make(map[string]*models.Member, len(ids))
	if len(ids) == 0 {
		return members, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, created_at FROM members WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

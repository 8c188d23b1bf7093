// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a group, member or active entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write carries a stale entry version.
	ErrConflict = errors.New("version conflict")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
//
// Every write is a single transaction: an entry and its shares become visible
// together or not at all. Every read of entries is one consistent snapshot.
type Store interface {
	// UpsertMember records or refreshes a member's display profile.
	UpsertMember(ctx context.Context, member *models.Member) error

	// GetMembersByIDs returns the known profiles among ids, keyed by ID.
	// Unknown IDs are omitted.
	GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error)

	// CreateGroup persists a new group and its initial members.
	// The group.ID and timestamps are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember returns every group memberID belongs to.
	ListGroupsForMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// UpdateGroup changes a group's name and category.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group together with its memberships and entries.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMember adds memberID to the group with role.
	AddGroupMember(ctx context.Context, groupID, memberID string, role models.Role) error

	// RemoveGroupMember removes memberID from the group.
	RemoveGroupMember(ctx context.Context, groupID, memberID string) error

	// CreateEntry persists a new entry together with its shares.
	// The entry.ID, Version and timestamps are populated by the store.
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error

	// GetEntry retrieves an active (non-voided) entry with its shares.
	GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error)

	// ListEntriesByGroup returns the active entries of a group, oldest first.
	ListEntriesByGroup(ctx context.Context, groupID string) ([]*models.LedgerEntry, error)

	// ListEntriesForMember returns the active entries of every group
	// memberID belongs to, oldest first.
	ListEntriesForMember(ctx context.Context, memberID string) ([]*models.LedgerEntry, error)

	// ReplaceEntry overwrites an entry and its whole share set if its stored
	// version equals expectedVersion. On success entry.Version is bumped.
	ReplaceEntry(ctx context.Context, entry *models.LedgerEntry, expectedVersion int64) error

	// VoidEntry marks an entry inactive if its version equals expectedVersion.
	VoidEntry(ctx context.Context, entryID string, expectedVersion int64) error

	// Close releases any resources held by the store.
	Close() error
}

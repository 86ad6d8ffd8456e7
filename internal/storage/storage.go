package storage

import (
	"context"

	"github.com/jwebster45206/questforge/pkg/quest"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for quest entry and quest progress
// persistence. Lookups that find nothing return (nil, nil).
type Storage interface {
	HealthChecker
	Closer

	// SaveQuestEntry persists a quest entry and maintains the pending
	// and recency indexes. UpdatedAt is stamped here.
	SaveQuestEntry(ctx context.Context, e *quest.Entry) error

	// GetQuestEntry retrieves a quest entry by quest ID.
	GetQuestEntry(ctx context.Context, questID string) (*quest.Entry, error)

	// ClaimOldestPending atomically removes and returns the oldest
	// pending entry (by creation time), or nil when none is pending.
	// Atomicity guarantees that concurrent schedulers cannot claim the
	// same entry twice; the claimed entry's status is still pending
	// until the builder records an outcome.
	ClaimOldestPending(ctx context.Context) (*quest.Entry, error)

	// ListRecentByStatus returns entries in the given statuses,
	// newest-updated first, truncated to limit.
	ListRecentByStatus(ctx context.Context, statuses []quest.Status, limit int) ([]*quest.Entry, error)

	// SaveProgress persists one character's progress on a quest.
	SaveProgress(ctx context.Context, p *quest.Progress) error

	// GetProgress retrieves a (character, quest) progress record.
	GetProgress(ctx context.Context, character, questID string) (*quest.Progress, error)

	// ListProgress returns all progress records for a character.
	ListProgress(ctx context.Context, character string) ([]*quest.Progress, error)
}

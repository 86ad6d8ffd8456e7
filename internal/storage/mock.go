package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwebster45206/questforge/pkg/quest"
)

// MockStorage is an in-memory implementation of Storage for testing.
type MockStorage struct {
	mu       sync.RWMutex
	entries  map[string]*quest.Entry
	pending  map[string]bool // quest IDs currently in the pending index
	progress map[string]*quest.Progress
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		entries:  make(map[string]*quest.Entry),
		pending:  make(map[string]bool),
		progress: make(map[string]*quest.Progress),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) SaveQuestEntry(ctx context.Context, e *quest.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.UpdatedAt = time.Now()
	m.entries[e.QuestID] = e
	if e.Status == quest.StatusPending {
		m.pending[e.QuestID] = true
	} else {
		delete(m.pending, e.QuestID)
	}
	return nil
}

func (m *MockStorage) GetQuestEntry(ctx context.Context, questID string) (*quest.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[questID], nil
}

func (m *MockStorage) ClaimOldestPending(ctx context.Context) (*quest.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var oldest *quest.Entry
	for id := range m.pending {
		e := m.entries[id]
		if e == nil {
			continue
		}
		if oldest == nil || e.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e
		}
	}
	if oldest == nil {
		return nil, nil
	}

	delete(m.pending, oldest.QuestID)
	return oldest, nil
}

func (m *MockStorage) ListRecentByStatus(ctx context.Context, statuses []quest.Status, limit int) ([]*quest.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[quest.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var out []*quest.Entry
	for _, e := range m.entries {
		if wanted[e.Status] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func progressMapKey(character, questID string) string {
	return character + ":" + questID
}

func (m *MockStorage) SaveProgress(ctx context.Context, p *quest.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[progressMapKey(p.Character, p.QuestID)] = p
	return nil
}

func (m *MockStorage) GetProgress(ctx context.Context, character, questID string) (*quest.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.progress[progressMapKey(character, questID)], nil
}

func (m *MockStorage) ListProgress(ctx context.Context, character string) ([]*quest.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*quest.Progress
	for _, p := range m.progress {
		if p.Character == character {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestID < out[j].QuestID
	})
	return out, nil
}

// PendingCount reports how many entries remain claimable, for tests.
func (m *MockStorage) PendingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

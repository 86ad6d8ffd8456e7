package world

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/questforge/pkg/quest"
)

// MockStore is an in-memory implementation of Store for testing.
type MockStore struct {
	mu       sync.RWMutex
	entities map[string]*Entity

	// CreateErr forces the next create call to fail, for exercising
	// the builder's error path.
	CreateErr error
}

var _ Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		entities: make(map[string]*Entity),
	}
}

func (s *MockStore) create(e *Entity) (*Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return nil, s.CreateErr
	}

	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	if e.Name == "" {
		e.Name = quest.DisplayName(e.Key)
	}
	s.entities[e.ID] = e
	return e, nil
}

func (s *MockStore) CreateRoom(ctx context.Context, key, desc string, tags ...string) (*Entity, error) {
	return s.create(&Entity{Kind: KindRoom, Key: key, Description: desc, Tags: tags})
}

func (s *MockStore) CreateItem(ctx context.Context, key, locationID, desc string, tags ...string) (*Entity, error) {
	return s.create(&Entity{Kind: KindItem, Key: key, Location: locationID, Description: desc, Tags: tags})
}

func (s *MockStore) CreateNPC(ctx context.Context, key, locationID string, dialogue []string, tags ...string) (*Entity, error) {
	return s.create(&Entity{Kind: KindNPC, Key: key, Location: locationID, Dialogue: dialogue, Tags: tags})
}

func (s *MockStore) Save(ctx context.Context, e *Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		return fmt.Errorf("cannot save entity without an ID")
	}
	s.entities[e.ID] = e
	return nil
}

func (s *MockStore) Get(ctx context.Context, id string) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[id], nil
}

func (s *MockStore) GetByKey(ctx context.Context, kind Kind, key string) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.Kind == kind && e.Key == key {
			return e, nil
		}
	}
	return nil, nil
}

func (s *MockStore) ListByKind(ctx context.Context, kind Kind) ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entity
	for _, e := range s.entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MockStore) ListByTag(ctx context.Context, tag string) ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entity
	for _, e := range s.entities {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MockStore) Tag(ctx context.Context, e *Entity, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !e.HasTag(tag) {
		e.Tags = append(e.Tags, tag)
	}
	s.entities[e.ID] = e
	return nil
}

func (s *MockStore) DeleteByTag(ctx context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, e := range s.entities {
		if e.HasTag(tag) {
			delete(s.entities, id)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns the number of stored entities, for test assertions.
func (s *MockStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

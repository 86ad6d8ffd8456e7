package world

import (
	"context"
	"time"

	"github.com/jwebster45206/questforge/pkg/npc"
)

// Kind is the closed set of entity kinds. Entity construction goes
// through one constructor per kind rather than dynamic type paths.
type Kind string

const (
	KindRoom Kind = "room"
	KindItem Kind = "item"
	KindNPC  Kind = "npc"
)

// Entity is a live game object. Description and Embedding are mutable:
// the embedding is a lazily computed cache over the description, written
// back by the similarity index.
type Entity struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Key         string    `json:"key"`
	Name        string    `json:"name,omitempty"`
	Location    string    `json:"location,omitempty"` // containing room's entity ID
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Room state
	Embedding []float64 `json:"embedding,omitempty"` // cached description embedding
	Realm     string    `json:"realm,omitempty"`     // spawner realm key

	// NPC state
	Dialogue     []string          `json:"dialogue,omitempty"`
	Persona      string            `json:"persona,omitempty"`
	QuestGiver   bool              `json:"quest_giver,omitempty"`
	Conversation *npc.Conversation `json:"conversation,omitempty"`
}

// HasTag reports whether the entity carries the given tag.
func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Store is the game object store consumed by the quest builder and
// the similarity index. Lookups that find nothing return (nil, nil).
type Store interface {
	// CreateRoom creates a room entity. Rooms have no location.
	CreateRoom(ctx context.Context, key, desc string, tags ...string) (*Entity, error)

	// CreateItem creates an item entity inside the given room.
	CreateItem(ctx context.Context, key, locationID, desc string, tags ...string) (*Entity, error)

	// CreateNPC creates an NPC entity inside the given room, with its
	// dialogue lines attached as mutable state.
	CreateNPC(ctx context.Context, key, locationID string, dialogue []string, tags ...string) (*Entity, error)

	// Save persists mutations to an existing entity (embedding cache,
	// conversation history, dialogue).
	Save(ctx context.Context, e *Entity) error

	// Get retrieves an entity by ID.
	Get(ctx context.Context, id string) (*Entity, error)

	// GetByKey retrieves an entity by kind and key.
	GetByKey(ctx context.Context, kind Kind, key string) (*Entity, error)

	// ListByKind enumerates all entities of a kind.
	ListByKind(ctx context.Context, kind Kind) ([]*Entity, error)

	// ListByTag enumerates all entities carrying a tag.
	ListByTag(ctx context.Context, tag string) ([]*Entity, error)

	// Tag adds a tag to an existing entity.
	Tag(ctx context.Context, e *Entity, tag string) error

	// DeleteByTag removes every entity carrying the tag and returns
	// how many were deleted. Used for compensating cleanup after a
	// failed quest build.
	DeleteByTag(ctx context.Context, tag string) (int, error)
}

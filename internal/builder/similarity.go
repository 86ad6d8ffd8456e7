package builder

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jwebster45206/questforge/internal/services"
	"github.com/jwebster45206/questforge/internal/world"
)

// Match pairs an existing room with its similarity score against a
// query description.
type Match struct {
	Location *world.Entity
	Score    float64
}

// EmbeddingIndex performs semantic similarity search over room
// descriptions. Embeddings are cached on the room entities and only
// computed for rooms that have never been scored before.
type EmbeddingIndex struct {
	store     world.Store
	embedder  services.Embedder
	threshold float64
}

// NewEmbeddingIndex creates an index over the given store. threshold
// is the minimum cosine similarity for a room to count as a match.
func NewEmbeddingIndex(store world.Store, embedder services.Embedder, threshold float64) *EmbeddingIndex {
	return &EmbeddingIndex{
		store:     store,
		embedder:  embedder,
		threshold: threshold,
	}
}

// FindSimilarAndCache returns rooms whose descriptions are semantically
// similar to desc, at or above the index threshold, best first, at most
// topN results. Rooms without a description are skipped. As a side
// effect, any room scored for the first time has its embedding written
// back to the store, so later searches reuse it.
func (x *EmbeddingIndex) FindSimilarAndCache(ctx context.Context, desc string, topN int) ([]Match, error) {
	rooms, err := x.store.ListByKind(ctx, world.KindRoom)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	// Store enumeration order is not guaranteed; fix it so tie-breaks
	// are reproducible.
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].Key < rooms[j].Key
	})

	var query []float64
	matches := make([]Match, 0)

	for _, room := range rooms {
		if room.Description == "" {
			continue
		}

		if room.Embedding == nil {
			vec, err := x.embedder.Encode(ctx, room.Description)
			if err != nil {
				return nil, fmt.Errorf("failed to embed room %s: %w", room.Key, err)
			}
			room.Embedding = vec
			if err := x.store.Save(ctx, room); err != nil {
				return nil, fmt.Errorf("failed to cache embedding for room %s: %w", room.Key, err)
			}
		}

		// Compute the query embedding once, and only if at least one
		// candidate has a description.
		if query == nil {
			query, err = x.embedder.Encode(ctx, desc)
			if err != nil {
				return nil, fmt.Errorf("failed to embed query: %w", err)
			}
		}

		score := cosineSimilarity(query, room.Embedding)
		if score >= x.threshold {
			matches = append(matches, Match{Location: room, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topN > 0 && len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either vector is degenerate or their lengths differ.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

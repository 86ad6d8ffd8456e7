package builder

import (
	"context"
	"math"
	"testing"

	"github.com/jwebster45206/questforge/internal/services"
	"github.com/jwebster45206/questforge/internal/world"
)

const (
	blackwoodDesc = "A dark, misty forest where the trees grow close and travelers speak of whispers of ghosts."
	gladeDesc     = "A sunny glade full of wildflowers and butterflies, where the meadow grass sways in a warm breeze."
	hauntedQuery  = "a haunted forest where shadows linger beneath twisted trees"
)

func TestFindSimilarAndCache_ThresholdScenario(t *testing.T) {
	store := world.NewMockStore()
	embedder := services.NewMockEmbedder()
	ctx := context.Background()

	// Fixture vectors pin the geometry: the forest sits close to the
	// query, the glade nearly orthogonal.
	embedder.SetFixture(blackwoodDesc, []float64{1, 0, 0})
	embedder.SetFixture(gladeDesc, []float64{0, 1, 0})
	embedder.SetFixture(hauntedQuery, []float64{0.9, 0.2, 0})

	if _, err := store.CreateRoom(ctx, "blackwood_forest", blackwoodDesc); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateRoom(ctx, "sunny_glade", gladeDesc); err != nil {
		t.Fatal(err)
	}

	index := NewEmbeddingIndex(store, embedder, 0.70)
	matches, err := index.FindSimilarAndCache(ctx, hauntedQuery, 5)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Location.Key != "blackwood_forest" {
		t.Errorf("expected blackwood_forest, got %q", matches[0].Location.Key)
	}
	if matches[0].Score < 0.70 {
		t.Errorf("match score below threshold: %f", matches[0].Score)
	}
}

func TestFindSimilarAndCache_WritesEmbeddingBack(t *testing.T) {
	store := world.NewMockStore()
	embedder := services.NewMockEmbedder()
	ctx := context.Background()

	room, err := store.CreateRoom(ctx, "cavern", "A damp limestone cavern dripping with stalactites.")
	if err != nil {
		t.Fatal(err)
	}

	index := NewEmbeddingIndex(store, embedder, 0.70)
	if _, err := index.FindSimilarAndCache(ctx, "a deep cave", 5); err != nil {
		t.Fatal(err)
	}

	// First search embeds the room and the query.
	if got := embedder.CallCount(); got != 2 {
		t.Fatalf("expected 2 encode calls after first search, got %d", got)
	}

	saved, err := store.Get(ctx, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Embedding == nil {
		t.Fatal("room embedding should be cached on the entity")
	}

	// Second search reuses the cached embedding and only encodes the
	// query.
	if _, err := index.FindSimilarAndCache(ctx, "a deep cave", 5); err != nil {
		t.Fatal(err)
	}
	if got := embedder.CallCount(); got != 3 {
		t.Errorf("expected 3 encode calls after second search, got %d", got)
	}
}

func TestFindSimilarAndCache_SkipsRoomsWithoutDescription(t *testing.T) {
	store := world.NewMockStore()
	embedder := services.NewMockEmbedder()
	ctx := context.Background()

	if _, err := store.CreateRoom(ctx, "void", ""); err != nil {
		t.Fatal(err)
	}

	index := NewEmbeddingIndex(store, embedder, 0.70)
	matches, err := index.FindSimilarAndCache(ctx, "anything at all", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
	if got := embedder.CallCount(); got != 0 {
		t.Errorf("query should not be embedded when no candidate has a description, got %d calls", got)
	}
}

func TestFindSimilarAndCache_OrderAndTopN(t *testing.T) {
	store := world.NewMockStore()
	embedder := services.NewMockEmbedder()
	ctx := context.Background()

	descs := map[string][]float64{
		"room a description": {0.8, 0.6, 0},
		"room b description": {1, 0, 0},
		"room c description": {0.9, 0.436, 0},
	}
	embedder.SetFixture("query text", []float64{1, 0, 0})
	for desc, vec := range descs {
		embedder.SetFixture(desc, vec)
	}

	for key, desc := range map[string]string{
		"room_a": "room a description",
		"room_b": "room b description",
		"room_c": "room c description",
	} {
		if _, err := store.CreateRoom(ctx, key, desc); err != nil {
			t.Fatal(err)
		}
	}

	index := NewEmbeddingIndex(store, embedder, 0.70)
	matches, err := index.FindSimilarAndCache(ctx, "query text", 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected topN to truncate to 2, got %d", len(matches))
	}
	if matches[0].Location.Key != "room_b" {
		t.Errorf("expected best match room_b first, got %q", matches[0].Location.Key)
	}
	if matches[1].Location.Key != "room_c" {
		t.Errorf("expected room_c second, got %q", matches[1].Location.Key)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"length mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

package builder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/questforge/internal/services"
	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/internal/world"
	"github.com/jwebster45206/questforge/pkg/quest"
)

func testBuilder(st storage.Storage, ws world.Store, embedder services.Embedder) *Builder {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	index := NewEmbeddingIndex(ws, embedder, 0.70)
	return New(st, ws, index, logger)
}

func TestBuilder_BuildNext_ProcessesOldestFirst(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	b := testBuilder(st, ws, services.NewMockEmbedder())
	ctx := context.Background()

	newer := quest.NewEntry(&quest.Definition{Title: "Newer"}, "")
	older := quest.NewEntry(&quest.Definition{Title: "Older"}, "")
	older.CreatedAt = newer.CreatedAt.Add(-time.Hour)

	for _, e := range []*quest.Entry{newer, older} {
		if err := st.SaveQuestEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	first, err := b.BuildNext(ctx)
	if err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if first == nil || first.Title != "Older" {
		t.Fatalf("expected the oldest entry first, got %+v", first)
	}
	if first.Status != quest.StatusBuilt {
		t.Errorf("expected built, got %q", first.Status)
	}
	if first.CompletedAt == nil || first.CompletedAt.IsZero() {
		t.Error("expected a completion timestamp on the built entry")
	}

	second, err := b.BuildNext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second == nil || second.Title != "Newer" {
		t.Fatalf("expected the newer entry second, got %+v", second)
	}

	empty, err := b.BuildNext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty != nil {
		t.Errorf("expected nil when nothing is pending, got %+v", empty)
	}
}

func TestBuilder_Build_MissingPayloadFails(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	b := testBuilder(st, ws, services.NewMockEmbedder())
	ctx := context.Background()

	entry := quest.NewEntry(nil, "alera")
	if err := st.SaveQuestEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}

	if err := b.Build(ctx, entry); err != nil {
		t.Fatalf("structural failure should not surface as an error: %v", err)
	}
	if entry.Status != quest.StatusFailed {
		t.Errorf("expected failed, got %q", entry.Status)
	}

	saved, err := st.GetQuestEntry(ctx, entry.QuestID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != quest.StatusFailed {
		t.Errorf("failed status must be persisted, got %q", saved.Status)
	}
	if ws.Count() != 0 {
		t.Errorf("no entities should be created for a failed entry, got %d", ws.Count())
	}
}

func TestBuilder_Build_NonPendingIsNoOp(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	b := testBuilder(st, ws, services.NewMockEmbedder())

	entry := quest.NewEntry(&quest.Definition{
		Title:     "Already done",
		Locations: []quest.LocationDef{{Key: "keep", Desc: "A stone keep."}},
	}, "")
	entry.Status = quest.StatusBuilt

	if err := b.Build(context.Background(), entry); err != nil {
		t.Fatal(err)
	}
	if ws.Count() != 0 {
		t.Errorf("non-pending entries must not create entities, got %d", ws.Count())
	}
}

func TestBuilder_Build_ReusesSimilarLocation(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	embedder := services.NewMockEmbedder()
	b := testBuilder(st, ws, embedder)
	ctx := context.Background()

	existingDesc := "A dark, misty forest where travelers speak of whispers of ghosts."
	declaredDesc := "A haunted forest where shadows linger beneath twisted trees."
	embedder.SetFixture(existingDesc, []float64{1, 0, 0})
	embedder.SetFixture(declaredDesc, []float64{0.95, 0.3122, 0})

	if _, err := ws.CreateRoom(ctx, "blackwood_forest", existingDesc); err != nil {
		t.Fatal(err)
	}

	entry := quest.NewEntry(&quest.Definition{
		Title:     "Into the Woods",
		Locations: []quest.LocationDef{{Key: "haunted_forest", Desc: declaredDesc}},
	}, "")
	if err := st.SaveQuestEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}

	if err := b.Build(ctx, entry); err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if entry.Status != quest.StatusBuilt {
		t.Fatalf("expected built, got %q", entry.Status)
	}

	dup, err := ws.GetByKey(ctx, world.KindRoom, "haunted_forest")
	if err != nil {
		t.Fatal(err)
	}
	if dup != nil {
		t.Error("a semantically similar room exists, no new room should be created")
	}
	if ws.Count() != 1 {
		t.Errorf("expected only the original room, got %d entities", ws.Count())
	}
}

func TestBuilder_Build_GiveToEndToEnd(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	b := testBuilder(st, ws, services.NewMockEmbedder())
	ctx := context.Background()

	entry := quest.NewEntry(&quest.Definition{
		Title: "The Glowing Seed",
		Goals: []quest.Goal{
			{Key: "Deliver the seed", Type: quest.GoalGiveTo, Target: "spirit_guardian", Object: "glowing_seed"},
		},
	}, "alera")
	if err := st.SaveQuestEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}

	if err := b.Build(ctx, entry); err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if entry.Status != quest.StatusBuilt {
		t.Fatalf("expected built, got %q", entry.Status)
	}

	guardian, err := ws.GetByKey(ctx, world.KindNPC, "spirit_guardian")
	if err != nil {
		t.Fatal(err)
	}
	if guardian == nil {
		t.Fatal("inferred NPC was not created")
	}
	if !guardian.HasTag(entry.Tag()) {
		t.Errorf("NPC should carry the quest tag %q", entry.Tag())
	}
	if len(guardian.Dialogue) == 0 {
		t.Error("NPC should carry its dialogue lines")
	}

	seed, err := ws.GetByKey(ctx, world.KindItem, "glowing_seed")
	if err != nil {
		t.Fatal(err)
	}
	if seed == nil {
		t.Fatal("inferred object was not created")
	}
	if !seed.HasTag(entry.Tag()) {
		t.Errorf("object should carry the quest tag %q", entry.Tag())
	}

	limbo, err := ws.GetByKey(ctx, world.KindRoom, LimboKey)
	if err != nil {
		t.Fatal(err)
	}
	if limbo == nil {
		t.Fatal("limbo should be created on first use")
	}
	if guardian.Location != limbo.ID || seed.Location != limbo.ID {
		t.Error("inferred entities should be placed in limbo")
	}
	if limbo.HasTag(entry.Tag()) {
		t.Error("limbo is shared and must not carry a quest tag")
	}
}

func TestBuilder_Build_ErrorCleansUpPartialEntities(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	embedder := services.NewMockEmbedder()
	b := testBuilder(st, ws, embedder)
	ctx := context.Background()

	// The first location builds fine; the similarity search for the
	// second fails at the embedding oracle.
	failDesc := "The second location description."
	embedder.EncodeFunc = func(ctx context.Context, text string) ([]float64, error) {
		if text == failDesc {
			return nil, errors.New("embedding service unavailable")
		}
		return services.BagOfWordsVector(text), nil
	}

	entry := quest.NewEntry(&quest.Definition{
		Title: "Doomed",
		Locations: []quest.LocationDef{
			{Key: "first_camp", Desc: "The first location description, a quiet camp."},
			{Key: "second_camp", Desc: failDesc},
		},
	}, "")
	if err := st.SaveQuestEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}

	if err := b.Build(ctx, entry); err != nil {
		t.Fatalf("runtime build failure should be recorded, not returned: %v", err)
	}
	if entry.Status != quest.StatusError {
		t.Fatalf("expected error status, got %q", entry.Status)
	}

	saved, err := st.GetQuestEntry(ctx, entry.QuestID)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != quest.StatusError {
		t.Errorf("error status must be persisted, got %q", saved.Status)
	}

	tagged, err := ws.ListByTag(ctx, entry.Tag())
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 0 {
		t.Errorf("partial quest entities should be cleaned up, %d remain", len(tagged))
	}
}

func TestBuilder_Build_CreateFailureEndsInError(t *testing.T) {
	st := storage.NewMockStorage()
	ws := world.NewMockStore()
	b := testBuilder(st, ws, services.NewMockEmbedder())
	ctx := context.Background()

	ws.CreateErr = errors.New("store is read-only")

	entry := quest.NewEntry(&quest.Definition{
		Title:     "Unbuildable",
		Locations: []quest.LocationDef{{Key: "vault", Desc: "A sealed vault."}},
	}, "")
	if err := st.SaveQuestEntry(ctx, entry); err != nil {
		t.Fatal(err)
	}

	if err := b.Build(ctx, entry); err != nil {
		t.Fatal(err)
	}
	if entry.Status != quest.StatusError {
		t.Errorf("expected error status, got %q", entry.Status)
	}
}

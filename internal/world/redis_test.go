package world

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewRedisStore("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create store: %v", err)
	}

	return store, mr
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	room, err := store.CreateRoom(ctx, "blackwood_forest", "A dark, misty forest.", "quest:quest_abc12345")
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	if room.ID == "" {
		t.Fatal("created room should have an ID")
	}
	if room.Name != "Blackwood Forest" {
		t.Errorf("expected display name 'Blackwood Forest', got %q", room.Name)
	}

	loaded, err := store.Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("Failed to get room: %v", err)
	}
	if loaded == nil || loaded.Key != "blackwood_forest" {
		t.Fatalf("unexpected loaded entity: %+v", loaded)
	}
	if loaded.Kind != KindRoom {
		t.Errorf("expected kind room, got %q", loaded.Kind)
	}
}

func TestRedisStore_GetByKey(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	if _, err := store.CreateNPC(ctx, "spirit_guardian", "room-1", []string{"The forest remembers."}); err != nil {
		t.Fatalf("Failed to create NPC: %v", err)
	}

	npcEnt, err := store.GetByKey(ctx, KindNPC, "spirit_guardian")
	if err != nil {
		t.Fatalf("Failed to get by key: %v", err)
	}
	if npcEnt == nil {
		t.Fatal("expected NPC entity")
	}
	if len(npcEnt.Dialogue) != 1 {
		t.Errorf("dialogue should survive the round trip, got %+v", npcEnt.Dialogue)
	}

	missing, err := store.GetByKey(ctx, KindNPC, "nobody")
	if err != nil {
		t.Fatalf("missing key lookup should not error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown key, got %+v", missing)
	}
}

func TestRedisStore_ListByKind(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	if _, err := store.CreateRoom(ctx, "glade", "A sunny glade."); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateRoom(ctx, "crypt", "A sunken crypt."); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateItem(ctx, "seed", "", "A glowing seed."); err != nil {
		t.Fatal(err)
	}

	rooms, err := store.ListByKind(ctx, KindRoom)
	if err != nil {
		t.Fatalf("Failed to list rooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Errorf("expected 2 rooms, got %d", len(rooms))
	}
}

func TestRedisStore_SavePersistsEmbedding(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	room, err := store.CreateRoom(ctx, "glade", "A sunny glade.")
	if err != nil {
		t.Fatal(err)
	}

	room.Embedding = []float64{0.1, 0.2, 0.3}
	if err := store.Save(ctx, room); err != nil {
		t.Fatalf("Failed to save embedding: %v", err)
	}

	loaded, err := store.Get(ctx, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Embedding) != 3 {
		t.Errorf("embedding cache should persist, got %+v", loaded.Embedding)
	}
}

func TestRedisStore_DeleteByTag(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	tag := "quest:quest_dead8086"

	if _, err := store.CreateRoom(ctx, "ruin", "A collapsed ruin.", tag); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateItem(ctx, "relic", "", "A cracked relic.", tag); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateRoom(ctx, "keep", "An intact keep."); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteByTag(ctx, tag)
	if err != nil {
		t.Fatalf("Failed to delete by tag: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted entities, got %d", deleted)
	}

	tagged, err := store.ListByTag(ctx, tag)
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 0 {
		t.Errorf("tag index should be empty after delete, got %d", len(tagged))
	}

	rooms, err := store.ListByKind(ctx, KindRoom)
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 || rooms[0].Key != "keep" {
		t.Errorf("untagged room should survive, got %+v", rooms)
	}
}

func TestRedisStore_Tag(t *testing.T) {
	store, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	room, err := store.CreateRoom(ctx, "glade", "A sunny glade.")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Tag(ctx, room, "quest:quest_feed1234"); err != nil {
		t.Fatalf("Failed to tag: %v", err)
	}

	tagged, err := store.ListByTag(ctx, "quest:quest_feed1234")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 {
		t.Fatalf("expected 1 tagged entity, got %d", len(tagged))
	}

	// Tagging twice must not duplicate
	if err := store.Tag(ctx, tagged[0], "quest:quest_feed1234"); err != nil {
		t.Fatal(err)
	}
	reloaded, err := store.Get(ctx, room.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Tags) != 1 {
		t.Errorf("expected a single tag, got %+v", reloaded.Tags)
	}
}

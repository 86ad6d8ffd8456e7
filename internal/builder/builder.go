package builder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/questforge/internal/logger"
	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/internal/world"
	"github.com/jwebster45206/questforge/pkg/quest"
)

// LimboKey is the shared holding room for entities whose declared
// location could not be resolved. It is created on first use and never
// carries a quest tag, so error cleanup leaves it alone.
const LimboKey = "limbo"

const limboDesc = "A grey, featureless waiting place between destinations."

// Builder materializes pending quest entries into live game objects.
// It holds no state between builds; every attempt reloads its working
// set from storage, so the process can restart at any point.
type Builder struct {
	storage storage.Storage
	world   world.Store
	index   *EmbeddingIndex
	logger  *slog.Logger
}

// New creates a quest builder.
func New(st storage.Storage, ws world.Store, index *EmbeddingIndex, log *slog.Logger) *Builder {
	return &Builder{
		storage: st,
		world:   ws,
		index:   index,
		logger:  log,
	}
}

// BuildNext claims the oldest pending quest entry and builds it.
// Returns the entry in its terminal state, or (nil, nil) when nothing
// is pending. Only one entry is processed per call.
func (b *Builder) BuildNext(ctx context.Context) (*quest.Entry, error) {
	entry, err := b.storage.ClaimOldestPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending entry: %w", err)
	}
	if entry == nil {
		return nil, nil
	}
	if err := b.Build(ctx, entry); err != nil {
		return entry, err
	}
	return entry, nil
}

// Build materializes a single quest entry. Entries not in pending
// status are left untouched. A missing quest payload ends the entry in
// failed; any runtime error during entity creation ends it in error,
// after deleting the entities this build already created.
func (b *Builder) Build(ctx context.Context, entry *quest.Entry) error {
	if entry.Status != quest.StatusPending {
		b.logger.Debug("Skipping quest entry in non-pending status",
			"quest_id", entry.QuestID,
			"status", entry.Status)
		return nil
	}

	log := logger.WithQuest(b.logger, entry.QuestID, entry.Title)

	if entry.Quest == nil {
		log.Warn("Quest entry has no quest payload, marking failed")
		entry.Status = quest.StatusFailed
		return b.storage.SaveQuestEntry(ctx, entry)
	}

	if err := b.buildEntities(ctx, entry, log); err != nil {
		logger.WithError(log, err).Error("Quest build failed")
		deleted, cleanupErr := b.world.DeleteByTag(ctx, entry.Tag())
		if cleanupErr != nil {
			log.Error("Quest cleanup failed, orphaned entities remain",
				"tag", entry.Tag(),
				"error", cleanupErr.Error())
		} else if deleted > 0 {
			log.Info("Removed partial quest entities", "deleted", deleted)
		}
		entry.Status = quest.StatusError
		if saveErr := b.storage.SaveQuestEntry(ctx, entry); saveErr != nil {
			return fmt.Errorf("failed to persist error status: %w", saveErr)
		}
		return nil
	}

	entry.Status = quest.StatusBuilt
	now := time.Now()
	entry.CompletedAt = &now
	if err := b.storage.SaveQuestEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist built status: %w", err)
	}
	log.Info("Quest built")
	return nil
}

// buildEntities creates the quest's rooms, items and NPCs. Declared
// locations are resolved reuse-or-create: if an existing room's
// description is similar enough, it is reused instead of duplicated.
func (b *Builder) buildEntities(ctx context.Context, entry *quest.Entry, log *slog.Logger) error {
	def := entry.Quest
	ExpandGoals(def)

	tag := entry.Tag()

	// Declared location key to resolved room, for this build only.
	rooms := make(map[string]*world.Entity)

	for _, loc := range def.Locations {
		matches, err := b.index.FindSimilarAndCache(ctx, loc.Desc, 1)
		if err != nil {
			return fmt.Errorf("similarity search for location %s: %w", loc.Key, err)
		}
		if len(matches) > 0 {
			best := matches[0]
			log.Info("Reusing existing location",
				"declared_key", loc.Key,
				"existing_key", best.Location.Key,
				"score", best.Score)
			rooms[loc.Key] = best.Location
			continue
		}

		room, err := b.world.CreateRoom(ctx, loc.Key, loc.Desc, tag)
		if err != nil {
			return fmt.Errorf("create location %s: %w", loc.Key, err)
		}
		log.Info("Created quest location", "key", loc.Key)
		rooms[loc.Key] = room
	}

	for _, obj := range def.Objects {
		room, err := b.resolveLocation(ctx, rooms, obj.Location, log)
		if err != nil {
			return fmt.Errorf("resolve location for object %s: %w", obj.Key, err)
		}
		if _, err := b.world.CreateItem(ctx, obj.Key, room.ID, obj.Desc, tag); err != nil {
			return fmt.Errorf("create object %s: %w", obj.Key, err)
		}
		log.Info("Created quest object", "key", obj.Key, "location", room.Key)
	}

	for _, n := range def.NPCs {
		room, err := b.resolveLocation(ctx, rooms, n.Location, log)
		if err != nil {
			return fmt.Errorf("resolve location for npc %s: %w", n.Key, err)
		}
		if _, err := b.world.CreateNPC(ctx, n.Key, room.ID, n.Dialogue, tag); err != nil {
			return fmt.Errorf("create npc %s: %w", n.Key, err)
		}
		log.Info("Created quest npc", "key", n.Key, "location", room.Key)
	}

	return nil
}

// resolveLocation maps a declared location key to a room built or
// reused in this build, falling back to the shared limbo room when the
// key is empty or was never declared.
func (b *Builder) resolveLocation(ctx context.Context, rooms map[string]*world.Entity, key string, log *slog.Logger) (*world.Entity, error) {
	if key != "" {
		if room, ok := rooms[key]; ok {
			return room, nil
		}
	}

	limbo, err := b.world.GetByKey(ctx, world.KindRoom, LimboKey)
	if err != nil {
		return nil, fmt.Errorf("look up limbo: %w", err)
	}
	if limbo == nil {
		limbo, err = b.world.CreateRoom(ctx, LimboKey, limboDesc)
		if err != nil {
			return nil, fmt.Errorf("create limbo: %w", err)
		}
		log.Info("Created limbo holding room")
	}
	return limbo, nil
}

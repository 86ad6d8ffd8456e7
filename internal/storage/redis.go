package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jwebster45206/questforge/pkg/quest"
	"github.com/redis/go-redis/v9"
)

const (
	entryKeyPrefix    = "quest:entry:"
	pendingIndexKey   = "quest:pending"
	recentIndexKey    = "quest:recent"
	progressKeyPrefix = "quest:progress:"
)

// RedisStorage implements the Storage interface using Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Quest entry operations

func (r *RedisStorage) SaveQuestEntry(ctx context.Context, e *quest.Entry) error {
	e.UpdatedAt = time.Now()

	data, err := json.Marshal(e)
	if err != nil {
		r.logger.Error("Failed to marshal quest entry", "quest_id", e.QuestID, "error", err)
		return fmt.Errorf("failed to marshal quest entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, entryKeyPrefix+e.QuestID, data, 0)
	if e.Status == quest.StatusPending {
		pipe.ZAdd(ctx, pendingIndexKey, redis.Z{
			Score:  float64(e.CreatedAt.UnixNano()),
			Member: e.QuestID,
		})
	} else {
		pipe.ZRem(ctx, pendingIndexKey, e.QuestID)
	}
	pipe.ZAdd(ctx, recentIndexKey, redis.Z{
		Score:  float64(e.UpdatedAt.UnixNano()),
		Member: e.QuestID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save quest entry", "quest_id", e.QuestID, "error", err)
		return fmt.Errorf("failed to save quest entry: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetQuestEntry(ctx context.Context, questID string) (*quest.Entry, error) {
	data, err := r.client.Get(ctx, entryKeyPrefix+questID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load quest entry: %w", err)
	}

	var e quest.Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quest entry: %w", err)
	}
	return &e, nil
}

// ClaimOldestPending pops the lowest-scored (oldest) member of the
// pending index. ZPOPMIN is atomic in Redis, so two schedulers can
// never claim the same entry.
func (r *RedisStorage) ClaimOldestPending(ctx context.Context) (*quest.Entry, error) {
	popped, err := r.client.ZPopMin(ctx, pendingIndexKey, 1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to pop pending index: %w", err)
	}
	if len(popped) == 0 {
		return nil, nil
	}

	questID, ok := popped[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected pending index member: %v", popped[0].Member)
	}

	entry, err := r.GetQuestEntry(ctx, questID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		r.logger.Warn("Pending index referenced a missing entry", "quest_id", questID)
		return nil, nil
	}
	return entry, nil
}

func (r *RedisStorage) ListRecentByStatus(ctx context.Context, statuses []quest.Status, limit int) ([]*quest.Entry, error) {
	ids, err := r.client.ZRevRange(ctx, recentIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recency index: %w", err)
	}

	wanted := make(map[quest.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	entries := make([]*quest.Entry, 0, limit)
	for _, id := range ids {
		if limit > 0 && len(entries) >= limit {
			break
		}
		e, err := r.GetQuestEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		if e != nil && wanted[e.Status] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Quest progress operations

func progressKey(character, questID string) string {
	return progressKeyPrefix + character + ":" + questID
}

func (r *RedisStorage) SaveProgress(ctx context.Context, p *quest.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal quest progress: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, progressKey(p.Character, p.QuestID), data, 0)
	pipe.SAdd(ctx, progressKeyPrefix+"index:"+p.Character, p.QuestID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save quest progress: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetProgress(ctx context.Context, character, questID string) (*quest.Progress, error) {
	data, err := r.client.Get(ctx, progressKey(character, questID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load quest progress: %w", err)
	}

	var p quest.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quest progress: %w", err)
	}
	return &p, nil
}

func (r *RedisStorage) ListProgress(ctx context.Context, character string) ([]*quest.Progress, error) {
	ids, err := r.client.SMembers(ctx, progressKeyPrefix+"index:"+character).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read progress index: %w", err)
	}
	sort.Strings(ids)

	records := make([]*quest.Progress, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetProgress(ctx, character, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			records = append(records, p)
		}
	}
	return records, nil
}

package world

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/questforge/pkg/quest"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements the Store interface using Redis. Entities are
// stored as JSON with secondary indexes per kind, per tag, and per
// (kind, key).
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-backed world store.
func NewRedisStore(redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStore{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func entityKey(id string) string {
	return "entity:" + id
}

func kindIndexKey(kind Kind) string {
	return "entities:kind:" + string(kind)
}

func tagIndexKey(tag string) string {
	return "entities:tag:" + tag
}

func keyIndexKey(kind Kind, key string) string {
	return fmt.Sprintf("entity:key:%s:%s", kind, key)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (s *RedisStore) create(ctx context.Context, e *Entity) (*Entity, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	if e.Name == "" {
		e.Name = quest.DisplayName(e.Key)
	}

	if err := s.persist(ctx, e); err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, kindIndexKey(e.Kind), e.ID)
	pipe.Set(ctx, keyIndexKey(e.Kind, e.Key), e.ID, 0)
	for _, tag := range e.Tags {
		pipe.SAdd(ctx, tagIndexKey(tag), e.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to index entity: %w", err)
	}

	s.logger.Debug("Created entity", "kind", e.Kind, "key", e.Key, "id", e.ID)
	return e, nil
}

func (s *RedisStore) persist(ctx context.Context, e *Entity) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := s.client.Set(ctx, entityKey(e.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

func (s *RedisStore) CreateRoom(ctx context.Context, key, desc string, tags ...string) (*Entity, error) {
	return s.create(ctx, &Entity{
		Kind:        KindRoom,
		Key:         key,
		Description: desc,
		Tags:        tags,
	})
}

func (s *RedisStore) CreateItem(ctx context.Context, key, locationID, desc string, tags ...string) (*Entity, error) {
	return s.create(ctx, &Entity{
		Kind:        KindItem,
		Key:         key,
		Location:    locationID,
		Description: desc,
		Tags:        tags,
	})
}

func (s *RedisStore) CreateNPC(ctx context.Context, key, locationID string, dialogue []string, tags ...string) (*Entity, error) {
	return s.create(ctx, &Entity{
		Kind:     KindNPC,
		Key:      key,
		Location: locationID,
		Dialogue: dialogue,
		Tags:     tags,
	})
}

func (s *RedisStore) Save(ctx context.Context, e *Entity) error {
	if e.ID == "" {
		return fmt.Errorf("cannot save entity without an ID")
	}
	return s.persist(ctx, e)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Entity, error) {
	data, err := s.client.Get(ctx, entityKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}

	var e Entity
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return &e, nil
}

func (s *RedisStore) GetByKey(ctx context.Context, kind Kind, key string) (*Entity, error) {
	id, err := s.client.Get(ctx, keyIndexKey(kind, key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve entity key: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) ListByKind(ctx context.Context, kind Kind) ([]*Entity, error) {
	return s.listByIndex(ctx, kindIndexKey(kind))
}

func (s *RedisStore) ListByTag(ctx context.Context, tag string) ([]*Entity, error) {
	return s.listByIndex(ctx, tagIndexKey(tag))
}

func (s *RedisStore) listByIndex(ctx context.Context, indexKey string) ([]*Entity, error) {
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entity index: %w", err)
	}

	entities := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if e != nil {
			entities = append(entities, e)
		}
	}
	return entities, nil
}

func (s *RedisStore) Tag(ctx context.Context, e *Entity, tag string) error {
	if e.HasTag(tag) {
		return nil
	}
	e.Tags = append(e.Tags, tag)
	if err := s.persist(ctx, e); err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, tagIndexKey(tag), e.ID).Err(); err != nil {
		return fmt.Errorf("failed to index tag: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteByTag(ctx context.Context, tag string) (int, error) {
	entities, err := s.ListByTag(ctx, tag)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, e := range entities {
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, entityKey(e.ID))
		pipe.Del(ctx, keyIndexKey(e.Kind, e.Key))
		pipe.SRem(ctx, kindIndexKey(e.Kind), e.ID)
		for _, t := range e.Tags {
			pipe.SRem(ctx, tagIndexKey(t), e.ID)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return deleted, fmt.Errorf("failed to delete entity %s: %w", e.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("Deleted tagged entities", "tag", tag, "count", deleted)
	}
	return deleted, nil
}

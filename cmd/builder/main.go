package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/questforge/internal/builder"
	"github.com/jwebster45206/questforge/internal/config"
	"github.com/jwebster45206/questforge/internal/logger"
	"github.com/jwebster45206/questforge/internal/services"
	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/internal/world"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting QuestForge Builder",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"interval", cfg.BuilderInterval,
		"similarity_threshold", cfg.SimilarityThreshold)

	questStorage, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := questStorage.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := questStorage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	worldStore, err := world.NewRedisStore(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create world store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := worldStore.Close(); err != nil {
			log.Error("Error closing world store connection", "error", err)
		}
	}()

	// The embedding oracle is always Ollama, regardless of which
	// provider generates chat completions.
	embedder := services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, cfg.EmbeddingModel, cfg.LLMTimeout, log)

	index := builder.NewEmbeddingIndex(worldStore, embedder, cfg.SimilarityThreshold)
	b := builder.New(questStorage, worldStore, index, log)
	log.Info("Quest builder initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go run(ctx, b, cfg.BuilderInterval, log, done)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Builder is shutting down...")
	cancel()
	<-done
	log.Info("Builder exited")
}

// run ticks the builder until the context is cancelled. One quest
// entry is built per tick; build failures are recorded on the entry
// and never stop the loop.
func run(ctx context.Context, b *builder.Builder, interval time.Duration, log *slog.Logger, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entry, err := b.BuildNext(ctx)
			if err != nil {
				log.Error("Build tick failed", "error", err)
				continue
			}
			if entry != nil {
				log.Info("Build tick processed entry",
					"quest_id", entry.QuestID,
					"status", entry.Status)
			}
		}
	}
}

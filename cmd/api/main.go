package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jwebster45206/questforge/internal/config"
	"github.com/jwebster45206/questforge/internal/handlers"
	"github.com/jwebster45206/questforge/internal/logger"
	"github.com/jwebster45206/questforge/internal/middleware"
	"github.com/jwebster45206/questforge/internal/services"
	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/internal/tracker"
	"github.com/jwebster45206/questforge/internal/world"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting QuestForge API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.LLMTimeout, log)
		log.Info("Using Anthropic LLM provider")
	case "ollama":
		llmService = services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, cfg.EmbeddingModel, cfg.LLMTimeout, log)
		log.Info("Using Ollama LLM provider", "url", cfg.OllamaURL)
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "ollama"})
		os.Exit(1)
	}

	questStorage, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := questStorage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	worldStore, err := world.NewRedisStore(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create world store", "error", err)
		os.Exit(1)
	}

	// Initialize the model on startup
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	questTracker := tracker.New(questStorage, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(questStorage, log)
	mux.Handle("/health", healthHandler)

	chatHandler := handlers.NewChatHandler(llmService, worldStore, questStorage, log, cfg.LLMTimeout)
	mux.Handle("/v1/chat", chatHandler)

	npcsHandler := handlers.NewNPCsHandler(worldStore, log)
	mux.Handle("/v1/npcs", npcsHandler)

	questStatusHandler := handlers.NewQuestStatusHandler(questStorage, log)
	mux.Handle("/v1/queststatus", questStatusHandler)

	questsHandler := handlers.NewQuestsHandler(questTracker, questStorage, log)
	mux.Handle("/v1/quests", questsHandler)
	mux.Handle("/v1/quests/", questsHandler)

	realmsHandler := handlers.NewRealmsHandler(nil, log)
	mux.Handle("/v1/realms/", realmsHandler)

	handler := middleware.Logger(mux, log)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := questStorage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if err := worldStore.Close(); err != nil {
		log.Error("Error closing world store connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

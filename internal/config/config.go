package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string

	// LLM oracle
	LLMProvider     string // "anthropic" or "ollama"
	AnthropicAPIKey string
	ModelName       string
	OllamaURL       string

	// Embedding oracle
	EmbeddingModel string

	// Quest builder
	SimilarityThreshold float64
	BuilderInterval     time.Duration
	LLMTimeout          time.Duration
}

const (
	// DefaultSimilarityThreshold is the location-reuse cutoff for
	// cosine similarity between location descriptions.
	DefaultSimilarityThreshold = 0.70

	DefaultBuilderInterval = 60 * time.Second
	DefaultLLMTimeout      = 45 * time.Second
)

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ModelName:       getEnv("MODEL_NAME", "llama3.1"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text"),

		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", DefaultSimilarityThreshold),
		BuilderInterval:     getEnvDuration("BUILDER_INTERVAL", DefaultBuilderInterval),
		LLMTimeout:          getEnvDuration("LLM_TIMEOUT", DefaultLLMTimeout),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

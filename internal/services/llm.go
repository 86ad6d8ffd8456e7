package services

import (
	"context"

	"github.com/jwebster45206/questforge/pkg/chat"
)

// LLMResponse is a raw completion returned by a provider, before any
// NPC post-processing.
type LLMResponse struct {
	Message string

	// FinishReason is normalized across providers: "length" means the
	// response was truncated at the token limit.
	FinishReason string
}

// LLMService defines the interface for the text-completion oracle.
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a completion for the assembled messages
	Chat(ctx context.Context, messages []chat.ChatMessage) (*LLMResponse, error)
}

// Embedder defines the interface for the embedding oracle. Encode is
// deterministic for identical input, and the returned vectors are
// comparable via cosine similarity.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
}

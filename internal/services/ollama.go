package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/questforge/pkg/chat"
)

// OllamaService implements LLMService and Embedder against a local
// Ollama instance. Chat and embedding requests may block for seconds;
// callers bound them with a context deadline.
type OllamaService struct {
	baseURL        string
	modelName      string
	embeddingModel string
	httpClient     *http.Client
	logger         *slog.Logger
}

var (
	_ LLMService = (*OllamaService)(nil)
	_ Embedder   = (*OllamaService)(nil)
)

// NewOllamaService creates a new Ollama service instance
func NewOllamaService(baseURL, modelName, embeddingModel string, timeout time.Duration, logger *slog.Logger) *OllamaService {
	return &OllamaService{
		baseURL:        baseURL,
		modelName:      modelName,
		embeddingModel: embeddingModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// InitModel checks that the chat model is available, pulling it if needed.
func (s *OllamaService) InitModel(ctx context.Context, modelName string) error {
	s.logger.Info("Initializing LLM model", "model", modelName)

	ready, err := s.isModelReady(ctx, modelName)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}

	if !ready {
		s.logger.Info("Model not found, pulling it", "model", modelName)
		if err := s.pullModel(ctx, modelName); err != nil {
			return fmt.Errorf("failed to pull model: %w", err)
		}
		s.logger.Info("Model pulled successfully", "model", modelName)
	} else {
		s.logger.Info("Model already available", "model", modelName)
	}

	return nil
}

type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

// Chat generates a chat response using the Ollama API (non-streaming).
func (s *OllamaService) Chat(ctx context.Context, messages []chat.ChatMessage) (*LLMResponse, error) {
	reqBody := map[string]interface{}{
		"model":    s.modelName,
		"messages": messages,
		"stream":   false,
	}

	var resp ollamaChatResponse
	if err := s.post(ctx, "/api/chat", reqBody, &resp); err != nil {
		return nil, err
	}

	return &LLMResponse{
		Message:      resp.Message.Content,
		FinishReason: resp.DoneReason,
	}, nil
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Encode computes an embedding vector for the given text.
func (s *OllamaService) Encode(ctx context.Context, text string) ([]float64, error) {
	reqBody := map[string]interface{}{
		"model":  s.embeddingModel,
		"prompt": text,
	}

	var resp ollamaEmbeddingResponse
	if err := s.post(ctx, "/api/embeddings", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response was empty")
	}
	return resp.Embedding, nil
}

func (s *OllamaService) post(ctx context.Context, path string, reqBody interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := s.baseURL + path
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Ollama API returned error",
			"status_code", resp.StatusCode,
			"path", path,
			"response_body", responseBody.String())
		return fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(responseBody.Bytes(), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (s *OllamaService) isModelReady(ctx context.Context, modelName string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("failed to parse tags response: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == modelName {
			return true, nil
		}
	}
	return false, nil
}

func (s *OllamaService) pullModel(ctx context.Context, modelName string) error {
	reqBody := map[string]interface{}{
		"name":   modelName,
		"stream": false,
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := s.post(ctx, "/api/pull", reqBody, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("unexpected pull status: %s", resp.Status)
	}
	return nil
}

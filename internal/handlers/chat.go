package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/questforge/internal/services"
	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/internal/world"
	"github.com/jwebster45206/questforge/pkg/chat"
	"github.com/jwebster45206/questforge/pkg/npc"
	"github.com/jwebster45206/questforge/pkg/quest"
)

// ChatHandler handles player-to-NPC conversation. Every NPC reply is
// scored for quest-worthiness; eligible replies are structured via a
// second LLM call and enqueued as pending quest entries.
type ChatHandler struct {
	llmService services.LLMService
	worldStore world.Store
	storage    storage.Storage
	logger     *slog.Logger
	llmTimeout time.Duration
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(llmService services.LLMService, worldStore world.Store, st storage.Storage, logger *slog.Logger, llmTimeout time.Duration) *ChatHandler {
	return &ChatHandler{
		llmService: llmService,
		worldStore: worldStore,
		storage:    st,
		logger:     logger,
		llmTimeout: llmTimeout,
	}
}

// ServeHTTP handles HTTP requests for chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		h.writeResponse(w, http.StatusMethodNotAllowed, chat.ChatResponse{
			Error: "Method not allowed. Only POST is supported.",
		})
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		h.writeResponse(w, http.StatusBadRequest, chat.ChatResponse{
			Error: "Invalid request body. Expected JSON with 'npc_key' and 'message' fields.",
		})
		return
	}
	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid chat request", "error", err)
		h.writeResponse(w, http.StatusBadRequest, chat.ChatResponse{
			Error: err.Error(),
		})
		return
	}

	npcEntity, err := h.worldStore.GetByKey(r.Context(), world.KindNPC, request.NPCKey)
	if err != nil {
		h.logger.Error("Error loading NPC", "npc_key", request.NPCKey, "error", err)
		h.writeResponse(w, http.StatusInternalServerError, chat.ChatResponse{
			Error: "Failed to load NPC.",
		})
		return
	}
	if npcEntity == nil {
		h.writeResponse(w, http.StatusNotFound, chat.ChatResponse{
			Error: "NPC not found: " + request.NPCKey,
		})
		return
	}

	persona := npcEntity.Persona
	if persona == "" {
		persona = npcEntity.Name
	}
	if npcEntity.Conversation == nil {
		npcEntity.Conversation = &npc.Conversation{}
	}

	messages := quest.NPCMessages(persona, npcEntity.Conversation.Recent(), request.Message)

	ctx, cancel := context.WithTimeout(r.Context(), h.llmTimeout)
	defer cancel()

	llmResponse, err := h.llmService.Chat(ctx, messages)
	if err != nil {
		// A failed oracle call degrades to a canned line. The turn is
		// not recorded and no quest entry is created.
		h.logger.Error("Error generating NPC response",
			"npc_key", request.NPCKey,
			"error", err)
		h.writeResponse(w, http.StatusOK, chat.ChatResponse{
			NPCKey:  request.NPCKey,
			Message: npc.FallbackLine,
		})
		return
	}

	reply := npc.CleanResponse(llmResponse.Message, llmResponse.FinishReason)

	npcEntity.Conversation.Record(request.Message, reply)
	if err := h.worldStore.Save(r.Context(), npcEntity); err != nil {
		h.logger.Error("Error saving NPC conversation",
			"npc_key", request.NPCKey,
			"error", err)
	}

	response := chat.ChatResponse{
		NPCKey:  request.NPCKey,
		Message: reply,
	}

	evaluator := quest.NewEvaluator(reply)
	if evaluator.IsEligible() {
		if questID := h.enqueueQuest(r.Context(), reply, request.Character); questID != "" {
			response.QuestID = questID
		}
	}

	h.writeResponse(w, http.StatusOK, response)
}

// enqueueQuest asks the model to structure a quest-worthy NPC reply as
// JSON and persists it as a pending entry. Failures here never affect
// the conversational response; they are logged and swallowed.
func (h *ChatHandler) enqueueQuest(ctx context.Context, reply, character string) string {
	ctx, cancel := context.WithTimeout(ctx, h.llmTimeout)
	defer cancel()

	llmResponse, err := h.llmService.Chat(ctx, quest.QuestMessages(reply))
	if err != nil {
		h.logger.Error("Error structuring quest", "error", err)
		return ""
	}

	def, err := quest.ExtractDefinition(llmResponse.Message)
	if err != nil {
		h.logger.Error("Error extracting quest definition", "error", err)
		return ""
	}
	if def == nil {
		h.logger.Info("Quest-worthy response produced no extractable quest")
		return ""
	}
	def.OriginatingResponse = reply

	entry := quest.NewEntry(def, character)
	if err := h.storage.SaveQuestEntry(ctx, entry); err != nil {
		h.logger.Error("Error saving quest entry",
			"quest_id", entry.QuestID,
			"error", err)
		return ""
	}

	h.logger.Info("Quest entry enqueued",
		"quest_id", entry.QuestID,
		"quest_title", entry.Title,
		"triggered_by", character)
	return entry.QuestID
}

func (h *ChatHandler) writeResponse(w http.ResponseWriter, status int, response chat.ChatResponse) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding chat response", "error", err)
	}
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/internal/tracker"
	"github.com/jwebster45206/questforge/pkg/quest"
)

// ProgressRequest is the body for begin/complete/abandon calls.
type ProgressRequest struct {
	Character string `json:"character"`
	StartStep string `json:"start_step,omitempty"`
}

type ProgressResponse struct {
	Progress *quest.Progress   `json:"progress,omitempty"`
	Quests   []*quest.Progress `json:"quests,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// QuestsHandler exposes the per-character quest tracker:
//
//	POST /v1/quests/{quest_id}/begin
//	POST /v1/quests/{quest_id}/complete
//	POST /v1/quests/{quest_id}/abandon
//	GET  /v1/quests?character=...&status=active|completed
type QuestsHandler struct {
	tracker *tracker.Tracker
	storage storage.Storage
	logger  *slog.Logger
}

func NewQuestsHandler(tr *tracker.Tracker, st storage.Storage, logger *slog.Logger) *QuestsHandler {
	return &QuestsHandler{
		tracker: tr,
		storage: st,
		logger:  logger,
	}
}

func (h *QuestsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/quests")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleList(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) != 2 {
		h.writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	questID, action := parts[0], parts[1]

	var request ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'character' field.")
		return
	}
	if request.Character == "" {
		h.writeError(w, http.StatusBadRequest, "character cannot be empty")
		return
	}

	switch action {
	case "begin":
		h.handleBegin(w, r, questID, request)
	case "complete":
		p, err := h.tracker.Complete(r.Context(), request.Character, questID)
		h.writeProgress(w, p, err, "Error completing quest")
	case "abandon":
		p, err := h.tracker.Abandon(r.Context(), request.Character, questID)
		h.writeProgress(w, p, err, "Error abandoning quest")
	default:
		h.writeError(w, http.StatusNotFound, "Unknown action: "+action)
	}
}

// handleBegin starts a built quest for a character. Only built quests
// can be begun; pending, failed and errored entries are rejected.
func (h *QuestsHandler) handleBegin(w http.ResponseWriter, r *http.Request, questID string, request ProgressRequest) {
	entry, err := h.storage.GetQuestEntry(r.Context(), questID)
	if err != nil {
		h.logger.Error("Error loading quest entry", "quest_id", questID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load quest.")
		return
	}
	if entry == nil {
		h.writeError(w, http.StatusNotFound, "Quest not found: "+questID)
		return
	}
	if entry.Status != quest.StatusBuilt {
		h.writeError(w, http.StatusConflict, "Quest is not built: "+string(entry.Status))
		return
	}

	p, err := h.tracker.Begin(r.Context(), request.Character, questID, request.StartStep)
	h.writeProgress(w, p, err, "Error beginning quest")
}

func (h *QuestsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	character := r.URL.Query().Get("character")
	if character == "" {
		h.writeError(w, http.StatusBadRequest, "character query parameter is required")
		return
	}

	var (
		quests []*quest.Progress
		err    error
	)
	switch r.URL.Query().Get("status") {
	case "", "active":
		quests, err = h.tracker.Active(r.Context(), character)
	case "completed":
		quests, err = h.tracker.Completed(r.Context(), character)
	default:
		h.writeError(w, http.StatusBadRequest, "status must be active or completed")
		return
	}
	if err != nil {
		h.logger.Error("Error listing quest progress", "character", character, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list quests.")
		return
	}

	w.WriteHeader(http.StatusOK)
	h.encode(w, ProgressResponse{Quests: quests})
}

func (h *QuestsHandler) writeProgress(w http.ResponseWriter, p *quest.Progress, err error, logMsg string) {
	if err != nil {
		h.logger.Error(logMsg, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Quest progress operation failed.")
		return
	}
	if p == nil {
		h.writeError(w, http.StatusNotFound, "No progress record for this quest.")
		return
	}
	w.WriteHeader(http.StatusOK)
	h.encode(w, ProgressResponse{Progress: p})
}

func (h *QuestsHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	h.encode(w, ProgressResponse{Error: msg})
}

func (h *QuestsHandler) encode(w http.ResponseWriter, response ProgressResponse) {
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding quests response", "error", err)
	}
}

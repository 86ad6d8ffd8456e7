package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/pkg/quest"
)

// DefaultStatusLimit bounds the quest status listing when the caller
// does not specify one.
const DefaultStatusLimit = 10

// QuestStatusEntry is one row of the inspection surface.
type QuestStatusEntry struct {
	QuestID     string       `json:"quest_id"`
	Title       string       `json:"title"`
	Status      quest.Status `json:"status"`
	TriggeredBy string       `json:"triggered_by,omitempty"`
	LastUpdated time.Time    `json:"last_updated"`
}

type QuestStatusResponse struct {
	Quests []QuestStatusEntry `json:"quests"`
	Error  string             `json:"error,omitempty"`
}

// QuestStatusHandler lists recent quest build outcomes. This is the
// only surface where build failures become visible; players never see
// them directly.
type QuestStatusHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewQuestStatusHandler(st storage.Storage, logger *slog.Logger) *QuestStatusHandler {
	return &QuestStatusHandler{
		storage: st,
		logger:  logger,
	}
}

func (h *QuestStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, QuestStatusResponse{Error: "Method not allowed. Only GET is supported."})
		return
	}

	limit := DefaultStatusLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			w.WriteHeader(http.StatusBadRequest)
			h.encode(w, QuestStatusResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	statuses := []quest.Status{quest.StatusBuilt, quest.StatusError}
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = []quest.Status{quest.Status(raw)}
	}

	entries, err := h.storage.ListRecentByStatus(r.Context(), statuses, limit)
	if err != nil {
		h.logger.Error("Error listing quest entries", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, QuestStatusResponse{Error: "Failed to list quest entries."})
		return
	}

	response := QuestStatusResponse{Quests: make([]QuestStatusEntry, 0, len(entries))}
	for _, e := range entries {
		response.Quests = append(response.Quests, QuestStatusEntry{
			QuestID:     e.QuestID,
			Title:       e.Title,
			Status:      e.Status,
			TriggeredBy: e.TriggeredBy,
			LastUpdated: e.UpdatedAt,
		})
	}

	w.WriteHeader(http.StatusOK)
	h.encode(w, response)
}

func (h *QuestStatusHandler) encode(w http.ResponseWriter, response QuestStatusResponse) {
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding quest status response", "error", err)
	}
}

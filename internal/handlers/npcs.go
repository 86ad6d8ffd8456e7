package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jwebster45206/questforge/internal/world"
)

// NPCSummary is one row of the NPC listing.
type NPCSummary struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type NPCListResponse struct {
	NPCs  []NPCSummary `json:"npcs"`
	Error string       `json:"error,omitempty"`
}

// NPCsHandler lists the NPCs available for conversation.
type NPCsHandler struct {
	worldStore world.Store
	logger     *slog.Logger
}

func NewNPCsHandler(ws world.Store, logger *slog.Logger) *NPCsHandler {
	return &NPCsHandler{
		worldStore: ws,
		logger:     logger,
	}
}

func (h *NPCsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, NPCListResponse{Error: "Method not allowed. Only GET is supported."})
		return
	}

	npcs, err := h.worldStore.ListByKind(r.Context(), world.KindNPC)
	if err != nil {
		h.logger.Error("Error listing NPCs", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, NPCListResponse{Error: "Failed to list NPCs."})
		return
	}

	response := NPCListResponse{NPCs: make([]NPCSummary, 0, len(npcs))}
	for _, n := range npcs {
		response.NPCs = append(response.NPCs, NPCSummary{
			Key:      n.Key,
			Name:     n.Name,
			Location: n.Location,
		})
	}
	sort.Slice(response.NPCs, func(i, j int) bool {
		return response.NPCs[i].Key < response.NPCs[j].Key
	})

	w.WriteHeader(http.StatusOK)
	h.encode(w, response)
}

func (h *NPCsHandler) encode(w http.ResponseWriter, response NPCListResponse) {
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding NPC list response", "error", err)
	}
}

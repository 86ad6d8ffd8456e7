package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/jwebster45206/questforge/pkg/realm"
)

// SpawnResponse reports the outcome of one spawn roll.
type SpawnResponse struct {
	Realm   string `json:"realm"`
	Spawned bool   `json:"spawned"`
	Key     string `json:"key,omitempty"`
	Rare    bool   `json:"rare,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RealmsHandler drives creature spawning:
//
//	POST /v1/realms/{realm_key}/spawn
//
// Each call is one spawner tick for the realm.
type RealmsHandler struct {
	mu       sync.Mutex // guards spawners and each spawner's tick state
	spawners map[string]*realm.Spawner
	newSpawn func() *realm.Spawner
	logger   *slog.Logger
}

func NewRealmsHandler(newSpawn func() *realm.Spawner, logger *slog.Logger) *RealmsHandler {
	if newSpawn == nil {
		newSpawn = func() *realm.Spawner { return realm.NewSpawner(nil) }
	}
	return &RealmsHandler{
		spawners: make(map[string]*realm.Spawner),
		newSpawn: newSpawn,
		logger:   logger,
	}
}

func (h *RealmsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/realms"), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "spawn" {
		w.WriteHeader(http.StatusNotFound)
		h.encode(w, SpawnResponse{Error: "Not found."})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, SpawnResponse{Error: "Method not allowed. Only POST is supported."})
		return
	}

	realmKey := parts[0]
	rlm := realm.Get(realmKey)

	h.mu.Lock()
	spawner, ok := h.spawners[realmKey]
	if !ok {
		spawner = h.newSpawn()
		h.spawners[realmKey] = spawner
	}
	creature, err := spawner.Tick(rlm)
	h.mu.Unlock()
	if err != nil {
		h.logger.Error("Spawn tick failed", "realm", realmKey, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, SpawnResponse{Error: "Spawn failed."})
		return
	}

	response := SpawnResponse{Realm: rlm.Name}
	if creature == nil {
		response.Message = rlm.NoSpawnMessage
	} else {
		response.Spawned = true
		response.Key = creature.Key
		response.Rare = creature.Rare
		h.logger.Info("Creature spawned", "realm", realmKey, "key", creature.Key, "rare", creature.Rare)
	}

	w.WriteHeader(http.StatusOK)
	h.encode(w, response)
}

func (h *RealmsHandler) encode(w http.ResponseWriter, response SpawnResponse) {
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding spawn response", "error", err)
	}
}

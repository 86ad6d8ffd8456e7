package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/questforge/internal/world"
)

func TestNPCsHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ws := world.NewMockStore()
	ctx := context.Background()

	room, err := ws.CreateRoom(ctx, "hermit_hut", "A small hut.")
	assert.NoError(t, err)
	_, err = ws.CreateNPC(ctx, "old_hermit", room.ID, nil)
	assert.NoError(t, err)
	_, err = ws.CreateNPC(ctx, "gatekeeper", room.ID, nil)
	assert.NoError(t, err)
	_, err = ws.CreateItem(ctx, "lantern", room.ID, "A brass lantern.")
	assert.NoError(t, err)

	handler := NewNPCsHandler(ws, logger)
	req := httptest.NewRequest(http.MethodGet, "/v1/npcs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response NPCListResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	if assert.Len(t, response.NPCs, 2, "items and rooms are not NPCs") {
		assert.Equal(t, "gatekeeper", response.NPCs[0].Key)
		assert.Equal(t, "old_hermit", response.NPCs[1].Key)
		assert.Equal(t, "Old Hermit", response.NPCs[1].Name)
	}
}

func TestNPCsHandler_MethodNotAllowed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	handler := NewNPCsHandler(world.NewMockStore(), logger)

	req := httptest.NewRequest(http.MethodPost, "/v1/npcs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/questforge/internal/handlers"
	"github.com/jwebster45206/questforge/pkg/chat"
	"github.com/jwebster45206/questforge/pkg/quest"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%s", errorResp.Error)
	}
	return body, nil
}

func listNPCs(client *http.Client, baseURL string) ([]handlers.NPCSummary, error) {
	resp, err := client.Get(baseURL + "/v1/npcs")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var response handlers.NPCListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse NPC list response: %w", err)
	}
	return response.NPCs, nil
}

func sendChat(client *http.Client, baseURL string, request chat.ChatRequest) (*chat.ChatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/chat", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var chatResp chat.ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	return &chatResp, nil
}

func fetchQuestStatus(client *http.Client, baseURL string) ([]handlers.QuestStatusEntry, error) {
	resp, err := client.Get(baseURL + "/v1/queststatus")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var response handlers.QuestStatusResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse quest status response: %w", err)
	}
	return response.Quests, nil
}

func fetchActiveQuests(client *http.Client, baseURL, character string) ([]*quest.Progress, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/quests?character=%s&status=active", baseURL, character))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var response handlers.ProgressResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse quest list response: %w", err)
	}
	return response.Quests, nil
}

func beginQuest(client *http.Client, baseURL, character, questID string) (*quest.Progress, error) {
	request := handlers.ProgressRequest{Character: character}
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/quests/%s/begin", baseURL, questID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var response handlers.ProgressResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse progress response: %w", err)
	}
	return response.Progress, nil
}

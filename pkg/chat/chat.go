package chat

import "fmt"

// ChatRequest represents a player message spoken to an NPC
// through the questforge api.
type ChatRequest struct {
	NPCKey    string `json:"npc_key"`             // Which NPC is being addressed
	Character string `json:"character,omitempty"` // Speaking character, used for quest attribution
	Message   string `json:"message"`
}

// ChatResponse is the NPC's reply. QuestID is set only when the reply
// was detected as quest-worthy and persisted as a pending quest entry.
type ChatResponse struct {
	NPCKey  string `json:"npc_key,omitempty"`
	Message string `json:"message,omitempty"`
	QuestID string `json:"quest_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC
	ChatRoleSystem = "system"    // Persona or schema instructions
)

// ChatMessage represents a single chat message in the conversation.
// This shape is shared by the Ollama and Anthropic chat APIs.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

func (cr *ChatRequest) Validate() error {
	if cr.NPCKey == "" {
		return fmt.Errorf("npc_key cannot be empty")
	}
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

package npc

import "github.com/jwebster45206/questforge/pkg/chat"

const (
	// DefaultMaxHistory bounds how many messages are retained per NPC.
	DefaultMaxHistory = 10

	// RecentWindow is how many retained messages are sent to the LLM.
	RecentWindow = 6
)

// Conversation is the bounded chat history between players and one NPC.
// It is mutable state attached to the NPC's world entity.
type Conversation struct {
	MaxHistory int                `json:"max_history,omitempty"`
	Messages   []chat.ChatMessage `json:"messages,omitempty"`
}

func (c *Conversation) maxHistory() int {
	if c.MaxHistory > 0 {
		return c.MaxHistory
	}
	return DefaultMaxHistory
}

// Record appends a player message and the NPC's reply, trimming the
// history to the retention bound.
func (c *Conversation) Record(playerMessage, npcReply string) {
	c.Messages = append(c.Messages,
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: playerMessage},
		chat.ChatMessage{Role: chat.ChatRoleAgent, Content: npcReply},
	)
	if max := c.maxHistory(); len(c.Messages) > max {
		c.Messages = c.Messages[len(c.Messages)-max:]
	}
}

// Recent returns the trailing window of history to include in the
// next LLM request.
func (c *Conversation) Recent() []chat.ChatMessage {
	if len(c.Messages) <= RecentWindow {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-RecentWindow:]
}

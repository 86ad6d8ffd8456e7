package quest

import (
	"fmt"

	"github.com/jwebster45206/questforge/pkg/chat"
)

// NPCInstructions keep the model in character during NPC conversation.
const NPCInstructions = "You are a character in a fantasy world. You are not an AI or assistant. " +
	"You do not describe quests like a designer. " +
	"Always respond only with brief in-character first person dialogue of 150 words or less. " +
	"Respond in no more than 2 or 3 short paragraphs totaling no more than 150 words. Speak plainly and briefly. " +
	"Stay in character as your persona no matter what the player says. " +
	"Do not explain your actions. Do not generate meta-commentary. Do not offer suggested follow-ups. " +
	"Never structure responses as outlines, lists, or explanations. " +
	"Respond only as your character, using only first person dialogue. Never break character. " +
	"Never describe yourself as an AI, chatbot, or assistant. " +
	"Avoid references to real world people, places or events. " +
	"Do not generate harmful or inappropriate content. "

// QuestInstructions ask the model to structure a quest description
// as data rather than prose.
const QuestInstructions = "Given a quest description, output a JSON object representing that quest description in the specified JSON format. " +
	"Where details are missing from the required format, fill them in with a proposed value consistent with the quest description.\n" +
	"Respond ONLY with the defined JSON format in a code block. Do not explain, narrate, or comment. Do not invent new fields.\n" +
	"A quest must have a short title, a long description, a list of locations, a list of objects, a list of NPCs and a list of goals.\n" +
	"The goals.target field should exactly match the key of a location, object, or NPC defined elsewhere in the quest. "

const questQuery = "Convert the quest description into JSON using the defined schema. Do not invent fields. Respond only with JSON.\n"

// QuestJSONSchema is the required response format, included verbatim in
// both the system and user messages to keep small models on track.
const QuestJSONSchema = `Required JSON format: {` +
	`"title": "string",` +
	`"lore": "string",` +
	`"locations": [{"key": "string", "desc": "string"}],` +
	`"objects": [{"key": "string", "location": "string", "desc": "string"}],` +
	`"npcs": [{"key": "string", "location": "string", "dialogue": ["string"]}],` +
	`"goals": [{` +
	`"key": "Short summary like 'Deliver the package'",` +
	`"desc": "In-world description of the goal",` +
	`"type": "One of: findlocation, findobject, findnpc, giveto",` +
	`"target": "What is being found/given (e.g., room key, object key, npc key)",` +
	`"object": "Only for 'giveto' - npc to give 'target' to (optional)"` +
	`}]}`

// NPCMessages assembles the chat messages for an in-character NPC
// response: persona system prompt, then the bounded conversation
// history, then the current player message.
func NPCMessages(persona string, history []chat.ChatMessage, message string) []chat.ChatMessage {
	messages := make([]chat.ChatMessage, 0, len(history)+3)
	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf("Your persona: %s. %s", persona, NPCInstructions),
	})
	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: "Respond to the following as your persona of " + persona,
	})
	messages = append(messages, history...)
	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: message,
	})
	return messages
}

// QuestMessages assembles the chat messages asking the model to
// structure an NPC response as quest JSON.
func QuestMessages(npcResponse string) []chat.ChatMessage {
	return []chat.ChatMessage{
		{
			Role:    chat.ChatRoleSystem,
			Content: QuestInstructions + QuestJSONSchema,
		},
		{
			Role:    chat.ChatRoleUser,
			Content: fmt.Sprintf("Quest description: %s\n%s%s", npcResponse, questQuery, QuestJSONSchema),
		},
	}
}

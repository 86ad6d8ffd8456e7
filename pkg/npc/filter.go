package npc

import (
	"regexp"
	"strings"
)

const (
	// FallbackLine is spoken when the LLM call fails or times out.
	FallbackLine = "I do not have an answer right now."

	// RefusalLine replaces responses that break character.
	RefusalLine = "I'm afraid I can't speak on such matters."

	// ThinkingEmote is used when the NPC has nothing to say at all.
	ThinkingEmote = "rubs their chin thoughtfully, but says nothing."
)

// fourthWallPrefixes are narration intros small models sometimes emit
// before the actual dialogue.
var fourthWallPrefixes = []string{
	"You replied:",
	"You reply:",
	"The NPC replies:",
	"The NPC said:",
	"They respond:",
	"The system says:",
	"Assistant:",
}

// oocStarts mark paragraphs that are meta or instructional rather
// than in-character dialogue.
var oocStarts = []string{
	"Would you like me to",
	"Here are a few ways",
	"To help you",
	"Let me know if",
	"If you'd like",
	"You could",
	"We could",
	"Here's how",
	"Some options might be",
	"Depending on your preferences",
	"If you're going for",
	"Do you want me to",
}

// characterBreaks flag responses that admit to being an AI.
var characterBreaks = []string{
	"out of character",
	"as an ai",
	"ai assistant",
	"grouplayout",
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

var symbolReplacer = strings.NewReplacer(
	"“", `"`, // left smart quote
	"”", `"`, // right smart quote
	"‘", "'",
	"’", "'",
	"…", "...", // ellipsis
	"—", "-", // em dash
	"–", "-", // en dash
	"**", "",
)

// NormalizeSymbols replaces typographic characters the models like to
// emit with their plain ASCII equivalents.
func NormalizeSymbols(text string) string {
	return symbolReplacer.Replace(text)
}

// FilterOOC removes paragraphs that are likely out-of-character or
// meta/instructional. When the response was truncated at the token
// limit, the final incomplete paragraph is dropped instead.
func FilterOOC(response, finishReason string) string {
	paragraphs := paragraphSplit.Split(response, -1)

	if finishReason == "length" && len(paragraphs) > 1 {
		return strings.TrimSpace(strings.Join(paragraphs[:len(paragraphs)-1], "\n\n"))
	}

	filtered := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		trimmed := strings.TrimSpace(para)
		ooc := false
		for _, start := range oocStarts {
			if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(start)) {
				ooc = true
				break
			}
		}
		if !ooc {
			filtered = append(filtered, para)
		}
	}
	return strings.TrimSpace(strings.Join(filtered, "\n\n"))
}

// StripFourthWall removes a leading narration prefix and its wrapping
// quotes, if present.
func StripFourthWall(text string) string {
	for _, prefix := range fourthWallPrefixes {
		pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\s*["']?`)
		if pattern.MatchString(text) {
			cleaned := pattern.ReplaceAllString(text, "")
			cleaned = strings.TrimSuffix(strings.TrimSuffix(cleaned, `"`), `'`)
			return strings.TrimSpace(cleaned)
		}
	}
	return text
}

// BreaksCharacter reports whether the response admits to being an AI
// or otherwise steps outside the game world.
func BreaksCharacter(response string) bool {
	lower := strings.ToLower(response)
	for _, phrase := range characterBreaks {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// CleanResponse runs the full NPC post-processing pipeline and
// substitutes the refusal line for character-breaking output.
func CleanResponse(response, finishReason string) string {
	cleaned := NormalizeSymbols(response)
	cleaned = FilterOOC(cleaned, finishReason)
	cleaned = StripFourthWall(cleaned)
	if BreaksCharacter(cleaned) {
		return RefusalLine
	}
	return strings.TrimSpace(cleaned)
}

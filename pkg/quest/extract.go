package quest

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractDefinition parses a quest definition from raw LLM output.
// The model is asked to respond with a fenced JSON block, but may wrap
// it in prose; the fence is located first, falling back to the raw
// text when none is found.
//
// Malformed JSON, or JSON without a title, means "no quest extracted"
// and returns (nil, nil). Callers distinguish this from a hard call
// failure, which surfaces as an error further up.
func ExtractDefinition(raw string) (*Definition, error) {
	content := strings.TrimSpace(raw)
	if match := fencedJSON.FindStringSubmatch(content); match != nil {
		content = strings.TrimSpace(match[1])
	}

	var def Definition
	if err := json.Unmarshal([]byte(content), &def); err != nil {
		return nil, nil
	}
	if def.Title == "" {
		return nil, nil
	}
	return &def, nil
}

package quest

import (
	"regexp"
	"strings"
)

// questKeywords is the vocabulary used for the cheap first-pass
// quest-worthiness test.
var questKeywords = []string{
	"quest", "mission", "task", "assignment",
	"retrieve", "deliver", "investigate", "slay", "find",
	"explore", "track", "hunt", "recover", "return",
	"search", "follow", "protect", "solve", "convince", "negotiate",
	"objective", "reclaim", "uncover", "discover",
}

// confidencePatterns test fuller quest phrases than the keyword list,
// word-boundary delimited and case-insensitive.
var confidencePatterns = compilePatterns([]string{
	`\byour mission is to\b`,
	`\byou must\b`,
	`\bbring back\b`,
	`\btalk to\b`,
	`\binvestigate\b`,
	`\breturn with\b`,
	`\bsearch for\b`,
	`\bgo to\b`,
	`\bdefeat\b`,
	`\bfind\b`,
	`\bslay\b`,
	`\bsolve\b`,
	`\bprotect\b`,
	`\btrack\b`,
	`\bdeliver\b`,
	`\brecover\b`,
	`\breturn\b`,
	`\bexplore\b`,
	`\bfollow\b`,
	`\bhunt\b`,
	`\bconvince\b`,
	`\buncover\b`,
	`\bdiscover\b`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// MinConfidenceScore is the confidence gate applied on top of the
// keyword test. A single accidental keyword hit is not enough to
// treat ordinary dialogue as a quest.
const MinConfidenceScore = 2

// Evaluator scores arbitrary NPC dialogue for quest-like content.
// It has no side effects and holds no state beyond the text.
type Evaluator struct {
	Text string
}

func NewEvaluator(text string) *Evaluator {
	return &Evaluator{Text: text}
}

// IsQuestWorthy is a lightweight keyword-based test for quest-like
// content: true iff at least one keyword appears as a case-insensitive
// substring.
func (e *Evaluator) IsQuestWorthy() bool {
	lower := strings.ToLower(e.Text)
	for _, kw := range questKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ConfidenceScore counts how many quest phrase patterns match
// anywhere in the text.
func (e *Evaluator) ConfidenceScore() int {
	score := 0
	for _, p := range confidencePatterns {
		if p.MatchString(e.Text) {
			score++
		}
	}
	return score
}

// IsEligible applies the double gate: the text must be quest-worthy
// and score at least MinConfidenceScore.
func (e *Evaluator) IsEligible() bool {
	return e.IsQuestWorthy() && e.ConfidenceScore() >= MinConfidenceScore
}

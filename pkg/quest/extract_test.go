package quest

import "testing"

const sampleQuestJSON = `{
	"title": "The Glowing Seed",
	"lore": "An old spirit stirs in the Blackwood.",
	"locations": [{"key": "blackwood_forest", "desc": "A dark, misty forest."}],
	"objects": [{"key": "glowing_seed", "location": "blackwood_forest", "desc": "A faintly glowing seed."}],
	"npcs": [{"key": "spirit_guardian", "location": "blackwood_forest", "dialogue": ["The forest remembers."]}],
	"goals": [{"key": "Deliver the seed", "type": "giveto", "target": "spirit_guardian", "object": "glowing_seed"}]
}`

func TestExtractDefinition_FencedBlock(t *testing.T) {
	raw := "Here is the quest you asked for:\n```json\n" + sampleQuestJSON + "\n```\nLet me know if you need more."

	def, err := ExtractDefinition(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def == nil {
		t.Fatal("expected a definition, got nil")
	}
	if def.Title != "The Glowing Seed" {
		t.Errorf("expected title 'The Glowing Seed', got %q", def.Title)
	}
	if len(def.Goals) != 1 || def.Goals[0].Type != GoalGiveTo {
		t.Errorf("expected one giveto goal, got %+v", def.Goals)
	}
	if def.Goals[0].Object != "glowing_seed" {
		t.Errorf("expected goal object 'glowing_seed', got %q", def.Goals[0].Object)
	}
}

func TestExtractDefinition_RawFallback(t *testing.T) {
	def, err := ExtractDefinition(sampleQuestJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def == nil {
		t.Fatal("expected a definition from unfenced JSON, got nil")
	}
	if len(def.Locations) != 1 || def.Locations[0].Key != "blackwood_forest" {
		t.Errorf("unexpected locations: %+v", def.Locations)
	}
}

func TestExtractDefinition_NotAQuest(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", "```json\n{not valid json}\n```"},
		{"prose only", "I'm afraid I can't speak on such matters."},
		{"missing title", `{"lore": "untitled", "goals": []}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ExtractDefinition(tt.raw)
			if err != nil {
				t.Fatalf("parse failures must not be errors, got: %v", err)
			}
			if def != nil {
				t.Errorf("expected nil definition, got %+v", def)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	def := &Definition{Title: "The Glowing Seed"}
	entry := NewEntry(def, "alera")

	if entry.Status != StatusPending {
		t.Errorf("new entries must start pending, got %q", entry.Status)
	}
	if entry.Title != "The Glowing Seed" {
		t.Errorf("entry title should come from the definition, got %q", entry.Title)
	}
	if entry.TriggeredBy != "alera" {
		t.Errorf("expected triggered_by 'alera', got %q", entry.TriggeredBy)
	}
	if len(entry.QuestID) != len("quest_")+8 {
		t.Errorf("unexpected quest id format: %q", entry.QuestID)
	}
	if entry.Tag() != "quest:"+entry.QuestID {
		t.Errorf("unexpected quest tag: %q", entry.Tag())
	}

	other := NewEntry(def, "alera")
	if other.QuestID == entry.QuestID {
		t.Error("quest IDs must be unique per entry")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []Status{StatusBuilt, StatusFailed, StatusError} {
		if !s.Terminal() {
			t.Errorf("%q must be terminal", s)
		}
	}
}

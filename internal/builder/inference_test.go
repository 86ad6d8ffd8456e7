package builder

import (
	"testing"

	"github.com/jwebster45206/questforge/pkg/quest"
)

func TestExpandGoals_GiveToSynthesizesBothEnds(t *testing.T) {
	def := &quest.Definition{
		Title: "The Glowing Seed",
		Goals: []quest.Goal{
			{
				Key:    "Deliver the seed",
				Type:   quest.GoalGiveTo,
				Target: "spirit_guardian",
				Object: "glowing_seed",
			},
		},
	}

	ExpandGoals(def)

	if len(def.NPCs) != 1 {
		t.Fatalf("expected 1 synthesized NPC, got %d", len(def.NPCs))
	}
	npc := def.NPCs[0]
	if npc.Key != "spirit_guardian" {
		t.Errorf("expected spirit_guardian, got %q", npc.Key)
	}
	if npc.Location != LimboKey {
		t.Errorf("synthesized NPC should be placed in limbo, got %q", npc.Location)
	}
	if len(npc.Dialogue) == 0 {
		t.Error("synthesized NPC should have at least one dialogue line")
	}

	if len(def.Objects) != 1 {
		t.Fatalf("expected 1 synthesized object, got %d", len(def.Objects))
	}
	obj := def.Objects[0]
	if obj.Key != "glowing_seed" {
		t.Errorf("expected glowing_seed, got %q", obj.Key)
	}
	if obj.Location != LimboKey {
		t.Errorf("synthesized object should be placed in limbo, got %q", obj.Location)
	}
	if obj.Desc == "" {
		t.Error("synthesized object should have a description")
	}
}

func TestExpandGoals_FindLocation(t *testing.T) {
	def := &quest.Definition{
		Goals: []quest.Goal{
			{Type: quest.GoalFindLocation, Target: "whispering_caves"},
		},
	}

	ExpandGoals(def)

	if len(def.Locations) != 1 {
		t.Fatalf("expected 1 synthesized location, got %d", len(def.Locations))
	}
	if def.Locations[0].Key != "whispering_caves" {
		t.Errorf("unexpected key %q", def.Locations[0].Key)
	}
	if def.Locations[0].Desc == "" {
		t.Error("synthesized location should have a description")
	}
}

func TestExpandGoals_DeclaredEntitiesNotDuplicated(t *testing.T) {
	def := &quest.Definition{
		NPCs: []quest.NPCDef{
			{Key: "old_hermit", Location: "hermit_hut", Dialogue: []string{"Ah, you found me."}},
		},
		Goals: []quest.Goal{
			{Type: quest.GoalFindNPC, Target: "old_hermit"},
		},
	}

	ExpandGoals(def)

	if len(def.NPCs) != 1 {
		t.Fatalf("declared NPC should not be duplicated, got %d", len(def.NPCs))
	}
	if def.NPCs[0].Location != "hermit_hut" {
		t.Errorf("declared NPC must keep its location, got %q", def.NPCs[0].Location)
	}
}

func TestExpandGoals_SharedTargetSynthesizedOnce(t *testing.T) {
	def := &quest.Definition{
		Goals: []quest.Goal{
			{Type: quest.GoalFindObject, Target: "rusty_key"},
			{Type: quest.GoalGiveTo, Target: "gatekeeper", Object: "rusty_key"},
		},
	}

	ExpandGoals(def)

	if len(def.Objects) != 1 {
		t.Errorf("rusty_key is wanted by two goals but should be synthesized once, got %d objects", len(def.Objects))
	}
	if len(def.NPCs) != 1 {
		t.Errorf("expected 1 NPC, got %d", len(def.NPCs))
	}
}

func TestExpandGoals_NilAndEmpty(t *testing.T) {
	ExpandGoals(nil)

	def := &quest.Definition{Title: "No goals"}
	ExpandGoals(def)
	if len(def.Locations)+len(def.Objects)+len(def.NPCs) != 0 {
		t.Error("a definition without goals should not be expanded")
	}
}

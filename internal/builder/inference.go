package builder

import (
	"fmt"

	"github.com/jwebster45206/questforge/pkg/quest"
)

// ExpandGoals walks a quest definition's goals and synthesizes
// placeholder declarations for every location, NPC and object a goal
// references but the definition never declares. After expansion every
// goal target resolves to a concrete declaration, so a build cannot
// fail merely because the generator omitted an entity. The definition
// is mutated in place.
func ExpandGoals(def *quest.Definition) {
	if def == nil {
		return
	}

	wantLocations := make(map[string]bool)
	wantNPCs := make(map[string]bool)
	wantObjects := make(map[string]bool)

	for _, g := range def.Goals {
		switch g.Type {
		case quest.GoalFindLocation:
			if g.Target != "" {
				wantLocations[g.Target] = true
			}
		case quest.GoalFindNPC:
			if g.Target != "" {
				wantNPCs[g.Target] = true
			}
		case quest.GoalFindObject:
			if g.Target != "" {
				wantObjects[g.Target] = true
			}
		case quest.GoalGiveTo:
			if g.Target != "" {
				wantNPCs[g.Target] = true
			}
			if g.Object != "" {
				wantObjects[g.Object] = true
			}
		}
	}

	haveLocations := make(map[string]bool)
	for _, l := range def.Locations {
		haveLocations[l.Key] = true
	}
	haveNPCs := make(map[string]bool)
	for _, n := range def.NPCs {
		haveNPCs[n.Key] = true
	}
	haveObjects := make(map[string]bool)
	for _, o := range def.Objects {
		haveObjects[o.Key] = true
	}

	for _, g := range def.Goals {
		switch g.Type {
		case quest.GoalFindLocation:
			if wantLocations[g.Target] && !haveLocations[g.Target] {
				def.Locations = append(def.Locations, quest.LocationDef{
					Key:  g.Target,
					Desc: fmt.Sprintf("A place known as %s.", quest.DisplayName(g.Target)),
				})
				haveLocations[g.Target] = true
			}
		case quest.GoalFindNPC:
			addNPCPlaceholder(def, haveNPCs, g.Target)
		case quest.GoalFindObject:
			addObjectPlaceholder(def, haveObjects, g.Target)
		case quest.GoalGiveTo:
			addNPCPlaceholder(def, haveNPCs, g.Target)
			addObjectPlaceholder(def, haveObjects, g.Object)
		}
	}
}

func addNPCPlaceholder(def *quest.Definition, have map[string]bool, key string) {
	if key == "" || have[key] {
		return
	}
	def.NPCs = append(def.NPCs, quest.NPCDef{
		Key:      key,
		Location: "limbo",
		Dialogue: []string{fmt.Sprintf("%s has nothing more to say.", quest.DisplayName(key))},
	})
	have[key] = true
}

func addObjectPlaceholder(def *quest.Definition, have map[string]bool, key string) {
	if key == "" || have[key] {
		return
	}
	def.Objects = append(def.Objects, quest.ObjectDef{
		Key:      key,
		Location: "limbo",
		Desc:     fmt.Sprintf("An item called %s.", quest.DisplayName(key)),
	})
	have[key] = true
}

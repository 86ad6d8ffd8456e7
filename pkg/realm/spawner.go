package realm

import (
	"fmt"
	"math/rand"

	"github.com/jwebster45206/d20"
)

// Creature is a spawned mob, backed by a d20 actor for combat state.
type Creature struct {
	Key   string
	Rare  bool
	Actor *d20.Actor
}

// Spawner produces creatures for a realm on a tick cadence. A room
// attaches one spawner; ticks with live mobs present are skipped by
// the caller.
type Spawner struct {
	rng  *rand.Rand
	tick int
}

// NewSpawner creates a spawner. A nil rng is replaced with a
// process-seeded source; tests inject a fixed seed.
func NewSpawner(rng *rand.Rand) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Spawner{rng: rng}
}

// Tick advances the spawner and rolls for a spawn when the realm's
// interval comes due. Returns nil when nothing spawned.
func (s *Spawner) Tick(r *Realm) (*Creature, error) {
	interval := r.SpawnInterval
	if interval <= 0 {
		interval = defaultSpawnInterval
	}

	s.tick++
	if s.tick%interval != 0 {
		return nil, nil
	}
	s.tick = 0 // guard against overflow on long-running servers

	return s.DoSpawn(r, s.rng.Float64())
}

// DoSpawn spawns a weighted-random creature when roll is at or below
// the realm's spawn chance. Rare mobs carry their configured weight;
// common pool creatures weigh 1.
func (s *Spawner) DoSpawn(r *Realm, roll float64) (*Creature, error) {
	if roll > r.SpawnChance {
		return nil, nil
	}

	type candidate struct {
		key    string
		weight float64
		rare   bool
	}

	candidates := make([]candidate, 0, len(r.RareMobs)+len(r.CreaturePool))
	for mob, weight := range r.RareMobs {
		candidates = append(candidates, candidate{key: mob, weight: weight, rare: true})
	}
	for _, mob := range r.CreaturePool {
		candidates = append(candidates, candidate{key: mob, weight: 1})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var total float64
	for _, c := range candidates {
		total += c.weight
	}

	pick := s.rng.Float64() * total
	chosen := candidates[len(candidates)-1]
	for _, c := range candidates {
		if pick < c.weight {
			chosen = c
			break
		}
		pick -= c.weight
	}

	hp := 8
	ac := 11
	if chosen.rare {
		hp = 20
		ac = 14
	}

	actor, err := d20.NewActor(chosen.key).
		WithHP(hp).
		WithAC(ac).
		WithAttributes(map[string]int{"strength": 10, "dexterity": 10}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build creature actor: %w", err)
	}

	return &Creature{Key: chosen.key, Rare: chosen.rare, Actor: actor}, nil
}

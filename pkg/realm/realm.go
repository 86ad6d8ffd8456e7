package realm

// Realm holds the creature configuration for a region of the world:
// the common creature pool, rare named mobs with their spawn weights,
// and how often the spawner may act.
type Realm struct {
	Name           string
	CreaturePool   []string
	RareMobs       map[string]float64
	SpawnChance    float64 // 0..1 chance that a spawn tick produces a creature
	SpawnInterval  int     // spawner acts every Nth tick
	NoSpawnMessage string
}

// defaults applied when a realm definition leaves fields zero.
const (
	defaultSpawnChance   = 0.5
	defaultSpawnInterval = 5
)

// Get returns the realm registered under key, or a default empty
// realm when the key is unknown.
func Get(key string) *Realm {
	if r, ok := realms[key]; ok {
		return r
	}
	return &Realm{
		Name:          "Default Realm",
		SpawnChance:   defaultSpawnChance,
		SpawnInterval: defaultSpawnInterval,
	}
}

var realms = map[string]*Realm{
	"realm_test": {
		Name:          "Test Realm",
		CreaturePool:  []string{"sand crab", "scorpion", "jackal"},
		RareMobs:      map[string]float64{"dust devil": 0.05, "blue scarab": 0.02},
		SpawnChance:   defaultSpawnChance,
		SpawnInterval: 1,
	},
	"realm_brv": {
		Name:          "Brave River Valley",
		CreaturePool:  []string{"wolf", "lion", "bear", "boar", "snake", "fox"},
		RareMobs:      map[string]float64{"dire wolf": 0.05, "golden lion": 0.02},
		SpawnChance:   defaultSpawnChance,
		SpawnInterval: defaultSpawnInterval,
	},
}

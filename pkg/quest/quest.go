package quest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a quest entry. Pending entries are
// picked up by the builder; the other three states are terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusBuilt   Status = "built"
	StatusFailed  Status = "failed" // structural validation failure
	StatusError   Status = "error"  // runtime build failure
)

// Terminal reports whether the status can no longer change.
// Re-attempting a failed or errored build requires external re-queueing.
func (s Status) Terminal() bool {
	return s == StatusBuilt || s == StatusFailed || s == StatusError
}

// GoalType identifies what a quest goal asks the player to do.
type GoalType string

const (
	GoalFindLocation GoalType = "findlocation"
	GoalFindNPC      GoalType = "findnpc"
	GoalFindObject   GoalType = "findobject"
	GoalGiveTo       GoalType = "giveto"
)

// Goal is a structured objective within a quest definition,
// referencing locations, objects and NPCs by key.
type Goal struct {
	Key    string   `json:"key"`
	Desc   string   `json:"desc,omitempty"`
	Type   GoalType `json:"type"`
	Target string   `json:"target"`
	Object string   `json:"object,omitempty"` // only meaningful for giveto
}

// LocationDef declares a location the quest takes place in.
type LocationDef struct {
	Key  string `json:"key"`
	Desc string `json:"desc,omitempty"`
}

// ObjectDef declares an item the quest needs in the world.
type ObjectDef struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	Desc     string `json:"desc,omitempty"`
}

// NPCDef declares an NPC the quest needs in the world.
type NPCDef struct {
	Key      string   `json:"key"`
	Location string   `json:"location,omitempty"`
	Dialogue []string `json:"dialogue,omitempty"`
}

// Definition is the structured quest payload produced by the LLM
// and consumed by goal inference and the builder.
type Definition struct {
	Title     string        `json:"title"`
	Lore      string        `json:"lore,omitempty"`
	Locations []LocationDef `json:"locations,omitempty"`
	Objects   []ObjectDef   `json:"objects,omitempty"`
	NPCs      []NPCDef      `json:"npcs,omitempty"`
	Goals     []Goal        `json:"goals,omitempty"`

	// OriginatingResponse preserves the NPC utterance the quest was
	// extracted from, for audit and debugging.
	OriginatingResponse string `json:"originating_response,omitempty"`
}

// Entry is a persisted quest generation job.
type Entry struct {
	QuestID     string      `json:"quest_id"`
	Title       string      `json:"title"`
	Status      Status      `json:"status"`
	Quest       *Definition `json:"quest,omitempty"` // nil means structurally invalid payload
	TriggeredBy string      `json:"triggered_by,omitempty"`
	CreatedAt   time.Time   `json:"timestamp_created"`
	UpdatedAt   time.Time   `json:"last_updated"`
	CompletedAt *time.Time  `json:"completed,omitempty"`
}

// NewEntry creates a pending quest entry from an extracted definition.
// The quest ID is generated here and never changes.
func NewEntry(def *Definition, triggeredBy string) *Entry {
	now := time.Now()
	var title string
	if def != nil {
		title = def.Title
	}
	return &Entry{
		QuestID:     fmt.Sprintf("quest_%s", uuid.New().String()[:8]),
		Title:       title,
		Status:      StatusPending,
		Quest:       def,
		TriggeredBy: triggeredBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Tag returns the marker attached to every entity created by this
// quest's build, enabling later identification and cleanup.
func (e *Entry) Tag() string {
	return "quest:" + e.QuestID
}

// ProgressStatus is the lifecycle state of one character's progress
// through a built quest.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressComplete   ProgressStatus = "complete"
	ProgressAbandoned  ProgressStatus = "abandoned"
)

// Progress tracks one (character, quest) pair. Complete and abandoned
// are terminal; finished quests are not resurrected by Begin.
type Progress struct {
	Character   string         `json:"character"`
	QuestID     string         `json:"quest_id"`
	CurrentStep string         `json:"current_step,omitempty"`
	Status      ProgressStatus `json:"status"`
	CompletedAt *time.Time     `json:"completed,omitempty"`
}

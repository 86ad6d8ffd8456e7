package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/questforge/internal/storage"
	"github.com/jwebster45206/questforge/pkg/quest"
)

// Tracker records per-character progress through built quests. All
// operations are scoped to one character; a (character, quest) pair has
// at most one progress record.
type Tracker struct {
	storage storage.Storage
	logger  *slog.Logger
}

func New(st storage.Storage, logger *slog.Logger) *Tracker {
	return &Tracker{
		storage: st,
		logger:  logger,
	}
}

// Begin starts a quest for a character. If a progress record already
// exists for this quest, in any status, it is returned unchanged:
// finished quests are not resurrected. Otherwise a new in_progress
// record is created with the given starting step.
func (t *Tracker) Begin(ctx context.Context, character, questID, startStep string) (*quest.Progress, error) {
	existing, err := t.storage.GetProgress(ctx, character, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up progress: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	p := &quest.Progress{
		Character:   character,
		QuestID:     questID,
		CurrentStep: startStep,
		Status:      quest.ProgressInProgress,
	}
	if err := t.storage.SaveProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	t.logger.Info("Quest started", "character", character, "quest_id", questID)
	return p, nil
}

// Complete marks a character's quest complete and stamps the completion
// time. No-op if the quest was never begun or is already complete.
// Abandoned quests stay abandoned.
func (t *Tracker) Complete(ctx context.Context, character, questID string) (*quest.Progress, error) {
	p, err := t.storage.GetProgress(ctx, character, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up progress: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	if p.Status != quest.ProgressInProgress {
		return p, nil
	}

	now := time.Now()
	p.Status = quest.ProgressComplete
	p.CompletedAt = &now
	if err := t.storage.SaveProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	t.logger.Info("Quest completed", "character", character, "quest_id", questID)
	return p, nil
}

// Abandon marks a character's quest abandoned. Only in_progress quests
// can be abandoned; completed quests are left alone.
func (t *Tracker) Abandon(ctx context.Context, character, questID string) (*quest.Progress, error) {
	p, err := t.storage.GetProgress(ctx, character, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up progress: %w", err)
	}
	if p == nil || p.Status != quest.ProgressInProgress {
		return p, nil
	}

	p.Status = quest.ProgressAbandoned
	if err := t.storage.SaveProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	t.logger.Info("Quest abandoned", "character", character, "quest_id", questID)
	return p, nil
}

// Active lists a character's in-progress quests.
func (t *Tracker) Active(ctx context.Context, character string) ([]*quest.Progress, error) {
	return t.listByStatus(ctx, character, quest.ProgressInProgress)
}

// Completed lists a character's completed quests.
func (t *Tracker) Completed(ctx context.Context, character string) ([]*quest.Progress, error) {
	return t.listByStatus(ctx, character, quest.ProgressComplete)
}

func (t *Tracker) listByStatus(ctx context.Context, character string, status quest.ProgressStatus) ([]*quest.Progress, error) {
	all, err := t.storage.ListProgress(ctx, character)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	out := make([]*quest.Progress, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

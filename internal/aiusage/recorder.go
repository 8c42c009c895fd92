package aiusage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
)

// Entry describes one AI call to be recorded.
type Entry struct {
	UserID   uuid.UUID
	Purpose  Purpose
	Model    string
	Usage    llm.Usage
	Err      error
	Duration time.Duration
}

// Recorder persists AI usage rows. Recording is best-effort: a failure is
// logged and never propagated, so usage accounting cannot break the
// feature that triggered the call.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) Recorder {
	return &recorder{repo: repo}
}

func (r *recorder) Record(ctx context.Context, entry Entry) {
	log := config.WithContext(ctx)

	row := &AIUsageLog{
		UserID:       entry.UserID,
		Purpose:      entry.Purpose,
		Model:        entry.Model,
		InputTokens:  entry.Usage.InputTokens,
		OutputTokens: entry.Usage.OutputTokens,
		Success:      entry.Err == nil,
		DurationMS:   entry.Duration.Milliseconds(),
	}
	if entry.Err != nil {
		row.Error = entry.Err.Error()
	}
	if cost := llm.LookupCost(entry.Model); cost != nil {
		row.CostUSD = cost.Cost(entry.Usage.InputTokens, entry.Usage.OutputTokens)
	}

	if err := r.repo.Create(row); err != nil {
		log.WithError(err).Warnf("Failed to record AI usage (%s, user %s)", entry.Purpose, entry.UserID)
	}
}

// Package insight maintains the per-(user, provider, model) learning record
// that biases future strategy selection.
package insight

import (
	"context"

	"github.com/felixbrock/promptforge/internal/domain"
)

// RecordVersion is stamped into every persisted record so the shape can be
// migrated explicitly if it ever changes.
const RecordVersion = 1

// Store is the read/write contract the engine needs from the relational
// store: load-by-key with a cold-start default on miss, and single-row
// atomic upsert.
type Store interface {
	Load(ctx context.Context, userId, provider, model string) (domain.InsightRecord, error)
	Upsert(ctx context.Context, userId, provider, model string, rec domain.InsightRecord) error
}

// HistoryRepo appends finished optimizations to the prompt history.
type HistoryRepo interface {
	Insert(ctx context.Context, rec domain.PromptRecord) error
}

// ColdStart is the record used when no history exists for a key: a neutral
// 0.5 prior and no strategy signal.
func ColdStart() domain.InsightRecord {
	return domain.InsightRecord{
		Version:             RecordVersion,
		AvgImprovementScore: 0.5,
		Strategies:          map[string]domain.StrategyInsight{},
	}
}

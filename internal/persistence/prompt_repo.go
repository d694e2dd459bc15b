package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/insight"
)

// PromptRepo appends finished optimizations to the prompt history table.
type PromptRepo struct {
	DB *sql.DB
}

var _ insight.HistoryRepo = (*PromptRepo)(nil)

func (r *PromptRepo) Insert(ctx context.Context, rec domain.PromptRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO prompt_history
		 (id, user_id, provider, model, original_prompt, optimized_prompt, best_strategy, best_score, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Id, rec.UserId, rec.Provider, rec.Model, rec.OriginalPrompt, rec.OptimizedPrompt,
		rec.BestStrategy, rec.BestScore, string(rec.Mode), rec.CreatedAt.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("insert prompt record: %w", err)
	}
	return nil
}

// Read returns the most recent history rows for a user, newest first.
func (r *PromptRepo) Read(ctx context.Context, userId string, limit int) ([]domain.PromptRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, provider, model, original_prompt, optimized_prompt, best_strategy, best_score, mode, created_at
		 FROM prompt_history WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userId, limit)
	if err != nil {
		return nil, fmt.Errorf("read prompt history: %w", err)
	}
	defer rows.Close()

	var records []domain.PromptRecord
	for rows.Next() {
		var rec domain.PromptRecord
		var mode, createdAt string
		if err := rows.Scan(&rec.Id, &rec.UserId, &rec.Provider, &rec.Model, &rec.OriginalPrompt,
			&rec.OptimizedPrompt, &rec.BestStrategy, &rec.BestScore, &mode, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prompt record: %w", err)
		}
		rec.Mode = domain.Mode(mode)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

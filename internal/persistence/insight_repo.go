package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/insight"
)

// InsightRepo implements insight.Store on SQLite. The record itself is kept
// as a versioned JSON blob; the key columns carry the identity.
type InsightRepo struct {
	DB *sql.DB
}

var _ insight.Store = (*InsightRepo)(nil)

// Load returns the stored record for the key, or the cold-start default when
// no row exists.
func (r *InsightRepo) Load(ctx context.Context, userId, provider, model string) (domain.InsightRecord, error) {
	var recordJSON string
	err := r.DB.QueryRowContext(ctx,
		`SELECT record_json FROM insights WHERE user_id = ? AND provider = ? AND model = ?`,
		userId, provider, model).Scan(&recordJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return insight.ColdStart(), nil
	}
	if err != nil {
		return domain.InsightRecord{}, fmt.Errorf("load insight: %w", err)
	}

	var rec domain.InsightRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return domain.InsightRecord{}, fmt.Errorf("decode insight: %w", err)
	}
	if rec.Strategies == nil {
		rec.Strategies = map[string]domain.StrategyInsight{}
	}
	return rec, nil
}

// Upsert writes the record atomically, last writer wins.
func (r *InsightRepo) Upsert(ctx context.Context, userId, provider, model string, rec domain.InsightRecord) error {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode insight: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO insights (user_id, provider, model, version, record_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, provider, model) DO UPDATE SET
		 	version = excluded.version,
		 	record_json = excluded.record_json,
		 	updated_at = excluded.updated_at`,
		userId, provider, model, rec.Version, string(recordJSON), time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("upsert insight: %w", err)
	}
	return nil
}

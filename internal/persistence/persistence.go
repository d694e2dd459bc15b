// Package persistence backs the insight store and prompt history with an
// embedded SQLite database.
package persistence

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS insights (
	user_id      TEXT NOT NULL,
	provider     TEXT NOT NULL,
	model        TEXT NOT NULL,
	version      INTEGER NOT NULL,
	record_json  TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	PRIMARY KEY (user_id, provider, model)
);

CREATE TABLE IF NOT EXISTS prompt_history (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	original_prompt   TEXT NOT NULL,
	optimized_prompt  TEXT NOT NULL,
	best_strategy     TEXT NOT NULL,
	best_score        REAL NOT NULL,
	mode              TEXT NOT NULL,
	created_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prompt_history_user ON prompt_history (user_id, created_at);
`

// Open opens the database at dbPath and runs migrations.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

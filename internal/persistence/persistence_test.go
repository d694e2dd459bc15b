package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/insight"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "promptforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestLoadMissingKeyReturnsColdStart(t *testing.T) {
	repo := &InsightRepo{DB: openTestDB(t)}

	rec, err := repo.Load(context.Background(), "u1", "openai", "gpt-4o")

	require.NoError(t, err)
	assert.Equal(t, insight.ColdStart(), rec)
}

func TestUpsertLoadRoundtrip(t *testing.T) {
	repo := &InsightRepo{DB: openTestDB(t)}
	ctx := context.Background()

	rec := insight.ColdStart()
	rec.BatchCount = 2
	rec.TotalOptimizations = 6
	rec.AvgImprovementScore = 0.74
	rec.Strategies["clarity"] = domain.StrategyInsight{
		AvgScore: 0.81,
		Count:    3,
		Patterns: []string{"specificity", "context"},
	}
	rec.Performance = domain.PerformancePatterns{TopStrategy: "clarity", TopPromptLength: 180}
	rec.Rules = domain.OptimizationRules{MinLength: 90, OptimalLength: 180, MaxLength: 360}

	require.NoError(t, repo.Upsert(ctx, "u1", "openai", "gpt-4o", rec))

	got, err := repo.Load(ctx, "u1", "openai", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestUpsertLastWriterWins(t *testing.T) {
	repo := &InsightRepo{DB: openTestDB(t)}
	ctx := context.Background()

	first := insight.ColdStart()
	first.BatchCount = 1
	require.NoError(t, repo.Upsert(ctx, "u1", "openai", "gpt-4o", first))

	second := insight.ColdStart()
	second.BatchCount = 5
	require.NoError(t, repo.Upsert(ctx, "u1", "openai", "gpt-4o", second))

	got, err := repo.Load(ctx, "u1", "openai", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, 5, got.BatchCount)
}

func TestLoadKeysAreIndependent(t *testing.T) {
	repo := &InsightRepo{DB: openTestDB(t)}
	ctx := context.Background()

	rec := insight.ColdStart()
	rec.BatchCount = 3
	require.NoError(t, repo.Upsert(ctx, "u1", "openai", "gpt-4o", rec))

	other, err := repo.Load(ctx, "u1", "openai", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Zero(t, other.BatchCount)
}

func TestPromptHistoryInsertAndRead(t *testing.T) {
	db := openTestDB(t)
	repo := &PromptRepo{DB: db}
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, repo.Insert(ctx, domain.PromptRecord{
			Id:              id,
			UserId:          "u1",
			Provider:        "openai",
			Model:           "gpt-4o",
			OriginalPrompt:  "write a sort function",
			OptimizedPrompt: "Write a documented sort function.",
			BestStrategy:    "clarity",
			BestScore:       0.8,
			Mode:            domain.ModeSpeed,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Insert(ctx, domain.PromptRecord{
		Id: "other", UserId: "u2", Provider: "openai", Model: "gpt-4o",
		OriginalPrompt: "x", OptimizedPrompt: "y", BestStrategy: "clarity",
		BestScore: 0.5, Mode: domain.ModeDeep, CreatedAt: base,
	}))

	records, err := repo.Read(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p3", records[0].Id)
	assert.Equal(t, "p2", records[1].Id)
	assert.Equal(t, domain.ModeSpeed, records[0].Mode)
	assert.Equal(t, base.Add(2*time.Minute), records[0].CreatedAt)
}

func TestPromptHistoryReadDefaultLimit(t *testing.T) {
	repo := &PromptRepo{DB: openTestDB(t)}

	records, err := repo.Read(context.Background(), "nobody", 0)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPromptHistoryDuplicateIdFails(t *testing.T) {
	repo := &PromptRepo{DB: openTestDB(t)}
	ctx := context.Background()

	rec := domain.PromptRecord{
		Id: "p1", UserId: "u1", Provider: "openai", Model: "gpt-4o",
		OriginalPrompt: "a", OptimizedPrompt: "b", BestStrategy: "clarity",
		BestScore: 0.7, Mode: domain.ModeSpeed, CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Insert(ctx, rec))
	assert.Error(t, repo.Insert(ctx, rec))
}

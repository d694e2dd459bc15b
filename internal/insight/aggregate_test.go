package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/promptforge/internal/domain"
)

func TestExtractPatterns(t *testing.T) {
	text := "Follow these steps step-by-step. For example, add context and exact criteria. " +
		"Organize each section, and stay within the limit."

	got := ExtractPatterns(text)

	assert.Equal(t, []string{"step-by-step", "examples", "structure", "context", "specificity", "constraints"}, got)
	assert.Empty(t, ExtractPatterns("just do the thing"))
}

func TestMergeColdStartFirstBatch(t *testing.T) {
	variants := []domain.Variant{
		{Prompt: "Be specific about the exact output. Organize it into a section per topic.", StrategyId: "clarity", Score: 0.8},
		{Prompt: "short one", StrategyId: "structure", Score: 0.6},
	}

	rec := Merge(ColdStart(), variants)

	assert.Equal(t, RecordVersion, rec.Version)
	assert.Equal(t, 1, rec.BatchCount)
	assert.Equal(t, 2, rec.TotalOptimizations)
	assert.InDelta(t, 0.7, rec.AvgImprovementScore, 1e-9)

	require.Contains(t, rec.Strategies, "clarity")
	assert.InDelta(t, 0.8, rec.Strategies["clarity"].AvgScore, 1e-9)
	assert.Equal(t, 1, rec.Strategies["clarity"].Count)
	assert.Contains(t, rec.Strategies["clarity"].Patterns, "specificity")

	// Below the quality floor: no patterns collected.
	assert.Empty(t, rec.Strategies["structure"].Patterns)

	assert.Equal(t, "clarity", rec.Performance.TopStrategy)
	best := variants[0].Prompt
	assert.Equal(t, len(best), rec.Performance.TopPromptLength)
	assert.Equal(t, len(best), rec.Rules.OptimalLength)
	assert.Equal(t, len(best)/2, rec.Rules.MinLength)
	assert.Equal(t, len(best)*2, rec.Rules.MaxLength)
}

func TestMergeBlendsWithStoredAverages(t *testing.T) {
	rec := ColdStart()
	rec.BatchCount = 3
	rec.TotalOptimizations = 9
	rec.AvgImprovementScore = 0.6
	rec.Strategies["clarity"] = domain.StrategyInsight{AvgScore: 0.5, Count: 4}

	variants := []domain.Variant{
		{Prompt: "Longer prompt with exact specifics laid out in full.", StrategyId: "clarity", Score: 0.9},
	}

	got := Merge(rec, variants)

	// Two-term blend of stored and batch values.
	assert.InDelta(t, (0.6+0.9)/2, got.AvgImprovementScore, 1e-9)
	assert.InDelta(t, (0.5+0.9)/2, got.Strategies["clarity"].AvgScore, 1e-9)
	assert.Equal(t, 5, got.Strategies["clarity"].Count)
	assert.Equal(t, 4, got.BatchCount)
	assert.Equal(t, 10, got.TotalOptimizations)
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	rec := ColdStart()
	rec.Strategies["clarity"] = domain.StrategyInsight{AvgScore: 0.5, Count: 1}

	Merge(rec, []domain.Variant{{Prompt: "p", StrategyId: "clarity", Score: 1}})

	assert.InDelta(t, 0.5, rec.Strategies["clarity"].AvgScore, 1e-9)
	assert.Equal(t, 1, rec.Strategies["clarity"].Count)
}

func TestMergeEmptyBatchIsNoop(t *testing.T) {
	rec := ColdStart()
	rec.BatchCount = 2

	got := Merge(rec, nil)

	assert.Equal(t, rec, got)
}

func TestMergeCapsAvoidPatterns(t *testing.T) {
	bad := "step-by-step example: organize the section with context, specific criteria, within limits"

	rec := Merge(ColdStart(), []domain.Variant{
		{Prompt: bad, StrategyId: "clarity", Score: 0.2},
		{Prompt: "good long prompt with plenty of body text here", StrategyId: "structure", Score: 0.9},
	})

	assert.Len(t, rec.Rules.AvoidPatterns, maxAvoidPatterns)
}

func TestMergeIsDeterministic(t *testing.T) {
	variants := []domain.Variant{
		{Prompt: "Specific and exact prompt with section structure spelled out in detail.", StrategyId: "clarity", Score: 0.82},
		{Prompt: "Add context and background, then assume a technical audience.", StrategyId: "specificity", Score: 0.75},
		{Prompt: "meh", StrategyId: "efficiency", Score: 0.3},
	}

	a := Merge(Merge(ColdStart(), variants), variants)
	b := Merge(Merge(ColdStart(), variants), variants)

	assert.Equal(t, a, b)
}

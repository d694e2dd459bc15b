package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/promptforge/internal/domain"
)

func TestBestReturnsArgMax(t *testing.T) {
	variants := []domain.Variant{
		{Prompt: "a", StrategyId: "clarity", Score: 0.61},
		{Prompt: "b", StrategyId: "structure", Score: 0.84},
		{Prompt: "c", StrategyId: "efficiency", Score: 0.7},
	}

	best, err := Best(variants)

	require.NoError(t, err)
	assert.Equal(t, "structure", best.StrategyId)
	assert.Equal(t, 0.84, best.Score)
}

func TestBestFirstSeenWinsTies(t *testing.T) {
	variants := []domain.Variant{
		{Prompt: "a", StrategyId: "clarity", Score: 0.8},
		{Prompt: "b", StrategyId: "structure", Score: 0.8},
	}

	best, err := Best(variants)

	require.NoError(t, err)
	assert.Equal(t, "clarity", best.StrategyId)
}

func TestBestEmptyIsFatal(t *testing.T) {
	_, err := Best(nil)

	assert.ErrorIs(t, err, ErrAllVariantsFailed)
}

package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrock/promptforge/internal/domain"
)

func catalogIds() []string {
	ids := make([]string, len(Catalog))
	for i, s := range Catalog {
		ids[i] = s.Id
	}
	return ids
}

func selectedIds(strategies []domain.Strategy) []string {
	ids := make([]string, len(strategies))
	for i, s := range strategies {
		ids[i] = s.Id
	}
	return ids
}

func TestSelectColdStartUsesCatalogOrder(t *testing.T) {
	rec := domain.InsightRecord{
		BatchCount: 2,
		Strategies: map[string]domain.StrategyInsight{
			// High scores must not matter below the batch threshold.
			"constraints": {AvgScore: 0.99, Count: 2},
			"efficiency":  {AvgScore: 0.95, Count: 2},
		},
	}

	got := Select(Catalog, 3, rec)

	assert.Equal(t, catalogIds()[:3], selectedIds(got))
}

func TestSelectRanksByDiscountedScore(t *testing.T) {
	rec := domain.InsightRecord{
		BatchCount: 5,
		Strategies: map[string]domain.StrategyInsight{
			"constraints": {AvgScore: 0.9, Count: 6},
			"efficiency":  {AvgScore: 0.8, Count: 3},
			// Good raw average but almost no data: discounted to 0.95/3.
			"clarity": {AvgScore: 0.95, Count: 1},
		},
	}

	got := Select(Catalog, 3, rec)

	assert.Equal(t, []string{"constraints", "efficiency", "clarity"}, selectedIds(got))
}

func TestSelectConfidenceDiscountDeprioritizesThinData(t *testing.T) {
	rec := domain.InsightRecord{
		BatchCount: 4,
		Strategies: map[string]domain.StrategyInsight{
			"specificity": {AvgScore: 1.0, Count: 1}, // discounted to 0.33
			"structure":   {AvgScore: 0.5, Count: 9}, // full confidence
		},
	}

	got := Select(Catalog, 2, rec)

	assert.Equal(t, []string{"structure", "specificity"}, selectedIds(got))
}

func TestSelectTieBreakIsCatalogOrder(t *testing.T) {
	rec := domain.InsightRecord{
		BatchCount: 3,
		Strategies: map[string]domain.StrategyInsight{},
	}

	got := Select(Catalog, len(Catalog), rec)

	assert.Equal(t, catalogIds(), selectedIds(got))
}

func TestSelectCyclesWhenCountExceedsCatalog(t *testing.T) {
	rec := domain.InsightRecord{}

	got := Select(Catalog, len(Catalog)+2, rec)

	require.Len(t, got, len(Catalog)+2)
	assert.Equal(t, got[0].Id, got[len(Catalog)].Id)
	assert.Equal(t, got[1].Id, got[len(Catalog)+1].Id)
}

func TestSelectClampsNonPositiveCount(t *testing.T) {
	got := Select(Catalog, 0, domain.InsightRecord{})

	require.Len(t, got, 1)
	assert.Equal(t, Catalog[0].Id, got[0].Id)
}

func TestCatalogWeightsInOpenUnitInterval(t *testing.T) {
	for _, s := range Catalog {
		assert.Greater(t, s.Weight, 0.0, s.Id)
		assert.Less(t, s.Weight, 1.0, s.Id)
		assert.NotEmpty(t, s.Instruction, s.Id)
	}
}

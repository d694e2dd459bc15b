package strategy

import (
	"sort"

	"github.com/felixbrock/promptforge/internal/domain"
)

// minBatchSignal is the number of processed batches below which historical
// scores are considered too thin to rank on.
const minBatchSignal = 3

// Select returns the n strategies to run for one request. With fewer than
// minBatchSignal batches of history it returns the catalog prefix in
// declaration order. Otherwise strategies are ranked by their cached average
// score discounted by a confidence factor min(1, count/3), ties resolved by
// catalog order. If n exceeds the catalog size the ranked list is cycled.
func Select(catalog []domain.Strategy, n int, rec domain.InsightRecord) []domain.Strategy {
	if n < 1 {
		n = 1
	}

	ranked := make([]domain.Strategy, len(catalog))
	copy(ranked, catalog)

	if rec.BatchCount >= minBatchSignal {
		pos := make(map[string]int, len(catalog))
		for i, s := range catalog {
			pos[s.Id] = i
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			ri := rankScore(rec, ranked[i].Id)
			rj := rankScore(rec, ranked[j].Id)
			if ri != rj {
				return ri > rj
			}
			return pos[ranked[i].Id] < pos[ranked[j].Id]
		})
	}

	out := make([]domain.Strategy, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ranked[i%len(ranked)])
	}
	return out
}

func rankScore(rec domain.InsightRecord, id string) float64 {
	si, ok := rec.Strategies[id]
	if !ok || si.Count == 0 {
		return 0
	}
	confidence := float64(si.Count) / float64(minBatchSignal)
	if confidence > 1 {
		confidence = 1
	}
	return si.AvgScore * confidence
}

package insight

import (
	"regexp"
	"sort"

	"github.com/felixbrock/promptforge/internal/domain"
)

const (
	// qualityFloor is the score above which a variant contributes pattern
	// tags to its strategy.
	qualityFloor = 0.7

	// lowScoreCeiling marks variants whose patterns go into avoid_patterns.
	lowScoreCeiling = 0.4

	maxAvoidPatterns = 5
)

var patternProbes = []struct {
	Tag string
	Re  *regexp.Regexp
}{
	{"step-by-step", regexp.MustCompile(`(?im)step[ -]by[ -]step|^\s*\d+[.)]\s`)},
	{"examples", regexp.MustCompile(`(?i)for example|for instance|e\.g\.|example:`)},
	{"structure", regexp.MustCompile(`(?i)section|bullet|heading|numbered|###|organize`)},
	{"context", regexp.MustCompile(`(?i)context|background|given that|assume`)},
	{"specificity", regexp.MustCompile(`(?i)specific|exactly|precise|measurable|criteria`)},
	{"constraints", regexp.MustCompile(`(?i)constraint|limit|within|no more than|must not`)},
}

// ExtractPatterns returns the short textual tags detected in a variant's
// text, in probe order.
func ExtractPatterns(text string) []string {
	var tags []string
	for _, p := range patternProbes {
		if p.Re.MatchString(text) {
			tags = append(tags, p.Tag)
		}
	}
	return tags
}

// Merge folds one finished batch into rec and returns the updated record.
// Averages use a two-term blend of the stored value and this batch's value,
// which deliberately gives recent batches disproportionate influence; the
// result depends on batch order and is a known approximation, not a true
// running mean.
func Merge(rec domain.InsightRecord, variants []domain.Variant) domain.InsightRecord {
	if len(variants) == 0 {
		return rec
	}

	strategies := make(map[string]domain.StrategyInsight, len(rec.Strategies))
	for id, si := range rec.Strategies {
		strategies[id] = si
	}
	rec.Strategies = strategies

	var batchSum float64
	byStrategy := map[string][]domain.Variant{}
	var order []string
	for _, v := range variants {
		batchSum += v.Score
		if _, ok := byStrategy[v.StrategyId]; !ok {
			order = append(order, v.StrategyId)
		}
		byStrategy[v.StrategyId] = append(byStrategy[v.StrategyId], v)
	}
	batchAvg := batchSum / float64(len(variants))

	for _, id := range order {
		group := byStrategy[id]

		var sum float64
		var patterns []string
		for _, v := range group {
			sum += v.Score
			if v.Score > qualityFloor {
				patterns = union(patterns, ExtractPatterns(v.Prompt))
			}
		}
		groupAvg := sum / float64(len(group))

		si := rec.Strategies[id]
		si.Patterns = union(si.Patterns, patterns)
		if si.Count == 0 {
			si.AvgScore = groupAvg
		} else {
			si.AvgScore = (si.AvgScore + groupAvg) / 2
		}
		si.Count += len(group)
		rec.Strategies[id] = si
	}

	if rec.BatchCount == 0 {
		rec.AvgImprovementScore = batchAvg
	} else {
		rec.AvgImprovementScore = (rec.AvgImprovementScore + batchAvg) / 2
	}
	rec.BatchCount++
	rec.TotalOptimizations += len(variants)
	rec.Version = RecordVersion

	best := variants[0]
	for _, v := range variants[1:] {
		if v.Score > best.Score {
			best = v
		}
	}
	rec.Performance.TopPromptLength = len(best.Prompt)
	rec.Performance.TopStrategy = topStrategy(rec.Strategies)

	rec.Rules.OptimalLength = len(best.Prompt)
	rec.Rules.MinLength = len(best.Prompt) / 2
	rec.Rules.MaxLength = len(best.Prompt) * 2
	for _, v := range variants {
		if v.Score < lowScoreCeiling {
			rec.Rules.AvoidPatterns = union(rec.Rules.AvoidPatterns, ExtractPatterns(v.Prompt))
		}
	}
	if len(rec.Rules.AvoidPatterns) > maxAvoidPatterns {
		rec.Rules.AvoidPatterns = rec.Rules.AvoidPatterns[:maxAvoidPatterns]
	}

	return rec
}

func topStrategy(strategies map[string]domain.StrategyInsight) string {
	ids := make([]string, 0, len(strategies))
	for id := range strategies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var top string
	var topAvg float64
	for _, id := range ids {
		if si := strategies[id]; si.AvgScore > topAvg {
			top = id
			topAvg = si.AvgScore
		}
	}
	return top
}

func union(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range added {
		if _, ok := seen[s]; !ok {
			existing = append(existing, s)
			seen[s] = struct{}{}
		}
	}
	return existing
}

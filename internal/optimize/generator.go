package optimize

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/metrics"
	"github.com/felixbrock/promptforge/internal/provider"
)

// duplicateRetries is how often generation is retried with a "different
// version" hint before a duplicate is accepted anyway.
const duplicateRetries = 2

// uniqueSet tracks normalized variant texts within one batch. It is the only
// state shared between the fan-out goroutines.
type uniqueSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newUniqueSet() *uniqueSet {
	return &uniqueSet{seen: map[string]struct{}{}}
}

// Add reports whether text was new to the batch.
func (u *uniqueSet) Add(text string) bool {
	key := normalizeText(text)

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.seen[key]; ok {
		return false
	}
	u.seen[key] = struct{}{}
	return true
}

// generate produces the variant for one strategy. A provider failure or empty
// sanitized response falls back to the strategy's local template; duplicates
// are retried with a raised temperature and accepted as a last resort.
func (e *Engine) generate(ctx context.Context, prov provider.Provider, req domain.OptimizationRequest, strat domain.Strategy, uniq *uniqueSet) domain.Variant {
	temp := req.Temperature
	var text string

	model := e.optimizationModel(req.Provider)
	if model == "" {
		model = req.Model
	}

	for attempt := 0; attempt <= duplicateRetries; attempt++ {
		raw, err := e.invoke(ctx, req.Provider, prov, model, buildInstruction(req, strat, attempt > 0), e.cfg.GenerationMaxTokens, temp)
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
			text = ""
			break
		}

		text = Sanitize(raw)
		if text == "" {
			break
		}
		if uniq.Add(text) {
			return e.newVariant(req, strat, text)
		}
		temp += 0.1
	}

	if text != "" {
		// Duplicate accepted as a last resort; never blocks the batch.
		return e.newVariant(req, strat, text)
	}

	return e.fallbackVariant(req, strat)
}

func (e *Engine) fallbackVariant(req domain.OptimizationRequest, strat domain.Strategy) domain.Variant {
	metrics.FallbackVariantsTotal.Inc()

	v := e.newVariant(req, strat, FallbackPrompt(strat, req))
	v.Score = EvaluatePrompt(v.Prompt, strat.Weight)
	return v
}

func (e *Engine) newVariant(req domain.OptimizationRequest, strat domain.Strategy, text string) domain.Variant {
	return domain.Variant{
		Prompt:     text,
		StrategyId: strat.Id,
		Metrics: domain.VariantMetrics{
			TokenCount:    approxTokens(text),
			TextLength:    len(text),
			SourceLength:  len(req.OriginalPrompt),
			WeightPercent: int(strat.Weight * 100),
		},
	}
}

// Package optimize holds the optimization core: variant generation,
// evaluation, best-variant selection and the mode controller that runs one
// batch end to end.
package optimize

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/insight"
	"github.com/felixbrock/promptforge/internal/metrics"
	"github.com/felixbrock/promptforge/internal/provider"
	"github.com/felixbrock/promptforge/internal/strategy"
)

type Config struct {
	// SpeedDeadline is the global deadline raced against the whole speed-mode
	// fan-out.
	SpeedDeadline time.Duration

	// SpeedTestRate is the probability that a speed-mode variant is
	// live-tested. At 0 speed mode stays purely heuristic.
	SpeedTestRate float64

	// OptimizationModels maps a provider id to the cheaper model used for
	// generating variants instead of the target model.
	OptimizationModels map[string]string

	// GenerationMaxTokens caps the optimization model's output.
	GenerationMaxTokens int
}

func (c Config) withDefaults() Config {
	if c.SpeedDeadline <= 0 {
		c.SpeedDeadline = 20 * time.Second
	}
	if c.GenerationMaxTokens <= 0 {
		c.GenerationMaxTokens = 1024
	}
	if c.OptimizationModels == nil {
		c.OptimizationModels = map[string]string{
			"openai":    "gpt-4o-mini",
			"anthropic": "claude-3-5-haiku-latest",
			"gemini":    "gemini-2.0-flash",
		}
	}
	return c
}

// Result is what one optimization batch returns to the transport layer.
type Result struct {
	PromptId       string
	OriginalPrompt string
	Variants       []domain.Variant
	Summary        domain.BestVariantResult
	Mode           domain.Mode
}

// Engine coordinates strategy selection, the variant fan-out, evaluation and
// the asynchronous insight write-back.
type Engine struct {
	providers *provider.Registry
	catalog   []domain.Strategy
	insights  insight.Store
	persister *insight.Persister
	cfg       Config

	roll func() float64
}

func NewEngine(providers *provider.Registry, insights insight.Store, persister *insight.Persister, cfg Config) *Engine {
	return &Engine{
		providers: providers,
		catalog:   strategy.Catalog,
		insights:  insights,
		persister: persister,
		cfg:       cfg.withDefaults(),
		roll:      rand.Float64,
	}
}

// Optimize runs one batch. Only a missing provider credential or an empty
// candidate list produce an error; every other failure degrades to fallback
// variants.
func (e *Engine) Optimize(ctx context.Context, req domain.OptimizationRequest) (*Result, error) {
	start := time.Now()

	prov, err := e.providers.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	rec, err := e.insights.Load(ctx, req.UserId, req.Provider, req.Model)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		rec = insight.ColdStart()
	}

	n := req.VariantCount
	if n < 1 {
		n = 3
	}
	strategies := strategy.Select(e.catalog, n, rec)

	var variants []domain.Variant
	if req.Mode == domain.ModeSpeed {
		variants = e.runSpeed(ctx, prov, req, strategies)
	} else {
		variants = e.runDeep(ctx, prov, req, strategies)
	}

	best, err := Best(variants)
	if err != nil {
		return nil, err
	}

	promptId := uuid.New().String()
	result := &Result{
		PromptId:       promptId,
		OriginalPrompt: req.OriginalPrompt,
		Variants:       variants,
		Mode:           req.Mode,
		Summary: domain.BestVariantResult{
			Best:             best,
			ImprovementScore: math.Max(0, best.Score-0.5),
			BestStrategy:     best.StrategyId,
			TotalVariants:    len(variants),
			ProcessingMs:     time.Since(start).Milliseconds(),
		},
	}

	metrics.OptimizationsTotal.WithLabelValues(string(req.Mode)).Inc()
	metrics.BatchDuration.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())

	if e.persister != nil {
		e.persister.Enqueue(insight.Batch{
			UserId:          req.UserId,
			Provider:        req.Provider,
			Model:           req.Model,
			PromptId:        promptId,
			OriginalPrompt:  req.OriginalPrompt,
			OptimizedPrompt: best.Prompt,
			BestStrategy:    best.StrategyId,
			BestScore:       best.Score,
			Mode:            req.Mode,
			Variants:        variants,
		})
	}

	return result, nil
}

// runSpeed races the fan-out against the global deadline. Slots still open
// when the deadline fires are filled with deterministic fallback variants;
// the in-flight goroutines drain into the buffered channel instead of
// leaking.
func (e *Engine) runSpeed(ctx context.Context, prov provider.Provider, req domain.OptimizationRequest, strategies []domain.Strategy) []domain.Variant {
	sctx, cancel := context.WithTimeout(ctx, e.cfg.SpeedDeadline)
	defer cancel()

	uniq := newUniqueSet()

	type slot struct {
		i int
		v domain.Variant
	}
	results := make(chan slot, len(strategies))

	for i, strat := range strategies {
		go func(i int, strat domain.Strategy) {
			results <- slot{i, e.produce(sctx, prov, req, strat, uniq)}
		}(i, strat)
	}

	collected := make([]*domain.Variant, len(strategies))
	got := 0
	timedOut := false
	for got < len(strategies) && !timedOut {
		select {
		case r := <-results:
			collected[r.i] = &r.v
			got++
		case <-sctx.Done():
			timedOut = true
		}
	}

	if timedOut {
		metrics.DeadlineSubstitutionsTotal.Inc()
		for i := range collected {
			if collected[i] == nil {
				v := e.fallbackVariant(req, strategies[i])
				collected[i] = &v
			}
		}
	}

	out := make([]domain.Variant, len(collected))
	for i, v := range collected {
		out[i] = *v
	}
	return out
}

// runDeep waits for every strategy; individual failures already degraded to
// fallbacks inside generate, so there is no global deadline here.
func (e *Engine) runDeep(ctx context.Context, prov provider.Provider, req domain.OptimizationRequest, strategies []domain.Strategy) []domain.Variant {
	uniq := newUniqueSet()
	variants := make([]domain.Variant, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	for i, strat := range strategies {
		g.Go(func() error {
			variants[i] = e.produce(gctx, prov, req, strat, uniq)
			return nil
		})
	}
	_ = g.Wait()

	return variants
}

func (e *Engine) produce(ctx context.Context, prov provider.Provider, req domain.OptimizationRequest, strat domain.Strategy, uniq *uniqueSet) domain.Variant {
	v := e.generate(ctx, prov, req, strat, uniq)
	e.score(ctx, prov, req, strat, &v)
	return v
}

func (e *Engine) score(ctx context.Context, prov provider.Provider, req domain.OptimizationRequest, strat domain.Strategy, v *domain.Variant) {
	switch {
	case req.Mode == domain.ModeDeep:
		e.liveScore(ctx, prov, req, strat, v)
	case e.cfg.SpeedTestRate > 0 && e.roll() < e.cfg.SpeedTestRate:
		e.liveScore(ctx, prov, req, strat, v)
	case e.cfg.SpeedTestRate > 0:
		v.Score = untestedScore(strat.Weight, expansionRatio(v.Prompt, req.OriginalPrompt))
	default:
		v.Score = EvaluatePrompt(v.Prompt, strat.Weight)
	}
}

// liveScore sends the candidate to the target model and scores the real
// response. A failed live call falls back to scoring the candidate itself,
// penalized unless the candidate grew substantially over the original.
func (e *Engine) liveScore(ctx context.Context, prov provider.Provider, req domain.OptimizationRequest, strat domain.Strategy, v *domain.Variant) {
	maxTokens := 0
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	resp, err := e.invoke(ctx, req.Provider, prov, req.Model, v.Prompt, maxTokens, req.Temperature)
	if err != nil || strings.TrimSpace(resp) == "" {
		score := EvaluatePrompt(v.Prompt, strat.Weight)
		if float64(len(v.Prompt)) <= 1.5*float64(len(req.OriginalPrompt)) {
			score -= 0.1
		}
		v.Score = clamp(score, floorCompressed, 1.0)
		return
	}

	v.Tested = true
	v.Response = resp
	v.Score = EvaluateResponse(resp, strat.Weight)
}

func (e *Engine) invoke(ctx context.Context, providerId string, prov provider.Provider, model, prompt string, maxTokens int, temperature float64) (string, error) {
	text, err := prov.Invoke(ctx, model, prompt, maxTokens, temperature)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderCallsTotal.WithLabelValues(providerId, status).Inc()

	return text, err
}

func (e *Engine) optimizationModel(providerId string) string {
	if m, ok := e.cfg.OptimizationModels[providerId]; ok {
		return m
	}
	return ""
}

// untestedScore substitutes for a real measurement when speed mode skips
// live-testing: a deterministic blend of the strategy weight and how much the
// candidate expanded over the original.
func untestedScore(weight, ratio float64) float64 {
	if ratio > 2 {
		ratio = 2
	}
	return clamp(0.45+0.3*weight+0.05*ratio, floorCompressed, 1.0)
}

func expansionRatio(candidate, original string) float64 {
	if len(original) == 0 {
		return 1
	}
	return float64(len(candidate)) / float64(len(original))
}

package insight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/metrics"
)

const (
	queueSize      = 64
	persistTimeout = 10 * time.Second
)

// Batch carries everything the background write-back needs from one finished
// optimization.
type Batch struct {
	UserId          string
	Provider        string
	Model           string
	PromptId        string
	OriginalPrompt  string
	OptimizedPrompt string
	BestStrategy    string
	BestScore       float64
	Mode            domain.Mode
	Variants        []domain.Variant
}

// Persister merges batches into the insight store and appends prompt history
// off the request's critical path. Failures are logged and retried once; they
// never affect a response that was already returned.
type Persister struct {
	store   Store
	history HistoryRepo

	tasks     chan Batch
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewPersister(store Store, history HistoryRepo) *Persister {
	p := &Persister{
		store:   store,
		history: history,
		tasks:   make(chan Batch, queueSize),
	}

	p.wg.Add(1)
	go p.worker()

	return p
}

// Enqueue hands a batch to the background worker without ever blocking the
// caller. A full queue drops the batch and logs it.
func (p *Persister) Enqueue(b Batch) {
	select {
	case p.tasks <- b:
	default:
		slog.Warn(fmt.Sprintf("insight queue full, dropping batch for user %s", b.UserId))
		metrics.InsightWritesTotal.WithLabelValues("dropped").Inc()
	}
}

// Close stops accepting batches and waits until queued work is flushed.
func (p *Persister) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}

func (p *Persister) worker() {
	defer p.wg.Done()

	for b := range p.tasks {
		p.process(b)
	}
}

func (p *Persister) process(b Batch) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	err := withRetry(func() error { return p.persistInsight(ctx, b) })
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		metrics.InsightWritesTotal.WithLabelValues("error").Inc()
	} else {
		metrics.InsightWritesTotal.WithLabelValues("ok").Inc()
	}

	if p.history == nil {
		return
	}
	err = withRetry(func() error {
		return p.history.Insert(ctx, domain.PromptRecord{
			Id:              b.PromptId,
			UserId:          b.UserId,
			Provider:        b.Provider,
			Model:           b.Model,
			OriginalPrompt:  b.OriginalPrompt,
			OptimizedPrompt: b.OptimizedPrompt,
			BestStrategy:    b.BestStrategy,
			BestScore:       b.BestScore,
			Mode:            b.Mode,
			CreatedAt:       time.Now().UTC(),
		})
	})
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}

func (p *Persister) persistInsight(ctx context.Context, b Batch) error {
	rec, err := p.store.Load(ctx, b.UserId, b.Provider, b.Model)
	if err != nil {
		return err
	}

	return p.store.Upsert(ctx, b.UserId, b.Provider, b.Model, Merge(rec, b.Variants))
}

// withRetry runs fn and retries exactly once on failure.
func withRetry(fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	return fn()
}

// Package provider abstracts the AI providers behind a single invoke method
// so new providers are added by registering an implementation rather than by
// editing dispatch code.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// callTimeout bounds every single outbound provider call independently of the
// overall request.
const callTimeout = 15 * time.Second

// ErrNotConfigured is returned when a request names a provider for which no
// credential was registered. This is the one configuration error the engine
// does not route around.
var ErrNotConfigured = errors.New("provider not configured")

// Provider is one AI provider. Invoke sends a prompt to the given model and
// returns the raw response text. A remote failure is returned as an error,
// never a panic, so callers can apply deterministic fallback. maxTokens <= 0
// means no explicit limit.
type Provider interface {
	Invoke(ctx context.Context, model string, prompt string, maxTokens int, temperature float64) (string, error)
}

// Registry maps provider ids to implementations. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

func (r *Registry) Register(id string, p Provider) {
	r.providers[id] = p
}

func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, id)
	}
	return p, nil
}

func (r *Registry) Ids() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

package provider

import (
	"context"
	"sync"
	"time"
)

// MockCall records one Invoke for later assertion.
type MockCall struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// MockResponse is one canned reply for the mock provider.
type MockResponse struct {
	Content string
	Err     error
}

// Mock is a test double. It returns canned responses in sequence, repeating
// the last one once exhausted, and records every request. A non-zero Delay
// makes every call wait that long (or until the context is cancelled), which
// is how the deadline paths are exercised.
type Mock struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []MockCall
	idx       int

	Delay time.Duration

	// Respond, when set, overrides the canned responses and computes the
	// reply from the received prompt.
	Respond func(prompt string) (string, error)
}

var _ Provider = (*Mock)(nil)

func NewMock(responses ...MockResponse) *Mock {
	return &Mock{responses: responses}
}

func (m *Mock) Invoke(ctx context.Context, model string, prompt string, maxTokens int, temperature float64) (string, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Model: model, Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature})

	if m.Respond != nil {
		return m.Respond(prompt)
	}

	if len(m.responses) == 0 {
		return "", nil
	}

	r := m.responses[m.idx]
	if m.idx < len(m.responses)-1 {
		m.idx++
	}

	if r.Err != nil {
		return "", r.Err
	}
	return r.Content, nil
}

// Calls returns a copy of all recorded requests.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetUnknownProvider(t *testing.T) {
	registry := NewRegistry()
	registry.Register("openai", NewMock())

	_, err := registry.Get("anthropic")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorContains(t, err, "anthropic")
}

func TestRegistryRoundtrip(t *testing.T) {
	registry := NewRegistry()
	mock := NewMock()
	registry.Register("openai", mock)

	got, err := registry.Get("openai")

	require.NoError(t, err)
	assert.Same(t, Provider(mock), got)
	assert.ElementsMatch(t, []string{"openai"}, registry.Ids())
}

func TestOpenAIInvoke(t *testing.T) {
	var gotReq oaiCompletionReq
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(oaiCompletion{
			Choices: []oaiChoice{{Message: oaiMessage{Role: "assistant", Content: "improved prompt"}}},
		})
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test")
	p.baseUrl = srv.URL

	got, err := p.Invoke(context.Background(), "gpt-4o-mini", "make this better", 256, 0.7)

	require.NoError(t, err)
	assert.Equal(t, "improved prompt", got)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "make this better", gotReq.Messages[0].Content)
	require.NotNil(t, gotReq.MaxTokens)
	assert.Equal(t, 256, *gotReq.MaxTokens)
	assert.Equal(t, 0.7, gotReq.Temperature)
}

func TestOpenAIInvokeOmitsMaxTokensWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "max_tokens")

		json.NewEncoder(w).Encode(oaiCompletion{
			Choices: []oaiChoice{{Message: oaiMessage{Content: "ok"}}},
		})
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test")
	p.baseUrl = srv.URL

	_, err := p.Invoke(context.Background(), "gpt-4o-mini", "prompt", 0, 0.7)
	require.NoError(t, err)
}

func TestOpenAIInvokeNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test")
	p.baseUrl = srv.URL

	_, err := p.Invoke(context.Background(), "gpt-4o-mini", "prompt", 0, 0.7)

	assert.ErrorContains(t, err, "429")
}

func TestOpenAIInvokeEmptyChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(oaiCompletion{})
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test")
	p.baseUrl = srv.URL

	_, err := p.Invoke(context.Background(), "gpt-4o-mini", "prompt", 0, 0.7)

	assert.Error(t, err)
}

func TestMockSequencesAndRepeatsLastResponse(t *testing.T) {
	mock := NewMock(
		MockResponse{Content: "first"},
		MockResponse{Content: "second"},
	)

	ctx := context.Background()
	for _, want := range []string{"first", "second", "second"} {
		got, err := mock.Invoke(ctx, "m", "p", 0, 0.7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Len(t, mock.Calls(), 3)
}

func TestMockReturnsCannedError(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMock(MockResponse{Err: boom})

	_, err := mock.Invoke(context.Background(), "m", "p", 0, 0.7)

	assert.ErrorIs(t, err, boom)
}

func TestMockDelayHonorsContext(t *testing.T) {
	mock := NewMock(MockResponse{Content: "late"})
	mock.Delay = 5 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := mock.Invoke(ctx, "m", "p", 0, 0.7)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, mock.Calls(), "cancelled call must not be recorded")
}

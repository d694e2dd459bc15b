// Package app is the thin transport adapter: it parses requests, applies
// defaults and caps, calls the optimization engine and serializes responses.
// It contains no optimization logic of its own.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixbrock/promptforge/internal/optimize"
	"github.com/felixbrock/promptforge/internal/persistence"
)

type Config struct {
	Port                string            `yaml:"port"`
	DBPath              string            `yaml:"db_path"`
	OpenAIKey           string            `yaml:"openai_key"`
	AnthropicKey        string            `yaml:"anthropic_key"`
	GeminiKey           string            `yaml:"gemini_key"`
	SpeedDeadline       time.Duration     `yaml:"speed_deadline"`
	SpeedTestRate       float64           `yaml:"speed_test_rate"`
	OptimizationModels  map[string]string `yaml:"optimization_models"`
	GenerationMaxTokens int               `yaml:"generation_max_tokens"`
}

type App struct {
	Engine     *optimize.Engine
	PromptRepo *persistence.PromptRepo
	Config     Config
}

func (a App) Start() error {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Post("/api/v1/optimize", a.handleOptimize)
	r.Get("/api/v1/history", a.handleHistory)
	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	slog.Info(fmt.Sprintf("App running on %s...", a.Config.Port))
	return http.ListenAndServe(fmt.Sprintf(":%s", a.Config.Port), r)
}

func (a App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"
	"gopkg.in/yaml.v3"

	"github.com/felixbrock/promptforge/internal/app"
	"github.com/felixbrock/promptforge/internal/insight"
	"github.com/felixbrock/promptforge/internal/optimize"
	"github.com/felixbrock/promptforge/internal/persistence"
	"github.com/felixbrock/promptforge/internal/provider"
)

func config() app.Config {
	cfg := app.Config{
		Port:          "8000",
		DBPath:        "promptforge.db",
		SpeedDeadline: 20 * time.Second,
	}

	if path := os.Getenv("PROMPTFORGE_CONFIG"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		} else if err := yaml.Unmarshal(content, &cfg); err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}
	}

	if port := os.Getenv("GOPORT"); port != "" {
		cfg.Port = port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.AnthropicKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiKey = key
	}

	if cfg.OpenAIKey == "" && cfg.AnthropicKey == "" && cfg.GeminiKey == "" {
		slog.Error("no provider API key configured")
	}

	return cfg
}

func main() {
	cfg := config()

	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	registry := provider.NewRegistry()
	if cfg.OpenAIKey != "" {
		registry.Register("openai", provider.NewOpenAI(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		registry.Register("anthropic", provider.NewAnthropic(cfg.AnthropicKey))
	}
	if cfg.GeminiKey != "" {
		gemini, err := provider.NewGemini(context.Background(), cfg.GeminiKey)
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		} else {
			registry.Register("gemini", gemini)
		}
	}

	insightRepo := &persistence.InsightRepo{DB: db}
	promptRepo := &persistence.PromptRepo{DB: db}

	persister := insight.NewPersister(insightRepo, promptRepo)
	defer persister.Close()

	engine := optimize.NewEngine(registry, insightRepo, persister, optimize.Config{
		SpeedDeadline:       cfg.SpeedDeadline,
		SpeedTestRate:       cfg.SpeedTestRate,
		OptimizationModels:  cfg.OptimizationModels,
		GenerationMaxTokens: cfg.GenerationMaxTokens,
	})

	a := app.App{
		Engine:     engine,
		PromptRepo: promptRepo,
		Config:     cfg,
	}

	if err := a.Start(); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		os.Exit(1)
	}
}

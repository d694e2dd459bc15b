package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/felixbrock/promptforge/internal/domain"
	"github.com/felixbrock/promptforge/internal/optimize"
	"github.com/felixbrock/promptforge/internal/provider"
	"github.com/felixbrock/promptforge/internal/strategy"
)

const (
	defaultVariants    = 3
	maxSpeedVariants   = 3
	maxDeepVariants    = 5
	defaultTemperature = 0.7
)

type optimizeReq struct {
	OriginalPrompt  string   `json:"originalPrompt"`
	TaskDescription string   `json:"taskDescription"`
	AIProvider      string   `json:"aiProvider"`
	ModelName       string   `json:"modelName"`
	OutputType      string   `json:"outputType"`
	Variants        int      `json:"variants"`
	MaxTokens       *int     `json:"maxTokens"`
	Temperature     *float64 `json:"temperature"`
	Influence       string   `json:"influence"`
	InfluenceWeight int      `json:"influenceWeight"`
	Mode            string   `json:"mode"`
}

type variantResp struct {
	Prompt   string         `json:"prompt"`
	Strategy string         `json:"strategy"`
	Score    float64        `json:"score"`
	Response string         `json:"response,omitempty"`
	Metrics  metricsResp    `json:"metrics"`
}

type metricsResp struct {
	TokenCount    int `json:"tokenCount"`
	TextLength    int `json:"textLength"`
	SourceLength  int `json:"sourceLength"`
	WeightPercent int `json:"weightPercent"`
}

type summaryResp struct {
	ImprovementScore float64 `json:"improvementScore"`
	BestStrategy     string  `json:"bestStrategy"`
	TotalVariants    int     `json:"totalVariants"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
}

type optimizeResp struct {
	PromptId            string        `json:"promptId"`
	OriginalPrompt      string        `json:"originalPrompt"`
	BestOptimizedPrompt string        `json:"bestOptimizedPrompt"`
	BestScore           float64       `json:"bestScore"`
	Variants            []variantResp `json:"variants"`
	Summary             summaryResp   `json:"summary"`
	Mode                string        `json:"mode,omitempty"`
	Strategy            string        `json:"strategy,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

func (a App) handleOptimize(w http.ResponseWriter, r *http.Request) {
	userId := r.Header.Get("X-User-Id")
	if userId == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	var body optimizeReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := toDomainRequest(userId, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.Engine.Optimize(r.Context(), req)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		switch {
		case errors.Is(err, provider.ErrNotConfigured):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, optimize.ErrAllVariantsFailed):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "optimization failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, toOptimizeResp(result))
}

func (a App) handleHistory(w http.ResponseWriter, r *http.Request) {
	userId := r.Header.Get("X-User-Id")
	if userId == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-Id header")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := a.PromptRepo.Read(r.Context(), userId, limit)
	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "history read failed")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func toDomainRequest(userId string, body optimizeReq) (domain.OptimizationRequest, error) {
	if body.OriginalPrompt == "" {
		return domain.OptimizationRequest{}, errors.New("originalPrompt is required")
	}
	if body.AIProvider == "" || body.ModelName == "" {
		return domain.OptimizationRequest{}, errors.New("aiProvider and modelName are required")
	}
	if body.InfluenceWeight < 0 || body.InfluenceWeight > 100 {
		return domain.OptimizationRequest{}, errors.New("influenceWeight must be within [0, 100]")
	}

	mode := domain.ModeDeep
	switch body.Mode {
	case "", string(domain.ModeDeep):
	case string(domain.ModeSpeed):
		mode = domain.ModeSpeed
	default:
		return domain.OptimizationRequest{}, fmt.Errorf("unknown mode %q", body.Mode)
	}

	outputType := domain.OutputText
	switch body.OutputType {
	case "", string(domain.OutputText):
	case string(domain.OutputCode):
		outputType = domain.OutputCode
	case string(domain.OutputJSON):
		outputType = domain.OutputJSON
	case string(domain.OutputList):
		outputType = domain.OutputList
	case string(domain.OutputEssay):
		outputType = domain.OutputEssay
	default:
		return domain.OptimizationRequest{}, fmt.Errorf("unknown outputType %q", body.OutputType)
	}

	variants := body.Variants
	if variants < 1 {
		variants = defaultVariants
	}
	if mode == domain.ModeSpeed && variants > maxSpeedVariants {
		variants = maxSpeedVariants
	}
	if mode == domain.ModeDeep && variants > maxDeepVariants {
		variants = maxDeepVariants
	}

	temperature := defaultTemperature
	if body.Temperature != nil {
		temperature = *body.Temperature
	}

	return domain.OptimizationRequest{
		UserId:          userId,
		OriginalPrompt:  body.OriginalPrompt,
		TaskDescription: body.TaskDescription,
		Provider:        body.AIProvider,
		Model:           body.ModelName,
		OutputType:      outputType,
		VariantCount:    variants,
		MaxTokens:       body.MaxTokens,
		Temperature:     temperature,
		Influence:       body.Influence,
		InfluenceWeight: body.InfluenceWeight,
		Mode:            mode,
	}, nil
}

func toOptimizeResp(result *optimize.Result) optimizeResp {
	variants := make([]variantResp, len(result.Variants))
	for i, v := range result.Variants {
		variants[i] = variantResp{
			Prompt:   v.Prompt,
			Strategy: v.StrategyId,
			Score:    v.Score,
			Response: v.Response,
			Metrics: metricsResp{
				TokenCount:    v.Metrics.TokenCount,
				TextLength:    v.Metrics.TextLength,
				SourceLength:  v.Metrics.SourceLength,
				WeightPercent: v.Metrics.WeightPercent,
			},
		}
	}

	resp := optimizeResp{
		PromptId:            result.PromptId,
		OriginalPrompt:      result.OriginalPrompt,
		BestOptimizedPrompt: result.Summary.Best.Prompt,
		BestScore:           result.Summary.Best.Score,
		Variants:            variants,
		Summary: summaryResp{
			ImprovementScore: result.Summary.ImprovementScore,
			BestStrategy:     result.Summary.BestStrategy,
			TotalVariants:    result.Summary.TotalVariants,
			ProcessingTimeMs: result.Summary.ProcessingMs,
		},
	}

	if result.Mode == domain.ModeSpeed {
		resp.Mode = string(domain.ModeSpeed)
		if s, ok := strategy.ById(result.Summary.BestStrategy); ok {
			resp.Strategy = s.DisplayName
		} else {
			resp.Strategy = result.Summary.BestStrategy
		}
	}

	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Error: msg})
}

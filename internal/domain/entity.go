package domain

import "time"

type Mode string

const (
	ModeSpeed Mode = "speed"
	ModeDeep  Mode = "deep"
)

type OutputType string

const (
	OutputText  OutputType = "text"
	OutputCode  OutputType = "code"
	OutputJSON  OutputType = "json"
	OutputList  OutputType = "list"
	OutputEssay OutputType = "essay"
)

type OptimizationRequest struct {
	UserId          string
	OriginalPrompt  string
	TaskDescription string
	Provider        string
	Model           string
	OutputType      OutputType
	VariantCount    int
	MaxTokens       *int
	Temperature     float64
	Influence       string
	InfluenceWeight int
	Mode            Mode
}

type Strategy struct {
	Id          string
	DisplayName string
	Instruction string
	Weight      float64
}

type VariantMetrics struct {
	TokenCount    int `json:"token_count"`
	TextLength    int `json:"text_length"`
	SourceLength  int `json:"source_length"`
	WeightPercent int `json:"weight_percent"`
}

type Variant struct {
	Prompt     string         `json:"prompt"`
	StrategyId string         `json:"strategy_id"`
	Score      float64        `json:"score"`
	Tested     bool           `json:"tested"`
	Response   string         `json:"response"`
	Metrics    VariantMetrics `json:"metrics"`
}

type StrategyInsight struct {
	Patterns []string `json:"patterns"`
	AvgScore float64  `json:"avg_score"`
	Count    int      `json:"count"`
}

type PerformancePatterns struct {
	TopPromptLength int    `json:"top_performing_prompt_length"`
	TopStrategy     string `json:"most_successful_strategy"`
}

type OptimizationRules struct {
	MinLength     int      `json:"min_prompt_length"`
	MaxLength     int      `json:"max_prompt_length"`
	OptimalLength int      `json:"optimal_prompt_length"`
	AvoidPatterns []string `json:"avoid_patterns"`
}

type InsightRecord struct {
	Version             int                        `json:"version"`
	BatchCount          int                        `json:"batch_count"`
	TotalOptimizations  int                        `json:"total_optimizations"`
	AvgImprovementScore float64                    `json:"avg_improvement_score"`
	Strategies          map[string]StrategyInsight `json:"successful_strategies"`
	Performance         PerformancePatterns        `json:"performance_patterns"`
	Rules               OptimizationRules          `json:"optimization_rules"`
}

type BestVariantResult struct {
	Best             Variant `json:"best"`
	ImprovementScore float64 `json:"improvement_score"`
	BestStrategy     string  `json:"best_strategy"`
	TotalVariants    int     `json:"total_variants"`
	ProcessingMs     int64   `json:"processing_time_ms"`
}

type PromptRecord struct {
	Id              string    `json:"id"`
	UserId          string    `json:"user_id"`
	Provider        string    `json:"provider"`
	Model           string    `json:"model"`
	OriginalPrompt  string    `json:"original_prompt"`
	OptimizedPrompt string    `json:"optimized_prompt"`
	BestStrategy    string    `json:"best_strategy"`
	BestScore       float64   `json:"best_score"`
	Mode            Mode      `json:"mode"`
	CreatedAt       time.Time `json:"created_at"`
}

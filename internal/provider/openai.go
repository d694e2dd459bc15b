package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

const openAIBaseUrl = "https://api.openai.com/v1"

// OpenAI calls the chat completions endpoint directly.
type OpenAI struct {
	baseUrl     string
	baseHeaders []string
	client      *http.Client
	limiter     *rate.Limiter
}

var _ Provider = (*OpenAI)(nil)

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		baseUrl: openAIBaseUrl,
		baseHeaders: []string{
			"Content-Type:application/json",
			fmt.Sprintf("Authorization:Bearer %s", apiKey)},
		client:  &http.Client{Timeout: callTimeout},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiCompletionReq struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	MaxTokens   *int         `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

type oaiChoice struct {
	Message oaiMessage `json:"message"`
}

type oaiCompletion struct {
	Choices []oaiChoice `json:"choices"`
}

func (p *OpenAI) Invoke(ctx context.Context, model string, prompt string, maxTokens int, temperature float64) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	proto := oaiCompletionReq{
		Model:       model,
		Messages:    []oaiMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}
	if maxTokens > 0 {
		proto.MaxTokens = &maxTokens
	}

	body, err := json.Marshal(proto)

	if err != nil {
		return "", err
	}

	completion, err := request[oaiCompletion](ctx, p.client, reqConfig{
		Method:  "POST",
		Url:     fmt.Sprintf("%s/chat/completions", p.baseUrl),
		Headers: p.baseHeaders,
		Body:    body}, 200)

	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("unexpected completion state error")
	}

	return completion.Choices[0].Message.Content, nil
}

package provider

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Gemini calls the Gemini API through the google genai SDK.
type Gemini struct {
	client  *genai.Client
	limiter *rate.Limiter
}

var _ Provider = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})

	if err != nil {
		return nil, err
	}

	return &Gemini{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}, nil
}

func (p *Gemini) Invoke(ctx context.Context, model string, prompt string, maxTokens int, temperature float64) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)

	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("unexpected candidate content state error")
	}

	return text, nil
}

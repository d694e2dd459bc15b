package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// anthropicDefaultMaxTokens applies when the request carries no token budget;
// the messages API requires an explicit limit.
const anthropicDefaultMaxTokens = 4096

// Anthropic calls the messages API through the official SDK.
type Anthropic struct {
	client  anthropic.Client
	limiter *rate.Limiter
}

var _ Provider = (*Anthropic)(nil)

func NewAnthropic(apiKey string) *Anthropic {
	return &Anthropic{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

func (p *Anthropic) Invoke(ctx context.Context, model string, prompt string, maxTokens int, temperature float64) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})

	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var content string
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}

	if content == "" {
		return "", errors.New("unexpected message content state error")
	}

	return content, nil
}

package simplifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	maxRetries            = 3
	initialBackoff        = 1 * time.Second
)

// Anthropic simplifies through the Claude messages API. Rate limited and
// server side failures are retried with exponential backoff.
type Anthropic struct {
	client         anthropic.Client
	model          anthropic.Model
	maxRetries     int
	initialBackoff time.Duration
}

/**
NewAnthropic creates a Claude backed simplifier. The ANTHROPIC_API_KEY
environment variable takes precedence over the configured key.
**/
func NewAnthropic(model, apiKey string) (*Anthropic, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or simplifier.api_key in config", ErrAPIKeyRequired)
	}
	if model == "" {
		model = defaultAnthropicModel
	}

	return &Anthropic{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          anthropic.Model(model),
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}, nil
}

func (a *Anthropic) Simplify(ctx context.Context, req Request) Outcome {
	prompt := BuildPrompt(req)

	simplified, err := a.callWithRetry(ctx, prompt)
	if err != nil {
		return Outcome{
			Model:        string(a.model),
			Prompt:       prompt,
			Success:      false,
			ErrorMessage: err.Error(),
		}
	}

	return Outcome{
		SimplifiedText: strings.TrimSpace(simplified),
		Model:          string(a.model),
		Prompt:         prompt,
		Success:        true,
	}
}

func (a *Anthropic) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	params := anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   maxCompletionTokens,
		Temperature: anthropic.Float(modelTemperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := a.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := a.client.Messages.New(ctx, params)
		if err == nil {
			if len(message.Content) == 0 {
				return "", fmt.Errorf("unexpected response format: no content blocks")
			}
			content := message.Content[0]
			if content.Type != "text" {
				return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
			}
			return content.Text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !retryableAPIError(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", a.maxRetries+1, lastErr)
}

func retryableAPIError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

package simplifier

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI simplifies through the OpenAI chat completions API, or any
// compatible endpoint reachable via base_url.
type OpenAI struct {
	llm   llms.Model
	model string
}

/**
NewOpenAI creates a GPT backed simplifier. The OPENAI_API_KEY environment
variable takes precedence over the configured key.
**/
func NewOpenAI(model, apiKey, baseURL string) (*OpenAI, error) {
	if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY or simplifier.api_key in config", ErrAPIKeyRequired)
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	return &OpenAI{llm: llm, model: model}, nil
}

func (o *OpenAI) Simplify(ctx context.Context, req Request) Outcome {
	prompt := BuildPrompt(req)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := o.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(modelTemperature),
		llms.WithMaxTokens(maxCompletionTokens),
	)
	if err != nil {
		return Outcome{
			Model:        o.model,
			Prompt:       prompt,
			Success:      false,
			ErrorMessage: err.Error(),
		}
	}
	if len(resp.Choices) == 0 {
		return Outcome{
			Model:        o.model,
			Prompt:       prompt,
			Success:      false,
			ErrorMessage: "unexpected response format: no choices",
		}
	}

	return Outcome{
		SimplifiedText: strings.TrimSpace(resp.Choices[0].Content),
		Model:          o.model,
		Prompt:         prompt,
		Success:        true,
	}
}

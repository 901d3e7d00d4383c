package llm

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-5-nano"

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIProvider struct {
	Model  string
	client *openai.Client
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a provider. An empty baseURL keeps the public OpenAI endpoint.
func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{Model: model, client: openai.NewClientWithConfig(cfg)}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	temperature := temperatureOption(options, 0)
	if temperature == 0 {
		// go-openai omits a zero temperature, which the server reads as its default of 1.
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       stringOption(options, "model", p.Model),
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OPENAI_API_ERROR: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OPENAI_NO_CHOICES: model=%s", resp.Model)
	}
	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultDeepSeekURL   = "https://api.deepseek.com"
	defaultDeepSeekModel = "deepseek-chat"
)

// DeepSeekProvider calls the DeepSeek chat completion API directly over HTTP.
type DeepSeekProvider struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

var _ Provider = (*DeepSeekProvider)(nil)

type DeepSeekRequest struct {
	Messages       []Message      `json:"messages"`
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
	Temperature    float64        `json:"temperature"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type DeepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewDeepSeekProvider(apiKey, baseURL, model string, timeout time.Duration) (*DeepSeekProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: DEEPSEEK_API_KEY", ErrMissingAPIKey)
	}
	if baseURL == "" {
		baseURL = defaultDeepSeekURL
	}
	if model == "" {
		model = defaultDeepSeekModel
	}
	return &DeepSeekProvider{
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
	}, nil
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	var messages []Message
	if systemPrompt != "" {
		messages = append(messages, Message{Content: systemPrompt, Role: "system"})
	}
	messages = append(messages, Message{Content: prompt, Role: "user"})

	format := "text"
	if strings.Contains(strings.ToLower(prompt), "json object") {
		format = "json_object"
	}

	reqBody := DeepSeekRequest{
		Messages:       messages,
		Model:          stringOption(options, "model", p.Model),
		MaxTokens:      4096,
		ResponseFormat: ResponseFormat{Type: format},
		Temperature:    float64(temperatureOption(options, 0)),
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_API_CALL_ERROR: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DEEPSEEK_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response DeepSeekResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("DEEPSEEK_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("DEEPSEEK_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"errors"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	Name() string
}

// ErrMissingAPIKey is returned by providers built without credentials.
var ErrMissingAPIKey = errors.New("llm api key missing")

// temperatureOption reads options["temperature"], accepting any float or int type.
func temperatureOption(options map[string]interface{}, def float32) float32 {
	switch v := options["temperature"].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int:
		return float32(v)
	}
	return def
}

func stringOption(options map[string]interface{}, key, def string) string {
	if v, ok := options[key].(string); ok && v != "" {
		return v
	}
	return def
}

package llm

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/config"
	"legal_counsel_finder/pkg/core/logger"
)

// Manager holds the configured providers and which one is active.
type Manager struct {
	active    string
	providers map[string]Provider
}

func NewManager() *Manager {
	return &Manager{providers: make(map[string]Provider)}
}

// NewManagerFromConfig registers the provider named in cfg. A disabled config, or one
// without an API key, yields a manager with no active provider.
func NewManagerFromConfig(cfg config.LLMConfig) *Manager {
	m := NewManager()
	if !cfg.Enabled {
		return m
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "deepseek":
		p, err = NewDeepSeekProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, timeout)
	case "gemini":
		p, err = NewGeminiProvider(cfg.APIKey, cfg.Model)
	case "openai", "":
		p, err = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		err = fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		logger.Warn("[LLM] provider disabled", zap.String("provider", cfg.Provider), zap.Error(err))
		return m
	}

	m.Register(p)
	m.active = p.Name()
	logger.Info("[LLM] provider ready", zap.String("provider", p.Name()), zap.String("model", cfg.Model))
	return m
}

func (m *Manager) Register(p Provider) {
	m.providers[p.Name()] = p
	if m.active == "" {
		m.active = p.Name()
	}
}

// GetProvider returns the active provider, or nil when none is configured.
func (m *Manager) GetProvider() Provider {
	if m == nil {
		return nil
	}
	return m.providers[m.active]
}

// GetActiveProvider is the name of the active provider, or "".
func (m *Manager) GetActiveProvider() string {
	if m == nil {
		return ""
	}
	return m.active
}

package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/config"
	"legal_counsel_finder/pkg/core/counsel"
	"legal_counsel_finder/pkg/core/edgar"
	"legal_counsel_finder/pkg/core/llm"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/search"
	"legal_counsel_finder/pkg/core/store"
)

// Build assembles an orchestrator and the SEC parser behind it from cfg. The returned
// close func releases the result cache.
func Build(ctx context.Context, cfg config.Config) (*Orchestrator, *edgar.Parser, func()) {
	client := edgar.NewClient(cfg.SEC.UserAgent, cfg.SECTimeout()).WithRetry(3, 500*time.Millisecond)
	parser := edgar.NewParser(client).WithTextCache(edgar.NewTextCache(""))

	orch := NewOrchestrator(parser, search.NewClient(client), OptionsFromConfig(cfg))

	manager := llm.NewManagerFromConfig(cfg.LLM)
	if p := manager.GetProvider(); p != nil {
		x := counsel.NewLLMExtractor(p, manager.GetActiveProvider(), cfg.LLM.Model)
		if cfg.LLM.Retries >= 0 {
			x.Retries = cfg.LLM.Retries
		}
		if cfg.LLM.TimeoutSeconds > 0 {
			x.Timeout = time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		}
		orch.SetLLM(x)
	} else {
		logger.Info("[LLM] extraction disabled, pattern rules only")
	}

	cache := store.New(ctx, cfg.Cache)
	orch.SetCache(cache)

	return orch, parser, func() {
		if err := cache.Close(); err != nil {
			logger.Warn("[CACHE] close failed", zap.Error(err))
		}
	}
}

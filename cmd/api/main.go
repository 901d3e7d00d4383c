package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/api/counsel"
	"legal_counsel_finder/pkg/core/config"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
	"legal_counsel_finder/pkg/core/pipeline"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to counsel.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, parser, closeCache := pipeline.Build(ctx, cfg)
	defer closeCache()

	mux := http.NewServeMux()
	counsel.NewHandler(orch, parser).Register(mux)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("API server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.Strings("routes", []string{
			"GET /api/counsel/company",
			"GET /api/counsel/company/stream",
			"GET /api/counsel/entity",
			"GET /api/counsel/entity/stream",
			"GET /api/companies",
			"GET /metrics",
		}),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("[FATAL] Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}

package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/config"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
)

// Cache keeps finished search results for a short time. Values are JSON encoded.
// Get reports false on a miss or an expired entry.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Key derives a stable cache key from the parts of a query.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(parts, "\x1f"))))
	return hex.EncodeToString(sum[:])
}

// New builds the backend named in cfg. Backends that cannot start degrade to NopCache
// with a warning; a result cache is never worth failing a search for.
func New(ctx context.Context, cfg config.CacheConfig) Cache {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute

	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "file":
		c, err = NewFileCache(cfg.Dir, ttl)
	case "postgres":
		c, err = NewPostgresCache(ctx, cfg.DatabaseURL, ttl)
	case "redis":
		c, err = NewRedisCache(ctx, cfg.RedisURL, ttl)
	case "", "none":
		return NopCache{}
	default:
		err = fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		logger.Warn("[CACHE] backend unavailable, caching disabled", zap.String("backend", cfg.Backend), zap.Error(err))
		return NopCache{}
	}
	logger.Info("[CACHE] ready", zap.String("backend", cfg.Backend), zap.Duration("ttl", ttl))
	return c
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, interface{}) error         { return nil }
func (NopCache) Close() error                                           { return nil }

func recordLookup(backend string, hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues(backend, result).Inc()
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores one JSON file per key under dir.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type fileEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		dir = filepath.Join(".cache", "counsel")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	hit, err := c.get(key, dst)
	recordLookup("file", hit, err)
	return hit, err
}

func (c *FileCache) get(key string, dst interface{}) (bool, error) {
	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A torn write is a miss; the next Set overwrites it.
		return false, nil
	}
	if c.ttl > 0 && c.now().Sub(entry.StoredAt) > c.ttl {
		_ = os.Remove(c.path(key))
		return false, nil
	}
	if err := json.Unmarshal(entry.Value, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	data, err := json.MarshalIndent(fileEntry{StoredAt: c.now(), Value: raw}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp, c.path(key))
}

func (c *FileCache) Close() error { return nil }

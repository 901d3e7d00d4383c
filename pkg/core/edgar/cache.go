package edgar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TextCache stores counsel excerpts on disk. Filings never change once accepted,
// so entries do not expire.
type TextCache struct {
	cacheDir string
}

// NewTextCache creates a cache under dir, defaulting to .cache/edgar/text.
func NewTextCache(dir string) *TextCache {
	if dir == "" {
		dir = filepath.Join(".cache", "edgar", "text")
	}
	os.MkdirAll(dir, 0755)
	return &TextCache{cacheDir: dir}
}

// cacheKey generates a unique key for a filing
func (c *TextCache) cacheKey(f Filing) string {
	return fmt.Sprintf("%s_%s", strings.TrimLeft(f.CIK, "0"), f.AccessionNoDashes())
}

func (c *TextCache) filePath(f Filing) string {
	return filepath.Join(c.cacheDir, c.cacheKey(f)+".txt")
}

// Get returns the cached excerpt, or "" when absent.
func (c *TextCache) Get(f Filing) string {
	data, err := os.ReadFile(c.filePath(f))
	if err != nil {
		return ""
	}
	return string(data)
}

// Set stores an excerpt.
func (c *TextCache) Set(f Filing, text string) error {
	return os.WriteFile(c.filePath(f), []byte(text), 0644)
}

// Package config loads runtime settings from config/counsel.yaml and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where Load looks when no explicit path is given.
const DefaultPath = "config/counsel.yaml"

type Config struct {
	SEC      SECConfig      `yaml:"sec"`
	Search   SearchConfig   `yaml:"search"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
}

type SECConfig struct {
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SearchConfig struct {
	PageSize        int `yaml:"page_size"`
	MaxResults      int `yaml:"max_results"`
	ProbeMaxResults int `yaml:"probe_max_results"`
	StalePageLimit  int `yaml:"stale_page_limit"`
	PageDelayMillis int `yaml:"page_delay_millis"`
}

type PipelineConfig struct {
	FilingWorkers  int `yaml:"filing_workers"`
	CompanyWorkers int `yaml:"company_workers"`
	DefaultYears   int `yaml:"default_years"`
}

type LLMConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Provider       string `yaml:"provider"` // openai | deepseek | gemini
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
}

type CacheConfig struct {
	Backend     string `yaml:"backend"` // none | file | postgres | redis
	Dir         string `yaml:"dir"`
	TTLMinutes  int    `yaml:"ttl_minutes"`
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputPath string `yaml:"output_path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		SEC: SECConfig{
			UserAgent:      "Legal Counsel Finder contact@example.com",
			TimeoutSeconds: 20,
		},
		Search: SearchConfig{
			PageSize:        100,
			MaxResults:      500,
			ProbeMaxResults: 500,
			StalePageLimit:  3,
			PageDelayMillis: 150,
		},
		Pipeline: PipelineConfig{
			FilingWorkers:  5,
			CompanyWorkers: 15,
			DefaultYears:   5,
		},
		LLM: LLMConfig{
			Enabled:        true,
			Provider:       "openai",
			Model:          "gpt-5-nano",
			TimeoutSeconds: 30,
			Retries:        2,
		},
		Cache: CacheConfig{
			Backend:    "file",
			Dir:        ".cache/counsel",
			TTLMinutes: 60,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads .env (if present), then the YAML file at path (if present) over the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg)
	cfg.fillZeroes()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SEC_USER_AGENT"); v != "" {
		cfg.SEC.UserAgent = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LLM.Enabled = b
		}
	}
	switch cfg.LLM.Provider {
	case "deepseek":
		cfg.LLM.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	case "gemini":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	default:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	cfg.Cache.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Cache.RedisURL = os.Getenv("REDIS_URL")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
}

// fillZeroes restores defaults for numeric fields a partial YAML file left at zero.
func (c *Config) fillZeroes() {
	d := Default()
	if c.SEC.TimeoutSeconds <= 0 {
		c.SEC.TimeoutSeconds = d.SEC.TimeoutSeconds
	}
	if c.SEC.UserAgent == "" {
		c.SEC.UserAgent = d.SEC.UserAgent
	}
	if c.Search.PageSize <= 0 || c.Search.PageSize > 100 {
		c.Search.PageSize = d.Search.PageSize
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = d.Search.MaxResults
	}
	if c.Search.ProbeMaxResults <= 0 {
		c.Search.ProbeMaxResults = d.Search.ProbeMaxResults
	}
	if c.Search.StalePageLimit <= 0 {
		c.Search.StalePageLimit = d.Search.StalePageLimit
	}
	if c.Pipeline.FilingWorkers <= 0 {
		c.Pipeline.FilingWorkers = d.Pipeline.FilingWorkers
	}
	if c.Pipeline.CompanyWorkers <= 0 {
		c.Pipeline.CompanyWorkers = d.Pipeline.CompanyWorkers
	}
	if c.Pipeline.DefaultYears <= 0 {
		c.Pipeline.DefaultYears = d.Pipeline.DefaultYears
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = d.LLM.TimeoutSeconds
	}
	if c.LLM.Retries < 0 {
		c.LLM.Retries = d.LLM.Retries
	}
	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = d.Cache.TTLMinutes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

// SECTimeout is the per-request bound for SEC endpoints.
func (c Config) SECTimeout() time.Duration {
	return time.Duration(c.SEC.TimeoutSeconds) * time.Second
}

package pipeline

import (
	"context"
	"time"

	"legal_counsel_finder/pkg/core/config"
	"legal_counsel_finder/pkg/core/counsel"
	"legal_counsel_finder/pkg/core/edgar"
	"legal_counsel_finder/pkg/core/search"
	"legal_counsel_finder/pkg/core/store"
)

// FilingSource is the slice of edgar.Parser the searches need.
type FilingSource interface {
	LookupCompany(ctx context.Context, identifier string) (edgar.CompanyInfo, error)
	GetFilings(ctx context.Context, cik string, start, end time.Time, forms []string) ([]edgar.Filing, error)
	FetchFilingText(ctx context.Context, f edgar.Filing) (string, error)
}

var _ FilingSource = (*edgar.Parser)(nil)

// Options tunes pool sizes and search budgets.
type Options struct {
	FilingWorkers  int
	CompanyWorkers int
	DefaultYears   int
	MaxResults     int
	ProbeBudget    int
	PageSize       int
	StaleLimit     int
	PageDelay      time.Duration
}

func DefaultOptions() Options {
	return Options{
		FilingWorkers:  FilingWorkers,
		CompanyWorkers: CompanyWorkers,
		DefaultYears:   5,
		MaxResults:     search.DefaultMaxResults,
		ProbeBudget:    search.DefaultMaxResults,
		PageSize:       search.MaxPageSize,
		StaleLimit:     search.DefaultStaleLimit,
		PageDelay:      search.DefaultPageDelay,
	}
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		FilingWorkers:  cfg.Pipeline.FilingWorkers,
		CompanyWorkers: cfg.Pipeline.CompanyWorkers,
		DefaultYears:   cfg.Pipeline.DefaultYears,
		MaxResults:     cfg.Search.MaxResults,
		ProbeBudget:    cfg.Search.ProbeMaxResults,
		PageSize:       cfg.Search.PageSize,
		StaleLimit:     cfg.Search.StalePageLimit,
		PageDelay:      time.Duration(cfg.Search.PageDelayMillis) * time.Millisecond,
	}
}

// Orchestrator runs forward (company -> counsel) and reverse (entity -> companies)
// searches over bounded worker pools.
type Orchestrator struct {
	source    FilingSource
	engine    *counsel.Engine
	llm       *counsel.LLMExtractor
	collector *search.Collector
	resolver  *search.Resolver
	cache     store.Cache
	opts      Options
	clock     search.Clock
}

// NewOrchestrator wires the pattern engine and a collector/resolver pair over searcher.
// LLM extraction and result caching are off until set.
func NewOrchestrator(source FilingSource, searcher search.Searcher, opts Options) *Orchestrator {
	collector := search.NewCollector(searcher)
	if opts.PageSize > 0 {
		collector.PageSize = opts.PageSize
	}
	if opts.StaleLimit > 0 {
		collector.StaleLimit = opts.StaleLimit
	}
	collector.PageDelay = opts.PageDelay

	resolver := search.NewResolver(collector)
	if opts.ProbeBudget > 0 {
		resolver.ProbeBudget = opts.ProbeBudget
	}

	return &Orchestrator{
		source:    source,
		engine:    counsel.NewEngine(),
		collector: collector,
		resolver:  resolver,
		cache:     store.NopCache{},
		opts:      opts,
		clock:     time.Now,
	}
}

// SetLLM enables the language-model pass for filings.
func (o *Orchestrator) SetLLM(x *counsel.LLMExtractor) {
	o.llm = x
}

// SetCache installs a result cache.
func (o *Orchestrator) SetCache(c store.Cache) {
	if c == nil {
		c = store.NopCache{}
	}
	o.cache = c
}

// SetClock pins the current time for both search directions.
func (o *Orchestrator) SetClock(c search.Clock) {
	o.clock = c
	o.resolver.Clock = c
}

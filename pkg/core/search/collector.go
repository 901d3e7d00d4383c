package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
)

const (
	DefaultMaxResults = 500
	DefaultStaleLimit = 3
	DefaultPageDelay  = 150 * time.Millisecond
)

// Stop reasons reported in Result.StoppedBy.
const (
	StopExhausted = "exhausted"  // cumulative hits reached the index total
	StopBudget    = "budget"     // maxTotal reached
	StopEmptyPage = "empty_page" // index returned nothing
	StopStale     = "stale"      // StaleLimit pages in a row without a new company
)

// State tracks one paginated call. It is owned by that call only.
type State struct {
	Term       string
	Window     Window
	Offset     int
	Seen       map[string]struct{}
	StalePages int
}

// Result of a paginated collection.
type Result struct {
	Hits            []CompanyHit
	Total           int // as reported by the index
	UniqueCompanies int // distinct clean names seen, with or without ticker
	Pages           int
	StoppedBy       string
}

// Collector pages through a Searcher with early termination.
type Collector struct {
	searcher   Searcher
	PageSize   int
	StaleLimit int
	PageDelay  time.Duration
}

// NewCollector creates a collector with the default page size, stale limit and delay.
func NewCollector(s Searcher) *Collector {
	return &Collector{
		searcher:   s,
		PageSize:   MaxPageSize,
		StaleLimit: DefaultStaleLimit,
		PageDelay:  DefaultPageDelay,
	}
}

// Collect fetches pages for term until the index is exhausted, maxTotal hits are held,
// a page comes back empty, or StaleLimit consecutive pages add no new company.
func (c *Collector) Collect(ctx context.Context, term string, window Window, maxTotal int) (Result, error) {
	if maxTotal <= 0 {
		maxTotal = DefaultMaxResults
	}
	pageSize := c.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	staleLimit := c.StaleLimit
	if staleLimit <= 0 {
		staleLimit = DefaultStaleLimit
	}

	st := &State{Term: term, Window: window, Seen: make(map[string]struct{})}
	var res Result

	for len(res.Hits) < maxTotal {
		if res.Pages > 0 && c.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(c.PageDelay):
			}
		}

		page, err := c.searcher.Search(ctx, Query{Term: term, Window: window, From: st.Offset, Size: pageSize})
		if err != nil {
			metrics.SearchPages.WithLabelValues("error").Inc()
			return res, err
		}
		metrics.SearchPages.WithLabelValues("ok").Inc()
		res.Pages++
		res.Total = page.Total

		if len(page.Hits) == 0 {
			res.StoppedBy = StopEmptyPage
			break
		}

		newCompanies := 0
		for _, h := range page.Hits {
			name := h.CleanName()
			if name == "" {
				continue
			}
			if _, ok := st.Seen[name]; !ok {
				st.Seen[name] = struct{}{}
				newCompanies++
			}
		}

		res.Hits = append(res.Hits, page.Hits...)
		st.Offset += pageSize

		if len(res.Hits) >= page.Total {
			res.StoppedBy = StopExhausted
			break
		}

		if newCompanies == 0 {
			st.StalePages++
			if st.StalePages >= staleLimit {
				res.StoppedBy = StopStale
				break
			}
		} else {
			st.StalePages = 0
		}
	}
	if res.StoppedBy == "" {
		res.StoppedBy = StopBudget
	}
	res.UniqueCompanies = len(st.Seen)

	logger.Debug("[SEARCH] collection finished",
		zap.String("term", term),
		zap.Stringer("window", window),
		zap.Int("hits", len(res.Hits)),
		zap.Int("total", res.Total),
		zap.Int("pages", res.Pages),
		zap.String("stopped_by", res.StoppedBy),
	)
	return res, nil
}

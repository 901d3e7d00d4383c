package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/counsel"
	"legal_counsel_finder/pkg/core/edgar"
	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
	"legal_counsel_finder/pkg/core/search"
	"legal_counsel_finder/pkg/core/store"
)

// EntityKind is what a reverse search is looking for.
type EntityKind string

const (
	KindLawyer EntityKind = "lawyer"
	KindFirm   EntityKind = "firm"
)

func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLawyer, "":
		return KindLawyer, nil
	case KindFirm:
		return KindFirm, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// CompanyRow is one company a reverse search found.
type CompanyRow struct {
	Company    string `json:"company"`
	Ticker     string `json:"ticker"`
	CIK        string `json:"cik,omitempty"`
	FilingType string `json:"filing_type"`
	FilingDate string `json:"filing_date"`
}

// EntityReport is the result of a reverse search.
type EntityReport struct {
	SearchID  string          `json:"search_id"`
	Name      string          `json:"name"`
	Term      string          `json:"term"`
	Kind      EntityKind      `json:"kind"`
	Decision  search.Decision `json:"decision"`
	TotalHits int             `json:"total_hits"`
	Rows      []CompanyRow    `json:"rows"`
	Stats     Stats           `json:"stats"`
}

// SearchEntityForCompanies finds the public companies whose relevant filings mention a
// lawyer or law firm, one row per company with its most recent such filing.
func (o *Orchestrator) SearchEntityForCompanies(ctx context.Context, name string, kind EntityKind, events Events) (*EntityReport, error) {
	id := uuid.NewString()
	start := time.Now()
	status := "error"
	defer func() {
		metrics.SearchDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
		metrics.SearchTotal.WithLabelValues("reverse", status).Inc()
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty search term", errs.ErrLookup)
	}
	term := name
	if kind == KindFirm {
		if canonical, ok := counsel.ResolveReferenceFirm(name); ok {
			term = canonical
		}
	}

	cacheKey := store.Key("entity", string(kind), term)
	var cached EntityReport
	if hit, err := o.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		status = "cached"
		cached.SearchID = id
		events.publish(ctx, ProgressEvent{SearchID: id, Step: StepComplete, Status: "cached",
			Detail: fmt.Sprintf("%d companies", len(cached.Rows))})
		return &cached, nil
	}

	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepRange, Status: "running", Detail: term})
	decision, err := o.resolver.Resolve(ctx, term)
	if err != nil {
		events.publish(ctx, ProgressEvent{SearchID: id, Step: StepRange, Status: "failed", Detail: err.Error()})
		return nil, fmt.Errorf("resolving date range for %q: %w", term, err)
	}
	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepRange, Status: "done", Detail: decision.Label})

	result, err := o.collector.Collect(ctx, term, decision.Window, o.opts.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("collecting hits for %q: %w", term, err)
	}
	hits := search.LatestPerCompany(search.FilterRelevant(result.Hits, edgar.RelevantFilings))
	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepCollect, Status: "done",
		Detail: fmt.Sprintf("%d hits, %d companies with tickers", len(result.Hits), len(hits)), Total: len(hits)})

	report := &EntityReport{
		SearchID:  id,
		Name:      name,
		Term:      term,
		Kind:      kind,
		Decision:  decision,
		TotalHits: result.Total,
	}
	if len(hits) == 0 {
		status = "empty"
		return report, &SearchError{Kind: errs.ErrEmptyResultSet}
	}

	outcomes, stats := RunPool(ctx, "companies", hits, o.opts.CompanyWorkers,
		// Same key LatestPerCompany deduplicates on; a renamed filer keeps its ticker.
		func(h search.CompanyHit) string { return h.CleanName() },
		o.resolveCompany,
		func(done, total int, out Outcome[CompanyRow]) {
			events.publish(ctx, ProgressEvent{SearchID: id, Step: StepResolve, Status: out.Kind(),
				Detail: out.Key, Done: done, Total: total})
		},
	)

	rows := make([]CompanyRow, 0, len(outcomes))
	for _, out := range outcomes {
		// A failed CIK lookup still leaves a usable row.
		if out.Value.Company != "" {
			rows = append(rows, out.Value)
		}
	}
	SortCompanyRows(rows)
	report.Rows = rows
	report.Stats = stats

	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepComplete, Status: "done",
		Detail: fmt.Sprintf("%d companies over %s", len(rows), decision.Label), Done: stats.Total, Total: len(hits)})
	logger.Info("[SEARCH] reverse search finished",
		zap.String("search_id", id),
		zap.String("term", term),
		zap.String("kind", string(kind)),
		zap.String("range", decision.Label),
		zap.Int("companies", len(rows)),
	)

	status = "ok"
	if err := o.cache.Set(ctx, cacheKey, report); err != nil {
		logger.Warn("[CACHE] store failed", zap.Error(err))
	}
	return report, nil
}

func (o *Orchestrator) resolveCompany(ctx context.Context, h search.CompanyHit) (CompanyRow, error) {
	row := CompanyRow{
		Company:    h.CleanName(),
		Ticker:     h.Ticker(),
		FilingType: h.FilingType,
		FilingDate: h.FilingDate,
	}
	info, err := o.source.LookupCompany(ctx, row.Ticker)
	if err != nil {
		return row, err
	}
	row.CIK = info.CIK
	return row, nil
}

// SortCompanyRows orders rows newest filing first, then by company name.
func SortCompanyRows(rows []CompanyRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].FilingDate != rows[j].FilingDate {
			return rows[i].FilingDate > rows[j].FilingDate
		}
		return rows[i].Company < rows[j].Company
	})
}

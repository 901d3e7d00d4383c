package pipeline

import (
	"context"
	"fmt"
	"strconv"
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

// CompanyReport is the result of a forward search.
type CompanyReport struct {
	SearchID string                 `json:"search_id"`
	Company  edgar.CompanyInfo      `json:"company"`
	Window   search.Window          `json:"window"`
	Filings  int                    `json:"filings"`
	Rows     []counsel.Relationship `json:"rows"`
	Stats    Stats                  `json:"stats"`
	Summary  string                 `json:"summary"`
}

// SearchCompanyForLawyers finds the outside law firms and lawyers named in a company's
// legal filings over the last years (DefaultYears when years <= 0).
func (o *Orchestrator) SearchCompanyForLawyers(ctx context.Context, identifier string, years int, events Events) (*CompanyReport, error) {
	if years <= 0 {
		years = o.opts.DefaultYears
	}
	id := uuid.NewString()
	start := time.Now()
	status := "error"
	defer func() {
		metrics.SearchDuration.WithLabelValues("forward").Observe(time.Since(start).Seconds())
		metrics.SearchTotal.WithLabelValues("forward", status).Inc()
	}()

	cacheKey := store.Key("company", identifier, strconv.Itoa(years))
	var cached CompanyReport
	if hit, err := o.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		status = "cached"
		cached.SearchID = id
		events.publish(ctx, ProgressEvent{SearchID: id, Step: StepComplete, Status: "cached", Detail: cached.Summary})
		return &cached, nil
	}

	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepLookup, Status: "running", Detail: identifier})
	company, err := o.source.LookupCompany(ctx, identifier)
	if err != nil {
		events.publish(ctx, ProgressEvent{SearchID: id, Step: StepLookup, Status: "failed", Detail: err.Error()})
		return nil, err
	}

	now := o.clock()
	window := search.Window{Start: now.AddDate(-years, 0, 0), End: now}
	filings, err := o.source.GetFilings(ctx, company.CIK, window.Start, window.End, edgar.HighPriorityLegalFilings)
	if err != nil {
		return nil, fmt.Errorf("listing filings for %s: %w", company.Display(), err)
	}
	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepFilings, Status: "done",
		Detail: fmt.Sprintf("%d legal filings in %s", len(filings), window), Total: len(filings)})
	if len(filings) == 0 {
		return nil, &SearchError{Kind: errs.ErrEmptyResultSet}
	}

	logger.Info("[SEARCH] extracting counsel",
		zap.String("search_id", id),
		zap.String("company", company.Display()),
		zap.Int("filings", len(filings)),
	)

	outcomes, stats := RunPool(ctx, "filings", filings, o.opts.FilingWorkers,
		func(f edgar.Filing) string { return f.Key() },
		func(ctx context.Context, f edgar.Filing) (counsel.FirmLawyerMap, error) {
			return o.extractFiling(ctx, f, company.Name)
		},
		func(done, total int, out Outcome[counsel.FirmLawyerMap]) {
			events.publish(ctx, ProgressEvent{SearchID: id, Step: StepExtract, Status: out.Kind(),
				Detail: out.Key, Done: done, Total: total})
		},
	)

	merged := counsel.NewFirmLawyerMap()
	for _, out := range outcomes {
		if out.Err == nil {
			merged.Merge(out.Value)
		}
	}
	rows := counsel.Deduplicate(merged).Rows()

	report := &CompanyReport{
		SearchID: id,
		Company:  company,
		Window:   window,
		Filings:  len(filings),
		Rows:     rows,
		Stats:    stats,
		Summary:  Summarize(stats),
	}
	events.publish(ctx, ProgressEvent{SearchID: id, Step: StepComplete, Status: "done", Detail: report.Summary,
		Done: stats.Total, Total: len(filings)})

	logger.Info("[SEARCH] forward search finished",
		zap.String("search_id", id),
		zap.String("company", company.Display()),
		zap.Int("rows", len(rows)),
		zap.String("summary", report.Summary),
	)

	if len(rows) == 0 {
		status = "empty"
		return report, &SearchError{Kind: errs.ErrEmptyResultSet, Stats: stats}
	}
	status = "ok"
	if err := o.cache.Set(ctx, cacheKey, report); err != nil {
		logger.Warn("[CACHE] store failed", zap.Error(err))
	}
	return report, nil
}

// extractFiling runs the pattern rules, then the LLM pass, then the fallback rules
// when neither produced anything.
func (o *Orchestrator) extractFiling(ctx context.Context, f edgar.Filing, company string) (counsel.FirmLawyerMap, error) {
	text, err := o.source.FetchFilingText(ctx, f)
	if err != nil {
		return nil, err
	}

	m := o.engine.ExtractPrimary(text, company)
	if o.llm != nil {
		m.Merge(o.llm.Extract(ctx, text, company))
	}
	if len(m) == 0 {
		m = o.engine.ExtractFallback(text, company)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%s: %w", f, errs.ErrNoEntities)
	}
	return m, nil
}

// Summarize renders the per-filing counts shown to users.
func Summarize(s Stats) string {
	return fmt.Sprintf("%d filings with lawyers, %d failed to extract, %d had no lawyers",
		s.Succeeded, s.Failed(), s.NoEntities)
}

package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legal_counsel_finder/pkg/core/logger"
)

// Candidate windows, in days.
const (
	days2y = 730
	days3y = 1095
	days4y = 1460
	days5y = 1825
	days7y = 2555
)

// Company-count thresholds for the window policy.
const (
	TargetCompanies = 100
	min2yCompanies  = 40
	min4yCompanies  = 30
	min5yCompanies  = 15
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Decision is the chosen window plus the probe counts behind it.
type Decision struct {
	Window  Window
	Label   string
	Count2y int
	Count4y int
}

// Resolver picks the narrowest date window yielding enough companies.
type Resolver struct {
	collector   *Collector
	ProbeBudget int
	Clock       Clock
}

// NewResolver creates a resolver probing through collector.
func NewResolver(collector *Collector) *Resolver {
	return &Resolver{collector: collector, ProbeBudget: DefaultMaxResults, Clock: time.Now}
}

// Resolve probes the 2-year and 4-year windows concurrently and applies ChooseWindow.
// A probe failure fails the resolution.
func (r *Resolver) Resolve(ctx context.Context, term string) (Decision, error) {
	now := r.Clock()
	w2 := LastDays(now, days2y)
	w4 := LastDays(now, days4y)

	var c2, c4 int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.collector.Collect(gctx, term, w2, r.ProbeBudget)
		if err != nil {
			return fmt.Errorf("probe 2 years: %w", err)
		}
		c2 = CountUniqueCompanies(res.Hits)
		return nil
	})
	g.Go(func() error {
		res, err := r.collector.Collect(gctx, term, w4, r.ProbeBudget)
		if err != nil {
			return fmt.Errorf("probe 4 years: %w", err)
		}
		c4 = CountUniqueCompanies(res.Hits)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Decision{}, err
	}

	days, label := ChooseWindow(c2, c4)
	d := Decision{Window: LastDays(now, days), Label: label, Count2y: c2, Count4y: c4}

	logger.Info("[SEARCH] date range resolved",
		zap.String("term", term),
		zap.Int("companies_2y", c2),
		zap.Int("companies_4y", c4),
		zap.String("range", label),
	)
	return d, nil
}

// ChooseWindow maps probe counts to a window length in days, evaluated in order:
// a busy 2-year window wins, then 3, 4, 5 and finally 7 years.
func ChooseWindow(count2y, count4y int) (days int, label string) {
	switch {
	case count2y >= TargetCompanies, count2y >= min2yCompanies:
		return days2y, "2 years"
	case count4y >= TargetCompanies:
		return days3y, "3 years"
	case count4y >= min4yCompanies:
		return days4y, "4 years"
	case count4y >= min5yCompanies:
		return days5y, "5 years"
	default:
		return days7y, "7 years"
	}
}

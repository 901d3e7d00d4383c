package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
)

// Worker pool sizes. Filing tasks fetch documents and may call an LLM; company tasks
// are a single cached lookup.
const (
	FilingWorkers  = 5
	CompanyWorkers = 15
)

// Outcome is what one task reports back to the collector.
type Outcome[R any] struct {
	Key   string
	Value R
	Err   error
}

// Kind classifies the outcome; see errs.Kind.
func (o Outcome[R]) Kind() string {
	return errs.Kind(o.Err)
}

// Stats counts task outcomes by kind.
type Stats struct {
	Total      int `json:"total"`
	Succeeded  int `json:"succeeded"`
	Short      int `json:"short_documents"`
	NoEntities int `json:"no_entities"`
	Transport  int `json:"transport_errors"`
	Other      int `json:"other_errors"`
}

// Failed counts tasks that could not be processed at all. NoEntities is not a failure.
func (s Stats) Failed() int {
	return s.Short + s.Transport + s.Other
}

// Unsuccessful counts every task that produced no result: Failed plus NoEntities.
// Succeeded + Unsuccessful always equals Total.
func (s Stats) Unsuccessful() int {
	return s.Failed() + s.NoEntities
}

func (s *Stats) record(err error) {
	s.Total++
	switch errs.Kind(err) {
	case "ok":
		s.Succeeded++
	case "short_document":
		s.Short++
	case "no_entities":
		s.NoEntities++
	case "transport":
		s.Transport++
	default:
		s.Other++
	}
}

// ProgressFunc is called from the collector goroutine after each outcome.
type ProgressFunc[R any] func(done, total int, o Outcome[R])

// RunPool runs task over items with at most workers in flight. Each task reports an
// Outcome on a channel and a single collector goroutine builds the result map and the
// counters, so tasks never share mutable state. A task error or panic is recorded
// against that task only.
func RunPool[T, R any](
	ctx context.Context,
	pool string,
	items []T,
	workers int,
	key func(T) string,
	task func(context.Context, T) (R, error),
	progress ProgressFunc[R],
) (map[string]Outcome[R], Stats) {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make(chan Outcome[R], len(items))
	results := make(map[string]Outcome[R], len(items))
	var stats Stats

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for o := range outcomes {
			results[o.Key] = o
			stats.record(o.Err)
			metrics.TaskOutcomes.WithLabelValues(pool, o.Kind()).Inc()
			if o.Err != nil {
				logger.Debug("[POOL] task failed",
					zap.String("pool", pool),
					zap.String("key", o.Key),
					zap.String("kind", o.Kind()),
					zap.Error(o.Err),
				)
			}
			if progress != nil {
				progress(stats.Total, len(items), o)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	for _, item := range items {
		k := key(item)
		g.Go(func() error {
			outcomes <- runTask(ctx, k, item, task)
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)
	<-collected

	return results, stats
}

func runTask[T, R any](ctx context.Context, k string, item T, task func(context.Context, T) (R, error)) (o Outcome[R]) {
	o.Key = k
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("task %s panicked: %v", k, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}
	o.Value, o.Err = task(ctx, item)
	return o
}

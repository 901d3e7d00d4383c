package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"legal_counsel_finder/pkg/core/errs"
)

func TestRunPoolAccounting(t *testing.T) {
	items := make([]int, 12)
	for i := range items {
		items[i] = i
	}

	var inFlight, maxInFlight int32
	var progressCalls, lastDone int

	results, stats := RunPool(context.Background(), "test", items, 3,
		func(i int) string { return fmt.Sprintf("item-%d", i) },
		func(ctx context.Context, i int) (int, error) {
			n := atomic.AddInt32(&inFlight, 1)
			defer atomic.AddInt32(&inFlight, -1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}

			switch {
			case i == 2:
				return 0, fmt.Errorf("fetch: %w", errs.ErrTransport)
			case i == 6:
				panic("boom")
			case i%4 == 0:
				return 0, fmt.Errorf("doc %d: %w", i, errs.ErrShortDocument)
			case i%4 == 1:
				return 0, errs.ErrNoEntities
			}
			return i * 10, nil
		},
		func(done, total int, o Outcome[int]) {
			progressCalls++
			lastDone = done
			if total != 12 {
				t.Errorf("total = %d", total)
			}
		},
	)

	want := Stats{Total: 12, Succeeded: 4, Short: 3, NoEntities: 3, Transport: 1, Other: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if stats.Failed() != 5 {
		t.Errorf("Failed() = %d, want 5", stats.Failed())
	}
	if stats.Succeeded+stats.Unsuccessful() != len(items) {
		t.Errorf("Succeeded + Unsuccessful() = %d + %d, want %d", stats.Succeeded, stats.Unsuccessful(), len(items))
	}
	if len(results) != 12 {
		t.Errorf("got %d results", len(results))
	}
	if results["item-7"].Value != 70 || results["item-7"].Err != nil {
		t.Errorf("item-7 = %+v", results["item-7"])
	}
	if results["item-6"].Kind() != "other" {
		t.Errorf("panicking task kind = %s", results["item-6"].Kind())
	}
	if maxInFlight > 3 {
		t.Errorf("max in flight = %d, want <= 3", maxInFlight)
	}
	if progressCalls != 12 || lastDone != 12 {
		t.Errorf("progress calls = %d, last done = %d", progressCalls, lastDone)
	}
}

func TestRunPoolCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := int32(0)
	results, stats := RunPool(ctx, "test", []string{"a", "b"}, 2,
		func(s string) string { return s },
		func(ctx context.Context, s string) (string, error) {
			atomic.AddInt32(&called, 1)
			return s, nil
		},
		nil,
	)
	if called != 0 {
		t.Errorf("tasks ran %d times after cancel", called)
	}
	if stats.Total != 2 || stats.Succeeded != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if !errors.Is(results["a"].Err, context.Canceled) {
		t.Errorf("err = %v", results["a"].Err)
	}
}

func TestRunPoolEmpty(t *testing.T) {
	results, stats := RunPool(context.Background(), "test", nil, 5,
		func(s string) string { return s },
		func(ctx context.Context, s string) (string, error) { return s, nil },
		nil,
	)
	if len(results) != 0 || stats.Total != 0 {
		t.Errorf("results = %v, stats = %+v", results, stats)
	}
}

func TestSearchErrorUnwraps(t *testing.T) {
	err := error(&SearchError{Kind: errs.ErrEmptyResultSet, Stats: Stats{Total: 3, Short: 3}})
	if !errors.Is(err, errs.ErrEmptyResultSet) {
		t.Error("SearchError should unwrap to its kind")
	}
	var se *SearchError
	if !errors.As(err, &se) || se.Stats.Short != 3 {
		t.Errorf("errors.As = %+v", se)
	}
}

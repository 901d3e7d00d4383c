package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("fetch 10-K: %w", ErrShortDocument), "short_document"},
		{fmt.Errorf("S-1 (2024-01-02): %w", ErrNoEntities), "no_entities"},
		{fmt.Errorf("GET: %w", ErrTransport), "transport"},
		{context.DeadlineExceeded, "transport"},
		{ErrParse, "parse"},
		{ErrLookup, "lookup"},
		{ErrEmptyResultSet, "empty_result_set"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

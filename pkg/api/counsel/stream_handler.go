package counsel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/pipeline"
)

// StreamEvent is one SSE message: a progress event, or the final result when Step is
// "result".
type StreamEvent struct {
	pipeline.ProgressEvent
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

const stepResult = "result"

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseWriter{w: w, flusher: flusher}, true
}

func (s *sseWriter) send(ev StreamEvent) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

// stream runs search in its own goroutine and relays its progress events until it returns,
// then sends the result event.
func stream(ctx context.Context, s *sseWriter, search func(events pipeline.Events) (interface{}, string, error)) {
	s.send(StreamEvent{ProgressEvent: pipeline.ProgressEvent{Step: "init", Status: "started", Detail: "Connection established"}})

	events := make(chan pipeline.ProgressEvent, 16)
	var (
		report   interface{}
		searchID string
		err      error
	)
	go func() {
		defer close(events)
		report, searchID, err = search(events)
	}()
	for ev := range events {
		s.send(StreamEvent{ProgressEvent: ev})
	}
	if ctx.Err() != nil {
		return
	}

	final := StreamEvent{ProgressEvent: pipeline.ProgressEvent{SearchID: searchID, Step: stepResult, Status: errs.Kind(err)}}
	if err != nil {
		final.Error = err.Error()
	}
	if err == nil || statusFor(err) == http.StatusOK {
		final.Data = report
	}
	s.send(final)
}

// HandleCompanyStream handles GET /api/counsel/company/stream?company=AAPL&years=3 (SSE)
func (h *Handler) HandleCompanyStream(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	company, years, err := companyParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := newSSEWriter(w)
	if !ok {
		return
	}

	stream(r.Context(), s, func(events pipeline.Events) (interface{}, string, error) {
		report, err := h.searcher.SearchCompanyForLawyers(r.Context(), company, years, events)
		if report == nil {
			return nil, "", err
		}
		return report, report.SearchID, err
	})
}

// HandleEntityStream handles GET /api/counsel/entity/stream?name=...&kind=lawyer|firm (SSE)
func (h *Handler) HandleEntityStream(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	name, kind, err := entityParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, ok := newSSEWriter(w)
	if !ok {
		return
	}

	stream(r.Context(), s, func(events pipeline.Events) (interface{}, string, error) {
		report, err := h.searcher.SearchEntityForCompanies(r.Context(), name, kind, events)
		if report == nil {
			return nil, "", err
		}
		return report, report.SearchID, err
	})
}

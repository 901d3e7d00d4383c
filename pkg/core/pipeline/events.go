package pipeline

import "context"

// Steps reported in ProgressEvent.Step.
const (
	StepLookup   = "lookup"
	StepFilings  = "filings"
	StepExtract  = "extract"
	StepRange    = "date_range"
	StepCollect  = "collect"
	StepResolve  = "resolve_companies"
	StepComplete = "complete"
)

// ProgressEvent is published while a search runs. Done/Total are set for pool steps.
type ProgressEvent struct {
	SearchID string `json:"search_id"`
	Step     string `json:"step"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Done     int    `json:"done,omitempty"`
	Total    int    `json:"total,omitempty"`
}

// Events is the write side of a progress stream. A nil Events discards everything.
type Events chan<- ProgressEvent

func (e Events) publish(ctx context.Context, ev ProgressEvent) {
	if e == nil {
		return
	}
	select {
	case e <- ev:
	case <-ctx.Done():
	}
}

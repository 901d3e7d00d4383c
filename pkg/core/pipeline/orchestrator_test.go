package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"legal_counsel_finder/pkg/core/counsel"
	"legal_counsel_finder/pkg/core/edgar"
	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/search"
	"legal_counsel_finder/pkg/core/store"
)

// --- Mocks ---

type MockSource struct {
	LookupCompanyFunc   func(ctx context.Context, identifier string) (edgar.CompanyInfo, error)
	GetFilingsFunc      func(ctx context.Context, cik string, start, end time.Time, forms []string) ([]edgar.Filing, error)
	FetchFilingTextFunc func(ctx context.Context, f edgar.Filing) (string, error)

	getFilingsCalls int32
}

func (m *MockSource) LookupCompany(ctx context.Context, identifier string) (edgar.CompanyInfo, error) {
	if m.LookupCompanyFunc != nil {
		return m.LookupCompanyFunc(ctx, identifier)
	}
	return edgar.CompanyInfo{CIK: "0000000001", Name: testCompany, Ticker: strings.ToUpper(identifier)}, nil
}

func (m *MockSource) GetFilings(ctx context.Context, cik string, start, end time.Time, forms []string) ([]edgar.Filing, error) {
	atomic.AddInt32(&m.getFilingsCalls, 1)
	if m.GetFilingsFunc != nil {
		return m.GetFilingsFunc(ctx, cik, start, end, forms)
	}
	return nil, nil
}

func (m *MockSource) FetchFilingText(ctx context.Context, f edgar.Filing) (string, error) {
	if m.FetchFilingTextFunc != nil {
		return m.FetchFilingTextFunc(ctx, f)
	}
	return "", errs.ErrShortDocument
}

type MockSearcher struct {
	SearchFunc func(ctx context.Context, q search.Query) (search.Page, error)

	mu    sync.Mutex
	terms []string
}

func (m *MockSearcher) Search(ctx context.Context, q search.Query) (search.Page, error) {
	m.mu.Lock()
	m.terms = append(m.terms, q.Term)
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return search.Page{}, nil
}

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

func (m *MockGenerator) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return m.GenerateFunc(ctx, prompt, systemPrompt, options)
}

// --- Fixtures ---

const testCompany = "Acme Therapeutics, Inc."

var fixedNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

var filingTexts = map[string]string{
	"0000000001-24-000001": `LEGAL MATTERS
The validity of the shares of common stock offered hereby will be passed upon for us by Carlos Ramirez and Nicholaus Johnson of Cooley LLP, San Diego, California.
EXPERTS
`,
	"0000000001-24-000002": `LEGAL MATTERS
Certain legal matters with respect to the securities offered hereby will be passed upon for us by Kirkland & Ellis LLP, Chicago, Illinois.
`,
	"0000000001-24-000003": "This amendment only updates the exhibit index for the registration statement.\n",
}

func testFilings() []edgar.Filing {
	return []edgar.Filing{
		{CIK: "0000000001", AccessionNumber: "0000000001-24-000001", FormType: "424B5", FilingDate: "2024-05-01"},
		{CIK: "0000000001", AccessionNumber: "0000000001-24-000002", FormType: "S-3", FilingDate: "2024-04-01"},
		{CIK: "0000000001", AccessionNumber: "0000000001-24-000003", FormType: "S-3/A", FilingDate: "2024-03-01"},
		{CIK: "0000000001", AccessionNumber: "0000000001-24-000004", FormType: "S-8", FilingDate: "2024-02-01"},
	}
}

func newForwardSource() *MockSource {
	return &MockSource{
		GetFilingsFunc: func(ctx context.Context, cik string, start, end time.Time, forms []string) ([]edgar.Filing, error) {
			return testFilings(), nil
		},
		FetchFilingTextFunc: func(ctx context.Context, f edgar.Filing) (string, error) {
			if text, ok := filingTexts[f.AccessionNumber]; ok {
				return text, nil
			}
			return "", fmt.Errorf("%s: %w", f, errs.ErrShortDocument)
		},
	}
}

func newTestOrchestrator(src FilingSource, searcher search.Searcher, workers int) *Orchestrator {
	opts := DefaultOptions()
	opts.FilingWorkers = workers
	opts.CompanyWorkers = workers
	opts.PageDelay = 0
	o := NewOrchestrator(src, searcher, opts)
	o.SetClock(func() time.Time { return fixedNow })
	return o
}

func drain(ch chan ProgressEvent) []ProgressEvent {
	close(ch)
	var out []ProgressEvent
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

// --- Forward search ---

func TestSearchCompanyForLawyers(t *testing.T) {
	src := newForwardSource()
	var gotStart, gotEnd time.Time
	src.GetFilingsFunc = func(ctx context.Context, cik string, start, end time.Time, forms []string) ([]edgar.Filing, error) {
		gotStart, gotEnd = start, end
		return testFilings(), nil
	}

	events := make(chan ProgressEvent, 64)
	report, err := newTestOrchestrator(src, &MockSearcher{}, 5).SearchCompanyForLawyers(context.Background(), "acme", 3, events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []counsel.Relationship{
		{Firm: "Cooley LLP", Lawyer: "Carlos Ramirez"},
		{Firm: "Cooley LLP", Lawyer: "Nicholaus Johnson"},
		{Firm: "Kirkland & Ellis LLP", Lawyer: ""},
	}
	if !reflect.DeepEqual(report.Rows, want) {
		t.Errorf("rows = %v, want %v", report.Rows, want)
	}

	wantStats := Stats{Total: 4, Succeeded: 2, Short: 1, NoEntities: 1}
	if report.Stats != wantStats {
		t.Errorf("stats = %+v, want %+v", report.Stats, wantStats)
	}
	if report.Stats.Succeeded+report.Stats.Unsuccessful() != len(testFilings()) {
		t.Errorf("succeeded %d + unsuccessful %d != %d filings", report.Stats.Succeeded, report.Stats.Unsuccessful(), len(testFilings()))
	}
	if report.Summary != "2 filings with lawyers, 1 failed to extract, 1 had no lawyers" {
		t.Errorf("summary = %q", report.Summary)
	}
	if !gotEnd.Equal(fixedNow) || !gotStart.Equal(fixedNow.AddDate(-3, 0, 0)) {
		t.Errorf("window = %v .. %v", gotStart, gotEnd)
	}
	if report.SearchID == "" {
		t.Error("missing search id")
	}

	evs := drain(events)
	if len(evs) == 0 || evs[len(evs)-1].Step != StepComplete {
		t.Fatalf("events = %+v", evs)
	}
	extractEvents := 0
	for _, ev := range evs {
		if ev.SearchID != report.SearchID {
			t.Errorf("event search id = %q", ev.SearchID)
		}
		if ev.Step == StepExtract {
			extractEvents++
		}
	}
	if extractEvents != 4 {
		t.Errorf("extract events = %d, want 4", extractEvents)
	}
}

func TestForwardResultIgnoresCompletionOrder(t *testing.T) {
	var baseline []counsel.Relationship
	for _, workers := range []int{1, 2, 5} {
		report, err := newTestOrchestrator(newForwardSource(), &MockSearcher{}, workers).
			SearchCompanyForLawyers(context.Background(), "acme", 3, nil)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if baseline == nil {
			baseline = report.Rows
			continue
		}
		if !reflect.DeepEqual(report.Rows, baseline) {
			t.Errorf("workers=%d: rows = %v, want %v", workers, report.Rows, baseline)
		}
	}
}

func TestForwardMergesLLMResults(t *testing.T) {
	src := newForwardSource()
	src.GetFilingsFunc = func(ctx context.Context, cik string, start, end time.Time, forms []string) ([]edgar.Filing, error) {
		return testFilings()[1:2], nil
	}

	o := newTestOrchestrator(src, &MockSearcher{}, 5)
	llm := counsel.NewLLMExtractor(&MockGenerator{GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return `{"Kirkland & Ellis LLP": ["Laura Chen"]}`, nil
	}}, "mock", "")
	o.SetLLM(llm)

	report, err := o.SearchCompanyForLawyers(context.Background(), "acme", 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []counsel.Relationship{{Firm: "Kirkland & Ellis LLP", Lawyer: "Laura Chen"}}
	if !reflect.DeepEqual(report.Rows, want) {
		t.Errorf("rows = %v, want %v", report.Rows, want)
	}
}

func TestForwardEmptyResultSet(t *testing.T) {
	src := newForwardSource()
	src.FetchFilingTextFunc = func(ctx context.Context, f edgar.Filing) (string, error) {
		return "", errs.ErrShortDocument
	}

	report, err := newTestOrchestrator(src, &MockSearcher{}, 5).SearchCompanyForLawyers(context.Background(), "acme", 3, nil)
	if !errors.Is(err, errs.ErrEmptyResultSet) {
		t.Fatalf("err = %v, want ErrEmptyResultSet", err)
	}
	var se *SearchError
	if !errors.As(err, &se) || se.Stats.Short != 4 {
		t.Errorf("stats = %+v", se)
	}
	if report == nil || len(report.Rows) != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestForwardLookupFailure(t *testing.T) {
	src := newForwardSource()
	src.LookupCompanyFunc = func(ctx context.Context, identifier string) (edgar.CompanyInfo, error) {
		return edgar.CompanyInfo{}, fmt.Errorf("%w: %s", errs.ErrLookup, identifier)
	}

	_, err := newTestOrchestrator(src, &MockSearcher{}, 5).SearchCompanyForLawyers(context.Background(), "ZZZZ", 3, nil)
	if !errors.Is(err, errs.ErrLookup) {
		t.Errorf("err = %v, want ErrLookup", err)
	}
	if src.getFilingsCalls != 0 {
		t.Error("filings should not be listed after a failed lookup")
	}
}

func TestForwardUsesCache(t *testing.T) {
	cache, err := store.NewFileCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	src := newForwardSource()
	o := newTestOrchestrator(src, &MockSearcher{}, 5)
	o.SetCache(cache)

	first, err := o.SearchCompanyForLawyers(context.Background(), "acme", 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.SearchCompanyForLawyers(context.Background(), "ACME", 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if src.getFilingsCalls != 1 {
		t.Errorf("GetFilings calls = %d, want 1", src.getFilingsCalls)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Errorf("cached rows = %v, want %v", second.Rows, first.Rows)
	}
	if first.SearchID == second.SearchID {
		t.Error("each search should get its own id")
	}
}

// --- Reverse search ---

func reverseHits() []search.CompanyHit {
	return []search.CompanyHit{
		{DisplayName: "Alpha Corp  (ALP)  (CIK 0000000011)", FilingType: "S-1", FilingDate: "2024-05-01"},
		{DisplayName: "Alpha Corp  (ALP)  (CIK 0000000011)", FilingType: "8-K", FilingDate: "2024-06-01"},
		{DisplayName: "Beta Inc  (BET)  (CIK 0000000012)", FilingType: "424B5", FilingDate: "2024-03-01"},
		{DisplayName: "Private Fund LP  (CIK 0000000013)", FilingType: "D", FilingDate: "2024-04-01"},
		{DisplayName: "Gamma Holdings  (GAM)  (CIK 0000000014)", FilingType: "4", FilingDate: "2024-04-15"},
	}
}

func TestSearchEntityForCompanies(t *testing.T) {
	searcher := &MockSearcher{SearchFunc: func(ctx context.Context, q search.Query) (search.Page, error) {
		if q.From > 0 {
			return search.Page{Total: 5}, nil
		}
		return search.Page{Hits: reverseHits(), Total: 5}, nil
	}}
	src := &MockSource{LookupCompanyFunc: func(ctx context.Context, identifier string) (edgar.CompanyInfo, error) {
		if identifier == "ALP" {
			return edgar.CompanyInfo{CIK: "0000000011", Name: "Alpha Corp", Ticker: "ALP"}, nil
		}
		return edgar.CompanyInfo{}, fmt.Errorf("%w: %s", errs.ErrLookup, identifier)
	}}

	report, err := newTestOrchestrator(src, searcher, 15).SearchEntityForCompanies(context.Background(), "sullivan and cromwell", KindFirm, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Term != "Sullivan & Cromwell LLP" {
		t.Errorf("term = %q", report.Term)
	}
	for _, term := range searcher.terms {
		if term != report.Term {
			t.Errorf("searched %q, want canonical term", term)
		}
	}
	if report.Decision.Label != "7 years" {
		t.Errorf("range = %q", report.Decision.Label)
	}
	if !report.Decision.Window.End.Equal(fixedNow) {
		t.Errorf("window end = %v", report.Decision.Window.End)
	}

	want := []CompanyRow{
		{Company: "Alpha Corp", Ticker: "ALP", CIK: "0000000011", FilingType: "8-K", FilingDate: "2024-06-01"},
		{Company: "Beta Inc", Ticker: "BET", FilingType: "424B5", FilingDate: "2024-03-01"},
	}
	if !reflect.DeepEqual(report.Rows, want) {
		t.Errorf("rows = %+v, want %+v", report.Rows, want)
	}
	if report.Stats.Total != 2 || report.Stats.Succeeded != 1 || report.Stats.Other != 1 {
		t.Errorf("stats = %+v", report.Stats)
	}
}

func TestSearchEntityKeepsCompaniesSharingTicker(t *testing.T) {
	hits := []search.CompanyHit{
		{DisplayName: "Facebook Inc  (FB)  (CIK 0001326801)", FilingType: "S-8", FilingDate: "2020-05-01"},
		{DisplayName: "Meta Platforms, Inc.  (FB)  (CIK 0001326801)", FilingType: "8-K", FilingDate: "2022-02-01"},
		{DisplayName: "Beta Inc  (BET)  (CIK 0000000012)", FilingType: "424B5", FilingDate: "2021-03-01"},
	}
	searcher := &MockSearcher{SearchFunc: func(ctx context.Context, q search.Query) (search.Page, error) {
		if q.From > 0 {
			return search.Page{Total: len(hits)}, nil
		}
		return search.Page{Hits: hits, Total: len(hits)}, nil
	}}

	report, err := newTestOrchestrator(&MockSource{}, searcher, 15).
		SearchEntityForCompanies(context.Background(), "Gibson Dunn", KindFirm, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Term != "Gibson, Dunn & Crutcher LLP" {
		t.Errorf("term = %q, want canonical spelling", report.Term)
	}

	var companies []string
	for _, r := range report.Rows {
		companies = append(companies, r.Company)
	}
	want := []string{"Meta Platforms, Inc.", "Beta Inc", "Facebook Inc"}
	if !reflect.DeepEqual(companies, want) {
		t.Errorf("companies = %v, want %v", companies, want)
	}
	if report.Stats.Total != 3 || report.Stats.Succeeded != 3 || len(report.Rows) != report.Stats.Total {
		t.Errorf("stats = %+v with %d rows", report.Stats, len(report.Rows))
	}
}

func TestSearchEntityNoCompanies(t *testing.T) {
	report, err := newTestOrchestrator(&MockSource{}, &MockSearcher{}, 15).
		SearchEntityForCompanies(context.Background(), "Jane Nobody", KindLawyer, nil)
	if !errors.Is(err, errs.ErrEmptyResultSet) {
		t.Fatalf("err = %v", err)
	}
	if report == nil || report.Term != "Jane Nobody" {
		t.Errorf("report = %+v", report)
	}
}

func TestSearchEntityRangeFailure(t *testing.T) {
	searcher := &MockSearcher{SearchFunc: func(ctx context.Context, q search.Query) (search.Page, error) {
		return search.Page{}, fmt.Errorf("efts: %w", errs.ErrTransport)
	}}
	_, err := newTestOrchestrator(&MockSource{}, searcher, 15).
		SearchEntityForCompanies(context.Background(), "Jane Doe", KindLawyer, nil)
	if !errors.Is(err, errs.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestParseEntityKind(t *testing.T) {
	tests := []struct {
		in      string
		want    EntityKind
		wantErr bool
	}{
		{"lawyer", KindLawyer, false},
		{"", KindLawyer, false},
		{" Firm ", KindFirm, false},
		{"company", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEntityKind(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseEntityKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

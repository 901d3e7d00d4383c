package counsel

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"legal_counsel_finder/pkg/core/errs"
)

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)
	Calls        int
	LastPrompt   string
}

func (m *MockGenerator) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, systemPrompt, options)
	}
	return "{}", nil
}

func newTestExtractor(gen Generator) *LLMExtractor {
	x := NewLLMExtractor(gen, "mock", "test-model")
	x.Backoff = time.Millisecond
	x.Timeout = time.Second
	return x
}

const llmExcerpt = "Jane Doe\nGeneral Counsel\nAcme Therapeutics, Inc.\nCopies to:\nCarlos Ramirez\nCooley LLP\n"

func TestLLMExtractorFiltersReply(t *testing.T) {
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		if options["model"] != "test-model" {
			t.Errorf("model option = %v", options["model"])
		}
		if options["temperature"] != float32(0) {
			t.Errorf("temperature option = %v, want 0", options["temperature"])
		}
		return "```json\n" + `{
			"Cooley LLP": ["Carlos Ramirez", "General Counsel", "Jane Doe"],
			"Firm A": ["John Smith"],
			"Deloitte & Touche LLP": ["Amy Lee"],
			"Kirkland and Ellis": "Mark Hale"
		}` + "\n```", nil
	}}

	m := newTestExtractor(gen).Extract(context.Background(), llmExcerpt, testCompany)

	want := []Relationship{
		{Firm: "Cooley LLP", Lawyer: "Carlos Ramirez"},
	}
	// "Kirkland and Ellis" has no suffix, so it fails firm validation.
	if got := m.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if !strings.Contains(gen.LastPrompt, testCompany) || !strings.Contains(gen.LastPrompt, "Carlos Ramirez") {
		t.Error("prompt is missing the company or the excerpt")
	}
}

func TestLLMExtractorRetriesThenSucceeds(t *testing.T) {
	gen := &MockGenerator{}
	gen.GenerateFunc = func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		if gen.Calls < 3 {
			return "", errors.New("503 from upstream")
		}
		return `{"Cooley LLP": ["Carlos Ramirez"]}`, nil
	}

	m := newTestExtractor(gen).Extract(context.Background(), llmExcerpt, testCompany)
	if gen.Calls != 3 {
		t.Errorf("calls = %d, want 3", gen.Calls)
	}
	if len(m.Lawyers("Cooley LLP")) != 1 {
		t.Errorf("rows = %v", m.Rows())
	}
}

func TestLLMExtractorGivesUpQuietly(t *testing.T) {
	gen := &MockGenerator{GenerateFunc: func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
		return "", errors.New("connection reset")
	}}

	m := newTestExtractor(gen).Extract(context.Background(), llmExcerpt, testCompany)
	if gen.Calls != 3 {
		t.Errorf("calls = %d, want 1 + 2 retries", gen.Calls)
	}
	if m == nil || len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestLLMExtractorTruncatesExcerpt(t *testing.T) {
	gen := &MockGenerator{}
	long := strings.Repeat("a", MaxLLMExcerptChars) + "TAIL_MARKER"

	newTestExtractor(gen).Extract(context.Background(), long, testCompany)
	if strings.Contains(gen.LastPrompt, "TAIL_MARKER") {
		t.Error("excerpt was not truncated")
	}
}

func TestParseFirmLawyerJSON(t *testing.T) {
	got, err := ParseFirmLawyerJSON("Here you go:\n{\"Cooley LLP\": [\"Jane Doe\",], \"Dechert LLP\": \"Ann Lee\",}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string][]string{"Cooley LLP": {"Jane Doe"}, "Dechert LLP": {"Ann Lee"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ParseFirmLawyerJSON("   "); !errors.Is(err, errs.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestNilExtractorIsEmpty(t *testing.T) {
	var x *LLMExtractor
	if m := x.Extract(context.Background(), "text", testCompany); len(m) != 0 {
		t.Errorf("got %v", m)
	}
}

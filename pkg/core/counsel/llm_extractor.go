package counsel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
	"legal_counsel_finder/pkg/core/utils"
)

// MaxLLMExcerptChars bounds the text sent to the model.
const MaxLLMExcerptChars = 15000

// Generator is the slice of an LLM provider the extractor needs.
type Generator interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

var placeholderLLMFirms = map[string]bool{"firm a": true, "firm b": true, "example firm": true}

// LLMExtractor asks a language model for firm -> lawyers pairs that the pattern rules
// may have missed. It only ever adds to pattern results and never fails the filing.
type LLMExtractor struct {
	gen          Generator
	providerName string
	Model        string
	Retries      int
	Timeout      time.Duration
	Backoff      time.Duration
}

// NewLLMExtractor creates an extractor with two retries and a 30s per-call timeout.
func NewLLMExtractor(gen Generator, providerName, model string) *LLMExtractor {
	return &LLMExtractor{
		gen:          gen,
		providerName: providerName,
		Model:        model,
		Retries:      2,
		Timeout:      30 * time.Second,
		Backoff:      time.Second,
	}
}

// Extract returns validated pairs, or an empty map once retries are exhausted.
func (x *LLMExtractor) Extract(ctx context.Context, text, company string) FirmLawyerMap {
	if x == nil || x.gen == nil || strings.TrimSpace(text) == "" {
		return NewFirmLawyerMap()
	}
	excerpt := truncateRunes(text, MaxLLMExcerptChars)
	prompt := BuildPrompt(excerpt, company)

	options := map[string]interface{}{"temperature": float32(0)}
	if x.Model != "" {
		options["model"] = x.Model
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = x.Backoff

	attempt := 0
	raw, err := backoff.Retry(ctx, func() (map[string][]string, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, x.Timeout)
		defer cancel()

		resp, err := x.gen.GenerateResponse(callCtx, prompt, "", options)
		if err != nil {
			metrics.LLMCalls.WithLabelValues(x.providerName, "error").Inc()
			return nil, fmt.Errorf("%w: %v", errs.ErrTransport, err)
		}
		parsed, err := ParseFirmLawyerJSON(resp)
		if err != nil {
			metrics.LLMCalls.WithLabelValues(x.providerName, "parse_error").Inc()
			return nil, err
		}
		metrics.LLMCalls.WithLabelValues(x.providerName, "ok").Inc()
		return parsed, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(x.Retries+1)))
	if err != nil {
		logger.Warn("[LLM] extraction gave up",
			zap.String("provider", x.providerName),
			zap.String("company", company),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return NewFirmLawyerMap()
	}

	return FilterLLMResult(raw, excerpt, company)
}

// FilterLLMResult routes model output through the validators. Firms without a surviving
// lawyer are dropped: the model is asked for people, not firm mentions.
func FilterLLMResult(raw map[string][]string, excerpt, company string) FirmLawyerMap {
	m := NewFirmLawyerMap()
	accepted := 0
	for firm, lawyers := range raw {
		if placeholderLLMFirms[strings.ToLower(strings.TrimSpace(firm))] {
			continue
		}
		for _, l := range lawyers {
			if strings.TrimSpace(l) == "" {
				continue
			}
			rel, ok := Accept(RawCandidate{Lawyer: l, Firm: firm, Context: excerpt, Rule: "llm"}, company)
			if ok && rel.Lawyer != "" {
				m.Add(rel.Firm, rel.Lawyer)
				accepted++
			}
		}
	}
	if accepted > 0 {
		metrics.RuleMatches.WithLabelValues("llm").Add(float64(accepted))
	}
	return m
}

// ParseFirmLawyerJSON decodes {"Firm LLP": ["Name", ...]} from a model reply, tolerating
// code fences, leading prose and minor syntax damage. A single string value is read as
// a one-element list.
func ParseFirmLawyerJSON(resp string) (map[string][]string, error) {
	cleaned := utils.ExtractJSONObject(utils.StripCodeFences(resp))

	var generic map[string]interface{}
	if _, err := utils.SmartParse(cleaned, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrParse, err)
	}

	out := make(map[string][]string, len(generic))
	for firm, v := range generic {
		switch val := v.(type) {
		case []interface{}:
			for _, item := range val {
				if s, ok := item.(string); ok {
					out[firm] = append(out[firm], s)
				}
			}
		case string:
			out[firm] = append(out[firm], val)
		}
	}
	return out, nil
}

// BuildPrompt renders the extraction instructions for one filing.
func BuildPrompt(excerpt, company string) string {
	return fmt.Sprintf(promptTemplate, company, company, company, excerpt)
}

const promptTemplate = `Extract ONLY EXTERNAL law firm names and EXTERNAL lawyers from this SEC filing for %s.

CRITICAL RULES:
1. ONLY extract PEOPLE'S NAMES - first and last names like "John Smith" or "Jane K. Doe"
2. DO NOT extract:
   - Titles like "Legal Officer", "General Counsel", "Chief Legal Officer"
   - Company names like "%s" or "Corporation"
   - Generic terms like "Attorney", "Counsel", "Lawyer"
   - Phrases like "The Company", "The Registrant"
3. Find law firms ending in LLP, LLC, or P.C.
4. EXCLUDE: Accounting firms (Deloitte, PwC, KPMG, EY)
5. EXCLUDE: Investment banks (Goldman Sachs, Cantor Fitzgerald, etc.)
6. ONLY include lawyers who work AT the law firm, NOT company employees

VALID NAMES:
- "John Smith" (first + last name)
- "Jane K. Doe" (first + middle initial + last name)
- "Robert Johnson III" (first + last + suffix)

NOT NAMES:
- "Legal Officer", "Chief Legal Officer", "General Counsel", "Corporate Secretary" (titles)
- "%s" (the company)

PATTERNS TO LOOK FOR:
"Carlos Ramirez and Nicholaus Johnson of Cooley LLP"
-> {"Cooley LLP": ["Carlos Ramirez", "Nicholaus Johnson"]}

"First Name Last Name
Law Firm Name LLP"
-> {"Law Firm Name LLP": ["First Name Last Name"]}

Text:
%s

Return only a JSON object mapping law firms to PERSON NAMES (not titles, not company names):
{"Cooley LLP": ["John Smith", "Jane Doe"]}`

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package counsel

import (
	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/metrics"
)

// Engine runs the pattern rules over filing text.
type Engine struct {
	rules     []Rule
	fallbacks []Rule
}

// NewEngine creates an engine with the default rule lists.
func NewEngine() *Engine {
	return &Engine{rules: DefaultRules(), fallbacks: FallbackRules()}
}

// NewEngineWithRules creates an engine with custom rule lists.
func NewEngineWithRules(rules, fallbacks []Rule) *Engine {
	return &Engine{rules: rules, fallbacks: fallbacks}
}

// Extract runs the name-bearing rules and, when they find nothing, the fallbacks.
func (e *Engine) Extract(text, company string) FirmLawyerMap {
	m := e.ExtractPrimary(text, company)
	if len(m) == 0 {
		m = e.ExtractFallback(text, company)
	}
	return m
}

// ExtractPrimary unions the accepted candidates of every name-bearing rule.
func (e *Engine) ExtractPrimary(text, company string) FirmLawyerMap {
	m := NewFirmLawyerMap()
	for _, r := range e.rules {
		e.collect(m, r, text, company)
	}
	return m
}

// ExtractFallback runs the fallback rules in order and stops at the first that yields.
func (e *Engine) ExtractFallback(text, company string) FirmLawyerMap {
	m := NewFirmLawyerMap()
	for _, r := range e.fallbacks {
		if e.collect(m, r, text, company); len(m) > 0 {
			break
		}
	}
	return m
}

func (e *Engine) collect(m FirmLawyerMap, r Rule, text, company string) {
	accepted := 0
	for _, c := range r.Extract(text, company) {
		rel, ok := Accept(c, company)
		if !ok {
			continue
		}
		m.Add(rel.Firm, rel.Lawyer)
		accepted++
	}
	if accepted > 0 {
		metrics.RuleMatches.WithLabelValues(r.Name()).Add(float64(accepted))
		logger.Debug("[EXTRACT] rule matched", zap.String("rule", r.Name()), zap.Int("accepted", accepted))
	}
}

// Accept validates and normalizes a candidate. Firm-only candidates (empty Lawyer) are
// accepted on the firm alone; named candidates also need a valid person name that is
// not followed by an in-house title in the candidate's context.
func Accept(c RawCandidate, company string) (Relationship, bool) {
	firm := CleanFirmName(c.Firm)
	if !IsValidFirmName(firm, company) {
		return Relationship{}, false
	}
	rel := Relationship{Firm: NormalizeFirmName(firm)}
	if rel.Firm == "" {
		return Relationship{}, false
	}

	if c.Lawyer == "" {
		return rel, true
	}

	name := NormalizeLawyerName(c.Lawyer)
	if !IsValidPersonName(name, company) {
		return Relationship{}, false
	}
	if c.Context != "" && IsInternalEmployee(c.Lawyer, c.Context) {
		return Relationship{}, false
	}
	rel.Lawyer = name
	return rel, true
}

// Package search queries the EDGAR full-text search index for filings that mention a
// lawyer or law firm, paginates with early termination and picks the date window.
package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"legal_counsel_finder/pkg/core/edgar"
)

var (
	cikSuffixRe = regexp.MustCompile(`\s*\(CIK\s+\d+\)`)
	tickerRe    = regexp.MustCompile(`\(([A-Z0-9\-]+)`)
	parenSplit  = regexp.MustCompile(`\s*\(`)
)

// Window is an inclusive filing-date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDays is the window ending at now and starting days earlier.
func LastDays(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// CompanyHit is one search-index hit.
type CompanyHit struct {
	SearchTerm  string `json:"search_term"`
	DisplayName string `json:"company_name"` // e.g. "Tesla, Inc.  (TSLA)  (CIK 0001318605)"
	FilingType  string `json:"filing_type"`
	FilingDate  string `json:"filing_date"`
}

// CleanName is the display name without ticker and CIK annotations.
func (h CompanyHit) CleanName() string {
	name, _ := SplitDisplayName(h.DisplayName)
	return name
}

// Ticker is the first parenthesised ticker in the display name, or "".
func (h CompanyHit) Ticker() string {
	_, ticker := SplitDisplayName(h.DisplayName)
	return ticker
}

// SplitDisplayName separates the clean company name from its ticker annotation.
func SplitDisplayName(display string) (name, ticker string) {
	withoutCIK := cikSuffixRe.ReplaceAllString(display, "")
	if m := tickerRe.FindStringSubmatch(withoutCIK); m != nil {
		ticker = m[1]
	}
	name = strings.TrimSpace(parenSplit.Split(withoutCIK, 2)[0])
	return name, ticker
}

// FilterRelevant keeps hits whose form type is in forms.
func FilterRelevant(hits []CompanyHit, forms []string) []CompanyHit {
	set := edgar.FormSet(forms)
	var out []CompanyHit
	for _, h := range hits {
		if set[h.FilingType] {
			out = append(out, h)
		}
	}
	return out
}

// LatestPerCompany keeps the most recent hit per clean company name, dropping
// companies without a ticker. Output is sorted by filing date, newest first.
func LatestPerCompany(hits []CompanyHit) []CompanyHit {
	latest := make(map[string]CompanyHit)
	for _, h := range hits {
		name := h.CleanName()
		if name == "" || h.Ticker() == "" {
			continue
		}
		if cur, ok := latest[name]; !ok || h.FilingDate > cur.FilingDate {
			latest[name] = h
		}
	}

	out := make([]CompanyHit, 0, len(latest))
	for _, h := range latest {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilingDate != out[j].FilingDate {
			return out[i].FilingDate > out[j].FilingDate
		}
		return out[i].CleanName() < out[j].CleanName()
	})
	return out
}

// CountUniqueCompanies counts distinct clean names with a ticker among relevant forms.
func CountUniqueCompanies(hits []CompanyHit) int {
	seen := make(map[string]struct{})
	for _, h := range FilterRelevant(hits, edgar.RelevantFilings) {
		if h.Ticker() == "" {
			continue
		}
		if name := h.CleanName(); name != "" {
			seen[name] = struct{}{}
		}
	}
	return len(seen)
}

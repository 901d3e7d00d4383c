package counsel

import "sort"

// RawCandidate is an unvalidated (lawyer, firm) pair emitted by one rule or the
// language model, with the text it was found in. An empty Lawyer records the firm only.
type RawCandidate struct {
	Lawyer  string
	Firm    string
	Context string
	Rule    string
}

// Relationship is a validated, normalized (firm, lawyer) pair. Lawyer may be empty.
type Relationship struct {
	Firm   string `json:"firm"`
	Lawyer string `json:"lawyer"`
}

// FirmLawyerMap maps a normalized firm name to the set of its lawyers. A firm with an
// empty set was found without any named lawyer.
type FirmLawyerMap map[string]map[string]struct{}

// NewFirmLawyerMap returns an empty map.
func NewFirmLawyerMap() FirmLawyerMap {
	return make(FirmLawyerMap)
}

// AddFirm records firm without adding a lawyer.
func (m FirmLawyerMap) AddFirm(firm string) {
	if _, ok := m[firm]; !ok {
		m[firm] = make(map[string]struct{})
	}
}

// Add records a lawyer at firm. An empty lawyer only records the firm.
func (m FirmLawyerMap) Add(firm, lawyer string) {
	m.AddFirm(firm)
	if lawyer != "" {
		m[firm][lawyer] = struct{}{}
	}
}

// Merge unions other into m, keyed by normalized firm string equality.
func (m FirmLawyerMap) Merge(other FirmLawyerMap) {
	for firm, lawyers := range other {
		m.AddFirm(firm)
		for l := range lawyers {
			m[firm][l] = struct{}{}
		}
	}
}

// Firms returns the firm names, sorted.
func (m FirmLawyerMap) Firms() []string {
	firms := make([]string, 0, len(m))
	for f := range m {
		firms = append(firms, f)
	}
	sort.Strings(firms)
	return firms
}

// Lawyers returns the lawyers recorded at firm, sorted.
func (m FirmLawyerMap) Lawyers(firm string) []string {
	lawyers := make([]string, 0, len(m[firm]))
	for l := range m[firm] {
		lawyers = append(lawyers, l)
	}
	sort.Strings(lawyers)
	return lawyers
}

// Deduplicate collapses lawyers sharing a LawyerKey within each firm, keeping the
// longest spelling (ties go to the lexically smaller one so the result is stable).
func Deduplicate(m FirmLawyerMap) FirmLawyerMap {
	out := NewFirmLawyerMap()
	for firm, lawyers := range m {
		out.AddFirm(firm)
		best := make(map[string]string)
		for l := range lawyers {
			key := LawyerKey(l)
			cur, ok := best[key]
			if !ok || len(l) > len(cur) || (len(l) == len(cur) && l < cur) {
				best[key] = l
			}
		}
		for _, l := range best {
			out.Add(firm, l)
		}
	}
	return out
}

// Rows explodes the map to one row per (firm, lawyer), firms without lawyers giving a
// single row with an empty lawyer. Sorted by firm, then lawyer.
func (m FirmLawyerMap) Rows() []Relationship {
	var rows []Relationship
	for _, firm := range m.Firms() {
		lawyers := m.Lawyers(firm)
		if len(lawyers) == 0 {
			rows = append(rows, Relationship{Firm: firm})
			continue
		}
		for _, l := range lawyers {
			rows = append(rows, Relationship{Firm: firm, Lawyer: l})
		}
	}
	return rows
}

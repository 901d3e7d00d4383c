package edgar

import (
	"fmt"
	"strings"
)

// CompanyInfo is one entry of the SEC ticker directory.
type CompanyInfo struct {
	CIK    string `json:"cik"` // zero-padded to 10 digits
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// Display renders the directory entry the way pickers show it.
func (c CompanyInfo) Display() string {
	if c.Ticker != "" {
		return fmt.Sprintf("%s (%s) - CIK %s", c.Name, c.Ticker, c.CIK)
	}
	return fmt.Sprintf("%s - CIK %s", c.Name, c.CIK)
}

// Filing identifies one submission of a registrant. Immutable once discovered.
type Filing struct {
	CIK             string `json:"cik"`
	AccessionNumber string `json:"accession_number"` // e.g. "0001193125-24-012345"
	FormType        string `json:"form_type"`
	FilingDate      string `json:"filing_date"` // YYYY-MM-DD
	PrimaryDocument string `json:"primary_document,omitempty"`
}

// Key identifies the filing inside a batch.
func (f Filing) Key() string {
	return f.CIK + "/" + f.AccessionNumber
}

func (f Filing) String() string {
	return fmt.Sprintf("%s (%s)", f.FormType, f.FilingDate)
}

// AccessionNoDashes is the accession number as it appears in archive paths.
func (f Filing) AccessionNoDashes() string {
	return strings.ReplaceAll(f.AccessionNumber, "-", "")
}

// SubmissionsResponse from SEC API
type SubmissionsResponse struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings Filings  `json:"filings"`
}

// Filings contains filing information
type Filings struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings holds arrays of filing attributes, positionally correlated by index.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// at returns the i-th filing, tolerating arrays of unequal length.
func (r RecentFilings) at(i int) (Filing, bool) {
	if i >= len(r.Form) || i >= len(r.FilingDate) || i >= len(r.AccessionNumber) {
		return Filing{}, false
	}
	f := Filing{
		AccessionNumber: r.AccessionNumber[i],
		FormType:        r.Form[i],
		FilingDate:      r.FilingDate[i],
	}
	if i < len(r.PrimaryDocument) {
		f.PrimaryDocument = r.PrimaryDocument[i]
	}
	return f, true
}

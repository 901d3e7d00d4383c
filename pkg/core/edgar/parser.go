// Package edgar locates SEC EDGAR filings for a registrant and turns their documents
// into bounded plain text for counsel extraction.
//
// This package uses the following external libraries:
//   - github.com/PuerkitoBio/goquery: HTML traversal for markup stripping
//   - github.com/cenkalti/backoff/v5: retries for SEC requests
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
)

const (
	submissionsAPIURL = "https://data.sec.gov/submissions/CIK%s.json"
	archivesBaseURL   = "https://www.sec.gov/Archives/edgar/data"
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
)

// Endpoints lets tests point the parser at a local server.
type Endpoints struct {
	Submissions    string // fmt pattern taking the padded CIK
	ArchivesBase   string
	CompanyTickers string
}

// DefaultEndpoints are the public SEC hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Submissions:    submissionsAPIURL,
		ArchivesBase:   archivesBaseURL,
		CompanyTickers: companyTickersURL,
	}
}

// Parser handles registrant lookups, filing history and document text.
type Parser struct {
	client    *Client
	endpoints Endpoints

	textCache *TextCache

	tickerCache []CompanyInfo
	tickerMutex sync.Mutex
}

// NewParser creates a new EDGAR parser
func NewParser(client *Client) *Parser {
	if client == nil {
		client = NewClient(DefaultUserAgent, 20*time.Second)
	}
	return &Parser{client: client, endpoints: DefaultEndpoints()}
}

// WithEndpoints overrides the SEC URLs.
func (p *Parser) WithEndpoints(e Endpoints) *Parser {
	p.endpoints = e
	return p
}

// WithTextCache makes FetchFilingText reuse excerpts across runs.
func (p *Parser) WithTextCache(c *TextCache) *Parser {
	p.textCache = c
	return p
}

// Client exposes the underlying HTTP client for sibling SEC integrations.
func (p *Parser) Client() *Client {
	return p.client
}

// loadTickerCache fetches the full ticker list from SEC
// Format: {"0": {"cik_str": 123, "ticker": "AAPL", "title": "Apple"}, ...}
func (p *Parser) loadTickerCache(ctx context.Context) ([]CompanyInfo, error) {
	p.tickerMutex.Lock()
	defer p.tickerMutex.Unlock()

	if p.tickerCache != nil {
		return p.tickerCache, nil
	}

	body, err := p.client.Get(ctx, p.endpoints.CompanyTickers, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company tickers: %w", err)
	}

	type tickerEntry struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}

	var resp map[string]tickerEntry
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse ticker JSON: %w", err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("empty company ticker list")
	}

	companies := make([]CompanyInfo, 0, len(resp))
	for _, entry := range resp {
		companies = append(companies, CompanyInfo{
			CIK:    fmt.Sprintf("%010d", entry.CIK),
			Name:   entry.Title,
			Ticker: strings.ToUpper(entry.Ticker),
		})
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Name != companies[j].Name {
			return companies[i].Name < companies[j].Name
		}
		return companies[i].Ticker < companies[j].Ticker
	})

	logger.Info("[SEC] loaded ticker directory", zap.Int("companies", len(companies)))
	p.tickerCache = companies
	return companies, nil
}

// LookupCompany resolves a ticker, CIK or exact company name to a directory entry.
// Bloomberg-style " US Equity" suffixes are tolerated. Unknown identifiers wrap errs.ErrLookup.
func (p *Parser) LookupCompany(ctx context.Context, identifier string) (CompanyInfo, error) {
	id := strings.TrimSpace(strings.Replace(identifier, " US Equity", "", 1))
	if id == "" {
		return CompanyInfo{}, fmt.Errorf("%w: empty company identifier", errs.ErrLookup)
	}

	companies, err := p.loadTickerCache(ctx)
	if err != nil {
		return CompanyInfo{}, fmt.Errorf("%w: %v", errs.ErrLookup, err)
	}

	upper := strings.ToUpper(id)
	for _, c := range companies {
		if c.Ticker == upper {
			return c, nil
		}
	}

	if isDigits(id) {
		padded := padCIK(id)
		for _, c := range companies {
			if c.CIK == padded {
				return c, nil
			}
		}
	}

	for _, c := range companies {
		if strings.EqualFold(c.Name, id) {
			return c, nil
		}
	}

	return CompanyInfo{}, fmt.Errorf("%w: company %q not found", errs.ErrLookup, identifier)
}

// SearchCompanies returns directory entries whose name, ticker or CIK contains term.
// limit <= 0 means no limit.
func (p *Parser) SearchCompanies(ctx context.Context, term string, limit int) ([]CompanyInfo, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	companies, err := p.loadTickerCache(ctx)
	if err != nil {
		return nil, err
	}

	var matches []CompanyInfo
	for _, c := range companies {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Ticker), term) ||
			strings.Contains(c.CIK, term) {
			matches = append(matches, c)
			if limit > 0 && len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

// GetFilings lists the registrant's filings of the given forms filed within [start, end],
// newest first.
func (p *Parser) GetFilings(ctx context.Context, cik string, start, end time.Time, forms []string) ([]Filing, error) {
	padded := padCIK(cik)

	url := fmt.Sprintf(p.endpoints.Submissions, padded)
	body, err := p.client.Get(ctx, url, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	var resp SubmissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse submissions JSON: %w", err)
	}

	wanted := FormSet(forms)
	from := start.Format("2006-01-02")
	to := end.Format("2006-01-02")

	var filings []Filing
	for i := range resp.Filings.Recent.Form {
		f, ok := resp.Filings.Recent.at(i)
		if !ok {
			break
		}
		if len(wanted) > 0 && !wanted[f.FormType] {
			continue
		}
		if f.FilingDate < from || f.FilingDate > to {
			continue
		}
		f.CIK = padded
		filings = append(filings, f)
	}

	sort.SliceStable(filings, func(i, j int) bool {
		return filings[i].FilingDate > filings[j].FilingDate
	})
	return filings, nil
}

// DocumentURLs lists candidate document URLs for a filing: the primary document first,
// then generic accession-number paths.
func (p *Parser) DocumentURLs(f Filing) []string {
	base := fmt.Sprintf("%s/%s/%s", p.endpoints.ArchivesBase, archiveCIK(f.CIK), f.AccessionNoDashes())

	var urls []string
	if f.PrimaryDocument != "" {
		urls = append(urls, base+"/"+f.PrimaryDocument)
	}
	urls = append(urls,
		base+"/"+f.AccessionNumber+".htm",
		base+"/"+f.AccessionNumber+".txt",
	)
	return urls
}

// FetchFilingText fetches the first usable candidate document and returns the bounded
// counsel excerpt. Documents shorter than MinDocumentChars wrap errs.ErrShortDocument.
func (p *Parser) FetchFilingText(ctx context.Context, f Filing) (string, error) {
	if p.textCache != nil {
		if cached := p.textCache.Get(f); cached != "" {
			return cached, nil
		}
	}

	var lastErr error
	for _, url := range p.DocumentURLs(f) {
		body, err := p.client.Get(ctx, url, "text/html,application/xhtml+xml,text/plain")
		if err != nil {
			lastErr = err
			var se *StatusError
			if errors.As(err, &se) {
				continue
			}
			// Transport failures already went through the retry budget; the other
			// candidates live on the same host.
			return "", err
		}
		if len(body) == 0 {
			lastErr = fmt.Errorf("%w: empty body at %s", errs.ErrShortDocument, url)
			continue
		}

		text := HTMLToText(string(body))
		if len(text) < MinDocumentChars {
			return "", fmt.Errorf("%w: %s has %d characters", errs.ErrShortDocument, f, len(text))
		}
		excerpt := BuildCounselExcerpt(text)
		if p.textCache != nil {
			if err := p.textCache.Set(f, excerpt); err != nil {
				logger.Warn("[SEC] failed to cache filing text", zap.String("filing", f.Key()), zap.Error(err))
			}
		}
		return excerpt, nil
	}

	if lastErr == nil || !errors.Is(lastErr, errs.ErrTransport) {
		return "", fmt.Errorf("%w: no document retrieved for %s: %v", errs.ErrShortDocument, f, lastErr)
	}
	return "", lastErr
}

func padCIK(cik string) string {
	// Remove leading zeros first, then pad to 10 digits
	cik = strings.TrimLeft(strings.TrimSpace(cik), "0")
	return fmt.Sprintf("%010s", cik)
}

// archiveCIK is the unpadded form used in Archives paths.
func archiveCIK(cik string) string {
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

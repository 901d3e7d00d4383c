package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"legal_counsel_finder/pkg/core/edgar"
	"legal_counsel_finder/pkg/core/errs"
)

const (
	fullTextSearchURL = "https://efts.sec.gov/LATEST/search-index"
	// MaxPageSize is the largest page the index serves.
	MaxPageSize = 100
)

// Query is one page request.
type Query struct {
	Term   string
	Window Window
	From   int
	Size   int
}

// Page is one page of hits plus the index's total hit count for the query.
type Page struct {
	Hits  []CompanyHit
	Total int
}

// Searcher fetches a single page. Client implements it against EDGAR.
type Searcher interface {
	Search(ctx context.Context, q Query) (Page, error)
}

// Client queries the EDGAR full-text search index for exact-phrase matches.
type Client struct {
	http    *edgar.Client
	baseURL string
}

// NewClient creates a search client sharing the SEC HTTP client (and its retry policy).
func NewClient(httpClient *edgar.Client) *Client {
	return &Client{http: httpClient, baseURL: fullTextSearchURL}
}

// WithBaseURL points the client at another index host.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source struct {
				DisplayNames []string `json:"display_names"`
				FileType     string   `json:"file_type"`
				FileDate     string   `json:"file_date"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search fetches one page. The term is sent quoted so the index matches the exact phrase.
func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	size := q.Size
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}

	params := url.Values{}
	params.Set("q", `"`+q.Term+`"`)
	params.Set("dateRange", "custom")
	params.Set("startdt", q.Window.Start.Format("2006-01-02"))
	params.Set("enddt", q.Window.End.Format("2006-01-02"))
	params.Set("from", strconv.Itoa(q.From))
	params.Set("size", strconv.Itoa(size))

	body, err := c.http.Get(ctx, c.baseURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return Page{}, fmt.Errorf("full-text search %q: %w", q.Term, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, fmt.Errorf("%w: full-text search response: %v", errs.ErrParse, err)
	}

	page := Page{Total: resp.Hits.Total.Value}
	for _, h := range resp.Hits.Hits {
		name := "Unknown"
		if len(h.Source.DisplayNames) > 0 {
			name = h.Source.DisplayNames[0]
		}
		page.Hits = append(page.Hits, CompanyHit{
			SearchTerm:  q.Term,
			DisplayName: name,
			FilingType:  h.Source.FileType,
			FilingDate:  h.Source.FileDate,
		})
	}
	return page, nil
}

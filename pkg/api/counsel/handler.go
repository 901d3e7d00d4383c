// Package counsel provides HTTP API handlers for forward and reverse counsel searches.
package counsel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/edgar"
	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/pipeline"
)

// Searcher runs the two search directions. *pipeline.Orchestrator implements it.
type Searcher interface {
	SearchCompanyForLawyers(ctx context.Context, identifier string, years int, events pipeline.Events) (*pipeline.CompanyReport, error)
	SearchEntityForCompanies(ctx context.Context, name string, kind pipeline.EntityKind, events pipeline.Events) (*pipeline.EntityReport, error)
}

// CompanyDirectory backs the autocomplete endpoint. *edgar.Parser implements it.
type CompanyDirectory interface {
	SearchCompanies(ctx context.Context, term string, limit int) ([]edgar.CompanyInfo, error)
}

const autocompleteLimit = 10

type Handler struct {
	searcher  Searcher
	directory CompanyDirectory
}

func NewHandler(searcher Searcher, directory CompanyDirectory) *Handler {
	return &Handler{searcher: searcher, directory: directory}
}

// Register mounts the counsel endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/counsel/company", h.HandleCompany)
	mux.HandleFunc("/api/counsel/company/stream", h.HandleCompanyStream)
	mux.HandleFunc("/api/counsel/entity", h.HandleEntity)
	mux.HandleFunc("/api/counsel/entity/stream", h.HandleEntityStream)
	mux.HandleFunc("/api/companies", h.HandleCompanies)
}

// Response wraps a report. Error is set when the search ran but found nothing.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// preflight writes CORS headers and reports whether the request still needs handling.
func preflight(w http.ResponseWriter, r *http.Request) bool {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("[API] encode response failed", zap.Error(err))
	}
}

// statusFor maps a search error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, errs.ErrEmptyResultSet):
		return http.StatusOK
	case errors.Is(err, errs.ErrLookup):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func companyParams(r *http.Request) (string, int, error) {
	q := r.URL.Query()
	company := strings.TrimSpace(q.Get("company"))
	if company == "" {
		return "", 0, fmt.Errorf("missing company parameter")
	}
	years := 0
	if s := q.Get("years"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 20 {
			return "", 0, fmt.Errorf("years must be between 1 and 20")
		}
		years = n
	}
	return company, years, nil
}

func entityParams(r *http.Request) (string, pipeline.EntityKind, error) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		return "", "", fmt.Errorf("missing name parameter")
	}
	kind, err := pipeline.ParseEntityKind(q.Get("kind"))
	if err != nil {
		return "", "", err
	}
	return name, kind, nil
}

// HandleCompany handles GET /api/counsel/company?company=AAPL&years=3
func (h *Handler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	company, years, err := companyParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.searcher.SearchCompanyForLawyers(r.Context(), company, years, nil)
	h.respond(w, "company", company, report, err)
}

// HandleEntity handles GET /api/counsel/entity?name=...&kind=lawyer|firm
func (h *Handler) HandleEntity(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	name, kind, err := entityParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.searcher.SearchEntityForCompanies(r.Context(), name, kind, nil)
	h.respond(w, "entity", name, report, err)
}

func (h *Handler) respond(w http.ResponseWriter, direction, query string, report interface{}, err error) {
	resp := Response{}
	if err != nil {
		resp.Error = err.Error()
		logger.Info("[API] search finished with error",
			zap.String("direction", direction),
			zap.String("query", query),
			zap.String("kind", errs.Kind(err)),
			zap.Error(err),
		)
	}
	if err == nil || errors.Is(err, errs.ErrEmptyResultSet) {
		resp.Data = report
	}
	writeJSON(w, statusFor(err), resp)
}

// HandleCompanies handles GET /api/companies?q=app
func (h *Handler) HandleCompanies(w http.ResponseWriter, r *http.Request) {
	if !preflight(w, r) {
		return
	}
	companies, err := h.directory.SearchCompanies(r.Context(), r.URL.Query().Get("q"), autocompleteLimit)
	if err != nil {
		writeJSON(w, statusFor(err), Response{Error: err.Error()})
		return
	}
	if companies == nil {
		companies = []edgar.CompanyInfo{}
	}
	writeJSON(w, http.StatusOK, Response{Data: companies})
}

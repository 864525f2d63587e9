package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/dashboard"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/slogx"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// Source provides the pipeline output tables
type Source interface {
	LoadEnriched() ([]models.EnrichedObservation, error)
	LoadSummary() ([]models.SummaryRecord, error)
}

// SummaryCache is a read-through cache for the summary table
type SummaryCache interface {
	Get(ctx context.Context) ([]models.SummaryRecord, bool, error)
	Set(ctx context.Context, rows []models.SummaryRecord) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	source    Source
	cache     SummaryCache
	benchmark string
	log       *slog.Logger
}

// NewHandler creates a new Handler. cache may be nil.
func NewHandler(source Source, cache SummaryCache, log *slog.Logger) *Handler {
	return &Handler{
		source:    source,
		cache:     cache,
		benchmark: models.BenchmarkTicker,
		log:       slogx.OrDefault(log),
	}
}

// GetCompanies handles GET /companies
func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.LoadEnriched()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	minDate, maxDate := dashboard.DateBounds(rows)
	from, to := dashboard.DefaultRange(rows)
	companies := dashboard.Companies(rows)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"companies":         companies,
		"default_selection": defaultSelection(companies),
		"min_date":          minDate,
		"max_date":          maxDate,
		"default_from":      from,
		"default_to":        to,
	})
}

// GetSummary handles GET /summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.LoadEnriched()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	view, ok := h.resolve(w, r, rows)
	if !ok {
		return
	}
	summary, err := h.summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"view":    view,
		"summary": dashboard.SummaryFor(summary, view.Display),
	})
}

// GetKPIs handles GET /kpis
func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	k := dashboard.KPIs(summary, h.benchmark)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"kpis":           k,
		"benchmark":      h.benchmark,
		"benchmark_text": k.BenchmarkText(),
	})
}

// GetWatchlist handles GET /watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.LoadEnriched()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	view, ok := h.resolve(w, r, rows)
	if !ok {
		return
	}
	summary, err := h.summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, dashboard.Watchlist(summary, view.Selected, view.Active))
}

// GetSeries handles GET /series/{chart}
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	chart, err := dashboard.ParseChart(mux.Vars(r)["chart"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	rows, err := h.source.LoadEnriched()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	view, ok := h.resolve(w, r, rows)
	if !ok {
		return
	}

	lines, err := dashboard.Series(dashboard.FilterRows(rows, view.From, view.To, view.Display), view.Display, chart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chart": chart,
		"view":  view,
		"lines": lines,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// summary reads through the cache when one is configured. Cache errors
// are logged and the source is used instead.
func (h *Handler) summary(ctx context.Context) ([]models.SummaryRecord, error) {
	if h.cache != nil {
		rows, ok, err := h.cache.Get(ctx)
		if err != nil {
			h.log.Warn("summary cache read failed", "error", err)
		} else if ok {
			return rows, nil
		}
	}

	rows, err := h.source.LoadSummary()
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, rows); err != nil {
			h.log.Warn("summary cache write failed", "error", err)
		}
	}
	return rows, nil
}

// resolve parses the filter query and writes a 400 on failure
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, rows []models.EnrichedObservation) (dashboard.View, bool) {
	f, err := parseFilter(r.URL.Query(), dashboard.Companies(rows))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dashboard.View{}, false
	}
	view, err := dashboard.Resolve(f, rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return dashboard.View{}, false
	}
	return view, true
}

var errBadDate = errors.New("invalid date")

// parseFilter reads companies, active, from and to. An absent companies
// parameter selects the default companies; an empty one selects nothing.
func parseFilter(q url.Values, available []string) (dashboard.Filter, error) {
	var f dashboard.Filter
	if _, ok := q["companies"]; ok {
		f.Companies = listParam(q, "companies")
	} else {
		f.Companies = defaultSelection(available)
	}
	f.Active = listParam(q, "active")

	var err error
	if f.From, err = dateParam(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = dateParam(q, "to"); err != nil {
		return f, err
	}
	return f, nil
}

// listParam accepts both repeated and comma-separated values
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func dateParam(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := table.ParseDate(v)
	if err != nil {
		return time.Time{}, errors.Join(errBadDate, err)
	}
	return t, nil
}

// defaultSelection keeps the default companies present in the data
func defaultSelection(available []string) []string {
	have := make(map[string]bool, len(available))
	for _, c := range available {
		have[c] = true
	}
	var out []string
	for _, c := range dashboard.DefaultCompanies {
		if have[c] {
			out = append(out, c)
		}
	}
	return out
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Package dashboard turns the enriched and summary tables into the views
// shown to a user: the selection filter, KPI tiles, the watchlist and the
// chart series.
package dashboard

import (
	"errors"
	"sort"
	"time"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// DefaultRangeDays is the length of the initial date range
const DefaultRangeDays = 365

var (
	// ErrNoSelection is returned when a request selects no company
	ErrNoSelection = errors.New("select at least one stock")

	// ErrInvalidRange is returned when From is after To
	ErrInvalidRange = errors.New("start date is after end date")
)

// DefaultCompanies is the initial selection when a request names none
var DefaultCompanies = []string{"Apple", "Microsoft", "NVIDIA", "S&P 500"}

// Filter is one request's selection. Zero dates mean the default range.
type Filter struct {
	From      time.Time
	To        time.Time
	Companies []string
	Active    []string
}

// View is a resolved Filter. Display is the set charts and the summary
// table are drawn for: the active subset when one exists, otherwise the
// whole selection.
type View struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Selected []string  `json:"selected"`
	Active   []string  `json:"active"`
	Display  []string  `json:"display"`
}

// Filtering reports whether an active subset narrows the display
func (v View) Filtering() bool {
	return len(v.Active) > 0
}

// Companies lists the distinct company names in rows, sorted
func Companies(rows []models.EnrichedObservation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Company] {
			seen[r.Company] = true
			out = append(out, r.Company)
		}
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the first and last date present in rows
func DateBounds(rows []models.EnrichedObservation) (first, last time.Time) {
	for i, r := range rows {
		if i == 0 || r.Date.Before(first) {
			first = r.Date
		}
		if i == 0 || r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}

// DefaultRange is the last DefaultRangeDays days ending at the newest
// date, never starting before the oldest date
func DefaultRange(rows []models.EnrichedObservation) (from, to time.Time) {
	first, last := DateBounds(rows)
	from = last.AddDate(0, 0, -DefaultRangeDays)
	if from.Before(first) {
		from = first
	}
	return from, last
}

// Resolve validates f against the data and fills in defaults
func Resolve(f Filter, rows []models.EnrichedObservation) (View, error) {
	selected := unique(f.Companies)
	if len(selected) == 0 {
		return View{}, ErrNoSelection
	}

	defFrom, defTo := DefaultRange(rows)
	v := View{From: f.From, To: f.To, Selected: selected}
	if v.From.IsZero() {
		v.From = defFrom
	}
	if v.To.IsZero() {
		v.To = defTo
	}
	if v.From.After(v.To) {
		return View{}, ErrInvalidRange
	}

	// active filters outside the selection are dropped
	active := make(map[string]bool, len(f.Active))
	for _, a := range f.Active {
		active[a] = true
	}
	for _, s := range selected {
		if active[s] {
			v.Active = append(v.Active, s)
		}
	}

	if len(v.Active) > 0 {
		v.Display = v.Active
	} else {
		v.Display = selected
	}
	return v, nil
}

// FilterRows keeps rows of the given companies dated within [from, to]
func FilterRows(rows []models.EnrichedObservation, from, to time.Time, companies []string) []models.EnrichedObservation {
	want := make(map[string]bool, len(companies))
	for _, c := range companies {
		want[c] = true
	}
	var out []models.EnrichedObservation
	for _, r := range rows {
		if !want[r.Company] || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

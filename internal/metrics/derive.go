package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// DeriveMetrics sorts the raw table by (ticker, date) and computes the
// derived series of every ticker independently. Values at a given row only
// depend on rows of the same ticker at or before its date.
func DeriveMetrics(raw []models.Observation) ([]models.EnrichedObservation, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}

	sorted := make([]models.Observation, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Ticker != sorted[j].Ticker {
			return sorted[i].Ticker < sorted[j].Ticker
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	enriched := make([]models.EnrichedObservation, 0, len(sorted))
	for _, part := range partition(sorted) {
		enriched = append(enriched, derivePartition(part)...)
	}
	return enriched, nil
}

func validate(raw []models.Observation) error {
	seen := make(map[string]int, len(raw))
	for i, o := range raw {
		row := i + 1
		switch {
		case o.Ticker == "":
			return &MalformedInputError{Column: "Ticker", Row: row, Reason: "empty ticker"}
		case o.Date.IsZero():
			return &MalformedInputError{Column: "Date", Row: row, Reason: "missing date"}
		case math.IsNaN(o.Close) || math.IsInf(o.Close, 0):
			return &MalformedInputError{Column: "Close", Row: row, Reason: "not a finite number"}
		case o.Close <= 0:
			return &MalformedInputError{Column: "Close", Row: row, Reason: fmt.Sprintf("non-positive close %v", o.Close)}
		}

		key := o.Ticker + "|" + o.Date.Format("2006-01-02")
		if first, ok := seen[key]; ok {
			return &MalformedInputError{Column: "Date", Row: row,
				Reason: fmt.Sprintf("duplicate observation for %s on %s (first at row %d)", o.Ticker, o.Date.Format("2006-01-02"), first)}
		}
		seen[key] = row
	}
	return nil
}

// partition splits a (ticker, date) sorted table into one slice per ticker
func partition(sorted []models.Observation) [][]models.Observation {
	var parts [][]models.Observation
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i == len(sorted) || sorted[i].Ticker != sorted[start].Ticker {
			parts = append(parts, sorted[start:i])
			start = i
		}
	}
	return parts
}

// derivePartition computes the derived series for one ticker whose rows are
// in ascending date order.
func derivePartition(obs []models.Observation) []models.EnrichedObservation {
	closes := make([]float64, len(obs))
	for i, o := range obs {
		closes[i] = o.Close
	}

	returns := make([]float64, len(obs))
	for i := range closes {
		if i == 0 {
			returns[i] = math.NaN()
			continue
		}
		returns[i] = percentChange(closes[i], closes[i-1])
	}

	anchor := closes[0]
	out := make([]models.EnrichedObservation, len(obs))
	for i, o := range obs {
		e := models.EnrichedObservation{
			Observation:      o,
			DailyReturn:      returns[i],
			CumulativeReturn: percentChange(closes[i], anchor),
			MA50:             trailingMean(closes, i, models.WindowMA50),
			MA200:            trailingMean(closes, i, models.WindowMA200),
			Volatility30D:    trailingStdDev(returns, i, models.WindowVolatility),
		}
		setCalendar(&e)
		out[i] = e
	}
	return out
}

func setCalendar(e *models.EnrichedObservation) {
	year, month, _ := e.Date.Date()
	e.Year = year
	e.Month = int(month)
	e.Quarter = (int(month)-1)/3 + 1
	e.YearMonth = e.Date.Format("2006-01")
}

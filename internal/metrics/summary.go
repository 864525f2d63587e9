package metrics

import (
	"math"
	"math/big"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// CurrentYear returns the latest calendar year present in the table, or 0
// for an empty table. It is computed once per run and handed to Summarize so
// that every ticker's YTD return is measured against the same year.
func CurrentYear(rows []models.EnrichedObservation) int {
	year := 0
	for _, r := range rows {
		if y := r.Date.Year(); y > year {
			year = y
		}
	}
	return year
}

// Summarize builds one record per ticker, ordered by one-year return
// descending. A ticker without rows in currentYear gets a YTD return of 0.
func Summarize(rows []models.EnrichedObservation, currentYear int) ([]models.SummaryRecord, error) {
	groups, err := groupByTicker(rows)
	if err != nil {
		return nil, err
	}

	summary := make([]models.SummaryRecord, 0, len(groups))
	for _, g := range groups {
		latest := g[len(g)-1]
		if !isFinite(latest.CumulativeReturn) {
			return nil, &MalformedInputError{Column: "Cumulative_Return", Reason: "not a finite number for " + latest.Ticker}
		}

		summary = append(summary, models.SummaryRecord{
			Ticker:        latest.Ticker,
			Company:       latest.Company,
			LatestPrice:   round2(latest.Close),
			YTDReturn:     round2(ytdReturn(g, currentYear)),
			OneYearReturn: round2(latest.CumulativeReturn),
			AvgVolume:     meanVolume(g),
			Volatility30D: roundNull2(latest.Volatility30D),
			LatestDate:    latest.Date,
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		if c := summary[i].OneYearReturn.Cmp(summary[j].OneYearReturn); c != 0 {
			return c > 0
		}
		return summary[i].Ticker < summary[j].Ticker
	})
	return summary, nil
}

// groupByTicker returns the rows of each ticker in ascending date order,
// tickers in lexical order.
func groupByTicker(rows []models.EnrichedObservation) ([][]models.EnrichedObservation, error) {
	byTicker := make(map[string][]models.EnrichedObservation)
	for i, r := range rows {
		if r.Ticker == "" {
			return nil, &MalformedInputError{Column: "Ticker", Row: i + 1, Reason: "empty ticker"}
		}
		if !isFinite(r.Close) || r.Close <= 0 {
			return nil, &MalformedInputError{Column: "Close", Row: i + 1, Reason: "close must be a positive number"}
		}
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	groups := make([][]models.EnrichedObservation, 0, len(tickers))
	for _, t := range tickers {
		g := byTicker[t]
		sort.SliceStable(g, func(i, j int) bool { return g[i].Date.Before(g[j].Date) })
		groups = append(groups, g)
	}
	return groups, nil
}

// ytdReturn compares the last and first close within year
func ytdReturn(rows []models.EnrichedObservation, year int) float64 {
	first, last := -1, -1
	for i, r := range rows {
		if r.Date.Year() != year {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return 0
	}
	return percentChange(rows[last].Close, rows[first].Close)
}

// meanVolume is the full-history mean volume, truncated toward zero
func meanVolume(rows []models.EnrichedObservation) int64 {
	volumes := make(stats.Float64Data, len(rows))
	for i, r := range rows {
		volumes[i] = float64(r.Volume)
	}
	m, err := stats.Mean(volumes)
	if err != nil {
		return 0
	}
	return int64(m)
}

// round2 rounds the exact binary value of f to two places with ties to
// even, so 2.675 (stored as 2.67499...) becomes 2.67
func round2(f float64) decimal.Decimal {
	exact := new(big.Float).SetFloat64(f).Text('f', 64)
	return decimal.RequireFromString(exact).RoundBank(2)
}

func roundNull2(f float64) decimal.NullDecimal {
	if !isFinite(f) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(round2(f))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

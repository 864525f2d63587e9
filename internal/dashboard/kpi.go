package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// Leader names the company holding an extreme value
type Leader struct {
	Company string          `json:"company"`
	Ticker  string          `json:"ticker"`
	Value   decimal.Decimal `json:"value"`
}

// KPISet holds the four headline tiles. Nil or invalid fields render as
// "N/A".
type KPISet struct {
	BestPerformer     *Leader             `json:"best_performer"`
	AverageReturn     decimal.NullDecimal `json:"average_return_pct"`
	Benchmark         decimal.NullDecimal `json:"benchmark_return_pct"`
	HighestVolatility *Leader             `json:"highest_volatility"`
}

// BenchmarkText formats the benchmark tile
func (k KPISet) BenchmarkText() string {
	if !k.Benchmark.Valid {
		return "N/A"
	}
	return k.Benchmark.Decimal.StringFixed(2) + "%"
}

// KPIs computes the headline tiles over the full summary: best one-year
// return, mean one-year return excluding the benchmark, the benchmark's
// one-year return, and the highest 30-day volatility
func KPIs(summary []models.SummaryRecord, benchmarkTicker string) KPISet {
	var k KPISet
	var others []decimal.Decimal

	for i := range summary {
		s := summary[i]
		if k.BestPerformer == nil || s.OneYearReturn.GreaterThan(k.BestPerformer.Value) {
			k.BestPerformer = &Leader{Company: s.Company, Ticker: s.Ticker, Value: s.OneYearReturn}
		}
		if s.Volatility30D.Valid &&
			(k.HighestVolatility == nil || s.Volatility30D.Decimal.GreaterThan(k.HighestVolatility.Value)) {
			k.HighestVolatility = &Leader{Company: s.Company, Ticker: s.Ticker, Value: s.Volatility30D.Decimal}
		}
		if s.Ticker == benchmarkTicker {
			k.Benchmark = decimal.NewNullDecimal(s.OneYearReturn)
			continue
		}
		others = append(others, s.OneYearReturn)
	}

	if len(others) > 0 {
		k.AverageReturn = decimal.NewNullDecimal(decimal.Avg(others[0], others[1:]...).Round(2))
	}
	return k
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryRecord is the one-row-per-ticker snapshot shown on the dashboard
type SummaryRecord struct {
	Ticker        string              `json:"ticker"`
	Company       string              `json:"company"`
	LatestPrice   decimal.Decimal     `json:"latest_price"`
	YTDReturn     decimal.Decimal     `json:"ytd_return_pct"`
	OneYearReturn decimal.Decimal     `json:"one_year_return_pct"`
	AvgVolume     int64               `json:"avg_volume"`
	Volatility30D decimal.NullDecimal `json:"volatility_30d_pct"`
	LatestDate    time.Time           `json:"latest_date"`
}

// RunResult describes a completed metrics rebuild
type RunResult struct {
	Rows        int       `json:"rows"`
	Tickers     []string  `json:"tickers"`
	CurrentYear int       `json:"current_year"`
	LatestDate  time.Time `json:"latest_date"`
}

package models

import "time"

// Observation represents one daily OHLCV bar for a ticker
type Observation struct {
	Date    time.Time `json:"date"`
	Open    float64   `json:"open"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Close   float64   `json:"close"`
	Volume  int64     `json:"volume"`
	Ticker  string    `json:"ticker"`
	Company string    `json:"company"`
}

// Bar is a daily aggregate as returned by a data provider, before the
// ticker and display name are attached.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Security pairs a ticker symbol with its display name
type Security struct {
	Ticker  string `json:"ticker"`
	Company string `json:"company"`
}

// DefaultSecurities is the ticker universe fetched when none is configured
var DefaultSecurities = []Security{
	{Ticker: "AAPL", Company: "Apple"},
	{Ticker: "MSFT", Company: "Microsoft"},
	{Ticker: "GOOGL", Company: "Google"},
	{Ticker: "AMZN", Company: "Amazon"},
	{Ticker: "NVDA", Company: "NVIDIA"},
	{Ticker: "META", Company: "Meta"},
	{Ticker: "TSLA", Company: "Tesla"},
	{Ticker: "^GSPC", Company: "S&P 500"},
}

// BenchmarkTicker is the index the dashboard compares the other tickers against
const BenchmarkTicker = "^GSPC"

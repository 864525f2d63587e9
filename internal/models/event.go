package models

import "time"

// Pipeline event type constants
const (
	EventPricesFetched  = "PRICES_FETCHED"
	EventMetricsRebuilt = "METRICS_REBUILT"
)

// PipelineEvent is published to Kafka when a pipeline stage completes
type PipelineEvent struct {
	EventType   string    `json:"event_type"`
	Source      string    `json:"source,omitempty"`
	Tickers     []string  `json:"tickers,omitempty"`
	Failed      []string  `json:"failed,omitempty"`
	Rows        int       `json:"rows"`
	CurrentYear int       `json:"current_year,omitempty"`
	LatestDate  string    `json:"latest_date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

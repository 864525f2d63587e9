package saver

import (
	"strings"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// TableSaver persists and reloads the two pipeline output tables in one
// file format. The pipeline writes through it and the dashboard reads
// through it, so both sides always agree on the encoding.
type TableSaver interface {
	Extension() string
	SaveEnriched(rows []models.EnrichedObservation, path string) error
	SaveSummary(rows []models.SummaryRecord, path string) error
	LoadEnriched(path string) ([]models.EnrichedObservation, error)
	LoadSummary(path string) ([]models.SummaryRecord, error)
}

// New creates the implementation for format (csv, parquet, json).
// Returns nil if format is not supported.
func New(format string) TableSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

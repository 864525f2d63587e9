package saver

import (
	"io"
	"os"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// CSVSaver stores tables as header-first CSV, the format the dashboard
// and spreadsheet users expect.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) SaveEnriched(rows []models.EnrichedObservation, path string) error {
	return table.WriteFile(path, func(w io.Writer) error {
		return table.WriteEnriched(w, rows)
	})
}

func (CSVSaver) SaveSummary(rows []models.SummaryRecord, path string) error {
	return table.WriteFile(path, func(w io.Writer) error {
		return table.WriteSummary(w, rows)
	})
}

func (CSVSaver) LoadEnriched(path string) ([]models.EnrichedObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.ReadEnriched(f)
}

func (CSVSaver) LoadSummary(path string) ([]models.SummaryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.ReadSummary(f)
}

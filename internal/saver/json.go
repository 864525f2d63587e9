package saver

import (
	"encoding/json"
	"io"
	"os"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// JSONSaver stores tables as an indented JSON array
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) SaveEnriched(rows []models.EnrichedObservation, path string) error {
	return saveJSON(rows, path)
}

func (JSONSaver) SaveSummary(rows []models.SummaryRecord, path string) error {
	return saveJSON(rows, path)
}

func (JSONSaver) LoadEnriched(path string) ([]models.EnrichedObservation, error) {
	var rows []models.EnrichedObservation
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (JSONSaver) LoadSummary(path string) ([]models.SummaryRecord, error) {
	var rows []models.SummaryRecord
	if err := loadJSON(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func saveJSON(v any, path string) error {
	return table.WriteFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

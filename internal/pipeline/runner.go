// Package pipeline wires acquisition, metric derivation and the output
// tables together with the optional database, cache and event stream.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/config"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/metrics"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/saver"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/slogx"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// Store is the database surface the pipeline writes through
type Store interface {
	UpsertPriceDataBatch(obs []models.Observation) error
	DeletePriceDataOlderThan(date time.Time) (int64, error)
	GetAllPriceData() ([]models.Observation, error)
	ReplaceMetrics(enriched []models.EnrichedObservation, summary []models.SummaryRecord) error
}

// Publisher announces pipeline progress
type Publisher interface {
	PublishPricesFetched(ctx context.Context, provider string, tickers, failed []string, rows int) error
	PublishMetricsRebuilt(ctx context.Context, res models.RunResult) error
}

// Invalidator drops cached copies of the summary table
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Runner executes the pipeline stages. Store, Publisher and Cache are
// optional; a nil value skips that step.
type Runner struct {
	Config    config.PipelineConfig
	Saver     saver.TableSaver
	Store     Store
	Publisher Publisher
	Cache     Invalidator
	Logger    *slog.Logger

	// Out receives the console report after a rebuild; nil disables it
	Out io.Writer
	// Styled renders the report for a terminal instead of plain markdown
	Styled bool
	// RawFromStore reads the raw table from the database instead of the raw file
	RawFromStore bool
}

func (r *Runner) log() *slog.Logger {
	return slogx.OrDefault(r.Logger)
}

// Rebuild derives both output tables from the raw table and replaces them.
// A malformed raw table aborts the run before anything is written.
func (r *Runner) Rebuild(ctx context.Context) (models.RunResult, error) {
	log := r.log()
	start := time.Now()

	raw, err := r.loadRaw()
	if err != nil {
		return models.RunResult{}, err
	}

	enriched, err := metrics.DeriveMetrics(raw)
	if err != nil {
		return models.RunResult{}, fmt.Errorf("failed to derive metrics: %w", err)
	}
	year := metrics.CurrentYear(enriched)
	summary, err := metrics.Summarize(enriched, year)
	if err != nil {
		return models.RunResult{}, fmt.Errorf("failed to summarize: %w", err)
	}

	ext := r.Saver.Extension()
	if err := r.saveTables(enriched, summary, ext); err != nil {
		return models.RunResult{}, err
	}

	res := models.RunResult{
		Rows:        len(enriched),
		Tickers:     tickers(summary),
		CurrentYear: year,
	}
	for _, s := range summary {
		if s.LatestDate.After(res.LatestDate) {
			res.LatestDate = s.LatestDate
		}
	}

	if r.Store != nil {
		if err := r.Store.ReplaceMetrics(enriched, summary); err != nil {
			return res, fmt.Errorf("failed to store metrics: %w", err)
		}
	}

	// the files are already replaced, so the steps below only warn
	if r.Cache != nil {
		if err := r.Cache.Invalidate(ctx); err != nil {
			log.Warn("Failed to invalidate summary cache", "error", err)
		}
	}
	if r.Publisher != nil {
		if err := r.Publisher.PublishMetricsRebuilt(ctx, res); err != nil {
			log.Warn("Failed to publish rebuild event", "error", err)
		}
	}

	log.Info("Metrics rebuilt",
		"rows", res.Rows,
		"tickers", len(res.Tickers),
		"current_year", year,
		"format", ext,
		"duration", time.Since(start).Round(time.Millisecond))

	if r.Out != nil {
		if err := WriteReport(r.Out, summary, res, r.Styled); err != nil {
			log.Warn("Failed to print report", "error", err)
		}
	}
	return res, nil
}

// saveTables writes both tables to staging files next to their targets
// and renames them into place only after both writes succeeded, so a failed
// run never leaves a new enriched table beside an old summary
func (r *Runner) saveTables(enriched []models.EnrichedObservation, summary []models.SummaryRecord, ext string) error {
	cleaned, summaryPath := r.Config.CleanedPath(ext), r.Config.SummaryPath(ext)
	cleanedTmp, summaryTmp := stagingPath(cleaned), stagingPath(summaryPath)
	defer os.Remove(cleanedTmp)
	defer os.Remove(summaryTmp)

	if err := r.Saver.SaveEnriched(enriched, cleanedTmp); err != nil {
		return err
	}
	if err := r.Saver.SaveSummary(summary, summaryTmp); err != nil {
		return err
	}
	if err := os.Rename(cleanedTmp, cleaned); err != nil {
		return fmt.Errorf("failed to replace %s: %w", cleaned, err)
	}
	if err := os.Rename(summaryTmp, summaryPath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", summaryPath, err)
	}
	return nil
}

func stagingPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".staged")
}

func (r *Runner) loadRaw() ([]models.Observation, error) {
	if r.RawFromStore {
		if r.Store == nil {
			return nil, fmt.Errorf("raw input from database requested but no database is configured")
		}
		raw, err := r.Store.GetAllPriceData()
		if err != nil {
			return nil, fmt.Errorf("failed to load raw prices: %w", err)
		}
		return raw, nil
	}
	return table.ReadRawFile(r.Config.RawPath())
}

func tickers(summary []models.SummaryRecord) []string {
	out := make([]string, len(summary))
	for i, s := range summary {
		out[i] = s.Ticker
	}
	return out
}

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/fetch"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// Acquire downloads the trailing window for securities and replaces the raw
// table. When a store is configured the rows are upserted and prices older
// than the window are pruned.
func (r *Runner) Acquire(ctx context.Context, f *fetch.Fetcher, securities []models.Security, now time.Time) (fetch.Report, error) {
	log := r.log()
	from, to := fetch.Window(now, r.Config.LookbackDays)

	obs, report, err := f.Fetch(ctx, securities, from, to)
	if err != nil {
		return report, fmt.Errorf("failed to fetch prices: %w", err)
	}

	path := r.Config.RawPath()
	if err := table.WriteFile(path, func(w io.Writer) error {
		return table.WriteRaw(w, obs)
	}); err != nil {
		return report, err
	}
	log.Info("Raw prices written", "path", path, "rows", len(obs),
		"succeeded", len(report.Succeeded), "failed", len(report.Failed))

	if r.Store != nil {
		if err := r.Store.UpsertPriceDataBatch(obs); err != nil {
			return report, fmt.Errorf("failed to store prices: %w", err)
		}
		pruned, err := r.Store.DeletePriceDataOlderThan(from)
		if err != nil {
			log.Warn("Failed to prune old prices", "error", err)
		} else if pruned > 0 {
			log.Info("Pruned old prices", "rows", pruned)
		}
	}

	if r.Publisher != nil {
		if err := r.Publisher.PublishPricesFetched(ctx, report.Provider, report.Succeeded, report.FailedTickers(), report.Rows); err != nil {
			log.Warn("Failed to publish fetch event", "error", err)
		}
	}
	return report, nil
}

package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/slogx"
)

// Failure records why one symbol was skipped
type Failure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Report describes the outcome of one acquisition run
type Report struct {
	Provider  string    `json:"provider"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed,omitempty"`
	Rows      int       `json:"rows"`
}

// FailedTickers lists the symbols that were skipped
func (r Report) FailedTickers() []string {
	out := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		out[i] = f.Ticker
	}
	return out
}

// Fetcher downloads a ticker universe through a Provider with a small
// worker pool
type Fetcher struct {
	Provider Provider
	Workers  int
	// BackOff builds a fresh retry policy per symbol; DefaultBackOff when nil
	BackOff func() backoff.BackOff
	Logger  *slog.Logger
}

type job struct {
	index int
	sec   models.Security
}

type result struct {
	index int
	sec   models.Security
	obs   []models.Observation
	err   error
}

// Fetch downloads every security over [from, to]. Failed or empty symbols
// are logged and skipped; the error is ErrAllSymbolsFailed only when no
// symbol produced a row. Rows are sorted by (ticker, date) with at most one
// row per (ticker, date).
func (f *Fetcher) Fetch(ctx context.Context, securities []models.Security, from, to time.Time) ([]models.Observation, Report, error) {
	log := slogx.OrDefault(f.Logger)
	report := Report{Provider: f.Provider.Name(), From: from, To: to}

	workers := f.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(securities) {
		workers = len(securities)
	}

	jobs := make(chan job, len(securities))
	for i, s := range securities {
		jobs <- job{index: i, sec: s}
	}
	close(jobs)

	results := make(chan result, len(securities))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- result{index: j.index, sec: j.sec, err: ctx.Err()}
					continue
				}
				obs, err := f.fetchOne(ctx, j.sec, from, to)
				results <- result{index: j.index, sec: j.sec, obs: obs, err: err}
			}
		}()
	}
	wg.Wait()
	close(results)

	// collect in universe order so logs and the report are stable
	ordered := make([]result, len(securities))
	for r := range results {
		ordered[r.index] = r
	}

	var all []models.Observation
	for _, r := range ordered {
		if r.err != nil {
			log.Warn("fetch failed, skipping", "ticker", r.sec.Ticker, "reason", r.err)
			report.Failed = append(report.Failed, Failure{Ticker: r.sec.Ticker, Reason: r.err.Error()})
			continue
		}
		log.Info("fetch ok", "ticker", r.sec.Ticker, "company", r.sec.Company, "rows", len(r.obs))
		report.Succeeded = append(report.Succeeded, r.sec.Ticker)
		all = append(all, r.obs...)
	}

	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	all = normalize(all)
	report.Rows = len(all)
	if len(all) == 0 {
		return nil, report, ErrAllSymbolsFailed
	}
	return all, report, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, sec models.Security, from, to time.Time) ([]models.Observation, error) {
	policy := DefaultBackOff
	if f.BackOff != nil {
		policy = f.BackOff
	}
	log := slogx.OrDefault(f.Logger)

	var bars []models.Bar
	op := func() error {
		var err error
		bars, err = f.Provider.FetchDaily(ctx, sec.Ticker, from, to)
		return classify(err)
	}
	notify := func(err error, wait time.Duration) {
		log.Debug("fetch retry", "ticker", sec.Ticker, "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(policy(), ctx), notify); err != nil {
		return nil, err
	}

	obs := make([]models.Observation, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		obs = append(obs, models.Observation{
			Date:    truncateDay(b.Timestamp),
			Open:    b.Open,
			High:    b.High,
			Low:     b.Low,
			Close:   b.Close,
			Volume:  b.Volume,
			Ticker:  sec.Ticker,
			Company: sec.Company,
		})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%s: %w", sec.Ticker, ErrNoData)
	}
	return obs, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// normalize sorts by (ticker, date) and keeps the last bar seen for a
// repeated (ticker, date)
func normalize(obs []models.Observation) []models.Observation {
	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Ticker != obs[j].Ticker {
			return obs[i].Ticker < obs[j].Ticker
		}
		return obs[i].Date.Before(obs[j].Date)
	})
	out := obs[:0]
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Ticker == o.Ticker && out[n-1].Date.Equal(o.Date) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}
	return out
}

package fetch

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// YahooProvider fetches daily bars from the Yahoo Finance chart API
type YahooProvider struct{}

// NewYahooProvider creates a YahooProvider
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{}
}

func (YahooProvider) Name() string { return "yahoo" }

func (YahooProvider) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: datetime.OneDay,
	}

	var bars []models.Bar
	iter := chart.Get(params)
	for iter.Next() {
		bars = append(bars, barFromChart(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

func barFromChart(b *finance.ChartBar) models.Bar {
	return models.Bar{
		Timestamp: time.Unix(int64(b.Timestamp), 0).UTC(),
		Open:      b.Open.InexactFloat64(),
		High:      b.High.InexactFloat64(),
		Low:       b.Low.InexactFloat64(),
		Close:     b.Close.InexactFloat64(),
		Volume:    int64(b.Volume),
	}
}

package fetch

import (
	"context"
	"errors"
	"net/http"
	"time"

	polygonrest "github.com/polygon-io/client-go/rest"
	rmodels "github.com/polygon-io/client-go/rest/models"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

const polygonLimit = 50000

// polygonSymbols maps index tickers to Polygon's naming
var polygonSymbols = map[string]string{
	"^GSPC": "I:SPX",
	"^DJI":  "I:DJI",
	"^IXIC": "I:COMP",
}

// PolygonProvider fetches daily aggregates from the Polygon REST API
type PolygonProvider struct {
	rest *polygonrest.Client
}

// NewPolygonProvider creates a provider over the Polygon REST client.
// Retries are left to the Fetcher's backoff policy.
func NewPolygonProvider(apiKey string) *PolygonProvider {
	rest := polygonrest.NewWithClient(apiKey, &http.Client{Timeout: 2 * time.Minute})
	rest.HTTP.SetRetryCount(0)
	return &PolygonProvider{rest: rest}
}

// SetBaseURL points the client at another API host
func (p *PolygonProvider) SetBaseURL(url string) {
	p.rest.HTTP.SetBaseURL(url)
}

func (p *PolygonProvider) Name() string { return "polygon" }

// FetchDaily lists adjusted daily aggregates; the client follows next_url
// pages until the range is exhausted
func (p *PolygonProvider) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if s, ok := polygonSymbols[symbol]; ok {
		symbol = s
	}

	params := &rmodels.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   rmodels.Day,
		From:       rmodels.Millis(from),
		To:         rmodels.Millis(to),
	}
	limit := polygonLimit
	asc := rmodels.Asc
	adjusted := true
	params.Limit = &limit
	params.Order = &asc
	params.Adjusted = &adjusted

	var bars []models.Bar
	iter := p.rest.ListAggs(ctx, params)
	for iter.Next() {
		a := iter.Item()
		bars = append(bars, models.Bar{
			Timestamp: time.Time(a.Timestamp).UTC(),
			Open:      a.Open,
			High:      a.High,
			Low:       a.Low,
			Close:     a.Close,
			Volume:    int64(a.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, polygonError(err)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// polygonError converts the client's HTTP error into a StatusError so the
// retry policy can classify it
func polygonError(err error) error {
	var res *rmodels.ErrorResponse
	if errors.As(err, &res) && res.StatusCode != 0 {
		return &StatusError{Code: res.StatusCode, Body: res.Error()}
	}
	return err
}

package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

var (
	// ErrNoData is returned by a provider that answered but had no bars
	ErrNoData = errors.New("no data returned")

	// ErrAllSymbolsFailed means acquisition produced no rows at all
	ErrAllSymbolsFailed = errors.New("no symbol could be fetched")
)

// Provider is a source of daily bars for one symbol at a time
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}

// NewProvider creates the provider for name (yahoo, polygon).
// Returns nil if name is not supported.
func NewProvider(name, polygonAPIKey string) Provider {
	switch name {
	case "yahoo", "":
		return NewYahooProvider()
	case "polygon":
		return NewPolygonProvider(polygonAPIKey)
	default:
		return nil
	}
}

// Window returns the trailing acquisition range ending at now
func Window(now time.Time, lookbackDays int) (from, to time.Time) {
	return now.AddDate(0, 0, -lookbackDays), now
}

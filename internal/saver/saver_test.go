package saver

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/metrics"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

func fixture(t *testing.T) ([]models.EnrichedObservation, []models.SummaryRecord) {
	t.Helper()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	var raw []models.Observation
	for i, c := range []float64{100, 110, 121} {
		raw = append(raw, models.Observation{
			Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000, Ticker: "X", Company: "Example Corp",
		})
	}
	raw = append(raw, models.Observation{
		Date: start, Open: 5, High: 5, Low: 5, Close: 5, Volume: 10, Ticker: "ONE", Company: "Single",
	})

	enriched, err := metrics.DeriveMetrics(raw)
	require.NoError(t, err)
	summary, err := metrics.Summarize(enriched, metrics.CurrentYear(enriched))
	require.NoError(t, err)
	return enriched, summary
}

func TestNew(t *testing.T) {
	assert.IsType(t, CSVSaver{}, New(""))
	assert.IsType(t, CSVSaver{}, New("CSV"))
	assert.IsType(t, ParquetSaver{}, New("parquet"))
	assert.IsType(t, JSONSaver{}, New(" json "))
	assert.Nil(t, New("xlsx"))
}

func TestSaversRoundTrip(t *testing.T) {
	enriched, summary := fixture(t)

	for _, format := range []string{"csv", "parquet", "json"} {
		t.Run(format, func(t *testing.T) {
			s := New(format)
			require.NotNil(t, s)
			assert.Equal(t, format, s.Extension())

			dir := t.TempDir()
			enrichedPath := filepath.Join(dir, "enriched."+s.Extension())
			summaryPath := filepath.Join(dir, "summary."+s.Extension())

			require.NoError(t, s.SaveEnriched(enriched, enrichedPath))
			require.NoError(t, s.SaveSummary(summary, summaryPath))

			gotEnriched, err := s.LoadEnriched(enrichedPath)
			require.NoError(t, err)
			require.Len(t, gotEnriched, len(enriched))
			for i := range enriched {
				want, got := enriched[i], gotEnriched[i]
				assert.Equal(t, want.Ticker, got.Ticker)
				assert.True(t, want.Date.Equal(got.Date), "date at %d", i)
				assert.InDelta(t, want.Close, got.Close, 1e-9)
				assert.InDelta(t, want.CumulativeReturn, got.CumulativeReturn, 1e-9)
				assert.Equal(t, want.HasDailyReturn(), got.HasDailyReturn(), "daily return at %d", i)
				assert.Equal(t, want.HasVolatility(), got.HasVolatility(), "volatility at %d", i)
				assert.Equal(t, want.YearMonth, got.YearMonth)
			}
			assert.True(t, math.IsNaN(gotEnriched[0].DailyReturn))

			gotSummary, err := s.LoadSummary(summaryPath)
			require.NoError(t, err)
			require.Len(t, gotSummary, len(summary))
			for i := range summary {
				assert.Equal(t, summary[i].Ticker, gotSummary[i].Ticker)
				assert.True(t, summary[i].OneYearReturn.Equal(gotSummary[i].OneYearReturn),
					"%s != %s", summary[i].OneYearReturn, gotSummary[i].OneYearReturn)
				assert.Equal(t, summary[i].Volatility30D.Valid, gotSummary[i].Volatility30D.Valid)
				assert.Equal(t, summary[i].AvgVolume, gotSummary[i].AvgVolume)
				assert.True(t, summary[i].LatestDate.Equal(gotSummary[i].LatestDate))
			}
		})
	}
}

func TestSaveSummaryValues(t *testing.T) {
	_, summary := fixture(t)
	require.Len(t, summary, 2)

	x := summary[0]
	assert.Equal(t, "X", x.Ticker)
	assert.True(t, decimal.NewFromInt(21).Equal(x.OneYearReturn))
	assert.False(t, summary[1].Volatility30D.Valid)
}

func TestLoadMissingFile(t *testing.T) {
	for _, format := range []string{"csv", "parquet", "json"} {
		_, err := New(format).LoadSummary(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err, format)
	}
}

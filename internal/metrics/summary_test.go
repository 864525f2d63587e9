package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentYear(t *testing.T) {
	assert.Equal(t, 0, CurrentYear(nil))

	rows, err := DeriveMetrics(append(
		series("A", day(2023, 12, 28), 1, 2, 3, 4, 5, 6),
		series("B", day(2022, 6, 1), 7)...,
	))
	require.NoError(t, err)
	assert.Equal(t, 2024, CurrentYear(rows))
}

func TestSummarize(t *testing.T) {
	raw := append(series("UP", day(2023, 12, 29), 100, 110, 121, 133.1),
		series("DOWN", day(2023, 12, 29), 50, 40, 30)...)
	raw = append(raw, series("OLD", day(2023, 3, 1), 10, 12)...)

	enriched, err := DeriveMetrics(raw)
	require.NoError(t, err)
	year := CurrentYear(enriched)
	require.Equal(t, 2024, year)

	summary, err := Summarize(enriched, year)
	require.NoError(t, err)
	require.Len(t, summary, 3)

	t.Run("ordered by one-year return descending", func(t *testing.T) {
		assert.Equal(t, "UP", summary[0].Ticker)
		assert.Equal(t, "OLD", summary[1].Ticker)
		assert.Equal(t, "DOWN", summary[2].Ticker)
		for i := 1; i < len(summary); i++ {
			assert.True(t, summary[i-1].OneYearReturn.GreaterThanOrEqual(summary[i].OneYearReturn))
		}
	})

	t.Run("ytd uses the first and last close of the fixed year", func(t *testing.T) {
		up := summary[0]
		// only 2024-01-01 falls in the current year
		assert.True(t, decimal.Zero.Equal(up.YTDReturn), "only one 2024 row, got %s", up.YTDReturn)
		assert.Equal(t, "33.1", up.OneYearReturn.String())
		assert.Equal(t, "133.1", up.LatestPrice.String())
		assert.Equal(t, "UP Inc", up.Company)
		assert.Equal(t, day(2024, 1, 1), up.LatestDate)
	})

	t.Run("ticker absent from current year falls back to zero ytd", func(t *testing.T) {
		old := summary[1]
		assert.True(t, decimal.Zero.Equal(old.YTDReturn))
		assert.Equal(t, "20", old.OneYearReturn.String())
		assert.Equal(t, day(2023, 3, 2), old.LatestDate)
	})

	t.Run("average volume is truncated", func(t *testing.T) {
		// volumes 1000, 2000, 3000, 4000
		assert.Equal(t, int64(2500), summary[0].AvgVolume)
		// volumes 1000, 2000, 3000
		assert.Equal(t, int64(2000), summary[2].AvgVolume)
	})

	t.Run("volatility is rounded to two places", func(t *testing.T) {
		require.True(t, summary[2].Volatility30D.Valid)
		// returns -20 and -25: sample std-dev 3.5355...
		assert.Equal(t, "3.54", summary[2].Volatility30D.Decimal.String())
	})
}

func TestSummarizeYTD(t *testing.T) {
	raw := series("Y", day(2024, 1, 2), 200, 210, 190, 250)
	enriched, err := DeriveMetrics(raw)
	require.NoError(t, err)

	summary, err := Summarize(enriched, 2024)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "25", summary[0].YTDReturn.String())

	t.Run("explicit year with no rows anywhere", func(t *testing.T) {
		summary, err := Summarize(enriched, 2025)
		require.NoError(t, err)
		assert.True(t, decimal.Zero.Equal(summary[0].YTDReturn))
	})
}

func TestSummarizeSingleRowTicker(t *testing.T) {
	enriched, err := DeriveMetrics(series("SOLO", day(2024, 5, 6), 99.999))
	require.NoError(t, err)

	summary, err := Summarize(enriched, CurrentYear(enriched))
	require.NoError(t, err)
	require.Len(t, summary, 1)

	assert.False(t, summary[0].Volatility30D.Valid, "volatility must stay missing, not zero")
	assert.Equal(t, "100", summary[0].LatestPrice.String())
	assert.True(t, decimal.Zero.Equal(summary[0].YTDReturn))
	assert.True(t, decimal.Zero.Equal(summary[0].OneYearReturn))
}

func TestSummarizeRejectsBadRows(t *testing.T) {
	enriched, err := DeriveMetrics(series("BAD", day(2024, 1, 1), 1, 2))
	require.NoError(t, err)
	enriched[1].CumulativeReturn = math.Inf(1)

	_, err = Summarize(enriched, 2024)
	var malformed *MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "Cumulative_Return", malformed.Column)
}

func TestSummarizeEmpty(t *testing.T) {
	summary, err := Summarize(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.675, "2.67"},
		{-2.675, "-2.67"},
		{1.005, "1"},
		{0.125, "0.12"},
		{0.375, "0.38"},
		{-0.125, "-0.12"},
		{33.099999999999994, "33.1"},
		{3.5355339059327378, "3.54"},
		{121, "121"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round2(tt.in).String(), "round2(%v)", tt.in)
	}
}

package table

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/metrics"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

const rawFixture = `Date,Open,High,Low,Close,Volume,Ticker,Company
2024-01-02 00:00:00,99.5,101,98,100,1500000.0,X,Example Corp
2024-01-03 00:00:00,100,111,99,110,1200000,X,Example Corp
2024-01-04,110,122,109,121,1300000,X,Example Corp
`

func TestReadRaw(t *testing.T) {
	rows, err := ReadRaw(strings.NewReader(rawFixture))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 100.0, rows[0].Close)
	assert.Equal(t, 99.5, rows[0].Open)
	assert.Equal(t, int64(1500000), rows[0].Volume)
	assert.Equal(t, "X", rows[2].Ticker)
	assert.Equal(t, "Example Corp", rows[2].Company)
}

func TestReadRawOptionalColumns(t *testing.T) {
	in := "ticker,DATE,close\nAAA,2024-05-01,12.5\n"
	rows, err := ReadRaw(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 12.5, rows[0].Open)
	assert.Equal(t, 12.5, rows[0].High)
	assert.Equal(t, int64(0), rows[0].Volume)
	assert.Equal(t, "AAA", rows[0].Company)
}

func TestReadRawMalformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column string
		row    int
	}{
		{"missing close column", "Date,Ticker\n2024-01-01,A\n", "Close", 0},
		{"missing ticker column", "Date,Close\n2024-01-01,1\n", "Ticker", 0},
		{"missing date column", "Ticker,Close\nA,1\n", "Date", 0},
		{"unparseable date", "Date,Close,Ticker\n2024-01-01,1,A\nyesterday,2,A\n", "Date", 2},
		{"unparseable close", "Date,Close,Ticker\n2024-01-01,abc,A\n", "Close", 1},
		{"empty close", "Date,Close,Ticker\n2024-01-01,,A\n", "Close", 1},
		{"empty file", "", "Date", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRaw(strings.NewReader(tt.input))
			require.Error(t, err)

			var malformed *metrics.MalformedInputError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.column, malformed.Column)
			assert.Equal(t, tt.row, malformed.Row)
		})
	}
}

func TestEnrichedRoundTrip(t *testing.T) {
	raw, err := ReadRaw(strings.NewReader(rawFixture))
	require.NoError(t, err)
	enriched, err := metrics.DeriveMetrics(raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, enriched))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(EnrichedHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-02,99.5,101,98,100,1500000,X,Example Corp,,0,100,100,,2024,1,1,2024-01"),
		"first row: %s", lines[1])

	back, err := ReadEnriched(&buf)
	require.NoError(t, err)
	require.Len(t, back, 3)
	assert.True(t, math.IsNaN(back[0].DailyReturn))
	assert.True(t, math.IsNaN(back[1].Volatility30D))
	assert.Equal(t, enriched[2].MA50, back[2].MA50)
	assert.Equal(t, enriched[2].Volatility30D, back[2].Volatility30D)
	assert.Equal(t, 1, back[2].Quarter)
	assert.Equal(t, "2024-01", back[2].YearMonth)
}

func TestSummaryRoundTrip(t *testing.T) {
	latest := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	rows := []models.SummaryRecord{
		{
			Ticker:        "X",
			Company:       "Example Corp",
			LatestPrice:   decimal.RequireFromString("121"),
			YTDReturn:     decimal.RequireFromString("21"),
			OneYearReturn: decimal.RequireFromString("-3.5"),
			AvgVolume:     1333333,
			Volatility30D: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
			LatestDate:    latest,
		},
		{
			Ticker:      "ONE",
			Company:     "Single, Inc",
			LatestPrice: decimal.RequireFromString("9.99"),
			LatestDate:  latest,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, rows))

	assert.Equal(t, `Ticker,Company,Latest_Price,YTD_Return_%,1Y_Return_%,Avg_Volume,30D_Volatility_%,Latest_Date
X,Example Corp,121.00,21.00,-3.50,1333333,0.50,2024-01-04
ONE,"Single, Inc",9.99,0.00,0.00,0,,2024-01-04
`, buf.String())

	back, err := ReadSummary(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, rows[0].OneYearReturn.Equal(back[0].OneYearReturn))
	assert.True(t, back[0].Volatility30D.Valid)
	assert.False(t, back[1].Volatility30D.Valid)
	assert.Equal(t, "Single, Inc", back[1].Company)
	assert.Equal(t, latest, back[1].LatestDate)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	}))

	err := WriteFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data), "a failed write must not replace the file")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestDeterministicOutput(t *testing.T) {
	build := func() []byte {
		raw, err := ReadRaw(strings.NewReader(rawFixture))
		require.NoError(t, err)
		enriched, err := metrics.DeriveMetrics(raw)
		require.NoError(t, err)
		summary, err := metrics.Summarize(enriched, metrics.CurrentYear(enriched))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, WriteEnriched(&buf, enriched))
		require.NoError(t, WriteSummary(&buf, summary))
		return buf.Bytes()
	}
	assert.Equal(t, build(), build())
}

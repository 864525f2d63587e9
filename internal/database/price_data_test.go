package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

func observation(symbol string, date time.Time, price float64, volume int64) models.Observation {
	return models.Observation{
		Date:    date,
		Open:    price - 1,
		High:    price + 2,
		Low:     price - 2,
		Close:   price,
		Volume:  volume,
		Ticker:  symbol,
		Company: symbol + " Inc",
	}
}

func TestPriceDataRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("UpsertPriceData upserts on conflict", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date, 177.25, 55000000)))
		require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date, 179.00, 60000000)))

		retrieved, err := testDB.GetPriceDataBySymbolAndDate("AAPL", date)
		require.NoError(t, err)
		assert.Equal(t, 179.00, retrieved.Close)
		assert.Equal(t, int64(60000000), retrieved.Volume)
		assert.Equal(t, "AAPL Inc", retrieved.Company)
		assert.Equal(t, date, retrieved.Date)
	})

	t.Run("UpsertPriceDataBatch inserts multiple records", func(t *testing.T) {
		testDB.TruncateAll(t)

		obs := []models.Observation{
			observation("AAPL", date, 177, 50000000),
			observation("AAPL", date.AddDate(0, 0, 1), 178, 51000000),
			observation("MSFT", date, 390.5, 20000000),
		}
		require.NoError(t, testDB.UpsertPriceDataBatch(obs))

		all, err := testDB.GetAllPriceData()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "AAPL", all[0].Ticker)
		assert.Equal(t, "MSFT", all[2].Ticker)
		assert.Equal(t, 390.5, all[2].Close)
	})

	t.Run("GetPriceDataBySymbol orders by date descending", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 5; i++ {
			require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date.AddDate(0, 0, i), 170+float64(i), 1)))
		}

		rows, err := testDB.GetPriceDataBySymbol("AAPL", 3)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, date.AddDate(0, 0, 4), rows[0].Date)
		assert.True(t, rows[0].Date.After(rows[1].Date))
	})

	t.Run("GetPriceDataRange is inclusive", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 10; i++ {
			require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date.AddDate(0, 0, i), 170, 1)))
		}

		rows, err := testDB.GetPriceDataRange("AAPL", date.AddDate(0, 0, 2), date.AddDate(0, 0, 5))
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("GetLatestPriceDate", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.GetLatestPriceDate("AAPL")
		assert.Error(t, err)

		require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date, 170, 1)))
		require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date.AddDate(0, 0, 3), 171, 1)))

		latest, err := testDB.GetLatestPriceDate("AAPL")
		require.NoError(t, err)
		assert.Equal(t, date.AddDate(0, 0, 3), latest)
	})

	t.Run("DeletePriceDataOlderThan", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 4; i++ {
			require.NoError(t, testDB.UpsertPriceData(observation("AAPL", date.AddDate(0, 0, i), 170, 1)))
		}

		n, err := testDB.DeletePriceDataOlderThan(date.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("GetPriceDataBySymbolAndDate not found", func(t *testing.T) {
		testDB.TruncateAll(t)
		_, err := testDB.GetPriceDataBySymbolAndDate("NOPE", date)
		assert.Error(t, err)
	})
}

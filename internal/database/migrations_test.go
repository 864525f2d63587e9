package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		for _, tableName := range []string{"price_data_daily", "enriched_metrics", "summary_stats"} {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("summary_stats table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"symbol":              "character varying",
			"company":             "character varying",
			"latest_price":        "numeric",
			"ytd_return_pct":      "numeric",
			"one_year_return_pct": "numeric",
			"avg_volume":          "bigint",
			"volatility_30d_pct":  "numeric",
			"latest_date":         "date",
			"rank":                "integer",
		}

		for colName, expectedType := range expectedColumns {
			var actualType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'summary_stats' AND column_name = $1
			`, colName).Scan(&actualType)

			require.NoError(t, err, "column %s should exist in summary_stats table", colName)
			assert.Equal(t, expectedType, actualType, "column %s should have type %s", colName, expectedType)
		}
	})

	t.Run("enriched_metrics nullable columns", func(t *testing.T) {
		for col, nullable := range map[string]string{
			"daily_return":      "YES",
			"volatility_30d":    "YES",
			"cumulative_return": "NO",
			"ma_50":             "NO",
		} {
			var actual string
			err := testDB.GetRawConn().QueryRow(`
				SELECT is_nullable
				FROM information_schema.columns
				WHERE table_name = 'enriched_metrics' AND column_name = $1
			`, col).Scan(&actual)
			require.NoError(t, err)
			assert.Equal(t, nullable, actual, "nullability of %s", col)
		}
	})

	t.Run("indexes exist", func(t *testing.T) {
		expectedIndexes := []struct {
			table string
			index string
		}{
			{"price_data_daily", "idx_price_data_symbol"},
			{"price_data_daily", "idx_price_data_date"},
			{"enriched_metrics", "idx_enriched_date"},
			{"summary_stats", "idx_summary_rank"},
		}

		for _, idx := range expectedIndexes {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM pg_indexes
					WHERE tablename = $1 AND indexname = $2
				)
			`, idx.table, idx.index).Scan(&exists)

			require.NoError(t, err)
			assert.True(t, exists, "index %s should exist on table %s", idx.index, idx.table)
		}
	})

	t.Run("price_data_daily has unique (symbol, date)", func(t *testing.T) {
		var priceUnique bool
		err := testDB.GetRawConn().QueryRow(`
			SELECT EXISTS (
				SELECT FROM pg_constraint c
				JOIN pg_class t ON c.conrelid = t.oid
				WHERE t.relname = 'price_data_daily'
				AND c.contype = 'u'
			)
		`).Scan(&priceUnique)
		require.NoError(t, err)
		assert.True(t, priceUnique)
	})

	t.Run("version and idempotent re-run", func(t *testing.T) {
		version, dirty, err := testDB.MigrationVersion()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.False(t, dirty)

		require.NoError(t, testDB.Migrate())
	})
}

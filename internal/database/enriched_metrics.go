package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

const insertEnriched = `
	INSERT INTO enriched_metrics (
		symbol, company, date, open, high, low, close, volume,
		daily_return, cumulative_return, ma_50, ma_200, volatility_30d,
		year, month, quarter, year_month
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

const selectEnriched = `
	SELECT symbol, company, date, open, high, low, close, volume,
	       daily_return, cumulative_return, ma_50, ma_200, volatility_30d,
	       year, month, quarter, year_month
	FROM enriched_metrics
`

// ReplaceEnriched rebuilds the enriched table from rows in one transaction
func (db *DB) ReplaceEnriched(rows []models.EnrichedObservation) error {
	return db.inTx(func(tx *sql.Tx) error {
		return replaceEnrichedTx(tx, rows)
	})
}

func replaceEnrichedTx(tx *sql.Tx, rows []models.EnrichedObservation) error {
	if _, err := tx.Exec(`DELETE FROM enriched_metrics`); err != nil {
		return fmt.Errorf("failed to clear enriched metrics: %w", err)
	}

	stmt, err := tx.Prepare(insertEnriched)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range rows {
		_, err := stmt.Exec(
			e.Ticker, e.Company, e.Date,
			decimal.NewFromFloat(e.Open), decimal.NewFromFloat(e.High),
			decimal.NewFromFloat(e.Low), decimal.NewFromFloat(e.Close), e.Volume,
			models.FloatPtr(e.DailyReturn), e.CumulativeReturn, e.MA50, e.MA200,
			models.FloatPtr(e.Volatility30D),
			e.Year, e.Month, e.Quarter, e.YearMonth,
		)
		if err != nil {
			return fmt.Errorf("failed to insert enriched metrics for %s: %w", e.Ticker, err)
		}
	}
	return nil
}

// GetEnrichedRange returns rows for the given symbols within [from, to],
// ordered by symbol then date. An empty symbol list selects every symbol.
func (db *DB) GetEnrichedRange(symbols []string, from, to time.Time) ([]models.EnrichedObservation, error) {
	if len(symbols) == 0 {
		rows, err := db.conn.Query(selectEnriched+` WHERE date >= $1 AND date <= $2 ORDER BY symbol, date`, from, to)
		return scanEnrichedRows(rows, err)
	}
	rows, err := db.conn.Query(selectEnriched+` WHERE symbol = ANY($1) AND date >= $2 AND date <= $3 ORDER BY symbol, date`,
		pq.Array(symbols), from, to)
	return scanEnrichedRows(rows, err)
}

// LoadEnriched returns the whole enriched table ordered by symbol then date
func (db *DB) LoadEnriched() ([]models.EnrichedObservation, error) {
	rows, err := db.conn.Query(selectEnriched + ` ORDER BY symbol, date`)
	return scanEnrichedRows(rows, err)
}

func scanEnrichedRows(rows *sql.Rows, err error) ([]models.EnrichedObservation, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to get enriched metrics: %w", err)
	}
	defer rows.Close()

	var out []models.EnrichedObservation
	for rows.Next() {
		var e models.EnrichedObservation
		var op, hi, lo, cl decimal.Decimal
		var dailyReturn, volatility sql.NullFloat64

		err := rows.Scan(
			&e.Ticker, &e.Company, &e.Date, &op, &hi, &lo, &cl, &e.Volume,
			&dailyReturn, &e.CumulativeReturn, &e.MA50, &e.MA200, &volatility,
			&e.Year, &e.Month, &e.Quarter, &e.YearMonth,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enriched metrics: %w", err)
		}
		e.Date = calendarDay(e.Date)
		e.Open = op.InexactFloat64()
		e.High = hi.InexactFloat64()
		e.Low = lo.InexactFloat64()
		e.Close = cl.InexactFloat64()
		e.DailyReturn = nullFloat(dailyReturn)
		e.Volatility30D = nullFloat(volatility)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enriched metrics: %w", err)
	}
	return out, nil
}

func nullFloat(n sql.NullFloat64) float64 {
	if !n.Valid {
		return models.FloatOrNaN(nil)
	}
	return n.Float64
}

func (db *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

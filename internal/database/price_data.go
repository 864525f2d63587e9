package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

const upsertPriceData = `
	INSERT INTO price_data_daily (symbol, company, date, open, high, low, close, volume, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	ON CONFLICT (symbol, date) DO UPDATE SET
		company = EXCLUDED.company,
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		updated_at = EXCLUDED.updated_at
`

const selectPriceData = `
	SELECT symbol, company, date, open, high, low, close, volume
	FROM price_data_daily
`

// UpsertPriceData stores one observation, replacing an existing row for the
// same symbol and date
func (db *DB) UpsertPriceData(o models.Observation) error {
	_, err := db.conn.Exec(upsertPriceData, priceArgs(o, time.Now())...)
	if err != nil {
		return fmt.Errorf("failed to upsert price data: %w", err)
	}
	return nil
}

// UpsertPriceDataBatch stores many observations in one transaction
func (db *DB) UpsertPriceDataBatch(obs []models.Observation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertPriceData)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, o := range obs {
		if _, err := stmt.Exec(priceArgs(o, now)...); err != nil {
			return fmt.Errorf("failed to insert price data for %s: %w", o.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func priceArgs(o models.Observation, now time.Time) []any {
	return []any{
		o.Ticker, o.Company, o.Date,
		decimal.NewFromFloat(o.Open), decimal.NewFromFloat(o.High),
		decimal.NewFromFloat(o.Low), decimal.NewFromFloat(o.Close),
		o.Volume, now,
	}
}

// GetPriceDataBySymbolAndDate retrieves the observation for a symbol on a day
func (db *DB) GetPriceDataBySymbolAndDate(symbol string, date time.Time) (*models.Observation, error) {
	row := db.conn.QueryRow(selectPriceData+` WHERE symbol = $1 AND date = $2`, symbol, date)
	o, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("price data not found for %s on %s", symbol, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price data: %w", err)
	}
	return &o, nil
}

// GetPriceDataBySymbol retrieves the most recent observations for a symbol,
// ordered by date descending
func (db *DB) GetPriceDataBySymbol(symbol string, limit int) ([]models.Observation, error) {
	rows, err := db.conn.Query(selectPriceData+` WHERE symbol = $1 ORDER BY date DESC LIMIT $2`, symbol, limit)
	return scanObservations(rows, err)
}

// GetPriceDataRange retrieves observations for a symbol within a date range
func (db *DB) GetPriceDataRange(symbol string, startDate, endDate time.Time) ([]models.Observation, error) {
	rows, err := db.conn.Query(selectPriceData+` WHERE symbol = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`,
		symbol, startDate, endDate)
	return scanObservations(rows, err)
}

// GetAllPriceData returns the whole raw table ordered by symbol then date
func (db *DB) GetAllPriceData() ([]models.Observation, error) {
	rows, err := db.conn.Query(selectPriceData + ` ORDER BY symbol, date`)
	return scanObservations(rows, err)
}

// GetLatestPriceDate returns the newest date stored for a symbol
func (db *DB) GetLatestPriceDate(symbol string) (time.Time, error) {
	var latest sql.NullTime
	err := db.conn.QueryRow(`SELECT MAX(date) FROM price_data_daily WHERE symbol = $1`, symbol).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest price date: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, fmt.Errorf("price data not found for %s", symbol)
	}
	return calendarDay(latest.Time), nil
}

// DeletePriceDataOlderThan removes observations dated before date
func (db *DB) DeletePriceDataOlderThan(date time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM price_data_daily WHERE date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price data: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObservation(s scanner) (models.Observation, error) {
	var o models.Observation
	var op, hi, lo, cl decimal.Decimal
	if err := s.Scan(&o.Ticker, &o.Company, &o.Date, &op, &hi, &lo, &cl, &o.Volume); err != nil {
		return o, err
	}
	o.Date = calendarDay(o.Date)
	o.Open = op.InexactFloat64()
	o.High = hi.InexactFloat64()
	o.Low = lo.InexactFloat64()
	o.Close = cl.InexactFloat64()
	return o, nil
}

func scanObservations(rows *sql.Rows, err error) ([]models.Observation, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to get price data: %w", err)
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price data: %w", err)
	}
	return out, nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

const selectSummary = `
	SELECT symbol, company, latest_price, ytd_return_pct, one_year_return_pct,
	       avg_volume, volatility_30d_pct, latest_date
	FROM summary_stats
`

// ReplaceSummary rebuilds the summary table; rank preserves the given order
func (db *DB) ReplaceSummary(rows []models.SummaryRecord) error {
	return db.inTx(func(tx *sql.Tx) error {
		return replaceSummaryTx(tx, rows)
	})
}

// ReplaceMetrics rebuilds both output tables in a single transaction so
// readers never see an enriched table from one run and a summary from another
func (db *DB) ReplaceMetrics(enriched []models.EnrichedObservation, summary []models.SummaryRecord) error {
	return db.inTx(func(tx *sql.Tx) error {
		if err := replaceEnrichedTx(tx, enriched); err != nil {
			return err
		}
		return replaceSummaryTx(tx, summary)
	})
}

func replaceSummaryTx(tx *sql.Tx, rows []models.SummaryRecord) error {
	if _, err := tx.Exec(`DELETE FROM summary_stats`); err != nil {
		return fmt.Errorf("failed to clear summary stats: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO summary_stats (
			symbol, company, latest_price, ytd_return_pct, one_year_return_pct,
			avg_volume, volatility_30d_pct, latest_date, rank, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, s := range rows {
		_, err := stmt.Exec(
			s.Ticker, s.Company, s.LatestPrice, s.YTDReturn, s.OneYearReturn,
			s.AvgVolume, s.Volatility30D, s.LatestDate, i+1, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert summary for %s: %w", s.Ticker, err)
		}
	}
	return nil
}

// GetSummary returns the summary table in ranking order
func (db *DB) GetSummary() ([]models.SummaryRecord, error) {
	rows, err := db.conn.Query(selectSummary + ` ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary stats: %w", err)
	}
	defer rows.Close()

	var out []models.SummaryRecord
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary stats: %w", err)
	}
	return out, nil
}

// LoadSummary is GetSummary under the name shared with file-backed sources
func (db *DB) LoadSummary() ([]models.SummaryRecord, error) {
	return db.GetSummary()
}

// GetSummaryBySymbol returns one ticker's summary row
func (db *DB) GetSummaryBySymbol(symbol string) (*models.SummaryRecord, error) {
	s, err := scanSummary(db.conn.QueryRow(selectSummary+` WHERE symbol = $1`, symbol))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary not found: %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &s, nil
}

func scanSummary(s scanner) (models.SummaryRecord, error) {
	var r models.SummaryRecord
	err := s.Scan(
		&r.Ticker, &r.Company, &r.LatestPrice, &r.YTDReturn, &r.OneYearReturn,
		&r.AvgVolume, &r.Volatility30D, &r.LatestDate,
	)
	r.LatestDate = calendarDay(r.LatestDate)
	return r, err
}

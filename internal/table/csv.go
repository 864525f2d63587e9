package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/metrics"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// Column names shared with the dashboard
const (
	ColDate             = "Date"
	ColOpen             = "Open"
	ColHigh             = "High"
	ColLow              = "Low"
	ColClose            = "Close"
	ColVolume           = "Volume"
	ColTicker           = "Ticker"
	ColCompany          = "Company"
	ColDailyReturn      = "Daily_Return"
	ColCumulativeReturn = "Cumulative_Return"
	ColMA50             = "MA_50"
	ColMA200            = "MA_200"
	ColVolatility30D    = "Volatility_30D"
	ColYear             = "Year"
	ColMonth            = "Month"
	ColQuarter          = "Quarter"
	ColYearMonth        = "Year_Month"

	ColLatestPrice   = "Latest_Price"
	ColYTDReturn     = "YTD_Return_%"
	ColOneYearReturn = "1Y_Return_%"
	ColAvgVolume     = "Avg_Volume"
	ColVolatilityPct = "30D_Volatility_%"
	ColLatestDate    = "Latest_Date"
)

// DateLayout is used for every date written to a table
const DateLayout = "2006-01-02"

var (
	RawHeader = []string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColVolume, ColTicker, ColCompany}

	EnrichedHeader = append(append([]string{}, RawHeader...),
		ColDailyReturn, ColCumulativeReturn, ColMA50, ColMA200, ColVolatility30D,
		ColYear, ColMonth, ColQuarter, ColYearMonth)

	SummaryHeader = []string{ColTicker, ColCompany, ColLatestPrice, ColYTDReturn, ColOneYearReturn,
		ColAvgVolume, ColVolatilityPct, ColLatestDate}
)

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
}

// ParseDate accepts the ISO-8601 variants written by common data tools
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", s)
}

// header maps column names, matched case-insensitively, to their index
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	names, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &metrics.MalformedInputError{Column: ColDate, Reason: "table has no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	h := make(header, len(names))
	for i, n := range names {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(n, "\ufeff")))] = i
	}
	return h, nil
}

func (h header) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := h[strings.ToLower(c)]; !ok {
			return &metrics.MalformedInputError{Column: c, Reason: "required column is missing"}
		}
	}
	return nil
}

// record wraps one CSV line with the header for typed access
type record struct {
	h      header
	fields []string
	row    int
}

func (r record) str(col string) string {
	i, ok := r.h[strings.ToLower(col)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) malformed(col, reason string) error {
	return &metrics.MalformedInputError{Column: col, Row: r.row, Reason: reason}
}

func (r record) date(col string) (time.Time, error) {
	t, err := ParseDate(r.str(col))
	if err != nil {
		return time.Time{}, r.malformed(col, err.Error())
	}
	return t, nil
}

// float parses a number; empty cells yield NaN unless required
func (r record) float(col string, required bool) (float64, error) {
	s := r.str(col)
	if s == "" {
		if required {
			return 0, r.malformed(col, "missing value")
		}
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.malformed(col, fmt.Sprintf("cannot parse %q as a number", s))
	}
	return f, nil
}

// int parses integer columns, tolerating a trailing ".0"
func (r record) int(col string) (int64, error) {
	s := r.str(col)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.malformed(col, fmt.Sprintf("cannot parse %q as an integer", s))
	}
	return int64(f), nil
}

func eachRecord(rd io.Reader, required []string, fn func(record) error) error {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	h, err := readHeader(r)
	if err != nil {
		return err
	}
	if err := h.require(required...); err != nil {
		return err
	}
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", row, err)
		}
		if err := fn(record{h: h, fields: fields, row: row}); err != nil {
			return err
		}
	}
}

func readObservation(rec record) (models.Observation, error) {
	var o models.Observation
	var err error
	if o.Date, err = rec.date(ColDate); err != nil {
		return o, err
	}
	if o.Close, err = rec.float(ColClose, true); err != nil {
		return o, err
	}
	prices := []struct {
		col string
		dst *float64
	}{
		{ColOpen, &o.Open},
		{ColHigh, &o.High},
		{ColLow, &o.Low},
	}
	for _, p := range prices {
		v, err := rec.float(p.col, false)
		if err != nil {
			return o, err
		}
		if math.IsNaN(v) {
			v = o.Close
		}
		*p.dst = v
	}
	if o.Volume, err = rec.int(ColVolume); err != nil {
		return o, err
	}
	o.Ticker = rec.str(ColTicker)
	if o.Ticker == "" {
		return o, rec.malformed(ColTicker, "missing ticker")
	}
	o.Company = rec.str(ColCompany)
	if o.Company == "" {
		o.Company = o.Ticker
	}
	return o, nil
}

// ReadRaw parses a raw observation table. Date, Close and Ticker are
// required; a missing Open, High or Low falls back to Close.
func ReadRaw(r io.Reader) ([]models.Observation, error) {
	var rows []models.Observation
	err := eachRecord(r, []string{ColDate, ColClose, ColTicker}, func(rec record) error {
		o, err := readObservation(rec)
		if err != nil {
			return err
		}
		rows = append(rows, o)
		return nil
	})
	return rows, err
}

// ReadEnriched parses a table written by WriteEnriched
func ReadEnriched(r io.Reader) ([]models.EnrichedObservation, error) {
	var rows []models.EnrichedObservation
	err := eachRecord(r, EnrichedHeader, func(rec record) error {
		o, err := readObservation(rec)
		if err != nil {
			return err
		}
		e := models.EnrichedObservation{Observation: o, YearMonth: rec.str(ColYearMonth)}
		floats := []struct {
			col string
			dst *float64
		}{
			{ColDailyReturn, &e.DailyReturn},
			{ColCumulativeReturn, &e.CumulativeReturn},
			{ColMA50, &e.MA50},
			{ColMA200, &e.MA200},
			{ColVolatility30D, &e.Volatility30D},
		}
		for _, f := range floats {
			if *f.dst, err = rec.float(f.col, false); err != nil {
				return err
			}
		}
		ints := []struct {
			col string
			dst *int
		}{
			{ColYear, &e.Year},
			{ColMonth, &e.Month},
			{ColQuarter, &e.Quarter},
		}
		for _, f := range ints {
			n, err := rec.int(f.col)
			if err != nil {
				return err
			}
			*f.dst = int(n)
		}
		rows = append(rows, e)
		return nil
	})
	return rows, err
}

// ReadSummary parses a table written by WriteSummary
func ReadSummary(r io.Reader) ([]models.SummaryRecord, error) {
	var rows []models.SummaryRecord
	err := eachRecord(r, SummaryHeader, func(rec record) error {
		s := models.SummaryRecord{Ticker: rec.str(ColTicker), Company: rec.str(ColCompany)}
		decimals := []struct {
			col string
			dst *decimal.Decimal
		}{
			{ColLatestPrice, &s.LatestPrice},
			{ColYTDReturn, &s.YTDReturn},
			{ColOneYearReturn, &s.OneYearReturn},
		}
		for _, d := range decimals {
			v, err := decimal.NewFromString(rec.str(d.col))
			if err != nil {
				return rec.malformed(d.col, err.Error())
			}
			*d.dst = v
		}
		if v := rec.str(ColVolatilityPct); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return rec.malformed(ColVolatilityPct, err.Error())
			}
			s.Volatility30D = decimal.NewNullDecimal(d)
		}
		var err error
		if s.AvgVolume, err = rec.int(ColAvgVolume); err != nil {
			return err
		}
		if s.LatestDate, err = rec.date(ColLatestDate); err != nil {
			return err
		}
		rows = append(rows, s)
		return nil
	})
	return rows, err
}

// FormatFloat writes plain '.'-decimal numbers; NaN becomes an empty cell
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func observationFields(o models.Observation) []string {
	return []string{
		o.Date.Format(DateLayout),
		FormatFloat(o.Open),
		FormatFloat(o.High),
		FormatFloat(o.Low),
		FormatFloat(o.Close),
		strconv.FormatInt(o.Volume, 10),
		o.Ticker,
		o.Company,
	}
}

func writeAll(w io.Writer, head []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(head); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRaw writes observations with RawHeader
func WriteRaw(w io.Writer, rows []models.Observation) error {
	return writeAll(w, RawHeader, len(rows), func(i int) []string {
		return observationFields(rows[i])
	})
}

// WriteEnriched writes enriched observations with EnrichedHeader
func WriteEnriched(w io.Writer, rows []models.EnrichedObservation) error {
	return writeAll(w, EnrichedHeader, len(rows), func(i int) []string {
		e := rows[i]
		return append(observationFields(e.Observation),
			FormatFloat(e.DailyReturn),
			FormatFloat(e.CumulativeReturn),
			FormatFloat(e.MA50),
			FormatFloat(e.MA200),
			FormatFloat(e.Volatility30D),
			strconv.Itoa(e.Year),
			strconv.Itoa(e.Month),
			strconv.Itoa(e.Quarter),
			e.YearMonth,
		)
	})
}

// WriteSummary writes summary records with SummaryHeader, two decimals for
// price and percent columns
func WriteSummary(w io.Writer, rows []models.SummaryRecord) error {
	return writeAll(w, SummaryHeader, len(rows), func(i int) []string {
		s := rows[i]
		vol := ""
		if s.Volatility30D.Valid {
			vol = s.Volatility30D.Decimal.StringFixed(2)
		}
		return []string{
			s.Ticker,
			s.Company,
			s.LatestPrice.StringFixed(2),
			s.YTDReturn.StringFixed(2),
			s.OneYearReturn.StringFixed(2),
			strconv.FormatInt(s.AvgVolume, 10),
			vol,
			s.LatestDate.Format(DateLayout),
		}
	})
}

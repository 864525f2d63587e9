package saver

import (
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// enrichedRow is the parquet schema of the enriched table. Undefined
// returns and volatility are stored as nulls.
type enrichedRow struct {
	Date             string   `parquet:"Date"`
	Open             float64  `parquet:"Open"`
	High             float64  `parquet:"High"`
	Low              float64  `parquet:"Low"`
	Close            float64  `parquet:"Close"`
	Volume           int64    `parquet:"Volume"`
	Ticker           string   `parquet:"Ticker"`
	Company          string   `parquet:"Company"`
	DailyReturn      *float64 `parquet:"Daily_Return,optional"`
	CumulativeReturn float64  `parquet:"Cumulative_Return"`
	MA50             float64  `parquet:"MA_50"`
	MA200            float64  `parquet:"MA_200"`
	Volatility30D    *float64 `parquet:"Volatility_30D,optional"`
	Year             int64    `parquet:"Year"`
	Month            int64    `parquet:"Month"`
	Quarter          int64    `parquet:"Quarter"`
	YearMonth        string   `parquet:"Year_Month"`
}

type summaryRow struct {
	Ticker        string   `parquet:"Ticker"`
	Company       string   `parquet:"Company"`
	LatestPrice   float64  `parquet:"Latest_Price"`
	YTDReturn     float64  `parquet:"YTD_Return_%"`
	OneYearReturn float64  `parquet:"1Y_Return_%"`
	AvgVolume     int64    `parquet:"Avg_Volume"`
	Volatility30D *float64 `parquet:"30D_Volatility_%,optional"`
	LatestDate    string   `parquet:"Latest_Date"`
}

// ParquetSaver stores tables as Parquet files
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) SaveEnriched(rows []models.EnrichedObservation, path string) error {
	out := make([]enrichedRow, len(rows))
	for i, e := range rows {
		out[i] = enrichedRow{
			Date:             e.Date.Format(table.DateLayout),
			Open:             e.Open,
			High:             e.High,
			Low:              e.Low,
			Close:            e.Close,
			Volume:           e.Volume,
			Ticker:           e.Ticker,
			Company:          e.Company,
			DailyReturn:      models.FloatPtr(e.DailyReturn),
			CumulativeReturn: e.CumulativeReturn,
			MA50:             e.MA50,
			MA200:            e.MA200,
			Volatility30D:    models.FloatPtr(e.Volatility30D),
			Year:             int64(e.Year),
			Month:            int64(e.Month),
			Quarter:          int64(e.Quarter),
			YearMonth:        e.YearMonth,
		}
	}
	return table.WriteFile(path, func(w io.Writer) error {
		return parquet.Write(w, out)
	})
}

func (ParquetSaver) SaveSummary(rows []models.SummaryRecord, path string) error {
	out := make([]summaryRow, len(rows))
	for i, s := range rows {
		out[i] = summaryRow{
			Ticker:        s.Ticker,
			Company:       s.Company,
			LatestPrice:   s.LatestPrice.InexactFloat64(),
			YTDReturn:     s.YTDReturn.InexactFloat64(),
			OneYearReturn: s.OneYearReturn.InexactFloat64(),
			AvgVolume:     s.AvgVolume,
			LatestDate:    s.LatestDate.Format(table.DateLayout),
		}
		if s.Volatility30D.Valid {
			v := s.Volatility30D.Decimal.InexactFloat64()
			out[i].Volatility30D = &v
		}
	}
	return table.WriteFile(path, func(w io.Writer) error {
		return parquet.Write(w, out)
	})
}

func (ParquetSaver) LoadEnriched(path string) ([]models.EnrichedObservation, error) {
	in, err := parquet.ReadFile[enrichedRow](path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.EnrichedObservation, len(in))
	for i, r := range in {
		date, err := time.Parse(table.DateLayout, r.Date)
		if err != nil {
			return nil, err
		}
		rows[i] = models.EnrichedObservation{
			Observation: models.Observation{
				Date:    date,
				Open:    r.Open,
				High:    r.High,
				Low:     r.Low,
				Close:   r.Close,
				Volume:  r.Volume,
				Ticker:  r.Ticker,
				Company: r.Company,
			},
			DailyReturn:      models.FloatOrNaN(r.DailyReturn),
			CumulativeReturn: r.CumulativeReturn,
			MA50:             r.MA50,
			MA200:            r.MA200,
			Volatility30D:    models.FloatOrNaN(r.Volatility30D),
			Year:             int(r.Year),
			Month:            int(r.Month),
			Quarter:          int(r.Quarter),
			YearMonth:        r.YearMonth,
		}
	}
	return rows, nil
}

func (ParquetSaver) LoadSummary(path string) ([]models.SummaryRecord, error) {
	in, err := parquet.ReadFile[summaryRow](path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.SummaryRecord, len(in))
	for i, r := range in {
		date, err := time.Parse(table.DateLayout, r.LatestDate)
		if err != nil {
			return nil, err
		}
		rows[i] = models.SummaryRecord{
			Ticker:        r.Ticker,
			Company:       r.Company,
			LatestPrice:   decimal.NewFromFloat(r.LatestPrice),
			YTDReturn:     decimal.NewFromFloat(r.YTDReturn),
			OneYearReturn: decimal.NewFromFloat(r.OneYearReturn),
			AvgVolume:     r.AvgVolume,
			LatestDate:    date,
		}
		if r.Volatility30D != nil {
			rows[i].Volatility30D = decimal.NewNullDecimal(decimal.NewFromFloat(*r.Volatility30D))
		}
	}
	return rows, nil
}

package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// Chart selects which enriched field a series plots
type Chart string

const (
	ChartGains      Chart = "gains"
	ChartPrice      Chart = "price"
	ChartVolume     Chart = "volume"
	ChartVolatility Chart = "volatility"
)

// ErrUnknownChart is returned for an unsupported chart name
var ErrUnknownChart = errors.New("unknown chart")

// ParseChart validates a chart name
func ParseChart(s string) (Chart, error) {
	switch c := Chart(s); c {
	case ChartGains, ChartPrice, ChartVolume, ChartVolatility:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// Point is one dated value; a nil Value is a gap in the line
type Point struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// Line is one plotted series
type Line struct {
	Company string  `json:"company"`
	Name    string  `json:"name"`
	Points  []Point `json:"points"`
}

type field struct {
	name  string
	value func(models.EnrichedObservation) float64
}

func fieldsFor(c Chart) []field {
	switch c {
	case ChartGains:
		return []field{{"Cumulative Return", func(e models.EnrichedObservation) float64 { return e.CumulativeReturn }}}
	case ChartPrice:
		return []field{
			{"Price", func(e models.EnrichedObservation) float64 { return e.Close }},
			{"50-Day MA", func(e models.EnrichedObservation) float64 { return e.MA50 }},
			{"200-Day MA", func(e models.EnrichedObservation) float64 { return e.MA200 }},
		}
	case ChartVolume:
		return []field{{"Volume", func(e models.EnrichedObservation) float64 { return float64(e.Volume) }}}
	case ChartVolatility:
		return []field{{"30-Day Volatility", func(e models.EnrichedObservation) float64 { return e.Volatility30D }}}
	}
	return nil
}

// Series builds one line per displayed company and plotted field, in
// display order. Rows are expected in date order within a company.
func Series(rows []models.EnrichedObservation, display []string, chart Chart) ([]Line, error) {
	fields := fieldsFor(chart)
	if fields == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, chart)
	}

	byCompany := make(map[string][]models.EnrichedObservation, len(display))
	for _, r := range rows {
		byCompany[r.Company] = append(byCompany[r.Company], r)
	}

	lines := make([]Line, 0, len(display)*len(fields))
	for _, company := range display {
		data := byCompany[company]
		for _, f := range fields {
			line := Line{Company: company, Name: f.name, Points: make([]Point, len(data))}
			for i, r := range data {
				line.Points[i] = Point{Date: r.Date, Value: models.FloatPtr(f.value(r))}
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

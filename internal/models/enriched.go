package models

import (
	"encoding/json"
	"math"
)

// Moving average and volatility window sizes, in trading days
const (
	WindowMA50       = 50
	WindowMA200      = 200
	WindowVolatility = 30
)

// EnrichedObservation is a raw observation extended with the per-ticker
// derived series. DailyReturn and Volatility30D hold NaN when undefined.
type EnrichedObservation struct {
	Observation
	DailyReturn      float64 `json:"daily_return"`
	CumulativeReturn float64 `json:"cumulative_return"`
	MA50             float64 `json:"ma_50"`
	MA200            float64 `json:"ma_200"`
	Volatility30D    float64 `json:"volatility_30d"`
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	Quarter          int     `json:"quarter"`
	YearMonth        string  `json:"year_month"`
}

// HasDailyReturn reports whether a previous close existed for this row
func (e EnrichedObservation) HasDailyReturn() bool {
	return !math.IsNaN(e.DailyReturn)
}

// HasVolatility reports whether enough returns were available to compute volatility
func (e EnrichedObservation) HasVolatility() bool {
	return !math.IsNaN(e.Volatility30D)
}

type enrichedJSON struct {
	Observation
	DailyReturn      *float64 `json:"daily_return"`
	CumulativeReturn float64  `json:"cumulative_return"`
	MA50             float64  `json:"ma_50"`
	MA200            float64  `json:"ma_200"`
	Volatility30D    *float64 `json:"volatility_30d"`
	Year             int      `json:"year"`
	Month            int      `json:"month"`
	Quarter          int      `json:"quarter"`
	YearMonth        string   `json:"year_month"`
}

// MarshalJSON encodes undefined values as null since JSON has no NaN
func (e EnrichedObservation) MarshalJSON() ([]byte, error) {
	return json.Marshal(enrichedJSON{
		Observation:      e.Observation,
		DailyReturn:      FloatPtr(e.DailyReturn),
		CumulativeReturn: e.CumulativeReturn,
		MA50:             e.MA50,
		MA200:            e.MA200,
		Volatility30D:    FloatPtr(e.Volatility30D),
		Year:             e.Year,
		Month:            e.Month,
		Quarter:          e.Quarter,
		YearMonth:        e.YearMonth,
	})
}

// UnmarshalJSON maps null back to NaN
func (e *EnrichedObservation) UnmarshalJSON(data []byte) error {
	var v enrichedJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = EnrichedObservation{
		Observation:      v.Observation,
		DailyReturn:      FloatOrNaN(v.DailyReturn),
		CumulativeReturn: v.CumulativeReturn,
		MA50:             v.MA50,
		MA200:            v.MA200,
		Volatility30D:    FloatOrNaN(v.Volatility30D),
		Year:             v.Year,
		Month:            v.Month,
		Quarter:          v.Quarter,
		YearMonth:        v.YearMonth,
	}
	return nil
}

// FloatPtr returns nil for NaN, otherwise a pointer to f
func FloatPtr(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// FloatOrNaN is the inverse of FloatPtr
func FloatOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

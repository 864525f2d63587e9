package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// trailing returns values[i-size+1 : i+1], shortened at the start of the
// series so that a partial window is used until size values exist.
func trailing(values []float64, i, size int) []float64 {
	start := i - size + 1
	if start < 0 {
		start = 0
	}
	return values[start : i+1]
}

// trailingMean is the simple moving average ending at i with min-periods 1
func trailingMean(values []float64, i, size int) float64 {
	m, err := stats.Mean(trailing(values, i, size))
	if err != nil {
		return math.NaN()
	}
	return m
}

// trailingStdDev is the sample standard deviation of the non-missing values
// in the window ending at i. It is NaN when fewer than two values are present.
func trailingStdDev(values []float64, i, size int) float64 {
	window := trailing(values, i, size)
	present := make(stats.Float64Data, 0, len(window))
	for _, v := range window {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(present)
	if err != nil {
		return math.NaN()
	}
	return sd
}

func percentChange(current, base float64) float64 {
	return (current/base - 1) * 100
}

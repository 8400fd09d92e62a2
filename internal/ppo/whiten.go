package ppo

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeanStd returns the mean and population standard deviation of
// values. An empty slice yields zeros.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = stat.Mean(values, nil)
	std = math.Sqrt(stat.PopVariance(values, nil))
	return mean, std
}

// Whiten normalizes values to zero mean and unit variance in place and
// returns the slice. When shiftMean is false the mean is added back,
// leaving only the variance normalized.
func Whiten(values []float64, shiftMean bool) []float64 {
	if len(values) == 0 {
		return values
	}
	mean, std := MeanStd(values)
	floats.AddConst(-mean, values)
	floats.Scale(1/(std+1e-8), values)
	if !shiftMean {
		floats.AddConst(mean, values)
	}
	return values
}

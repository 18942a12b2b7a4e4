package selection

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// VarianceThreshold keeps the features whose variance exceeds Threshold.
type VarianceThreshold struct {
	Threshold float64
	Variances []float64
}

func NewVarianceThreshold() *VarianceThreshold {
	return &VarianceThreshold{}
}

// Fit computes the population variance of every column of x, ignoring missing
// values. A constant column has a variance of exactly zero.
func (v *VarianceThreshold) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return ErrEmptyInput
	}
	v.Variances = make([]float64, cols)
	for j := 0; j < cols; j++ {
		values := presentValues(mat.Col(nil, j, x))
		switch {
		case len(values) == 0:
			v.Variances[j] = math.NaN()
		case floats.Max(values) == floats.Min(values):
			v.Variances[j] = 0
		default:
			v.Variances[j] = stat.PopVariance(values, nil)
		}
	}
	return nil
}

func (v *VarianceThreshold) Support() []bool {
	support := make([]bool, len(v.Variances))
	for i, variance := range v.Variances {
		support[i] = variance > v.Threshold
	}
	return support
}

func presentValues(column []float64) []float64 {
	values := column[:0]
	for _, value := range column {
		if !math.IsNaN(value) {
			values = append(values, value)
		}
	}
	return values
}

package selection

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestVarianceThreshold(t *testing.T) {
	x := mat.NewDense(4, 3, []float64{
		1, 0.1, 2,
		2, 0.1, 4,
		3, 0.1, math.NaN(),
		4, 0.1, 6,
	})
	v := NewVarianceThreshold()
	require.NoError(t, v.Fit(x))
	require.InDelta(t, 1.25, v.Variances[0], 1e-12)
	require.Equal(t, 0.0, v.Variances[1])
	require.InDelta(t, 8.0/3.0, v.Variances[2], 1e-12)
	require.Equal(t, []bool{true, false, true}, v.Support())

	// Fitting must not alter the input.
	require.True(t, math.IsNaN(x.At(2, 2)))
}

func TestFClassif(t *testing.T) {
	x := mat.NewDense(6, 3, []float64{
		1, 5, 1,
		2, 5, 2,
		10, 5, 1,
		11, 5, 2,
		20, 5, 1,
		21, 5, 2,
	})
	y := []int{0, 0, 1, 1, 2, 2}

	scores, pValues, err := FClassif(x, y, 3)
	require.NoError(t, err)

	// class means 1.5, 10.5 and 20.5 around an overall mean of 65/6; within = 3 * 0.5
	between := 2 * (math.Pow(1.5-65.0/6, 2) + math.Pow(10.5-65.0/6, 2) + math.Pow(20.5-65.0/6, 2))
	require.InDelta(t, (between/2)/(1.5/3), scores[0], 1e-9)
	require.Less(t, pValues[0], 0.001)

	require.Equal(t, 0.0, scores[1])
	require.Equal(t, 1.0, pValues[1])

	require.Equal(t, 0.0, scores[2])
	require.InDelta(t, 1.0, pValues[2], 1e-9)
}

func TestFClassifSeparating(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 1, 3, 3})
	scores, pValues, err := FClassif(x, []int{0, 0, 2, 2}, 3)
	require.NoError(t, err)
	require.True(t, math.IsInf(scores[0], 1))
	require.Equal(t, 0.0, pValues[0])
}

func TestSelectKBest(t *testing.T) {
	s := &SelectKBest{Scores: []float64{3, 1, 2}}
	require.Equal(t, []bool{true, true, true}, s.Support())

	s.K = 2
	require.Equal(t, []bool{true, false, true}, s.Support())
}

func TestRFE(t *testing.T) {
	x := mat.NewDense(2, 5, []float64{
		0, 1, 2, 3, 4,
		0, 1, 2, 3, 4,
	})
	fits := 0
	// Importance equals the column value, so column 0 is always the weakest.
	estimator := func(x mat.Matrix, y []int) ([]float64, error) {
		fits++
		_, cols := x.Dims()
		return mat.Row(nil, 0, x)[:cols], nil
	}

	rfe := NewRFE(estimator, 1)
	require.NoError(t, rfe.Fit(x, []int{0, 1}))
	require.Equal(t, []int{4, 3, 2, 1, 1}, rfe.Ranking)
	require.Equal(t, []bool{false, false, false, true, true}, rfe.Support)
	require.Equal(t, 3, fits)
}

func TestRFEStep(t *testing.T) {
	x := mat.NewDense(1, 5, []float64{5, 4, 3, 2, 1})
	estimator := func(x mat.Matrix, y []int) ([]float64, error) {
		return mat.Row(nil, 0, x), nil
	}
	rfe := NewRFE(estimator, 2)
	rfe.NumFeaturesToSelect = 1
	require.NoError(t, rfe.Fit(x, []int{0}))
	require.Equal(t, []int{1, 2, 2, 3, 3}, rfe.Ranking)
}

func TestRFEEstimatorError(t *testing.T) {
	failure := errors.New("fit failed")
	rfe := NewRFE(func(mat.Matrix, []int) ([]float64, error) { return nil, failure }, 1)
	err := rfe.Fit(mat.NewDense(1, 2, []float64{1, 2}), []int{0})
	require.ErrorIs(t, err, failure)
}

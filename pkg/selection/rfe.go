package selection

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ImportanceFunc fits an estimator on x and y and returns one importance per column of x.
type ImportanceFunc func(x mat.Matrix, y []int) ([]float64, error)

// RFE ranks features by recursively fitting the estimator and dropping the
// least important features, Step at a time, until NumFeaturesToSelect remain.
// Selected features rank 1; the earlier a feature was eliminated the higher its rank.
type RFE struct {
	Estimator           ImportanceFunc
	Step                int
	NumFeaturesToSelect int

	Ranking []int
	Support []bool
}

func NewRFE(estimator ImportanceFunc, step int) *RFE {
	return &RFE{Estimator: estimator, Step: step}
}

func (r *RFE) Fit(x mat.Matrix, y []int) error {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return ErrEmptyInput
	}
	if r.Step < 1 {
		return fmt.Errorf("invalid elimination step %d", r.Step)
	}
	toSelect := r.NumFeaturesToSelect
	if toSelect <= 0 {
		toSelect = cols / 2
	}
	if toSelect < 1 {
		toSelect = 1
	}

	support := make([]bool, cols)
	ranking := make([]int, cols)
	for i := range support {
		support[i] = true
		ranking[i] = 1
	}

	for remaining := cols; remaining > toSelect; {
		features := supported(support)
		importances, err := r.Estimator(selectColumns(x, features), y)
		if err != nil {
			return fmt.Errorf("error fitting estimator on %d features: %w", len(features), err)
		}
		if len(importances) != len(features) {
			return fmt.Errorf("estimator returned %d importances for %d features", len(importances), len(features))
		}

		order := make([]int, len(features))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return importances[order[i]] < importances[order[j]]
		})

		eliminate := r.Step
		if remaining-toSelect < eliminate {
			eliminate = remaining - toSelect
		}
		for _, o := range order[:eliminate] {
			support[features[o]] = false
		}
		remaining -= eliminate

		for i := range ranking {
			if !support[i] {
				ranking[i]++
			}
		}
	}

	r.Support = support
	r.Ranking = ranking
	return nil
}

func supported(support []bool) []int {
	var features []int
	for i, ok := range support {
		if ok {
			features = append(features, i)
		}
	}
	return features
}

func selectColumns(x mat.Matrix, features []int) *mat.Dense {
	rows, _ := x.Dims()
	sub := mat.NewDense(rows, len(features), nil)
	column := make([]float64, rows)
	for i, feature := range features {
		mat.Col(column, feature, x)
		sub.SetCol(i, column)
	}
	return sub
}

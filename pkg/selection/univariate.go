package selection

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrEmptyInput = errors.New("empty input")

// FClassif computes the one-way ANOVA F statistic and its p-value for every
// column of x against the class codes in y.
//
// Degenerate columns never fail: a column that explains nothing because
// neither its between-class nor its within-class spread is positive scores 0
// with a p-value of 1, and a column that separates the classes perfectly
// scores +Inf with a p-value of 0.
func FClassif(x mat.Matrix, y []int, numClasses int) (scores, pValues []float64, err error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, ErrEmptyInput
	}
	if rows != len(y) {
		return nil, nil, fmt.Errorf("input has %d rows but %d targets", rows, len(y))
	}

	classSizes := make([]float64, numClasses)
	for i, class := range y {
		if class < 0 || class >= numClasses {
			return nil, nil, fmt.Errorf("target %d at row %d outside [0, %d)", class, i, numClasses)
		}
		classSizes[class]++
	}
	groups := 0
	for _, size := range classSizes {
		if size > 0 {
			groups++
		}
	}
	dfBetween := float64(groups - 1)
	dfWithin := float64(rows - groups)

	scores = make([]float64, cols)
	pValues = make([]float64, cols)
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, x)
		scores[j], pValues[j] = anova(column, y, classSizes, dfBetween, dfWithin)
	}
	return scores, pValues, nil
}

func anova(column []float64, y []int, classSizes []float64, dfBetween, dfWithin float64) (float64, float64) {
	if dfBetween <= 0 || dfWithin <= 0 {
		return 0, 1
	}

	mean := stat.Mean(column, nil)
	classMeans := make([]float64, len(classSizes))
	for i, value := range column {
		classMeans[y[i]] += value
	}
	for class, size := range classSizes {
		if size > 0 {
			classMeans[class] /= size
		}
	}

	var between, within float64
	for class, size := range classSizes {
		d := classMeans[class] - mean
		between += size * d * d
	}
	for i, value := range column {
		d := value - classMeans[y[i]]
		within += d * d
	}

	switch {
	case math.IsNaN(between) || math.IsNaN(within):
		return math.NaN(), math.NaN()
	case within == 0 && between == 0:
		return 0, 1
	case within == 0:
		return math.Inf(1), 0
	}
	f := (between / dfBetween) / (within / dfWithin)
	return f, distuv.F{D1: dfBetween, D2: dfWithin}.Survival(f)
}

// SelectKBest keeps the K features with the highest univariate scores, or all
// of them when K <= 0.
type SelectKBest struct {
	K       int
	Scores  []float64
	PValues []float64
}

func NewSelectKBest(k int) *SelectKBest {
	return &SelectKBest{K: k}
}

func (s *SelectKBest) Fit(x mat.Matrix, y []int, numClasses int) error {
	scores, pValues, err := FClassif(x, y, numClasses)
	if err != nil {
		return err
	}
	s.Scores = scores
	s.PValues = pValues
	return nil
}

func (s *SelectKBest) Support() []bool {
	support := make([]bool, len(s.Scores))
	if s.K <= 0 || s.K >= len(s.Scores) {
		for i := range support {
			support[i] = true
		}
		return support
	}

	order := make([]int, len(s.Scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return s.Scores[order[i]] > s.Scores[order[j]]
	})
	for _, index := range order[:s.K] {
		support[index] = true
	}
	return support
}

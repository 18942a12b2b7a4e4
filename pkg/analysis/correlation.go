package analysis

import (
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

// CorrelationAnalyzer computes pairwise Pearson correlations between input columns.
type CorrelationAnalyzer struct {
	*FeatureAnalyzer

	homeColumns []string
	awayColumns []string
}

func NewCorrelationAnalyzer(matches dataframe.DataFrame) (*CorrelationAnalyzer, error) {
	base, err := NewFeatureAnalyzer(matches)
	if err != nil {
		return nil, err
	}

	// Side-neutral columns belong to both partitions.
	var home, away []string
	for _, column := range base.metaData.Columns {
		if !strings.HasPrefix(column, "A") {
			home = append(home, column)
		}
		if !strings.HasPrefix(column, "H") {
			away = append(away, column)
		}
	}
	return &CorrelationAnalyzer{
		FeatureAnalyzer: base,
		homeColumns:     home,
		awayColumns:     away,
	}, nil
}

// HomeColumns returns the input columns not marked as away-side.
func (a *CorrelationAnalyzer) HomeColumns() []string {
	return append([]string(nil), a.homeColumns...)
}

// AwayColumns returns the input columns not marked as home-side.
func (a *CorrelationAnalyzer) AwayColumns() []string {
	return append([]string(nil), a.awayColumns...)
}

// Correlations returns the Pearson correlation matrix of the given columns.
// Each pair is computed over the rows where both values are present. A pair
// whose remaining values are constant in either column correlates as NaN.
func (a *CorrelationAnalyzer) Correlations(columns []string) (*mat.SymDense, error) {
	if len(columns) == 0 {
		return nil, ErrEmptySelection
	}
	indexes, err := a.columnIndexes(columns)
	if err != nil {
		return nil, err
	}

	values := make([][]float64, len(indexes))
	for i, index := range indexes {
		values[i] = mat.Col(nil, index, a.inputs)
	}

	correlations := mat.NewSymDense(len(indexes), nil)
	for i := range indexes {
		for j := i; j < len(indexes); j++ {
			correlations.SetSym(i, j, pairwiseCorrelation(values[i], values[j]))
		}
	}
	return correlations, nil
}

func pairwiseCorrelation(x, y []float64) float64 {
	var xs, ys []float64
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN()
	}
	if floats.Equal(xs, ys) {
		return 1
	}
	return stat.Correlation(xs, ys, nil)
}

func isConstant(values []float64) bool {
	return floats.Max(values) == floats.Min(values)
}

// UpperTriangleMask returns an n by n mask hiding every cell above the diagonal.
func UpperTriangleMask(n int) [][]bool {
	mask := make([][]bool, n)
	for i := range mask {
		mask[i] = make([]bool, n)
		for j := i + 1; j < n; j++ {
			mask[i][j] = true
		}
	}
	return mask
}

// Plot draws the annotated correlation matrix of the columns chosen with
// WithColumns, all input columns when the option is absent. An empty
// selection fails with ErrEmptySelection.
func (a *CorrelationAnalyzer) Plot(surface render.Surface, opts ...PlotOption) error {
	o := newPlotOptions(opts)
	columns := o.Columns
	if !o.columnsSet {
		columns = a.metaData.Columns
	}
	correlations, err := a.Correlations(columns)
	if err != nil {
		return err
	}

	var mask [][]bool
	if o.HideUpperTriangle {
		mask = UpperTriangleMask(len(columns))
	}
	if o.Title == "" {
		o.Title = "Feature correlations"
	}
	return draw(surface, render.Request{
		Kind:     render.Matrix,
		Title:    o.Title,
		Labels:   append([]string(nil), columns...),
		Matrix:   correlations,
		ColorMap: o.ColorMap,
		Mask:     mask,
		Annotate: true,
	})
}

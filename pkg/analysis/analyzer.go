// Package analysis provides feature analysis views over a match dataset.
//
// Every analyzer is built from one dataset snapshot and splits it into a
// float32-precision input matrix and an outcome class vector (H=0, D=1, A=2).
// The split never changes afterwards; a new dataset needs a new analyzer.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/model"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

var (
	ErrMalformedDataset = errors.New("malformed dataset")
	ErrColumnNotFound   = errors.New("column not found")
	ErrUnimplemented    = errors.New("unimplemented capability")
	ErrEmptySelection   = errors.New("empty column selection")
)

// Analyzer is a view over the input/target split of a match dataset.
type Analyzer interface {
	Inputs() mat.Matrix
	Targets() []int
	Columns() []string

	// Plot issues one rendering request to surface. Each analyzer reads the
	// options it needs and ignores the others. A nil surface draws nothing.
	Plot(surface render.Surface, opts ...PlotOption) error
}

var (
	_ Analyzer = &FeatureAnalyzer{}
	_ Analyzer = &ClassDistributionAnalyzer{}
	_ Analyzer = &CorrelationAnalyzer{}
	_ Analyzer = &ImportanceAnalyzer{}
)

// FeatureAnalyzer holds the input/target split shared by all analyzers.
type FeatureAnalyzer struct {
	metaData *model.Metadata
	inputs   *mat.Dense
	targets  []int
}

func NewFeatureAnalyzer(matches dataframe.DataFrame) (*FeatureAnalyzer, error) {
	if matches.Err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDataset, matches.Err)
	}
	names := matches.Names()
	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}
	for _, column := range model.IdentifierColumns {
		if _, ok := present[column]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedDataset, column)
		}
	}

	var columns []string
	for _, name := range names {
		if !model.IsIdentifier(name) {
			columns = append(columns, name)
		}
	}
	rows := matches.Nrow()
	if rows == 0 {
		return nil, fmt.Errorf("%w: no matches", ErrMalformedDataset)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrMalformedDataset)
	}

	metaData := model.NewMetadata(columns)

	targets := make([]int, rows)
	for i, result := range matches.Col(metaData.TargetColumn).Records() {
		code, ok := metaData.ParseCategoricalTarget(strings.TrimSpace(result))
		if !ok {
			return nil, fmt.Errorf("%w: unknown result %q at row %d", ErrMalformedDataset, result, i)
		}
		targets[i] = code
	}

	inputs := mat.NewDense(rows, metaData.FeatureCount(), nil)
	for j, column := range columns {
		values, err := columnValues(matches.Col(column))
		if err != nil {
			return nil, fmt.Errorf("%w: column %q %s", ErrMalformedDataset, column, err)
		}
		inputs.SetCol(j, values)
	}

	return &FeatureAnalyzer{
		metaData: metaData,
		inputs:   inputs,
		targets:  targets,
	}, nil
}

// columnValues converts a feature column to float32 precision, NaN for
// missing cells. Typed columns are read directly, text is parsed.
func columnValues(s series.Series) ([]float64, error) {
	values := make([]float64, s.Len())
	if s.Type() != series.String {
		for i, v := range s.Float() {
			if math.IsNaN(v) {
				values[i] = v
				continue
			}
			values[i] = float64(float32(v))
		}
		return values, nil
	}

	missing := s.IsNaN()
	for i, record := range s.Records() {
		record = strings.TrimSpace(record)
		if missing[i] || record == "" {
			values[i] = math.NaN()
			continue
		}
		value, err := strconv.ParseFloat(record, 32)
		if err != nil {
			return nil, fmt.Errorf("row %d: %s", i, err)
		}
		values[i] = value
	}
	return values, nil
}

// Inputs returns the feature matrix, one row per match.
func (a *FeatureAnalyzer) Inputs() mat.Matrix {
	return a.inputs
}

// Targets returns the outcome class code of every match.
func (a *FeatureAnalyzer) Targets() []int {
	targets := make([]int, len(a.targets))
	copy(targets, a.targets)
	return targets
}

// Columns returns the input column names in source order.
func (a *FeatureAnalyzer) Columns() []string {
	columns := make([]string, len(a.metaData.Columns))
	copy(columns, a.metaData.Columns)
	return columns
}

func (a *FeatureAnalyzer) MetaData() *model.Metadata {
	return a.metaData
}

// Plot is provided by the concrete analyzers.
func (a *FeatureAnalyzer) Plot(surface render.Surface, opts ...PlotOption) error {
	return fmt.Errorf("%w: plot", ErrUnimplemented)
}

func (a *FeatureAnalyzer) columnIndexes(columns []string) ([]int, error) {
	indexes := make([]int, len(columns))
	for i, column := range columns {
		index, ok := a.metaData.ColumnMap.ContainsName(column)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
		}
		indexes[i] = index
	}
	return indexes, nil
}

// PlotOptions carries every parameter a plot may use.
type PlotOptions struct {
	Title             string
	X                 []float64
	Y                 []string
	Columns           []string
	ColorMap          render.ColorMap
	HideUpperTriangle bool

	// columnsSet tells an explicit, possibly empty, selection from no selection
	columnsSet bool
}

type PlotOption func(*PlotOptions)

func WithTitle(title string) PlotOption {
	return func(o *PlotOptions) { o.Title = title }
}

// WithValues sets bar values x against category labels y.
func WithValues(x []float64, y []string) PlotOption {
	return func(o *PlotOptions) {
		o.X = x
		o.Y = y
	}
}

func WithColumns(columns ...string) PlotOption {
	return func(o *PlotOptions) {
		o.Columns = columns
		o.columnsSet = true
	}
}

func WithColorMap(colorMap render.ColorMap) PlotOption {
	return func(o *PlotOptions) { o.ColorMap = colorMap }
}

func WithUpperTriangleHidden(hide bool) PlotOption {
	return func(o *PlotOptions) { o.HideUpperTriangle = hide }
}

func newPlotOptions(opts []PlotOption) PlotOptions {
	var o PlotOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func draw(surface render.Surface, request render.Request) error {
	if surface == nil {
		return nil
	}
	return surface.Render(request)
}

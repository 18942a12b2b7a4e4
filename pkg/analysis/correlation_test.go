package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

func correlationAnalyzer(t *testing.T) *CorrelationAnalyzer {
	t.Helper()
	df := matches(t, []string{"H", "D", "A"}, []string{"Hx", "Ay", "Neutral_x", "AConst"}, map[string][]string{
		"Hx":        {"1", "2", "3"},
		"Ay":        {"3", "2", "1"},
		"Neutral_x": {"1", "3", "2"},
		"AConst":    {"4", "4", "4"},
	})
	a, err := NewCorrelationAnalyzer(df)
	require.NoError(t, err)
	return a
}

func TestCorrelationPartitions(t *testing.T) {
	a := correlationAnalyzer(t)
	require.Equal(t, []string{"Hx", "Neutral_x"}, a.HomeColumns())
	require.Equal(t, []string{"Ay", "Neutral_x", "AConst"}, a.AwayColumns())

	union := map[string]bool{}
	for _, column := range append(a.HomeColumns(), a.AwayColumns()...) {
		union[column] = true
	}
	for _, column := range a.Columns() {
		require.True(t, union[column], column)
	}
}

func TestCorrelations(t *testing.T) {
	a := correlationAnalyzer(t)
	columns := []string{"Hx", "Ay", "Neutral_x", "AConst"}
	correlations, err := a.Correlations(columns)
	require.NoError(t, err)

	require.Equal(t, -1.0, correlations.At(0, 1))
	require.InDelta(t, 0.5, correlations.At(0, 2), 1e-12)
	for i := 0; i < 3; i++ {
		require.Equal(t, 1.0, correlations.At(i, i))
		for j := 0; j < 3; j++ {
			require.Equal(t, correlations.At(i, j), correlations.At(j, i))
			require.LessOrEqual(t, math.Abs(correlations.At(i, j)), 1.0)
		}
	}
	for i := range columns {
		require.True(t, math.IsNaN(correlations.At(i, 3)))
		require.True(t, math.IsNaN(correlations.At(3, i)))
	}
}

func TestCorrelationsUnknownColumn(t *testing.T) {
	a := correlationAnalyzer(t)
	_, err := a.Correlations([]string{"Hx", "Season"})
	require.ErrorIs(t, err, ErrColumnNotFound)

	_, err = a.Correlations(nil)
	require.ErrorIs(t, err, ErrEmptySelection)
	require.NotErrorIs(t, err, ErrColumnNotFound)

	surface := &recordingSurface{}
	require.ErrorIs(t, a.Plot(surface, WithColumns("Missing")), ErrColumnNotFound)
	require.ErrorIs(t, a.Plot(surface, WithColumns()), ErrEmptySelection)
	require.ErrorIs(t, a.Plot(surface, WithColumns([]string{}...)), ErrEmptySelection)
	require.Empty(t, surface.requests)
}

func TestCorrelationsMissingValues(t *testing.T) {
	df := matches(t, []string{"H", "D", "A", "H"}, []string{"Hx", "Ay", "Hsparse"}, map[string][]string{
		"Hx":      {"NaN", "1", "2", "3"},
		"Ay":      {"5", "3", "2", "1"},
		"Hsparse": {"1", "NaN", "NaN", "1"},
	})
	a, err := NewCorrelationAnalyzer(df)
	require.NoError(t, err)

	correlations, err := a.Correlations([]string{"Hx", "Ay", "Hsparse"})
	require.NoError(t, err)
	require.Equal(t, 1.0, correlations.At(0, 0))
	require.Equal(t, 1.0, correlations.At(1, 1))
	require.InDelta(t, -1.0, correlations.At(0, 1), 1e-12)

	// Hsparse is constant over its present rows.
	require.True(t, math.IsNaN(correlations.At(2, 2)))
	require.True(t, math.IsNaN(correlations.At(0, 2)))

	// Variance skips the missing cell too, so both views agree Hx varies.
	importance, err := NewImportanceAnalyzer(df)
	require.NoError(t, err)
	variances, err := importance.FeatureVariances(nil)
	require.NoError(t, err)
	require.Greater(t, variances.Values[0], 0.0)
}

func TestUpperTriangleMask(t *testing.T) {
	for n := 0; n < 5; n++ {
		mask := UpperTriangleMask(n)
		require.Equal(t, n, len(mask))
		for i := range mask {
			require.Equal(t, n, len(mask[i]))
			for j := range mask[i] {
				require.Equal(t, j > i, mask[i][j])
			}
		}
	}
}

func TestCorrelationPlot(t *testing.T) {
	a := correlationAnalyzer(t)
	surface := &recordingSurface{}

	require.NoError(t, a.Plot(surface,
		WithColumns("Hx", "Ay"),
		WithColorMap(render.Crest),
		WithUpperTriangleHidden(true),
	))
	require.NoError(t, a.Plot(surface))
	require.Equal(t, 2, len(surface.requests))

	masked := surface.requests[0]
	require.Equal(t, render.Matrix, masked.Kind)
	require.True(t, masked.Annotate)
	require.Equal(t, render.Crest, masked.ColorMap)
	require.Equal(t, []string{"Hx", "Ay"}, masked.Labels)
	require.Equal(t, [][]bool{{false, true}, {false, false}}, masked.Mask)
	require.Equal(t, -1.0, masked.Matrix.At(1, 0))
	require.NoError(t, masked.Validate())

	all := surface.requests[1]
	require.Nil(t, all.Mask)
	require.Equal(t, a.Columns(), all.Labels)
	rows, cols := all.Matrix.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 4, cols)
}

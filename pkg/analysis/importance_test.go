package analysis

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

type fitCounter struct {
	mu   sync.Mutex
	fits map[Strategy]int
}

func (c *fitCounter) observe(s Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fits[s]++
}

func (c *fitCounter) count(s Strategy) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fits[s]
}

// importanceAnalyzer builds 30 matches where HForm decides the result,
// AConst never changes and Noise alternates independently of the result.
func importanceAnalyzer(t *testing.T) (*ImportanceAnalyzer, *fitCounter) {
	t.Helper()
	labels := []string{"H", "D", "A"}
	results := make([]string, 30)
	features := map[string][]string{}
	for i := range results {
		class := i % 3
		results[i] = labels[class]
		features["HForm"] = append(features["HForm"], strconv.Itoa(class*10+i%5))
		features["AConst"] = append(features["AConst"], "5")
		features["Noise"] = append(features["Noise"], strconv.Itoa(i%2))
	}
	df := matches(t, results, []string{"HForm", "AConst", "Noise"}, features)

	counter := &fitCounter{fits: map[Strategy]int{}}
	a, err := NewImportanceAnalyzer(df, WithTrees(10), WithSeed(0), WithFitObserver(counter.observe))
	require.NoError(t, err)
	return a, counter
}

func TestFeatureVariancesCached(t *testing.T) {
	a, counter := importanceAnalyzer(t)
	surface := &recordingSurface{}

	first, err := a.FeatureVariances(surface)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		again, err := a.FeatureVariances(surface)
		require.NoError(t, err)
		require.Same(t, first, again)
	}
	require.Equal(t, 1, counter.count(Variance))
	require.Equal(t, 5, len(surface.requests))

	// Other strategies are untouched.
	require.Equal(t, 0, counter.count(ClassificationWeights))
	require.Equal(t, 0, counter.count(EliminationRanking))
	require.Equal(t, 0, counter.count(UnivariateTest))

	require.Equal(t, a.Columns(), first.Features)
	require.Equal(t, 0.0, first.Values[1])
	require.Greater(t, first.Values[0], 0.0)
	require.Equal(t, 0.25, first.Values[2])
}

func TestScoresDetachedFromModels(t *testing.T) {
	a, _ := importanceAnalyzer(t)

	variances, err := a.FeatureVariances(nil)
	require.NoError(t, err)
	variances.Values[1] = 42
	v, err := a.variance()
	require.NoError(t, err)
	require.Equal(t, 0.0, v.model.Variances[1])

	pValues, err := a.FeatureUnivariatePValues()
	require.NoError(t, err)
	pValues.Values[0] = 42
	again, err := a.FeatureUnivariatePValues()
	require.NoError(t, err)
	require.Less(t, again.Values[0], 0.001)
}

func TestFeatureVariancesConcurrentFirstCall(t *testing.T) {
	a, counter := importanceAnalyzer(t)

	results := make([]*FeatureScores, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = a.FeatureVariances(nil)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, counter.count(Variance))
	for _, r := range results {
		require.Same(t, results[0], r)
	}
}

func TestFeatureClassificationWeights(t *testing.T) {
	a, counter := importanceAnalyzer(t)
	surface := &recordingSurface{}

	weights, err := a.FeatureClassificationWeights(surface)
	require.NoError(t, err)
	require.Contains(t, weights.Features, "HForm")
	require.NotContains(t, weights.Features, "AConst")
	require.Equal(t, len(weights.Features), len(weights.Values))
	for _, w := range weights.Values {
		require.Greater(t, w, 0.0)
	}

	require.Equal(t, 1, len(surface.requests))
	require.Equal(t, render.HorizontalBar, surface.requests[0].Kind)
	require.Equal(t, weights.Features, surface.requests[0].Labels)
	require.Equal(t, weights.Values, surface.requests[0].Values)

	// The constant column still shows up among the variances.
	variances, err := a.FeatureVariances(nil)
	require.NoError(t, err)
	require.Equal(t, "AConst", variances.Features[1])
	require.Equal(t, 0.0, variances.Values[1])

	again, err := a.FeatureClassificationWeights(nil)
	require.NoError(t, err)
	require.Same(t, weights, again)
	require.Equal(t, 1, counter.count(ClassificationWeights))
}

func TestFeatureEliminationImportance(t *testing.T) {
	a, counter := importanceAnalyzer(t)
	surface := &recordingSurface{}

	ranking, err := a.FeatureEliminationImportance(surface)
	require.NoError(t, err)
	require.Equal(t, a.Columns(), ranking.Features)
	require.Equal(t, []float64{1, 3, 2}, ranking.Values)
	require.Equal(t, a.Columns(), surface.requests[0].Labels)

	_, err = a.FeatureEliminationImportance(nil)
	require.NoError(t, err)
	require.Equal(t, 1, counter.count(EliminationRanking))
	require.Equal(t, 0, counter.count(ClassificationWeights))
}

func TestFeatureUnivariateImportance(t *testing.T) {
	a, counter := importanceAnalyzer(t)

	scores, err := a.FeatureUnivariateImportance(nil)
	require.NoError(t, err)
	require.Equal(t, a.Columns(), scores.Features)
	require.Greater(t, scores.Values[0], 100.0)
	require.Equal(t, 0.0, scores.Values[1])
	require.Equal(t, 0.0, scores.Values[2])

	pValues, err := a.FeatureUnivariatePValues()
	require.NoError(t, err)
	require.Less(t, pValues.Values[0], 0.001)
	require.Equal(t, 1.0, pValues.Values[1])
	require.Equal(t, 1, counter.count(UnivariateTest))
}

func TestScoresDispatch(t *testing.T) {
	a, counter := importanceAnalyzer(t)
	for _, strategy := range Strategies {
		scores, err := a.Scores(strategy, nil)
		require.NoError(t, err)
		require.Equal(t, strategy, scores.Strategy)
		require.Equal(t, 1, counter.count(strategy))
	}
	_, err := a.Scores(Strategy(42), nil)
	require.ErrorIs(t, err, ErrUnimplemented)
}

func TestParseStrategy(t *testing.T) {
	for _, strategy := range Strategies {
		parsed, err := ParseStrategy(strategy.Slug())
		require.NoError(t, err)
		require.Equal(t, strategy, parsed)
	}
	parsed, err := ParseStrategy("Univariate")
	require.NoError(t, err)
	require.Equal(t, UnivariateTest, parsed)

	_, err = ParseStrategy("shap")
	require.Error(t, err)
}

func TestImportancePlot(t *testing.T) {
	a, _ := importanceAnalyzer(t)
	surface := &recordingSurface{}

	require.NoError(t, a.Plot(surface, WithValues([]float64{3, 1}, []string{"HForm", "Noise"}), WithTitle("custom")))
	require.Equal(t, render.Request{
		Kind:   render.HorizontalBar,
		Title:  "custom",
		Labels: []string{"HForm", "Noise"},
		Values: []float64{3, 1},
	}, surface.requests[0])

	require.Error(t, a.Plot(surface, WithValues([]float64{3}, []string{"HForm", "Noise"})))
	require.Equal(t, 1, len(surface.requests))
}

package analysis

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/forest"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/model"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/selection"
)

// Strategy identifies one of the importance scoring models. Scores of
// different strategies are not comparable with each other.
type Strategy int

const (
	ClassificationWeights Strategy = iota
	EliminationRanking
	Variance
	UnivariateTest
)

var Strategies = []Strategy{ClassificationWeights, EliminationRanking, Variance, UnivariateTest}

func (s Strategy) String() string {
	switch s {
	case ClassificationWeights:
		return "classification weights"
	case EliminationRanking:
		return "feature elimination"
	case Variance:
		return "variance"
	case UnivariateTest:
		return "univariate test"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

var strategySlugs = map[Strategy]string{
	ClassificationWeights: "weights",
	EliminationRanking:    "elimination",
	Variance:              "variance",
	UnivariateTest:        "univariate",
}

// Slug is the short name of the strategy used on the command line and in file names.
func (s Strategy) Slug() string {
	return strategySlugs[s]
}

func ParseStrategy(name string) (Strategy, error) {
	for strategy, slug := range strategySlugs {
		if strings.EqualFold(slug, name) {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("unknown importance strategy %q", name)
}

// FeatureScores pairs features with the statistic a strategy assigns them.
// Scores returned by an ImportanceAnalyzer are its cache and are shared by
// every caller, so treat them as read-only.
type FeatureScores struct {
	Strategy Strategy
	Features []string
	Values   []float64
}

type ImportanceConfig struct {
	Forest forest.Config

	// Observer is called once per model fit
	Observer func(Strategy)
}

type ImportanceOption func(*ImportanceConfig)

func WithSeed(seed uint64) ImportanceOption {
	return func(c *ImportanceConfig) { c.Forest.Seed = seed }
}

func WithTrees(numTrees int) ImportanceOption {
	return func(c *ImportanceConfig) { c.Forest.NumTrees = numTrees }
}

func WithWorkers(workers int) ImportanceOption {
	return func(c *ImportanceConfig) { c.Forest.Workers = workers }
}

func WithFitObserver(observer func(Strategy)) ImportanceOption {
	return func(c *ImportanceConfig) { c.Observer = observer }
}

type fitted[M any] struct {
	model  M
	scores *FeatureScores
}

// ImportanceAnalyzer ranks input features with four independent strategies.
// Each strategy fits its model on first use and serves every later call from
// that model.
type ImportanceAnalyzer struct {
	*FeatureAnalyzer
	config ImportanceConfig

	weights     func() (fitted[*forest.Forest], error)
	elimination func() (fitted[*selection.RFE], error)
	variance    func() (fitted[*selection.VarianceThreshold], error)
	univariate  func() (fitted[*selection.SelectKBest], error)
}

func NewImportanceAnalyzer(matches dataframe.DataFrame, opts ...ImportanceOption) (*ImportanceAnalyzer, error) {
	base, err := NewFeatureAnalyzer(matches)
	if err != nil {
		return nil, err
	}
	config := ImportanceConfig{Forest: forest.DefaultConfig()}
	for _, opt := range opts {
		opt(&config)
	}

	a := &ImportanceAnalyzer{FeatureAnalyzer: base, config: config}
	a.weights = sync.OnceValues(a.fitWeights)
	a.elimination = sync.OnceValues(a.fitElimination)
	a.variance = sync.OnceValues(a.fitVariance)
	a.univariate = sync.OnceValues(a.fitUnivariate)
	return a, nil
}

// FeatureClassificationWeights returns how many splits of the forest use each
// feature. Features no tree splits on are left out. A nil surface skips drawing.
func (a *ImportanceAnalyzer) FeatureClassificationWeights(surface render.Surface) (*FeatureScores, error) {
	w, err := a.weights()
	if err != nil {
		return nil, err
	}
	return w.scores, a.plotScores(surface, w.scores)
}

// FeatureEliminationImportance returns the recursive elimination rank of every
// column, 1 for the retained features.
func (a *ImportanceAnalyzer) FeatureEliminationImportance(surface render.Surface) (*FeatureScores, error) {
	e, err := a.elimination()
	if err != nil {
		return nil, err
	}
	return e.scores, a.plotScores(surface, e.scores)
}

// FeatureVariances returns the population variance of every column.
func (a *ImportanceAnalyzer) FeatureVariances(surface render.Surface) (*FeatureScores, error) {
	v, err := a.variance()
	if err != nil {
		return nil, err
	}
	return v.scores, a.plotScores(surface, v.scores)
}

// FeatureUnivariateImportance returns the ANOVA F score of every column
// against the match outcome.
func (a *ImportanceAnalyzer) FeatureUnivariateImportance(surface render.Surface) (*FeatureScores, error) {
	u, err := a.univariate()
	if err != nil {
		return nil, err
	}
	return u.scores, a.plotScores(surface, u.scores)
}

// FeatureUnivariatePValues returns the p-values of the univariate test,
// sharing its fitted model.
func (a *ImportanceAnalyzer) FeatureUnivariatePValues() (*FeatureScores, error) {
	u, err := a.univariate()
	if err != nil {
		return nil, err
	}
	return &FeatureScores{
		Strategy: UnivariateTest,
		Features: a.Columns(),
		Values:   append([]float64(nil), u.model.PValues...),
	}, nil
}

// Scores dispatches to the entry point of the given strategy.
func (a *ImportanceAnalyzer) Scores(strategy Strategy, surface render.Surface) (*FeatureScores, error) {
	switch strategy {
	case ClassificationWeights:
		return a.FeatureClassificationWeights(surface)
	case EliminationRanking:
		return a.FeatureEliminationImportance(surface)
	case Variance:
		return a.FeatureVariances(surface)
	case UnivariateTest:
		return a.FeatureUnivariateImportance(surface)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnimplemented, strategy)
	}
}

// Plot draws the values x as horizontal bars against the labels y.
func (a *ImportanceAnalyzer) Plot(surface render.Surface, opts ...PlotOption) error {
	o := newPlotOptions(opts)
	if len(o.X) != len(o.Y) {
		return fmt.Errorf("plot has %d values for %d labels", len(o.X), len(o.Y))
	}
	return draw(surface, render.Request{
		Kind:   render.HorizontalBar,
		Title:  o.Title,
		Labels: o.Y,
		Values: o.X,
	})
}

func (a *ImportanceAnalyzer) plotScores(surface render.Surface, scores *FeatureScores) error {
	return a.Plot(surface, WithValues(scores.Values, scores.Features), WithTitle(scores.Strategy.String()))
}

func (a *ImportanceAnalyzer) fitWeights() (fitted[*forest.Forest], error) {
	defer a.observe(ClassificationWeights, time.Now())

	f, err := forest.Fit(a.inputs, a.targets, model.NumOutcomes, a.config.Forest)
	if err != nil {
		return fitted[*forest.Forest]{}, fmt.Errorf("error fitting classifier: %w", err)
	}
	scores := &FeatureScores{Strategy: ClassificationWeights}
	for i, count := range f.SplitCounts() {
		if count > 0 {
			scores.Features = append(scores.Features, a.metaData.Columns[i])
			scores.Values = append(scores.Values, float64(count))
		}
	}
	return fitted[*forest.Forest]{model: f, scores: scores}, nil
}

func (a *ImportanceAnalyzer) fitElimination() (fitted[*selection.RFE], error) {
	defer a.observe(EliminationRanking, time.Now())

	estimator := func(x mat.Matrix, y []int) ([]float64, error) {
		f, err := forest.Fit(x, y, model.NumOutcomes, a.config.Forest)
		if err != nil {
			return nil, err
		}
		return f.GainImportances(), nil
	}
	rfe := selection.NewRFE(estimator, 1)
	if err := rfe.Fit(a.inputs, a.targets); err != nil {
		return fitted[*selection.RFE]{}, fmt.Errorf("error fitting feature elimination: %w", err)
	}
	values := make([]float64, len(rfe.Ranking))
	for i, rank := range rfe.Ranking {
		values[i] = float64(rank)
	}
	return fitted[*selection.RFE]{model: rfe, scores: a.columnScores(EliminationRanking, values)}, nil
}

func (a *ImportanceAnalyzer) fitVariance() (fitted[*selection.VarianceThreshold], error) {
	defer a.observe(Variance, time.Now())

	v := selection.NewVarianceThreshold()
	if err := v.Fit(a.inputs); err != nil {
		return fitted[*selection.VarianceThreshold]{}, fmt.Errorf("error fitting variance threshold: %w", err)
	}
	return fitted[*selection.VarianceThreshold]{model: v, scores: a.columnScores(Variance, v.Variances)}, nil
}

func (a *ImportanceAnalyzer) fitUnivariate() (fitted[*selection.SelectKBest], error) {
	defer a.observe(UnivariateTest, time.Now())

	s := selection.NewSelectKBest(0)
	if err := s.Fit(a.inputs, a.targets, model.NumOutcomes); err != nil {
		return fitted[*selection.SelectKBest]{}, fmt.Errorf("error fitting univariate test: %w", err)
	}
	return fitted[*selection.SelectKBest]{model: s, scores: a.columnScores(UnivariateTest, s.Scores)}, nil
}

func (a *ImportanceAnalyzer) columnScores(strategy Strategy, values []float64) *FeatureScores {
	return &FeatureScores{
		Strategy: strategy,
		Features: a.Columns(),
		Values:   append([]float64(nil), values...),
	}
}

func (a *ImportanceAnalyzer) observe(strategy Strategy, start time.Time) {
	log.Debug().Str("Strategy", strategy.String()).Dur("Elapsed", time.Since(start)).Msg("Fitted scoring model")
	if a.config.Observer != nil {
		a.config.Observer(strategy)
	}
}

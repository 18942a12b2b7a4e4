package analysis

import (
	"github.com/go-gota/gota/dataframe"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

// ClassDistributionAnalyzer shows how balanced the match outcomes are.
type ClassDistributionAnalyzer struct {
	*FeatureAnalyzer
}

func NewClassDistributionAnalyzer(matches dataframe.DataFrame) (*ClassDistributionAnalyzer, error) {
	base, err := NewFeatureAnalyzer(matches)
	if err != nil {
		return nil, err
	}
	return &ClassDistributionAnalyzer{FeatureAnalyzer: base}, nil
}

// Counts returns the number of matches per outcome, indexed by class code.
func (a *ClassDistributionAnalyzer) Counts() []float64 {
	counts := make([]float64, a.metaData.TargetMap.Size())
	for _, target := range a.targets {
		counts[target]++
	}
	return counts
}

// Plot draws one bar per outcome, labeled H, D and A in class code order.
func (a *ClassDistributionAnalyzer) Plot(surface render.Surface, opts ...PlotOption) error {
	o := newPlotOptions(opts)
	if o.Title == "" {
		o.Title = "Class distribution"
	}
	return draw(surface, render.Request{
		Kind:   render.Bar,
		Title:  o.Title,
		Labels: a.metaData.TargetMap.Names(),
		Values: a.Counts(),
	})
}

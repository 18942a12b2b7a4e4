package pkg

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/analysis"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/io"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

type CorrelationParameters struct {
	Columns           []string
	Side              string
	ColorMap          string
	HideUpperTriangle bool
}

type ImportanceParameters struct {
	Strategies []string
	Seed       uint64
	NumTrees   int

	// Workers bounds concurrent tree fits, all cores when <= 0
	Workers int
}

// Classes plots the outcome class distribution of the matches into outputFile.
func Classes(p io.DataParameters, outputFile string) error {
	df, err := loadMatches(p)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewClassDistributionAnalyzer(df)
	if err != nil {
		return err
	}
	counts := analyzer.Counts()
	log.Info().Float64("H", counts[0]).Float64("D", counts[1]).Float64("A", counts[2]).Msg("Class distribution")

	return withChartFile(outputFile, func(surface render.Surface) error {
		return analyzer.Plot(surface, analysis.WithTitle(title(p, "Class distribution")))
	})
}

// Correlation plots the correlation matrix of the selected columns into outputFile.
func Correlation(p io.DataParameters, outputFile string, params CorrelationParameters) error {
	df, err := loadMatches(p)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewCorrelationAnalyzer(df)
	if err != nil {
		return err
	}
	columns, err := selectColumns(analyzer, params.Columns, params.Side)
	if err != nil {
		return err
	}
	colorMap, err := render.ParseColorMap(params.ColorMap)
	if err != nil {
		return err
	}

	return withChartFile(outputFile, func(surface render.Surface) error {
		return analyzer.Plot(surface,
			analysis.WithColumns(columns...),
			analysis.WithColorMap(colorMap),
			analysis.WithUpperTriangleHidden(params.HideUpperTriangle),
			analysis.WithTitle(title(p, "Feature correlations")),
		)
	})
}

// Importance plots every requested strategy into <outputPrefix>-<strategy>.png.
func Importance(p io.DataParameters, outputPrefix string, params ImportanceParameters) error {
	strategies, err := parseStrategies(params.Strategies)
	if err != nil {
		return err
	}
	df, err := loadMatches(p)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewImportanceAnalyzer(df,
		analysis.WithSeed(params.Seed),
		analysis.WithTrees(params.NumTrees),
		analysis.WithWorkers(params.Workers),
	)
	if err != nil {
		return err
	}

	for _, strategy := range strategies {
		outputFile := fmt.Sprintf("%s-%s.png", outputPrefix, strategy.Slug())
		err := withChartFile(outputFile, func(surface render.Surface) error {
			scores, err := analyzer.Scores(strategy, surface)
			if err != nil {
				return err
			}
			logScores(scores)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func selectColumns(analyzer *analysis.CorrelationAnalyzer, columns []string, side string) ([]string, error) {
	if len(columns) > 0 {
		return columns, nil
	}
	var selected []string
	switch strings.ToLower(side) {
	case "", "all":
		selected = analyzer.Columns()
	case "home":
		selected = analyzer.HomeColumns()
	case "away":
		selected = analyzer.AwayColumns()
	default:
		return nil, fmt.Errorf("unknown team side %q", side)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no %s columns", analysis.ErrEmptySelection, side)
	}
	return selected, nil
}

func parseStrategies(names []string) ([]analysis.Strategy, error) {
	if len(names) == 0 {
		return analysis.Strategies, nil
	}
	strategies := make([]analysis.Strategy, 0, len(names))
	for _, name := range names {
		if name == "all" {
			return analysis.Strategies, nil
		}
		strategy, err := analysis.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}

func logScores(scores *analysis.FeatureScores) {
	for i, feature := range scores.Features {
		log.Debug().Str("Strategy", scores.Strategy.String()).Str("Feature", feature).Float64("Score", scores.Values[i]).Msg("")
	}
	log.Info().Str("Strategy", scores.Strategy.String()).Int("Features", len(scores.Features)).Msg("Scored features")
}

func withChartFile(outputFile string, fn func(surface render.Surface) error) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("error creating output file %s: %w", outputFile, err)
	}
	defer f.Close()

	if err := fn(render.NewChartSurface(f)); err != nil {
		return err
	}
	log.Info().Str("File", outputFile).Msg("Saved plot")
	return f.Close()
}

func title(p io.DataParameters, view string) string {
	if p.League == nil || p.League.String() == "" {
		return view
	}
	return fmt.Sprintf("%s: %s", p.League, view)
}

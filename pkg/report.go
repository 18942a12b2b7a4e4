package pkg

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/analysis"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/forest"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/io"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/render"
)

type CorrelationView struct {
	Title   string   `yaml:"title"`
	Side    string   `yaml:"side"`
	Columns []string `yaml:"columns"`
}

// ReportConfig lists the views written to a report workbook.
type ReportConfig struct {
	ColorMap          string            `yaml:"color_map"`
	HideUpperTriangle bool              `yaml:"hide_upper_triangle"`
	Correlations      []CorrelationView `yaml:"correlations"`
	Strategies        []string          `yaml:"strategies"`
	PValues           bool              `yaml:"p_values"`
	Seed              uint64            `yaml:"seed"`
	NumTrees          int               `yaml:"trees"`
	Workers           int               `yaml:"workers"`
}

func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		ColorMap:          string(render.Coolwarm),
		HideUpperTriangle: true,
		Correlations: []CorrelationView{
			{Title: "Home correlations", Side: "home"},
			{Title: "Away correlations", Side: "away"},
		},
		Strategies: []string{"all"},
		PValues:    true,
		NumTrees:   forest.DefaultConfig().NumTrees,
	}
}

// LoadReportConfig reads a YAML report configuration. Fields missing from the
// file keep their default values.
func LoadReportConfig(path string) (ReportConfig, error) {
	config := DefaultReportConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("error reading report config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("error parsing report config %s: %w", path, err)
	}
	return config, nil
}

// Report renders every configured view into one workbook saved as outputFile.
func Report(p io.DataParameters, outputFile string, config ReportConfig) error {
	strategies, err := parseStrategies(config.Strategies)
	if err != nil {
		return err
	}
	colorMap, err := render.ParseColorMap(config.ColorMap)
	if err != nil {
		return err
	}
	df, err := loadMatches(p)
	if err != nil {
		return err
	}

	classes, err := analysis.NewClassDistributionAnalyzer(df)
	if err != nil {
		return err
	}
	correlations, err := analysis.NewCorrelationAnalyzer(df)
	if err != nil {
		return err
	}
	importance, err := analysis.NewImportanceAnalyzer(df,
		analysis.WithSeed(config.Seed),
		analysis.WithTrees(config.NumTrees),
		analysis.WithWorkers(config.Workers),
	)
	if err != nil {
		return err
	}

	surface := render.NewWorkbookSurface()
	defer surface.Close()

	if err := classes.Plot(surface, analysis.WithTitle("Class distribution")); err != nil {
		return err
	}
	for _, view := range config.Correlations {
		columns, err := selectColumns(correlations, view.Columns, view.Side)
		if err != nil {
			return err
		}
		err = correlations.Plot(surface,
			analysis.WithColumns(columns...),
			analysis.WithColorMap(colorMap),
			analysis.WithUpperTriangleHidden(config.HideUpperTriangle),
			analysis.WithTitle(view.Title),
		)
		if err != nil {
			return fmt.Errorf("error plotting %s: %w", view.Title, err)
		}
	}
	for _, strategy := range strategies {
		scores, err := importance.Scores(strategy, surface)
		if err != nil {
			return err
		}
		logScores(scores)
	}
	if config.PValues {
		pValues, err := importance.FeatureUnivariatePValues()
		if err != nil {
			return err
		}
		err = importance.Plot(surface, analysis.WithValues(pValues.Values, pValues.Features), analysis.WithTitle("univariate p-values"))
		if err != nil {
			return err
		}
	}

	if err := surface.SaveAs(outputFile); err != nil {
		return fmt.Errorf("error saving report to %s: %w", outputFile, err)
	}
	log.Info().Str("File", outputFile).Strs("Sheets", surface.Sheets()).Msg("Saved report")
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/io"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/model"
)

type dataFlags struct {
	inputFile string
	country   string
	league    string
	yearStart int
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.inputFile, "input-file", "i", "", "name of the match statistics file")
	cmd.Flags().StringVarP(&f.country, "country", "", "", "country of the league, used in plot titles")
	cmd.Flags().StringVarP(&f.league, "league", "", "", "name of the league, used in plot titles")
	cmd.Flags().IntVarP(&f.yearStart, "year-start", "y", 0, "ignore matches of seasons before this year")
	_ = cmd.MarkFlagRequired("input-file")
}

func (f *dataFlags) parameters() io.DataParameters {
	p := io.DataParameters{DataFile: f.inputFile}
	if f.country != "" || f.league != "" || f.yearStart > 0 {
		p.League = model.NewLeague(f.country, f.league, "", f.yearStart, "", "")
	}
	return p
}

func ClassesCommand() *cobra.Command {
	var data dataFlags
	var outputFile string

	var cmd = &cobra.Command{
		Use:   "classes -i matchFile -o outputFile",
		Short: "Plots how often each match outcome occurs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Classes(data.parameters(), outputFile)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "classes.png", "name of the PNG file to write")

	return cmd
}

func CorrelationCommand() *cobra.Command {
	var data dataFlags
	var outputFile string
	var params pkg.CorrelationParameters

	var cmd = &cobra.Command{
		Use:   "correlation -i matchFile -o outputFile [--side home|away|all] [--columns a,b]",
		Short: "Plots the pairwise correlation heatmap of the match statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Correlation(data.parameters(), outputFile, params)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "correlation.png", "name of the PNG file to write")
	cmd.Flags().StringVarP(&params.Side, "side", "s", "all", "team side of the columns: home, away or all")
	cmd.Flags().StringSliceVarP(&params.Columns, "columns", "c", nil, "explicit list of columns, overrides --side")
	cmd.Flags().StringVarP(&params.ColorMap, "color-map", "m", "coolwarm", "heatmap color map: coolwarm, rocket, icefire, crest or Blues")
	cmd.Flags().BoolVarP(&params.HideUpperTriangle, "hide-upper-triangle", "", false, "hide the mirrored upper half of the matrix")

	return cmd
}

func ImportanceCommand() *cobra.Command {
	var data dataFlags
	var outputPrefix string
	var params pkg.ImportanceParameters

	var cmd = &cobra.Command{
		Use:   "importance -i matchFile -o outputPrefix [--strategies weights,elimination,variance,univariate]",
		Short: "Scores the match statistics with one or more feature importance strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Importance(data.parameters(), outputPrefix, params)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&outputPrefix, "output-prefix", "o", "importance", "prefix of the PNG files to write, one per strategy")
	cmd.Flags().StringSliceVarP(&params.Strategies, "strategies", "s", []string{"all"}, "strategies to run: weights, elimination, variance, univariate or all")
	cmd.Flags().Uint64VarP(&params.Seed, "random-seed", "x", 0, "random seed of the tree ensembles")
	cmd.Flags().IntVarP(&params.NumTrees, "num-trees", "n", 100, "number of trees in each ensemble")
	cmd.Flags().IntVarP(&params.Workers, "workers", "w", 0, "number of trees fitted concurrently, all cores when 0")

	return cmd
}

func ReportCommand() *cobra.Command {
	var data dataFlags
	var outputFile string
	var configFile string
	var overrides pkg.ReportConfig

	var cmd = &cobra.Command{
		Use:   "report -i matchFile -o outputFile [-c reportConfig]",
		Short: "Writes every analysis view to a single spreadsheet workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := pkg.DefaultReportConfig()
			if configFile != "" {
				var err error
				if config, err = pkg.LoadReportConfig(configFile); err != nil {
					return err
				}
			}

			// Flags given explicitly win over the file
			flags := cmd.Flags()
			if flags.Changed("color-map") {
				config.ColorMap = overrides.ColorMap
			}
			if flags.Changed("strategies") {
				config.Strategies = overrides.Strategies
			}
			if flags.Changed("random-seed") {
				config.Seed = overrides.Seed
			}
			if flags.Changed("num-trees") {
				config.NumTrees = overrides.NumTrees
			}
			if flags.Changed("workers") {
				config.Workers = overrides.Workers
			}
			return pkg.Report(data.parameters(), outputFile, config)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "report.xlsx", "name of the workbook to write")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML file describing the report views (optional)")
	cmd.Flags().StringVarP(&overrides.ColorMap, "color-map", "m", "coolwarm", "heatmap color map")
	cmd.Flags().StringSliceVarP(&overrides.Strategies, "strategies", "s", []string{"all"}, "importance strategies to include")
	cmd.Flags().Uint64VarP(&overrides.Seed, "random-seed", "x", 0, "random seed of the tree ensembles")
	cmd.Flags().IntVarP(&overrides.NumTrees, "num-trees", "n", 100, "number of trees in each ensemble")
	cmd.Flags().IntVarP(&overrides.Workers, "workers", "w", 0, "number of trees fitted concurrently, all cores when 0")

	return cmd
}

var logLevel string
var logFormat string

func RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "prophitbet",
		Short:             "Analyzes the statistics of soccer matches ahead of outcome prediction",
		PersistentPreRunE: setupLogging,
		SilenceUsage:      true,
	}

	root.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info error or debug")
	root.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	root.AddCommand(ClassesCommand())
	root.AddCommand(CorrelationCommand())
	root.AddCommand(ImportanceCommand())
	root.AddCommand(ReportCommand())
	return root
}

func main() {
	if err := RootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {

	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		return fmt.Errorf("invalid logging level %q", logLevel)
	}

	switch logFormat {
	case "pretty":
		setupPrettyLogging()
	case "json":
	default:
		return fmt.Errorf("invalid log format %q", logFormat)
	}
	return nil
}

func setupPrettyLogging() {
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		default:
			return fmt.Sprintf("%s", i)
		}

	}
	log.Logger = log.Output(writer)
}

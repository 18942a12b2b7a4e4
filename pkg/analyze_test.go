package pkg

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/analysis"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/io"
	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/model"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// writeMatches writes 30 matches where HW decides the result.
func writeMatches(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Season,Date,Home Team,Away Team,Result,HW,HL,AW,AL\n")
	labels := []string{"H", "D", "A"}
	for i := 0; i < 30; i++ {
		class := i % 3
		fmt.Fprintf(&b, "%d,%02d/01/20,Home %d,Away %d,%s,%d,%d,%d,%d\n",
			2018+i%3, i%28+1, i, i, labels[class], class*10+i%5, i%4, i%7, (i*3)%5)
	}
	path := filepath.Join(t.TempDir(), "matches.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func requirePNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, pngSignature), path)
}

func TestClasses(t *testing.T) {
	p := io.DataParameters{DataFile: writeMatches(t), League: model.NewLeague("England", "Premier League", "", 0, "", "")}
	out := filepath.Join(t.TempDir(), "classes.png")
	require.NoError(t, Classes(p, out))
	requirePNG(t, out)
}

func TestCorrelation(t *testing.T) {
	p := io.DataParameters{DataFile: writeMatches(t)}
	dir := t.TempDir()

	for _, side := range []string{"home", "away", "all"} {
		out := filepath.Join(dir, side+".png")
		require.NoError(t, Correlation(p, out, CorrelationParameters{Side: side, ColorMap: "crest", HideUpperTriangle: true}))
		requirePNG(t, out)
	}

	err := Correlation(p, filepath.Join(dir, "x.png"), CorrelationParameters{Side: "neutral", ColorMap: "crest"})
	require.Error(t, err)
	err = Correlation(p, filepath.Join(dir, "x.png"), CorrelationParameters{ColorMap: "viridis"})
	require.Error(t, err)
	err = Correlation(p, filepath.Join(dir, "x.png"), CorrelationParameters{Columns: []string{"HW", "Odds"}, ColorMap: "crest"})
	require.ErrorIs(t, err, analysis.ErrColumnNotFound)
}

func TestCorrelationEmptySide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "away.csv")
	require.NoError(t, os.WriteFile(path, []byte(`Season,Date,Home Team,Away Team,Result,AW,AL
2020,01/01/20,Home 0,Away 0,H,1,3
2020,02/01/20,Home 1,Away 1,D,2,2
2020,03/01/20,Home 2,Away 2,A,3,1
`), 0o644))
	p := io.DataParameters{DataFile: path}
	out := filepath.Join(t.TempDir(), "home.png")

	err := Correlation(p, out, CorrelationParameters{Side: "home", ColorMap: "crest"})
	require.ErrorIs(t, err, analysis.ErrEmptySelection)
	require.NoFileExists(t, out)

	require.NoError(t, Correlation(p, out, CorrelationParameters{Side: "away", ColorMap: "crest"}))
	requirePNG(t, out)
}

func TestImportance(t *testing.T) {
	p := io.DataParameters{DataFile: writeMatches(t)}
	prefix := filepath.Join(t.TempDir(), "importance")

	require.NoError(t, Importance(p, prefix, ImportanceParameters{Strategies: []string{"all"}, NumTrees: 5}))
	for _, strategy := range analysis.Strategies {
		requirePNG(t, prefix+"-"+strategy.Slug()+".png")
	}

	err := Importance(p, prefix, ImportanceParameters{Strategies: []string{"shap"}, NumTrees: 5})
	require.Error(t, err)
}

func TestMissingDataFile(t *testing.T) {
	p := io.DataParameters{DataFile: filepath.Join(t.TempDir(), "missing.csv")}
	require.Error(t, Classes(p, filepath.Join(t.TempDir(), "classes.png")))
}

func TestParseStrategies(t *testing.T) {
	strategies, err := parseStrategies(nil)
	require.NoError(t, err)
	require.Equal(t, analysis.Strategies, strategies)

	strategies, err = parseStrategies([]string{"variance", "weights"})
	require.NoError(t, err)
	require.Equal(t, []analysis.Strategy{analysis.Variance, analysis.ClassificationWeights}, strategies)
}

func TestReport(t *testing.T) {
	p := io.DataParameters{DataFile: writeMatches(t)}
	dir := t.TempDir()

	configFile := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
color_map: icefire
correlations:
  - title: Wins
    columns: [HW, AW]
strategies: [variance, univariate]
trees: 5
`), 0o644))
	config, err := LoadReportConfig(configFile)
	require.NoError(t, err)
	require.Equal(t, "icefire", config.ColorMap)
	require.True(t, config.HideUpperTriangle)
	require.True(t, config.PValues)
	require.Equal(t, 5, config.NumTrees)

	out := filepath.Join(dir, "report.xlsx")
	require.NoError(t, Report(p, out, config))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Class distribution", "Wins", "variance", "univariate test", "univariate p-values"}, f.GetSheetList())

	value, err := f.GetCellValue("Wins", "B1")
	require.NoError(t, err)
	require.Equal(t, "HW", value)
}

func TestLoadReportConfigErrors(t *testing.T) {
	_, err := LoadReportConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("trees: [1, 2"), 0o644))
	_, err = LoadReportConfig(bad)
	require.Error(t, err)
}

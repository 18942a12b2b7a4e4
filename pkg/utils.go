package pkg

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog/log"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/io"
)

func printDataErrors(errors []io.DataError) {
	for _, err := range errors {
		log.Error().Msgf("Error parsing data at line %d: %s", err.Line, err.Error)
	}
}

func loadMatches(p io.DataParameters) (dataframe.DataFrame, error) {
	df, dataErrors, err := io.LoadMatches(p)
	if err != nil {
		return df, fmt.Errorf("error loading matches from %s: %w", p.DataFile, err)
	}
	printDataErrors(dataErrors)
	log.Info().Str("File", p.DataFile).Int("Matches", df.Nrow()).Int("Columns", df.Ncol()).Msg("Loaded matches")
	return df, nil
}

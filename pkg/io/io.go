package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/iClaudiaHub/ProphitBet-Soccer-Bets-Predictor/pkg/model"
)

type DataParameters struct {
	DataFile string

	// League optionally restricts the matches to seasons from its start year on
	League *model.League
}

type DataError struct {
	Line  int
	Error string
}

// LoadMatches reads the match file and returns the finalized dataset.
func LoadMatches(p DataParameters) (dataframe.DataFrame, []DataError, error) {
	inputFile, err := os.Open(p.DataFile)
	if err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("error opening file: %w", err)
	}
	defer inputFile.Close()

	return ReadMatches(inputFile, p.League)
}

// ReadMatches parses match records from r. Lines that cannot be used are
// reported as data errors and skipped.
func ReadMatches(r io.Reader, league *model.League) (dataframe.DataFrame, []DataError, error) {
	var errors []DataError

	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.FieldsPerRecord = -1

	//First line is expected to be a header
	header, err := reader.Read()
	if err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("error reading data header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	seasonColumn := -1
	for i, col := range header {
		if col == model.SeasonColumn {
			seasonColumn = i
		}
	}

	var records [][]string
	currentLine := 1
	for record, err := reader.Read(); err != io.EOF; record, err = reader.Read() {
		currentLine++
		if err != nil {
			errors = append(errors, DataError{Line: currentLine, Error: err.Error()})
			continue
		}
		if len(record) != len(header) {
			errors = append(errors, DataError{
				Line:  currentLine,
				Error: fmt.Sprintf("expected %d fields, found %d", len(header), len(record)),
			})
			continue
		}

		if league != nil && league.YearStart() > 0 && seasonColumn >= 0 {
			season, err := strconv.Atoi(strings.TrimSpace(record[seasonColumn]))
			if err != nil {
				errors = append(errors, DataError{Line: currentLine, Error: fmt.Sprintf("error parsing season: %s", err)})
				continue
			}
			if season < league.YearStart() {
				continue
			}
		}
		records = append(records, record)
	}

	records = Finalize(records)
	df := dataframe.LoadRecords(
		append([][]string{header}, records...),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors, fmt.Errorf("error building dataset: %w", df.Err)
	}
	return df, errors, nil
}

// Finalize drops duplicate records, keeping the first occurrence, and reverses
// the remaining order so the oldest downloaded match comes first.
func Finalize(records [][]string) [][]string {
	seen := make(map[string]struct{}, len(records))
	unique := make([][]string, 0, len(records))
	for _, record := range records {
		key := strings.Join(record, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, record)
	}

	for i, j := 0, len(unique)-1; i < j; i, j = i+1, j-1 {
		unique[i], unique[j] = unique[j], unique[i]
	}
	return unique
}

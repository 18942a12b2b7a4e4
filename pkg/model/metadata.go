package model

import "sort"

// Identifier and label columns every match dataset must carry.
const (
	SeasonColumn   = "Season"
	DateColumn     = "Date"
	HomeTeamColumn = "Home Team"
	AwayTeamColumn = "Away Team"
	ResultColumn   = "Result"
)

// IdentifierColumns lists the columns that never take part in the input matrix.
var IdentifierColumns = []string{SeasonColumn, DateColumn, HomeTeamColumn, AwayTeamColumn, ResultColumn}

// Outcome class codes. Any statistic keyed by class index uses this order.
const (
	Home = iota
	Draw
	Away
	NumOutcomes
)

// NameMap implements a bidirectional mapping between a name and an index
type NameMap struct {
	NameToIndex map[string]int
	IndexToName map[int]string
}

func (f NameMap) Set(name string, index int) {
	f.NameToIndex[name] = index
	f.IndexToName[index] = name
}

func (f NameMap) Size() int {
	return len(f.IndexToName)
}

func (f NameMap) ContainsName(name string) (int, bool) {
	index, ok := f.NameToIndex[name]
	return index, ok
}

// Names returns the mapped names ordered by index.
func (f NameMap) Names() []string {
	indexes := make([]int, 0, len(f.IndexToName))
	for index := range f.IndexToName {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	names := make([]string, len(indexes))
	for i, index := range indexes {
		names[i] = f.IndexToName[index]
	}
	return names
}

func NewNameMap() NameMap {
	return NameMap{
		NameToIndex: map[string]int{},
		IndexToName: map[int]string{},
	}
}

// NewOutcomeMap returns the fixed H/D/A to 0/1/2 result encoding.
func NewOutcomeMap() NameMap {
	m := NewNameMap()
	m.Set("H", Home)
	m.Set("D", Draw)
	m.Set("A", Away)
	return m
}

// Metadata describes the input/target split of a match dataset.
type Metadata struct {
	// Columns holds the input column names in source order
	Columns []string

	// ColumnMap maps an input column name to its index in the input matrix
	ColumnMap NameMap

	// TargetColumn is the name of the label column
	TargetColumn string

	// TargetMap maps result labels to class codes
	TargetMap NameMap
}

func NewMetadata(columns []string) *Metadata {
	columnMap := NewNameMap()
	for i, col := range columns {
		columnMap.Set(col, i)
	}
	return &Metadata{
		Columns:      columns,
		ColumnMap:    columnMap,
		TargetColumn: ResultColumn,
		TargetMap:    NewOutcomeMap(),
	}
}

func (d *Metadata) FeatureCount() int {
	return len(d.Columns)
}

// ParseCategoricalTarget returns the class code of a result label.
func (d *Metadata) ParseCategoricalTarget(value string) (int, bool) {
	return d.TargetMap.ContainsName(value)
}

// IsIdentifier reports whether the column is one of the identifier/label columns.
func IsIdentifier(column string) bool {
	for _, id := range IdentifierColumns {
		if id == column {
			return true
		}
	}
	return false
}

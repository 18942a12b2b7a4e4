package model

import "fmt"

// League describes where the matches of a competition come from.
type League struct {
	country     string
	name        string
	url         string
	yearStart   int
	leagueType  string
	fixturesURL string
}

func NewLeague(country, name, url string, yearStart int, leagueType, fixturesURL string) *League {
	return &League{
		country:     country,
		name:        name,
		url:         url,
		yearStart:   yearStart,
		leagueType:  leagueType,
		fixturesURL: fixturesURL,
	}
}

func (l *League) Country() string     { return l.country }
func (l *League) Name() string        { return l.name }
func (l *League) URL() string         { return l.url }
func (l *League) YearStart() int      { return l.yearStart }
func (l *League) LeagueType() string  { return l.leagueType }
func (l *League) FixturesURL() string { return l.fixturesURL }

func (l *League) SetYearStart(yearStart int) {
	l.yearStart = yearStart
}

func (l *League) String() string {
	if l.country == "" {
		return l.name
	}
	return fmt.Sprintf("%s %s", l.country, l.name)
}

package oddsapi

import "strings"

// The Odds API names teams in full; box scores and rosters use tricodes.
var teamNames = map[string]string{
	"ATL": "Atlanta Hawks",
	"BOS": "Boston Celtics",
	"BKN": "Brooklyn Nets",
	"CHA": "Charlotte Hornets",
	"CHI": "Chicago Bulls",
	"CLE": "Cleveland Cavaliers",
	"DAL": "Dallas Mavericks",
	"DEN": "Denver Nuggets",
	"DET": "Detroit Pistons",
	"GSW": "Golden State Warriors",
	"HOU": "Houston Rockets",
	"IND": "Indiana Pacers",
	"LAC": "Los Angeles Clippers",
	"LAL": "Los Angeles Lakers",
	"MEM": "Memphis Grizzlies",
	"MIA": "Miami Heat",
	"MIL": "Milwaukee Bucks",
	"MIN": "Minnesota Timberwolves",
	"NOP": "New Orleans Pelicans",
	"NYK": "New York Knicks",
	"OKC": "Oklahoma City Thunder",
	"ORL": "Orlando Magic",
	"PHI": "Philadelphia 76ers",
	"PHX": "Phoenix Suns",
	"POR": "Portland Trail Blazers",
	"SAC": "Sacramento Kings",
	"SAS": "San Antonio Spurs",
	"TOR": "Toronto Raptors",
	"UTA": "Utah Jazz",
	"WAS": "Washington Wizards",
}

// eventsForTeam narrows events to the ones the team plays in. An unknown code,
// or a code that matches nothing, keeps every event.
func eventsForTeam(events []event, teamCode string) []event {
	name, ok := teamNames[strings.ToUpper(strings.TrimSpace(teamCode))]
	if !ok {
		return events
	}
	var out []event
	for _, e := range events {
		if strings.EqualFold(e.HomeTeam, name) || strings.EqualFold(e.AwayTeam, name) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return events
	}
	return out
}

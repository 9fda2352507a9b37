package oddsapi

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

var marketCategories = map[string]statline.Category{
	"player_points":   statline.Points,
	"player_rebounds": statline.Rebounds,
	"player_assists":  statline.Assists,
}

func propMarketKeys() []string {
	return []string{"player_points", "player_rebounds", "player_assists"}
}

type event struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

type eventOdds struct {
	ID         string      `json:"id"`
	Bookmakers []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Markets []market `json:"markets"`
}

type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Point       *float64 `json:"point"`
}

// player prop outcomes carry the player in description and Over/Under in name;
// some books put the player in name instead.
func (o outcome) player() string {
	if strings.TrimSpace(o.Description) != "" {
		return o.Description
	}
	return o.Name
}

// lineFor takes one point per bookmaker and market for the player, then the
// median across bookmakers.
func (e eventOdds) lineFor(playerName string) statline.Line {
	target := normalizeName(playerName)
	if target == "" {
		return statline.Line{}
	}

	points := make(map[statline.Category][]float64)
	for _, book := range e.Bookmakers {
		for _, m := range book.Markets {
			category, ok := marketCategories[m.Key]
			if !ok {
				continue
			}
			for _, o := range m.Outcomes {
				if o.Point == nil || !namesMatch(normalizeName(o.player()), target) {
					continue
				}
				points[category] = append(points[category], *o.Point)
				break
			}
		}
	}

	var line statline.Line
	for _, category := range statline.SportsbookCategories() {
		if values := points[category]; len(values) > 0 {
			line = line.With(category, median(values))
		}
	}
	return line
}

// normalizeName lowercases and drops punctuation so "P.J. Washington Jr." and
// "PJ Washington Jr" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r) || r == '-':
			if !space && b.Len() > 0 {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func namesMatch(candidate, target string) bool {
	if candidate == "" {
		return false
	}
	return candidate == target || strings.Contains(candidate, target)
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

package nbastats

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

const gameLogDateLayout = "Jan 02, 2006"

// RecentGames reads the player's regular season game log, reaching back one extra
// season when the current one has fewer than limit games before the date.
func (c *Client) RecentGames(ctx context.Context, playerID string, before time.Time, limit int) ([]gamelog.Game, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("player id is required")
	}

	out := make([]gamelog.Game, 0, limit)
	for _, season := range []string{seasonFor(before), seasonFor(before.AddDate(-1, 0, 0))} {
		games, err := c.playerGameLog(ctx, playerID, season)
		if err != nil {
			return nil, err
		}
		for _, g := range games {
			if g.Date.Before(before) {
				out = append(out, g)
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) playerGameLog(ctx context.Context, playerID, season string) ([]gamelog.Game, error) {
	query := url.Values{}
	query.Set("PlayerID", playerID)
	query.Set("Season", season)
	query.Set("SeasonType", "Regular Season")
	query.Set("LeagueID", "00")

	var payload resultSetEnvelope
	if err := c.doJSON(ctx, "playergamelog", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch game log player=%s season=%s: %w", playerID, season, err)
	}

	rows := payload.rows("PlayerGameLog")
	out := make([]gamelog.Game, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse(gameLogDateLayout, getString(r, "GAME_DATE"))
		if err != nil {
			c.logger.DebugContext(ctx, "skip game log row with bad date", "player_id", playerID, "value", getString(r, "GAME_DATE"))
			continue
		}
		out = append(out, gamelog.Game{
			GameID:   getString(r, "GAME_ID"),
			PlayerID: playerID,
			Date:     date,
			Matchup:  getString(r, "MATCHUP"),
			Minutes:  parseMinutes(r["MIN"]),
			Line:     lineFromRow(r, "TOV"),
		})
	}
	return out, nil
}

// seasonFor maps a date to its NBA season label, e.g. 2026-01-10 to "2025-26".
func seasonFor(date time.Time) string {
	start := date.Year()
	if date.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

func lineFromRow(r row, turnoverKey string) statline.Line {
	columns := []struct {
		key      string
		category statline.Category
	}{
		{"PTS", statline.Points},
		{"REB", statline.Rebounds},
		{"AST", statline.Assists},
		{"STL", statline.Steals},
		{"BLK", statline.Blocks},
		{turnoverKey, statline.Turnovers},
		{"PF", statline.PersonalFouls},
	}

	var line statline.Line
	for _, col := range columns {
		if v, ok := getFloat(r, col.key); ok {
			line = line.With(col.category, v)
		}
	}
	return line
}

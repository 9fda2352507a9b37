package nbastats

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
)

func (c *Client) GamesByDate(ctx context.Context, date time.Time) ([]schedule.Game, error) {
	day := date.Format(time.DateOnly)
	query := url.Values{}
	query.Set("GameDate", day)
	query.Set("LeagueID", "00")
	query.Set("DayOffset", "0")

	var payload resultSetEnvelope
	if err := c.doJSON(ctx, "scoreboardv2", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch scoreboard date=%s: %w", day, err)
	}

	teamCodes := make(map[string]string)
	for _, r := range payload.rows("LineScore") {
		teamCodes[getString(r, "TEAM_ID")] = getString(r, "TEAM_ABBREVIATION")
	}

	headers := payload.rows("GameHeader")
	out := make([]schedule.Game, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for _, r := range headers {
		gameID := getString(r, "GAME_ID")
		if gameID == "" {
			continue
		}
		if _, ok := seen[gameID]; ok {
			continue
		}
		seen[gameID] = struct{}{}
		out = append(out, schedule.Game{
			GameID:    gameID,
			Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			HomeTeam:  teamCodes[getString(r, "HOME_TEAM_ID")],
			AwayTeam:  teamCodes[getString(r, "VISITOR_TEAM_ID")],
			StartTime: getString(r, "GAME_STATUS_TEXT"),
			Status:    statusFromID(getInt(r, "GAME_STATUS_ID")),
		})
	}
	return out, nil
}

package nbastats

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
)

const gameStatusFinal = 3

// BoxScore returns the player's traditional box score line. For games that are not
// final only the status is filled in.
func (c *Client) BoxScore(ctx context.Context, gameID, playerID string) (gamelog.BoxScore, error) {
	gameID = strings.TrimSpace(gameID)
	playerID = strings.TrimSpace(playerID)
	if gameID == "" || playerID == "" {
		return gamelog.BoxScore{}, fmt.Errorf("game id and player id are required")
	}

	summary, found, err := c.gameSummary(ctx, gameID)
	if err != nil {
		return gamelog.BoxScore{}, err
	}
	if !found {
		return gamelog.BoxScore{}, fmt.Errorf("game=%s has no summary: %w", gameID, gamelog.ErrPlayerNotInGame)
	}
	out := gamelog.BoxScore{
		GameID:   gameID,
		PlayerID: playerID,
		Date:     summary.date,
		Status:   summary.status,
	}
	if !gamelog.IsFinalStatus(summary.status) {
		return out, nil
	}

	rows, err := c.traditionalRows(ctx, gameID)
	if err != nil {
		return gamelog.BoxScore{}, err
	}
	for _, r := range rows {
		if getString(r, "PLAYER_ID") != playerID {
			continue
		}
		out.PlayerName = getString(r, "PLAYER_NAME")
		out.TeamCode = getString(r, "TEAM_ABBREVIATION")
		out.Comment = getString(r, "COMMENT")
		out.Minutes = parseMinutes(r["MIN"])
		out.Line = lineFromRow(r, "TO")
		// Inactive and DNP rows come back with a comment and null minutes.
		out.DidNotPlay = out.Minutes <= 0 || out.Comment != ""
		return out, nil
	}

	return gamelog.BoxScore{}, fmt.Errorf("game=%s player=%s: %w", gameID, playerID, gamelog.ErrPlayerNotInGame)
}

func (c *Client) traditionalRows(ctx context.Context, gameID string) ([]row, error) {
	query := url.Values{}
	query.Set("GameID", gameID)
	query.Set("StartPeriod", "0")
	query.Set("EndPeriod", "10")
	query.Set("StartRange", "0")
	query.Set("EndRange", "0")
	query.Set("RangeType", "0")

	var payload resultSetEnvelope
	if err := c.doJSON(ctx, "boxscoretraditionalv2", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch box score game=%s: %w", gameID, err)
	}
	return payload.rows("PlayerStats"), nil
}

type summaryTeam struct {
	id   string
	code string
	name string
}

type gameSummary struct {
	status string
	date   time.Time
	home   summaryTeam
	away   summaryTeam
}

// gameSummary reports found=false when the game id matches no game.
func (c *Client) gameSummary(ctx context.Context, gameID string) (gameSummary, bool, error) {
	query := url.Values{}
	query.Set("GameID", gameID)

	var payload resultSetEnvelope
	if err := c.doJSON(ctx, "boxscoresummaryv2", query, &payload); err != nil {
		return gameSummary{}, false, fmt.Errorf("fetch game summary game=%s: %w", gameID, err)
	}

	rows := payload.rows("GameSummary")
	if len(rows) == 0 {
		return gameSummary{}, false, nil
	}
	head := rows[0]
	gameDate, _ := time.Parse("2006-01-02T15:04:05", getString(head, "GAME_DATE_EST"))

	teams := make(map[string]summaryTeam)
	for _, r := range payload.rows("LineScore") {
		id := getString(r, "TEAM_ID")
		nickname := getString(r, "TEAM_NICKNAME")
		if nickname == "" {
			nickname = getString(r, "TEAM_NAME")
		}
		teams[id] = summaryTeam{
			id:   id,
			code: getString(r, "TEAM_ABBREVIATION"),
			name: strings.TrimSpace(getString(r, "TEAM_CITY_NAME") + " " + nickname),
		}
	}
	teamFor := func(key string) summaryTeam {
		id := getString(head, key)
		if team, ok := teams[id]; ok {
			return team
		}
		return summaryTeam{id: id}
	}

	return gameSummary{
		status: statusFromID(getInt(head, "GAME_STATUS_ID")),
		date:   gameDate,
		home:   teamFor("HOME_TEAM_ID"),
		away:   teamFor("VISITOR_TEAM_ID"),
	}, true, nil
}

func statusFromID(id int) string {
	switch id {
	case 1:
		return gamelog.StatusScheduled
	case 2:
		return gamelog.StatusLive
	case gameStatusFinal:
		return gamelog.StatusFinal
	default:
		return gamelog.StatusUnknown
	}
}

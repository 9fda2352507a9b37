package nbastats

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// PlayerName looks the display name up once per day per player.
func (c *Client) PlayerName(ctx context.Context, playerID string) (string, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}

	name, _, err := c.names.Load(ctx, "player_name:"+playerID, func(ctx context.Context) (string, error) {
		query := url.Values{}
		query.Set("PlayerID", playerID)
		query.Set("LeagueID", "00")

		var payload resultSetEnvelope
		if err := c.doJSON(ctx, "commonplayerinfo", query, &payload); err != nil {
			return "", fmt.Errorf("fetch player info player=%s: %w", playerID, err)
		}
		rows := payload.rows("CommonPlayerInfo")
		if len(rows) == 0 {
			return "", fmt.Errorf("player=%s has no profile", playerID)
		}
		name := getString(rows[0], "DISPLAY_FIRST_LAST")
		if name == "" {
			return "", fmt.Errorf("player=%s has no display name", playerID)
		}
		return name, nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

package nbastats

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

var errNoPlayersYet = stderrors.New("box score has no players yet")

// PlayersForGame lists the players in a game's traditional box score. Games that
// have not tipped off have no rows yet; those empty lists are not cached.
func (c *Client) PlayersForGame(ctx context.Context, gameID string) ([]schedule.Player, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput)
	}

	players, _, err := c.players.Load(ctx, "game_players:"+gameID, func(ctx context.Context) ([]schedule.Player, error) {
		rows, err := c.traditionalRows(ctx, gameID)
		if err != nil {
			return nil, err
		}
		out := make([]schedule.Player, 0, len(rows))
		for _, r := range rows {
			playerID := getString(r, "PLAYER_ID")
			if playerID == "" {
				continue
			}
			out = append(out, schedule.Player{
				PlayerID:   playerID,
				PlayerName: getString(r, "PLAYER_NAME"),
				TeamCode:   getString(r, "TEAM_ABBREVIATION"),
				GameID:     gameID,
			})
		}
		if len(out) == 0 {
			return nil, errNoPlayersYet
		}
		return out, nil
	})
	if stderrors.Is(err, errNoPlayersYet) {
		return []schedule.Player{}, nil
	}
	if err != nil {
		return nil, err
	}
	return players, nil
}

// GameRosters returns both teams' current rosters for the game's season.
func (c *Client) GameRosters(ctx context.Context, gameID string) (schedule.GameRosters, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return schedule.GameRosters{}, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput)
	}

	summary, found, err := c.gameSummary(ctx, gameID)
	if err != nil {
		return schedule.GameRosters{}, err
	}
	if !found {
		return schedule.GameRosters{}, fmt.Errorf("%w: game=%s", usecase.ErrNotFound, gameID)
	}
	if summary.home.id == "" || summary.away.id == "" {
		return schedule.GameRosters{}, fmt.Errorf("%w: game=%s summary has no team ids", usecase.ErrUpstreamUnavailable, gameID)
	}

	season := seasonFor(summary.date)
	home, err := c.teamRoster(ctx, summary.home, season)
	if err != nil {
		return schedule.GameRosters{}, err
	}
	away, err := c.teamRoster(ctx, summary.away, season)
	if err != nil {
		return schedule.GameRosters{}, err
	}

	return schedule.GameRosters{
		GameID: gameID,
		Date:   summary.date,
		Home:   home,
		Away:   away,
	}, nil
}

func (c *Client) teamRoster(ctx context.Context, team summaryTeam, season string) (schedule.TeamRoster, error) {
	roster, _, err := c.rosters.Load(ctx, "team_roster:"+team.id+":"+season, func(ctx context.Context) (schedule.TeamRoster, error) {
		query := url.Values{}
		query.Set("TeamID", team.id)
		query.Set("Season", season)
		query.Set("LeagueID", "00")

		var payload resultSetEnvelope
		if err := c.doJSON(ctx, "commonteamroster", query, &payload); err != nil {
			return schedule.TeamRoster{}, fmt.Errorf("fetch roster team=%s season=%s: %w", team.id, season, err)
		}

		rows := payload.rows("CommonTeamRoster")
		out := schedule.TeamRoster{
			TeamID:  team.id,
			Players: make([]schedule.RosterPlayer, 0, len(rows)),
		}
		for _, r := range rows {
			name := getString(r, "PLAYER")
			if name == "" {
				continue
			}
			out.Players = append(out.Players, schedule.RosterPlayer{
				PlayerID:   getString(r, "PLAYER_ID"),
				PlayerName: name,
				Position:   getString(r, "POSITION"),
				Jersey:     getString(r, "NUM"),
			})
		}
		return out, nil
	})
	if err != nil {
		return schedule.TeamRoster{}, err
	}

	roster.TeamName = team.name
	roster.TeamCode = team.code
	return roster, nil
}

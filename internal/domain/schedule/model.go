package schedule

import (
	"context"
	"time"
)

// Game represents one scheduled NBA game on a calendar date.
type Game struct {
	GameID    string
	Date      time.Time
	HomeTeam  string
	AwayTeam  string
	StartTime string
	Status    string
}

// Player is one player listed in a game's box score.
type Player struct {
	PlayerID   string
	PlayerName string
	TeamCode   string
	GameID     string
}

type RosterPlayer struct {
	PlayerID   string
	PlayerName string
	Position   string
	Jersey     string
}

type TeamRoster struct {
	TeamID   string
	TeamName string
	TeamCode string
	Players  []RosterPlayer
}

// GameRosters holds the current season rosters of both teams in a game.
// Unlike Player lists they are available before tip-off.
type GameRosters struct {
	GameID string
	Date   time.Time
	Home   TeamRoster
	Away   TeamRoster
}

// Provider lists games and the players in them.
type Provider interface {
	GamesByDate(ctx context.Context, date time.Time) ([]Game, error)
	// PlayersForGame returns the players in the game's box score. Games that
	// have not started return an empty list.
	PlayersForGame(ctx context.Context, gameID string) ([]Player, error)
	GameRosters(ctx context.Context, gameID string) (GameRosters, error)
}

package gamelog

import (
	"context"
	"time"
)

// Source is the upstream stats contract used by the projectors and the box-score fetcher.
type Source interface {
	// RecentGames returns up to limit completed games played strictly before the given date, newest first.
	RecentGames(ctx context.Context, playerID string, before time.Time, limit int) ([]Game, error)
	// BoxScore returns the player's line for a game. For a game that is not final it
	// returns only the game status. ErrPlayerNotInGame means the final box score does
	// not list the player.
	BoxScore(ctx context.Context, gameID, playerID string) (BoxScore, error)
}

// PlayerDirectory resolves display names for player identifiers.
type PlayerDirectory interface {
	PlayerName(ctx context.Context, playerID string) (string, error)
}

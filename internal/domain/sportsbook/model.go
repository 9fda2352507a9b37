package sportsbook

import (
	"context"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

const (
	ProviderOddsAPI  = "odds_api"
	ProviderPropFeed = "prop_feed"
)

type LineRequest struct {
	PlayerID   string
	PlayerName string
	Date       time.Time
	GameID     string
	// TeamCode is the player's team tricode when known; providers that list
	// lines per game use it to skip unrelated games.
	TeamCode string
}

// Lines holds the prop lines quoted for one player on one date.
// Only points, rebounds and assists are ever populated.
type Lines struct {
	Provider   string
	PlayerID   string
	PlayerName string
	Date       time.Time
	Line       statline.Line
	FetchedAt  time.Time
}

// Provider fetches prop lines from one external source.
type Provider interface {
	Name() string
	FetchLines(ctx context.Context, req LineRequest) (Lines, error)
}

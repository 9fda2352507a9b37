package projection

import (
	"context"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

type Request struct {
	PlayerID   string
	PlayerName string
	Date       time.Time
	GameID     string
}

// Projection is the expected line for one player on one date.
// Source always names the projector that produced Line.
type Projection struct {
	PlayerID   string
	PlayerName string
	Date       time.Time
	GameID     string
	Line       statline.Line
	Source     statline.Source
	Provider   string
	GamesUsed  int
	FetchedAt  time.Time
}

// Projector produces an expected line for a request.
type Projector interface {
	Project(ctx context.Context, req Request) (Projection, error)
}

package pick

import (
	"errors"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

const (
	StatusPicked   = "picked"
	StatusScored   = "scored"
	StatusUnscored = "unscored"
)

var ErrDuplicatePick = errors.New("pick already exists for user and date")

// Pick is one user's player selection for one date inside a group.
type Pick struct {
	ID         string
	GroupID    string
	UserID     string
	Date       time.Time
	PlayerID   string
	PlayerName string
	GameID     string
	Status     string
	CreatedAt  time.Time
}

// Breakdown lists expected, actual and contribution values for the evaluated stats only.
type Breakdown struct {
	Expected      map[string]float64 `json:"expected"`
	Actual        map[string]float64 `json:"actual"`
	Contributions map[string]float64 `json:"contributions"`
}

// Result is the outcome of scoring one pick in one scoring run.
// Unscored results carry a machine Reason and a human Message and score zero.
type Result struct {
	PickID           string
	RunID            string
	Status           string
	Score            float64
	Breakdown        Breakdown
	ProjectionSource statline.Source
	Provider         string
	GameID           string
	Reason           string
	Message          string
	ScoredAt         time.Time
}

func (r Result) IsScored() bool {
	return r.Status == StatusScored
}

// Scored pairs a stored pick with its latest result.
type Scored struct {
	Pick   Pick
	Result Result
}

// LeaderboardRow is derived from results and never stored.
type LeaderboardRow struct {
	UserID        string
	UserName      string
	Score         float64
	ScoredPicks   int
	UnscoredPicks int
}

package gamelog

import (
	"errors"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinal     = "FINAL"
	StatusUnknown   = "UNKNOWN"
)

// ErrPlayerNotInGame means a final box score exists but the player is not listed in it.
var ErrPlayerNotInGame = errors.New("player not listed in box score")

// Game is one completed game from a player's game log.
type Game struct {
	GameID   string
	PlayerID string
	Date     time.Time
	Matchup  string
	Minutes  float64
	Line     statline.Line
}

// BoxScore is a player's line for one game.
type BoxScore struct {
	GameID     string
	PlayerID   string
	PlayerName string
	TeamCode   string
	Date       time.Time
	Status     string
	DidNotPlay bool
	Comment    string
	Minutes    float64
	Line       statline.Line
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusUnknown
	}
	return status
}

func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, "FINISHED", "FINAL/OT", "STATUS_FINAL":
		return true
	default:
		return false
	}
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PROGRESS", "HALFTIME", "STATUS_IN_PROGRESS":
		return true
	default:
		return false
	}
}

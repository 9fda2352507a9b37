package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
	"go.opentelemetry.io/otel/attribute"
)

const defaultLookupWorkers = 4

// PlayerLookupService finds the player ids users pick from: players listed in a
// date's games, in one game, or on both teams' rosters.
type PlayerLookupService struct {
	games   schedule.Provider
	workers int
	logger  *logging.Logger
}

func NewPlayerLookupService(games schedule.Provider, workers int, logger *logging.Logger) *PlayerLookupService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultLookupWorkers
	}
	return &PlayerLookupService{games: games, workers: workers, logger: logger}
}

// PlayersOnDate lists the players of every game on the date whose name contains
// query, case-insensitively. A game whose player list cannot be read is skipped;
// the call fails only when every game failed.
func (s *PlayerLookupService) PlayersOnDate(ctx context.Context, date time.Time, query string) ([]schedule.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLookupService.PlayersOnDate",
		attribute.String("date", formatDate(date)),
	)
	defer span.End()

	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	day := calendarDay(date)

	games, err := s.games.GamesByDate(ctx, day)
	if err != nil {
		err = classifyUpstream(fmt.Errorf("list games date=%s: %w", formatDate(day), err))
		recordSpanError(span, err)
		return nil, err
	}

	type outcome struct {
		players []schedule.Player
		err     error
	}
	mapper := iter.Mapper[schedule.Game, outcome]{MaxGoroutines: s.workers}
	outcomes := mapper.Map(games, func(g *schedule.Game) outcome {
		players, err := s.games.PlayersForGame(ctx, g.GameID)
		return outcome{players: players, err: err}
	})

	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]schedule.Player, 0)
	var lastErr error
	failed := 0
	for i, o := range outcomes {
		if o.err != nil {
			failed++
			lastErr = o.err
			s.logger.WarnContext(ctx, "skipping game players", "game_id", games[i].GameID, "error", o.err)
			continue
		}
		for _, p := range o.players {
			if needle == "" || strings.Contains(strings.ToLower(p.PlayerName), needle) {
				out = append(out, p)
			}
		}
	}
	if len(games) > 0 && failed == len(games) {
		err := classifyUpstream(fmt.Errorf("players for %d games on %s: %w", failed, formatDate(day), lastErr))
		recordSpanError(span, err)
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerName != out[j].PlayerName {
			return out[i].PlayerName < out[j].PlayerName
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (s *PlayerLookupService) PlayersForGame(ctx context.Context, gameID string) ([]schedule.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLookupService.PlayersForGame",
		attribute.String("game_id", gameID),
	)
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	players, err := s.games.PlayersForGame(ctx, gameID)
	if err != nil {
		err = classifyUpstream(fmt.Errorf("players for game=%s: %w", gameID, err))
		recordSpanError(span, err)
		return nil, err
	}
	return players, nil
}

func (s *PlayerLookupService) GameRosters(ctx context.Context, gameID string) (schedule.GameRosters, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerLookupService.GameRosters",
		attribute.String("game_id", gameID),
	)
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return schedule.GameRosters{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	rosters, err := s.games.GameRosters(ctx, gameID)
	if err != nil {
		err = classifyUpstream(fmt.Errorf("rosters for game=%s: %w", gameID, err))
		recordSpanError(span, err)
		return schedule.GameRosters{}, err
	}
	return rosters, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type BoxScoreRequest struct {
	PlayerID string
	GameID   string
	Date     time.Time
}

// BoxScoreService fetches finalized player lines. Results are never cached so a
// re-scored day sees official corrections.
type BoxScoreService struct {
	source   gamelog.Source
	schedule schedule.Provider
	logger   *logging.Logger
}

func NewBoxScoreService(source gamelog.Source, scheduleProvider schedule.Provider, logger *logging.Logger) *BoxScoreService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BoxScoreService{
		source:   source,
		schedule: scheduleProvider,
		logger:   logger,
	}
}

// Fetch returns the player's final line. A player listed without minutes gets a
// zero line with DidNotPlay set and no error.
func (s *BoxScoreService) Fetch(ctx context.Context, req BoxScoreRequest) (gamelog.BoxScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoxScoreService.Fetch",
		attribute.String("player_id", req.PlayerID),
		attribute.String("game_id", req.GameID),
	)
	defer span.End()

	out, err := s.fetch(ctx, req)
	if err != nil {
		recordSpanError(span, err)
		return gamelog.BoxScore{}, err
	}
	return out, nil
}

func (s *BoxScoreService) fetch(ctx context.Context, req BoxScoreRequest) (gamelog.BoxScore, error) {
	playerID := strings.TrimSpace(req.PlayerID)
	gameID := strings.TrimSpace(req.GameID)
	if playerID == "" {
		return gamelog.BoxScore{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if gameID == "" && req.Date.IsZero() {
		return gamelog.BoxScore{}, fmt.Errorf("%w: game id or date is required", ErrInvalidInput)
	}
	if s.source == nil {
		return gamelog.BoxScore{}, fmt.Errorf("%w: stats source is not configured", ErrUpstreamUnavailable)
	}

	if gameID != "" {
		box, err := s.source.BoxScore(ctx, gameID, playerID)
		if err != nil {
			return gamelog.BoxScore{}, s.classify(ctx, playerID, gameID, err)
		}
		return finalizeBoxScore(box, gameID, playerID)
	}

	return s.scanDate(ctx, playerID, calendarDay(req.Date))
}

// scanDate looks for the player in every game on the date.
func (s *BoxScoreService) scanDate(ctx context.Context, playerID string, day time.Time) (gamelog.BoxScore, error) {
	if s.schedule == nil {
		return gamelog.BoxScore{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	games, err := s.schedule.GamesByDate(ctx, day)
	if err != nil {
		s.logger.WarnContext(ctx, "list games by date failed", "date", formatDate(day), "error", err)
		return gamelog.BoxScore{}, classifyUpstream(fmt.Errorf("list games date=%s: %w", formatDate(day), err))
	}

	pendingGameID := ""
	for _, game := range games {
		box, err := s.source.BoxScore(ctx, game.GameID, playerID)
		if errors.Is(err, gamelog.ErrPlayerNotInGame) {
			continue
		}
		if err != nil {
			return gamelog.BoxScore{}, s.classify(ctx, playerID, game.GameID, err)
		}
		if !gamelog.IsFinalStatus(box.Status) {
			// The player may still turn up in this game once it is final.
			pendingGameID = game.GameID
			continue
		}
		if box.Date.IsZero() {
			box.Date = day
		}
		return finalizeBoxScore(box, game.GameID, playerID)
	}

	if pendingGameID != "" {
		return gamelog.BoxScore{}, fmt.Errorf("%w: game=%s on %s", ErrGameNotFinal, pendingGameID, formatDate(day))
	}
	return gamelog.BoxScore{}, fmt.Errorf("%w: player=%s has no box score on %s", ErrNotFound, playerID, formatDate(day))
}

func (s *BoxScoreService) classify(ctx context.Context, playerID, gameID string, err error) error {
	if errors.Is(err, gamelog.ErrPlayerNotInGame) {
		return fmt.Errorf("%w: player=%s game=%s: %w", ErrNotFound, playerID, gameID, err)
	}
	s.logger.WarnContext(ctx, "fetch box score failed", "player_id", playerID, "game_id", gameID, "error", err)
	return classifyUpstream(fmt.Errorf("fetch box score game=%s player=%s: %w", gameID, playerID, err))
}

func finalizeBoxScore(box gamelog.BoxScore, gameID, playerID string) (gamelog.BoxScore, error) {
	if box.GameID == "" {
		box.GameID = gameID
	}
	if box.PlayerID == "" {
		box.PlayerID = playerID
	}
	box.Status = gamelog.NormalizeStatus(box.Status)
	if !gamelog.IsFinalStatus(box.Status) {
		return gamelog.BoxScore{}, fmt.Errorf("%w: game=%s status=%s", ErrGameNotFinal, box.GameID, box.Status)
	}
	if box.DidNotPlay {
		box.Line = statline.Zero()
		box.Minutes = 0
	}
	return box, nil
}

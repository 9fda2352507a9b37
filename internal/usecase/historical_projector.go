package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const defaultHistoricalGames = 10

type HistoricalProjectorConfig struct {
	Enabled bool
	Games   int
}

// HistoricalProjector averages a player's most recent completed games.
type HistoricalProjector struct {
	source  gamelog.Source
	cfg     HistoricalProjectorConfig
	now     func() time.Time
	logger  *logging.Logger
	metrics MetricsRecorder
}

func NewHistoricalProjector(source gamelog.Source, cfg HistoricalProjectorConfig, logger *logging.Logger, metrics MetricsRecorder) *HistoricalProjector {
	if cfg.Games <= 0 {
		cfg.Games = defaultHistoricalGames
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &HistoricalProjector{
		source:  source,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
		metrics: metricsOrNoop(metrics),
	}
}

func (p *HistoricalProjector) Project(ctx context.Context, req projection.Request) (projection.Projection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoricalProjector.Project",
		attribute.String("player_id", req.PlayerID),
	)
	defer span.End()

	out, err := p.project(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = ReasonOf(err)
		recordSpanError(span, err)
	}
	p.metrics.ObserveProjection(string(statline.SourceRecentAverages), outcome)
	return out, err
}

func (p *HistoricalProjector) project(ctx context.Context, req projection.Request) (projection.Projection, error) {
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" {
		return projection.Projection{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return projection.Projection{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if !p.cfg.Enabled || p.source == nil {
		return projection.Projection{}, fmt.Errorf("%w: historical average projector is disabled", ErrUpstreamUnavailable)
	}

	day := calendarDay(req.Date)
	games, err := p.source.RecentGames(ctx, playerID, day, p.cfg.Games)
	if err != nil {
		p.logger.WarnContext(ctx, "fetch recent games failed", "player_id", playerID, "date", formatDate(day), "error", err)
		return projection.Projection{}, classifyUpstream(fmt.Errorf("fetch recent games player=%s: %w", playerID, err))
	}

	recent := newestBefore(games, day, p.cfg.Games)
	if len(recent) == 0 {
		return projection.Projection{}, fmt.Errorf("%w: no completed games for player=%s before %s", ErrInsufficientHistory, playerID, formatDate(day))
	}

	return projection.Projection{
		PlayerID:   playerID,
		PlayerName: req.PlayerName,
		Date:       day,
		GameID:     req.GameID,
		Line:       averageLine(recent),
		Source:     statline.SourceRecentAverages,
		GamesUsed:  len(recent),
		FetchedAt:  p.now().UTC(),
	}, nil
}

// newestBefore keeps games strictly before day, newest first, at most limit.
func newestBefore(games []gamelog.Game, day time.Time, limit int) []gamelog.Game {
	out := make([]gamelog.Game, 0, len(games))
	for _, g := range games {
		if calendarDay(g.Date).Before(day) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].GameID > out[j].GameID
		}
		return out[i].Date.After(out[j].Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// averageLine takes the mean of each category over the games that report it,
// rounded to 2 decimals. Categories no game reports stay unset.
func averageLine(games []gamelog.Game) statline.Line {
	var line statline.Line
	for _, c := range statline.AllCategories() {
		var sum float64
		var count int
		for _, g := range games {
			if v, ok := g.Line.Get(c); ok {
				sum += v
				count++
			}
		}
		if count > 0 {
			line = line.With(c, roundTo2(sum/float64(count)))
		}
	}
	return line
}

// classifyUpstream keeps typed failures and marks everything else as a routine upstream failure.
func classifyUpstream(err error) error {
	if err == nil {
		return nil
	}
	for _, typed := range []error{
		ErrUpstreamUnavailable,
		ErrLineUnavailable,
		ErrNotFound,
		ErrInvalidInput,
		ErrGameNotFinal,
		ErrInsufficientHistory,
	} {
		if errors.Is(err, typed) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

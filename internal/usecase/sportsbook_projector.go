package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/domain/sportsbook"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/cache"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// SportsbookProjector turns cached or freshly fetched prop lines into a projection.
// A nil provider means no sportsbook is configured.
type SportsbookProjector struct {
	provider sportsbook.Provider
	cache    *cache.Store[sportsbook.Lines]
	players  gamelog.PlayerDirectory
	games    schedule.Provider
	logger   *logging.Logger
	metrics  MetricsRecorder
}

func NewSportsbookProjector(
	provider sportsbook.Provider,
	lineCache *cache.Store[sportsbook.Lines],
	players gamelog.PlayerDirectory,
	games schedule.Provider,
	logger *logging.Logger,
	metrics MetricsRecorder,
) *SportsbookProjector {
	if logger == nil {
		logger = logging.Default()
	}

	return &SportsbookProjector{
		provider: provider,
		cache:    lineCache,
		players:  players,
		games:    games,
		logger:   logger,
		metrics:  metricsOrNoop(metrics),
	}
}

func (p *SportsbookProjector) Project(ctx context.Context, req projection.Request) (projection.Projection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SportsbookProjector.Project",
		attribute.String("player_id", req.PlayerID),
	)
	defer span.End()

	out, err := p.project(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = ReasonOf(err)
		recordSpanError(span, err)
	}
	p.metrics.ObserveProjection(string(statline.SourceSportsbook), outcome)
	return out, err
}

// Invalidate drops the cached lines for one player and date.
func (p *SportsbookProjector) Invalidate(playerID string, date time.Time) {
	if p.provider == nil || p.cache == nil {
		return
	}
	p.cache.Invalidate(lineCacheKey(p.provider.Name(), playerID, calendarDay(date)))
}

func (p *SportsbookProjector) project(ctx context.Context, req projection.Request) (projection.Projection, error) {
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" {
		return projection.Projection{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return projection.Projection{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if p.provider == nil {
		return projection.Projection{}, ErrNoProviderConfigured
	}

	day := calendarDay(req.Date)
	name, teamCode := p.identify(ctx, playerID, req.PlayerName, req.GameID)
	lineReq := sportsbook.LineRequest{
		PlayerID:   playerID,
		PlayerName: name,
		Date:       day,
		GameID:     req.GameID,
		TeamCode:   teamCode,
	}

	lines, err := p.lines(ctx, lineReq)
	if err != nil {
		return projection.Projection{}, err
	}

	return projection.Projection{
		PlayerID:   playerID,
		PlayerName: firstNonEmpty(lines.PlayerName, lineReq.PlayerName),
		Date:       day,
		GameID:     req.GameID,
		Line:       lines.Line,
		Source:     statline.SourceSportsbook,
		Provider:   lines.Provider,
		FetchedAt:  lines.FetchedAt,
	}, nil
}

func (p *SportsbookProjector) lines(ctx context.Context, req sportsbook.LineRequest) (sportsbook.Lines, error) {
	providerName := p.provider.Name()
	if p.cache == nil {
		return p.fetch(ctx, req)
	}

	lines, hit, err := p.cache.Load(ctx, lineCacheKey(providerName, req.PlayerID, req.Date), func(ctx context.Context) (sportsbook.Lines, error) {
		return p.fetch(ctx, req)
	})
	p.metrics.ObserveSportsbookCache(providerName, hit)
	if err != nil {
		return sportsbook.Lines{}, err
	}
	return lines, nil
}

func (p *SportsbookProjector) fetch(ctx context.Context, req sportsbook.LineRequest) (sportsbook.Lines, error) {
	providerName := p.provider.Name()
	lines, err := p.provider.FetchLines(ctx, req)
	if err != nil {
		p.logger.WarnContext(ctx, "fetch sportsbook lines failed",
			"provider", providerName,
			"player_id", req.PlayerID,
			"date", formatDate(req.Date),
			"error", err,
		)
		if errors.Is(err, ErrLineUnavailable) {
			return sportsbook.Lines{}, err
		}
		return sportsbook.Lines{}, fmt.Errorf("%w: provider=%s: %w", ErrLineUnavailable, providerName, err)
	}

	lines.Line = lines.Line.Only(statline.SportsbookCategories()...)
	if !lines.Line.HasAny(statline.SportsbookCategories()...) {
		return sportsbook.Lines{}, fmt.Errorf("%w: provider=%s has no points/rebounds/assists line for player=%s on %s",
			ErrLineUnavailable, providerName, req.PlayerID, formatDate(req.Date))
	}
	if lines.Provider == "" {
		lines.Provider = providerName
	}
	if lines.PlayerID == "" {
		lines.PlayerID = req.PlayerID
	}
	if lines.Date.IsZero() {
		lines.Date = req.Date
	}
	return lines, nil
}

// identify resolves the name used to match sportsbook outcomes and, when the
// request names a game, the player's team in it. A given name wins over the
// game's box score, which wins over the player directory. Lookup failures only
// cost the hint.
func (p *SportsbookProjector) identify(ctx context.Context, playerID, given, gameID string) (name, teamCode string) {
	name = strings.TrimSpace(given)

	if gameID = strings.TrimSpace(gameID); gameID != "" && p.games != nil {
		players, err := p.games.PlayersForGame(ctx, gameID)
		if err != nil {
			p.logger.DebugContext(ctx, "resolve game players failed", "game_id", gameID, "error", err)
		}
		for _, pl := range players {
			if pl.PlayerID != playerID {
				continue
			}
			teamCode = pl.TeamCode
			if name == "" {
				name = strings.TrimSpace(pl.PlayerName)
			}
			break
		}
	}
	if name != "" || p.players == nil {
		return name, teamCode
	}

	resolved, err := p.players.PlayerName(ctx, playerID)
	if err != nil {
		p.logger.DebugContext(ctx, "resolve player name failed", "player_id", playerID, "error", err)
		return "", teamCode
	}
	return strings.TrimSpace(resolved), teamCode
}

func lineCacheKey(provider, playerID string, day time.Time) string {
	return provider + ":" + playerID + ":" + formatDate(day)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

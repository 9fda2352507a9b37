package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type ProjectionPreference string

const (
	PreferSportsbook ProjectionPreference = "sportsbook"
	PreferHistorical ProjectionPreference = "historical"
)

func ParseProjectionPreference(raw string) (ProjectionPreference, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(PreferSportsbook):
		return PreferSportsbook, nil
	case string(PreferHistorical), "historical_average", "historical-average-only":
		return PreferHistorical, nil
	default:
		return "", fmt.Errorf("unsupported projection provider %q", raw)
	}
}

type ProjectionResolverConfig struct {
	Preference      ProjectionPreference
	FallbackEnabled bool
}

// ProjectionResolver returns exactly one projection per request, wholly taken from
// one projector. The historical projector is only tried after a sportsbook failure
// when fallback is enabled.
type ProjectionResolver struct {
	sportsbook projection.Projector
	historical projection.Projector
	cfg        ProjectionResolverConfig
	logger     *logging.Logger
}

func NewProjectionResolver(sportsbook, historical projection.Projector, cfg ProjectionResolverConfig, logger *logging.Logger) *ProjectionResolver {
	if cfg.Preference == "" {
		cfg.Preference = PreferSportsbook
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ProjectionResolver{
		sportsbook: sportsbook,
		historical: historical,
		cfg:        cfg,
		logger:     logger,
	}
}

func (r *ProjectionResolver) Project(ctx context.Context, req projection.Request) (projection.Projection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionResolver.Project",
		attribute.String("player_id", req.PlayerID),
		attribute.String("preference", string(r.cfg.Preference)),
	)
	defer span.End()

	out, err := r.resolve(ctx, req)
	if err != nil {
		recordSpanError(span, err)
		return projection.Projection{}, err
	}
	span.SetAttributes(attribute.String("source", string(out.Source)))
	return out, nil
}

func (r *ProjectionResolver) resolve(ctx context.Context, req projection.Request) (projection.Projection, error) {
	if r.cfg.Preference == PreferHistorical {
		if r.historical == nil {
			return projection.Projection{}, fmt.Errorf("%w: historical average projector is not configured", ErrUpstreamUnavailable)
		}
		return r.historical.Project(ctx, req)
	}

	primaryErr := ErrNoProviderConfigured
	if r.sportsbook != nil {
		out, err := r.sportsbook.Project(ctx, req)
		switch {
		case err != nil:
			primaryErr = err
		case !out.Line.HasAny(statline.SportsbookCategories()...):
			primaryErr = fmt.Errorf("%w: sportsbook projection has no points/rebounds/assists", ErrLineUnavailable)
		default:
			return out, nil
		}
	}

	if !r.cfg.FallbackEnabled || r.historical == nil {
		return projection.Projection{}, primaryErr
	}

	r.logger.InfoContext(ctx, "sportsbook projection failed, using historical average",
		"player_id", req.PlayerID,
		"reason", ReasonOf(primaryErr),
	)
	out, err := r.historical.Project(ctx, req)
	if err != nil {
		return projection.Projection{}, &ProjectionUnavailableError{Primary: primaryErr, Fallback: err}
	}
	return out, nil
}

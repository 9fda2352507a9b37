package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/scoring"
	"github.com/riskibarqy/daily-pick/internal/platform/id"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
)

const defaultScoringWorkers = 4

// BoxScoreFetcher is the box-score dependency of the day scorer.
type BoxScoreFetcher interface {
	Fetch(ctx context.Context, req BoxScoreRequest) (gamelog.BoxScore, error)
}

type DayScoringConfig struct {
	Weights scoring.Weights
	Workers int
}

// PickWithResult is one pick of a scoring run and the result it produced.
type PickWithResult struct {
	Pick     pick.Pick
	UserName string
	Result   pick.Result
}

type DayScoreResult struct {
	RunID       string
	GroupCode   string
	Date        time.Time
	Leaderboard []pick.LeaderboardRow
	Picks       []PickWithResult
}

// DayScoringService scores every pick of a group for one date and stores the results,
// replacing any earlier run for that date.
type DayScoringService struct {
	groupService *GroupService
	groupRepo    group.Repository
	pickRepo     pick.Repository
	projector    projection.Projector
	boxScores    BoxScoreFetcher
	cfg          DayScoringConfig
	idGen        id.Generator
	now          func() time.Time
	logger       *logging.Logger
	metrics      MetricsRecorder
}

func NewDayScoringService(
	groupService *GroupService,
	groupRepo group.Repository,
	pickRepo pick.Repository,
	projector projection.Projector,
	boxScores BoxScoreFetcher,
	cfg DayScoringConfig,
	idGen id.Generator,
	logger *logging.Logger,
	metrics MetricsRecorder,
) *DayScoringService {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultScoringWorkers
	}
	if cfg.Weights == nil {
		cfg.Weights = scoring.DefaultWeights()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &DayScoringService{
		groupService: groupService,
		groupRepo:    groupRepo,
		pickRepo:     pickRepo,
		projector:    projector,
		boxScores:    boxScores,
		cfg:          cfg,
		idGen:        idGen,
		now:          time.Now,
		logger:       logger.Named("scorer"),
		metrics:      metricsOrNoop(metrics),
	}
}

func (s *DayScoringService) ScoreDay(ctx context.Context, code string, date time.Time) (DayScoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DayScoringService.ScoreDay",
		attribute.String("group_code", group.NormalizeCode(code)),
	)
	defer span.End()

	if date.IsZero() {
		return DayScoreResult{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	day := calendarDay(date)
	startedAt := s.now()

	g, err := s.groupService.GetGroup(ctx, code)
	if err != nil {
		return DayScoreResult{}, err
	}
	members, err := s.groupRepo.ListMembers(ctx, g.ID)
	if err != nil {
		return DayScoreResult{}, fmt.Errorf("list group members: %w", err)
	}
	picks, err := s.pickRepo.ListByGroupAndDate(ctx, g.ID, day)
	if err != nil {
		return DayScoreResult{}, fmt.Errorf("list picks: %w", err)
	}
	runID, err := s.idGen.NewID()
	if err != nil {
		return DayScoreResult{}, fmt.Errorf("generate scoring run id: %w", err)
	}

	results, err := s.scorePicks(ctx, runID, picks, startedAt.UTC())
	if err != nil {
		recordSpanError(span, err)
		return DayScoreResult{}, err
	}
	if err := s.pickRepo.SaveResults(ctx, results); err != nil {
		recordSpanError(span, err)
		return DayScoreResult{}, fmt.Errorf("save pick results: %w", err)
	}

	names := memberNames(members)
	scored := make([]pick.Scored, 0, len(picks))
	out := DayScoreResult{
		RunID:     runID,
		GroupCode: g.Code,
		Date:      day,
		Picks:     make([]PickWithResult, 0, len(picks)),
	}
	var scoredCount, unscoredCount int
	for i, p := range picks {
		p.Status = results[i].Status
		scored = append(scored, pick.Scored{Pick: p, Result: results[i]})
		out.Picks = append(out.Picks, PickWithResult{Pick: p, UserName: names[p.UserID], Result: results[i]})
		if results[i].IsScored() {
			scoredCount++
		} else {
			unscoredCount++
		}
		s.metrics.ObservePickResult(results[i].Status, results[i].Reason)
	}
	out.Leaderboard = BuildLeaderboard(members, scored)

	elapsed := s.now().Sub(startedAt)
	s.metrics.ObserveScoringRun(scoredCount, unscoredCount, elapsed)
	span.SetAttributes(
		attribute.Int("picks.scored", scoredCount),
		attribute.Int("picks.unscored", unscoredCount),
	)
	s.logger.InfoContext(ctx, "scored group day",
		"group_code", g.Code,
		"date", formatDate(day),
		"run_id", runID,
		"scored", scoredCount,
		"unscored", unscoredCount,
		"duration_ms", elapsed.Milliseconds(),
	)

	return out, nil
}

// scorePicks writes each outcome at its pick's index, so the processing order
// never changes a result.
func (s *DayScoringService) scorePicks(ctx context.Context, runID string, picks []pick.Pick, scoredAt time.Time) ([]pick.Result, error) {
	results := make([]pick.Result, len(picks))
	if len(picks) == 0 {
		return results, nil
	}

	workerCount := s.cfg.Workers
	if workerCount > len(picks) {
		workerCount = len(picks)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create scoring worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	var failed atomic.Int32
	for i, p := range picks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i] = s.scorePick(ctx, runID, p, scoredAt)
			if !results[i].IsScored() {
				failed.Add(1)
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if n := failed.Load(); n > 0 {
		s.logger.DebugContext(ctx, "picks left unscored", "run_id", runID, "count", n)
	}
	return results, nil
}

func (s *DayScoringService) scorePick(ctx context.Context, runID string, p pick.Pick, scoredAt time.Time) pick.Result {
	var (
		proj    projection.Projection
		projErr error
		box     gamelog.BoxScore
		boxErr  error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		proj, projErr = s.projector.Project(ctx, projection.Request{
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Date:       p.Date,
			GameID:     p.GameID,
		})
	})
	wg.Go(func() {
		box, boxErr = s.boxScores.Fetch(ctx, BoxScoreRequest{
			PlayerID: p.PlayerID,
			GameID:   p.GameID,
			Date:     p.Date,
		})
	})
	wg.Wait()

	result := pick.Result{
		PickID:   p.ID,
		RunID:    runID,
		GameID:   p.GameID,
		ScoredAt: scoredAt,
		Breakdown: pick.Breakdown{
			Expected:      map[string]float64{},
			Actual:        map[string]float64{},
			Contributions: map[string]float64{},
		},
	}
	if projErr == nil {
		result.ProjectionSource = proj.Source
		result.Provider = proj.Provider
	}
	if boxErr == nil && box.GameID != "" {
		result.GameID = box.GameID
	}

	if err := firstError(projErr, boxErr); err != nil {
		s.logger.WarnContext(ctx, "pick unscored",
			"run_id", runID,
			"pick_id", p.ID,
			"player_id", p.PlayerID,
			"reason", ReasonOf(err),
			"error", err,
		)
		result.Status = pick.StatusUnscored
		result.Reason = ReasonOf(err)
		result.Message = err.Error()
		return result
	}

	score := scoring.Score(proj.Line, box.Line, s.cfg.Weights)
	result.Status = pick.StatusScored
	result.Score = score.Total
	result.Breakdown = pick.Breakdown{
		Expected:      score.ExpectedMap(),
		Actual:        score.ActualMap(),
		Contributions: score.ContributionMap(),
	}
	return result
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	"github.com/riskibarqy/daily-pick/internal/platform/id"
)

// PickLockConfig sets the wall-clock time, in Location, after which picks for a
// date are closed.
type PickLockConfig struct {
	Location *time.Location
	Hour     int
	Minute   int
}

func DefaultPickLockConfig() PickLockConfig {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		loc = time.UTC
	}
	return PickLockConfig{Location: loc, Hour: 18}
}

type CreatePickInput struct {
	GroupCode  string
	UserID     string
	Date       time.Time
	PlayerID   string
	PlayerName string
	GameID     string
}

// PickView is a pick with its member name and latest result, if any.
type PickView struct {
	Pick     pick.Pick
	UserName string
	Result   *pick.Result
}

type PickService struct {
	groupService *GroupService
	groupRepo    group.Repository
	pickRepo     pick.Repository
	idGen        id.Generator
	lock         PickLockConfig
	now          func() time.Time
}

func NewPickService(groupService *GroupService, groupRepo group.Repository, pickRepo pick.Repository, idGen id.Generator, lock PickLockConfig) *PickService {
	if lock.Location == nil {
		lock.Location = DefaultPickLockConfig().Location
	}

	return &PickService{
		groupService: groupService,
		groupRepo:    groupRepo,
		pickRepo:     pickRepo,
		idGen:        idGen,
		lock:         lock,
		now:          time.Now,
	}
}

// LockTime returns the instant picks for date close.
func (s *PickService) LockTime(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, s.lock.Hour, s.lock.Minute, 0, 0, s.lock.Location)
}

func (s *PickService) CreatePick(ctx context.Context, input CreatePickInput) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.CreatePick")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.PlayerName = strings.TrimSpace(input.PlayerName)
	input.GameID = strings.TrimSpace(input.GameID)
	if input.UserID == "" {
		return pick.Pick{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.PlayerID == "" {
		return pick.Pick{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.PlayerName == "" {
		return pick.Pick{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return pick.Pick{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	day := calendarDay(input.Date)

	g, err := s.groupService.GetGroup(ctx, input.GroupCode)
	if err != nil {
		return pick.Pick{}, err
	}
	if _, exists, err := s.groupRepo.GetMember(ctx, g.ID, input.UserID); err != nil {
		return pick.Pick{}, fmt.Errorf("get group member: %w", err)
	} else if !exists {
		return pick.Pick{}, fmt.Errorf("%w: user=%s is not a member of group=%s", ErrNotFound, input.UserID, g.Code)
	}

	now := s.now()
	if lockAt := s.LockTime(day); !now.Before(lockAt) {
		return pick.Pick{}, fmt.Errorf("%w: picks for %s closed at %s", ErrPickLocked, formatDate(day), lockAt.Format(time.RFC3339))
	}

	if _, exists, err := s.pickRepo.GetByGroupUserDate(ctx, g.ID, input.UserID, day); err != nil {
		return pick.Pick{}, fmt.Errorf("get existing pick: %w", err)
	} else if exists {
		return pick.Pick{}, fmt.Errorf("%w: user already picked for %s", ErrConflict, formatDate(day))
	}

	pickID, err := s.idGen.NewID()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("generate pick id: %w", err)
	}
	p := pick.Pick{
		ID:         pickID,
		GroupID:    g.ID,
		UserID:     input.UserID,
		Date:       day,
		PlayerID:   input.PlayerID,
		PlayerName: input.PlayerName,
		GameID:     input.GameID,
		Status:     pick.StatusPicked,
		CreatedAt:  now.UTC(),
	}
	if err := s.pickRepo.Create(ctx, p); err != nil {
		if errors.Is(err, pick.ErrDuplicatePick) {
			return pick.Pick{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		recordSpanError(span, err)
		return pick.Pick{}, fmt.Errorf("create pick: %w", err)
	}

	return p, nil
}

func (s *PickService) ListPicks(ctx context.Context, code string, date time.Time) ([]PickView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListPicks")
	defer span.End()

	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	day := calendarDay(date)

	g, err := s.groupService.GetGroup(ctx, code)
	if err != nil {
		return nil, err
	}
	members, err := s.groupRepo.ListMembers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	picks, err := s.pickRepo.ListByGroupAndDate(ctx, g.ID, day)
	if err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	scored, err := s.pickRepo.ListScoredByGroup(ctx, g.ID, &day)
	if err != nil {
		return nil, fmt.Errorf("list pick results: %w", err)
	}

	names := memberNames(members)
	results := make(map[string]pick.Result, len(scored))
	for _, item := range scored {
		results[item.Pick.ID] = item.Result
	}

	out := make([]PickView, 0, len(picks))
	for _, p := range picks {
		view := PickView{Pick: p, UserName: names[p.UserID]}
		if result, ok := results[p.ID]; ok {
			view.Result = &result
		}
		out = append(out, view)
	}
	return out, nil
}

func memberNames(members []group.Member) map[string]string {
	out := make(map[string]string, len(members))
	for _, m := range members {
		out[m.UserID] = m.DisplayName
	}
	return out
}

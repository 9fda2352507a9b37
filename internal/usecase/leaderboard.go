package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
)

type LeaderboardService struct {
	groupService *GroupService
	groupRepo    group.Repository
	pickRepo     pick.Repository
}

func NewLeaderboardService(groupService *GroupService, groupRepo group.Repository, pickRepo pick.Repository) *LeaderboardService {
	return &LeaderboardService{
		groupService: groupService,
		groupRepo:    groupRepo,
		pickRepo:     pickRepo,
	}
}

func (s *LeaderboardService) Daily(ctx context.Context, code string, date time.Time) ([]pick.LeaderboardRow, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	day := calendarDay(date)
	return s.build(ctx, code, &day)
}

func (s *LeaderboardService) AllTime(ctx context.Context, code string) ([]pick.LeaderboardRow, error) {
	return s.build(ctx, code, nil)
}

func (s *LeaderboardService) build(ctx context.Context, code string, date *time.Time) ([]pick.LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.build")
	defer span.End()

	g, err := s.groupService.GetGroup(ctx, code)
	if err != nil {
		return nil, err
	}
	members, err := s.groupRepo.ListMembers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	scored, err := s.pickRepo.ListScoredByGroup(ctx, g.ID, date)
	if err != nil {
		return nil, fmt.Errorf("list pick results: %w", err)
	}

	return BuildLeaderboard(members, scored), nil
}

// BuildLeaderboard sums result scores per member. Unscored picks add nothing to the
// score and are counted separately. Rows are ordered by score descending, then
// name, then user id.
func BuildLeaderboard(members []group.Member, scored []pick.Scored) []pick.LeaderboardRow {
	rows := make(map[string]*pick.LeaderboardRow, len(members))
	order := make([]string, 0, len(members))
	for _, m := range members {
		if _, ok := rows[m.UserID]; ok {
			continue
		}
		rows[m.UserID] = &pick.LeaderboardRow{UserID: m.UserID, UserName: m.DisplayName}
		order = append(order, m.UserID)
	}

	for _, item := range scored {
		row, ok := rows[item.Pick.UserID]
		if !ok {
			row = &pick.LeaderboardRow{UserID: item.Pick.UserID}
			rows[item.Pick.UserID] = row
			order = append(order, item.Pick.UserID)
		}
		if item.Result.IsScored() {
			row.Score += item.Result.Score
			row.ScoredPicks++
			continue
		}
		row.UnscoredPicks++
	}

	out := make([]pick.LeaderboardRow, 0, len(order))
	for _, userID := range order {
		row := *rows[userID]
		row.Score = roundTo2(row.Score)
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		ni, nj := strings.ToLower(out[i].UserName), strings.ToLower(out[j].UserName)
		if ni != nj {
			return ni < nj
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

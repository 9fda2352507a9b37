package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	schedulemock "github.com/riskibarqy/daily-pick/internal/mocks/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestPlayerLookupService_PlayersOnDate_FiltersByName(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	games := schedulemock.NewProvider(t)
	games.On("GamesByDate", mock.Anything, date).Return([]schedule.Game{
		{GameID: "0022500601"}, {GameID: "0022500602"},
	}, nil).Once()
	games.On("PlayersForGame", mock.Anything, "0022500601").Return([]schedule.Player{
		{PlayerID: "201939", PlayerName: "Stephen Curry", TeamCode: "GSW", GameID: "0022500601"},
		{PlayerID: "2544", PlayerName: "LeBron James", TeamCode: "LAL", GameID: "0022500601"},
	}, nil).Once()
	games.On("PlayersForGame", mock.Anything, "0022500602").Return([]schedule.Player{
		{PlayerID: "1626164", PlayerName: "Devin Booker", TeamCode: "PHX", GameID: "0022500602"},
		{PlayerID: "1628983", PlayerName: "Shai Gilgeous-Alexander", TeamCode: "OKC", GameID: "0022500602"},
	}, nil).Once()

	svc := NewPlayerLookupService(games, 2, logging.NewNop())
	got, err := svc.PlayersOnDate(context.Background(), date.Add(15*time.Hour), "  ALE")
	if err != nil {
		t.Fatalf("players on date: %v", err)
	}
	if len(got) != 1 || got[0].PlayerID != "1628983" {
		t.Fatalf("unexpected players: %+v", got)
	}
}

func TestPlayerLookupService_PlayersOnDate_SkipsFailedGames(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	games := schedulemock.NewProvider(t)
	games.On("GamesByDate", mock.Anything, date).Return([]schedule.Game{
		{GameID: "0022500601"}, {GameID: "0022500602"},
	}, nil).Once()
	games.On("PlayersForGame", mock.Anything, "0022500601").Return(nil, errors.New("status 503")).Once()
	games.On("PlayersForGame", mock.Anything, "0022500602").Return([]schedule.Player{
		{PlayerID: "203999", PlayerName: "Nikola Jokic", TeamCode: "DEN"},
		{PlayerID: "1626164", PlayerName: "Devin Booker", TeamCode: "PHX"},
	}, nil).Once()

	svc := NewPlayerLookupService(games, 0, logging.NewNop())
	got, err := svc.PlayersOnDate(context.Background(), date, "")
	if err != nil {
		t.Fatalf("players on date: %v", err)
	}
	if len(got) != 2 || got[0].PlayerName != "Devin Booker" || got[1].PlayerName != "Nikola Jokic" {
		t.Fatalf("unexpected players: %+v", got)
	}
}

func TestPlayerLookupService_PlayersOnDate_AllGamesFailed(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	games := schedulemock.NewProvider(t)
	games.On("GamesByDate", mock.Anything, date).Return([]schedule.Game{{GameID: "0022500601"}}, nil).Once()
	games.On("PlayersForGame", mock.Anything, "0022500601").Return(nil, errors.New("connection reset")).Once()

	svc := NewPlayerLookupService(games, 1, logging.NewNop())
	_, err := svc.PlayersOnDate(context.Background(), date, "")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got=%v", err)
	}
}

func TestPlayerLookupService_PlayersOnDate_NoGames(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	games := schedulemock.NewProvider(t)
	games.On("GamesByDate", mock.Anything, date).Return([]schedule.Game{}, nil).Once()

	got, err := NewPlayerLookupService(games, 1, logging.NewNop()).PlayersOnDate(context.Background(), date, "curry")
	if err != nil {
		t.Fatalf("players on date: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got=%v", got)
	}
}

func TestPlayerLookupService_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPlayerLookupService(schedulemock.NewProvider(t), 1, logging.NewNop())
	ctx := context.Background()

	if _, err := svc.PlayersOnDate(ctx, time.Time{}, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero date, got=%v", err)
	}
	if _, err := svc.PlayersForGame(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank game id, got=%v", err)
	}
	if _, err := svc.GameRosters(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank game id, got=%v", err)
	}
}

func TestPlayerLookupService_GameRostersKeepsTypedErrors(t *testing.T) {
	t.Parallel()

	games := schedulemock.NewProvider(t)
	games.On("GameRosters", mock.Anything, "0022599999").
		Return(schedule.GameRosters{}, ErrNotFound).Once()
	games.On("GameRosters", mock.Anything, "0022500602").
		Return(schedule.GameRosters{}, errors.New("dial tcp: timeout")).Once()

	svc := NewPlayerLookupService(games, 1, logging.NewNop())
	if _, err := svc.GameRosters(context.Background(), "0022599999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
	if _, err := svc.GameRosters(context.Background(), "0022500602"); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got=%v", err)
	}
}

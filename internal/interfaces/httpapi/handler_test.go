package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/domain/scoring"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/infrastructure/repository/memory"
	projectionmock "github.com/riskibarqy/daily-pick/internal/mocks/domain/projection"
	schedulemock "github.com/riskibarqy/daily-pick/internal/mocks/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/platform/id"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/usecase"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedBoxScores map[string]gamelog.BoxScore

func (f fixedBoxScores) Fetch(_ context.Context, req usecase.BoxScoreRequest) (gamelog.BoxScore, error) {
	box, ok := f[req.PlayerID]
	if !ok {
		return gamelog.BoxScore{}, usecase.ErrNotFound
	}
	return box, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
}

func (o *recordingObserver) ObserveHTTPRequest(_, route string, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
}

type testAPI struct {
	router    http.Handler
	projector *projectionmock.Projector
	schedule  *schedulemock.Provider
	observer  *recordingObserver
}

func newTestAPI(t *testing.T, boxScores fixedBoxScores) testAPI {
	t.Helper()

	groupRepo := memory.NewGroupRepository()
	pickRepo := memory.NewPickRepository()
	idGen := id.NewRandomGenerator()
	projector := projectionmock.NewProjector(t)
	scheduleProvider := schedulemock.NewProvider(t)

	groupService := usecase.NewGroupService(groupRepo, idGen)
	pickService := usecase.NewPickService(groupService, groupRepo, pickRepo, idGen, usecase.DefaultPickLockConfig())
	leaderboardService := usecase.NewLeaderboardService(groupService, groupRepo, pickRepo)
	dayScoringService := usecase.NewDayScoringService(groupService, groupRepo, pickRepo, projector, boxScores, usecase.DayScoringConfig{
		Weights: scoring.DefaultWeights(),
		Workers: 2,
	}, idGen, logging.NewNop(), nil)

	playerLookup := usecase.NewPlayerLookupService(scheduleProvider, 2, logging.NewNop())

	handler := NewHandler(groupService, pickService, leaderboardService, dayScoringService, projector, boxScores, playerLookup, scheduleProvider, logging.NewNop())
	observer := &recordingObserver{}
	router := NewRouter(handler, logging.NewNop(), nil, http.NotFoundHandler(), observer)
	return testAPI{router: router, projector: projector, schedule: scheduleProvider, observer: observer}
}

func (a testAPI) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return rec.Code, out
}

func dataObject(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected data object, got=%v", body)
	return data
}

func errorReason(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	items, _ := errObj["errors"].([]any)
	if len(items) == 0 {
		return ""
	}
	item, _ := items[0].(map[string]any)
	reason, _ := item["reason"].(string)
	return reason
}

func TestHandler_GroupPickAndScoreFlow(t *testing.T) {
	t.Parallel()

	date := time.Now().UTC().AddDate(0, 0, 7)
	day := date.Format(dateLayout)
	api := newTestAPI(t, fixedBoxScores{
		"203999": {GameID: "g-1", Status: gamelog.StatusFinal, Line: statline.Zero().With(statline.Points, 25).With(statline.Rebounds, 3).With(statline.Assists, 6)},
	})
	api.projector.On("Project", mock.Anything, mock.MatchedBy(func(req projection.Request) bool { return req.PlayerID == "203999" })).
		Return(projection.Projection{
			PlayerID: "203999",
			Line:     statline.Line{}.With(statline.Points, 20).With(statline.Rebounds, 5).With(statline.Assists, 6),
			Source:   statline.SourceSportsbook,
			Provider: "odds_api",
		}, nil)
	api.projector.On("Project", mock.Anything, mock.MatchedBy(func(req projection.Request) bool { return req.PlayerID == "1628983" })).
		Return(projection.Projection{}, usecase.ErrLineUnavailable)

	status, body := api.do(t, http.MethodPost, "/v1/groups", map[string]string{"name": "Hoops Night", "user_name": "Ana"})
	require.Equal(t, http.StatusCreated, status)
	created := dataObject(t, body)
	code := created["group"].(map[string]any)["code"].(string)
	anaID := created["member"].(map[string]any)["user_id"].(string)

	status, body = api.do(t, http.MethodPost, "/v1/groups/join", map[string]string{"code": code, "user_name": "Ben"})
	require.Equal(t, http.StatusOK, status)
	benID := dataObject(t, body)["member"].(map[string]any)["user_id"].(string)

	status, _ = api.do(t, http.MethodPost, "/v1/groups/"+code+"/picks", map[string]string{"user_id": anaID, "date": day, "player_id": "203999", "player_name": "Nikola Jokic"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(t, http.MethodPost, "/v1/groups/"+code+"/picks", map[string]string{"user_id": benID, "date": day, "player_id": "1628983", "player_name": "Shai Gilgeous-Alexander"})
	require.Equal(t, http.StatusCreated, status)

	status, body = api.do(t, http.MethodPost, "/v1/groups/"+code+"/picks", map[string]string{"user_id": anaID, "date": day, "player_id": "1630162", "player_name": "Anthony Edwards"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "conflict", errorReason(body))

	status, body = api.do(t, http.MethodPost, "/v1/groups/"+code+"/score?date="+day, nil)
	require.Equal(t, http.StatusOK, status)
	scored := dataObject(t, body)
	require.NotEmpty(t, scored["run_id"])

	leaderboard := scored["leaderboard"].([]any)
	require.Len(t, leaderboard, 2)
	first := leaderboard[0].(map[string]any)
	require.Equal(t, "Ana", first["user_name"])
	require.Equal(t, 3.0, first["score"])

	picks := scored["picks_with_results"].([]any)
	require.Len(t, picks, 2)
	for _, item := range picks {
		p := item.(map[string]any)
		result := p["result"].(map[string]any)
		if p["user_id"] == benID {
			require.Equal(t, "unscored", result["status"])
			require.Equal(t, "line_unavailable", result["reason"])
			require.Equal(t, map[string]any{}, result["breakdown"].(map[string]any)["expected"])
			continue
		}
		require.Equal(t, "scored", result["status"])
		contributions := result["breakdown"].(map[string]any)["contributions"].(map[string]any)
		require.Equal(t, map[string]any{"points": 5.0, "rebounds": -2.0, "assists": 0.0}, contributions)
	}

	status, body = api.do(t, http.MethodGet, "/v1/groups/"+code+"/leaderboard/alltime", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"].([]any), 2)

	api.observer.mu.Lock()
	defer api.observer.mu.Unlock()
	require.Contains(t, api.observer.routes, "POST /v1/groups/{code}/score")
}

func TestHandler_RejectsInvalidPayloads(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedBoxScores{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		reason string
	}{
		{name: "unknown field", method: http.MethodPost, path: "/v1/groups", body: map[string]string{"name": "x", "user_name": "y", "owner": "z"}, status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "missing name", method: http.MethodPost, path: "/v1/groups", body: map[string]string{"user_name": "y"}, status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "bad code length", method: http.MethodPost, path: "/v1/groups/join", body: map[string]string{"code": "ABC", "user_name": "y"}, status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "unknown group", method: http.MethodGet, path: "/v1/groups/ZZZZZZ/members", status: http.StatusNotFound, reason: "notFound"},
		{name: "score without date", method: http.MethodPost, path: "/v1/groups/ZZZZZZ/score", status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "bad date", method: http.MethodGet, path: "/v1/nba/games?date=01-12-2026", status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "bad limit", method: http.MethodGet, path: "/v1/groups/search?query=a&limit=ten", status: http.StatusBadRequest, reason: "invalidInput"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := api.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.reason, errorReason(body))
		})
	}
}

func TestHandler_ProjectionFailureIsTyped(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedBoxScores{})
	api.projector.On("Project", mock.Anything, mock.Anything).Return(projection.Projection{}, &usecase.ProjectionUnavailableError{
		Primary:  usecase.ErrLineUnavailable,
		Fallback: usecase.ErrInsufficientHistory,
	})

	status, body := api.do(t, http.MethodGet, "/v1/nba/players/203999/projection?date=2026-01-12", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "projectionUnavailable", errorReason(body))
}

func TestHandler_ListGamesAndBoxScore(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedBoxScores{
		"203999": {GameID: "g-1", PlayerID: "203999", Status: gamelog.StatusFinal, DidNotPlay: true, Line: statline.Zero()},
	})
	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	api.schedule.On("GamesByDate", mock.Anything, day).Return([]schedule.Game{
		{GameID: "g-1", Date: day, HomeTeam: "DEN", AwayTeam: "PHX", Status: gamelog.StatusFinal},
	}, nil)

	status, body := api.do(t, http.MethodGet, "/v1/nba/games?date=2026-01-12", nil)
	require.Equal(t, http.StatusOK, status)
	games := body["data"].([]any)
	require.Len(t, games, 1)
	require.Equal(t, "DEN", games[0].(map[string]any)["home_team"])

	status, body = api.do(t, http.MethodGet, "/v1/nba/players/203999/boxscore?date=2026-01-12&game_id=g-1", nil)
	require.Equal(t, http.StatusOK, status)
	box := dataObject(t, body)
	require.Equal(t, true, box["did_not_play"])
	require.Equal(t, 0.0, box["stats"].(map[string]any)["points"])
}

func TestHandler_PlayerLookupRoutes(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, fixedBoxScores{})
	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	api.schedule.On("GamesByDate", mock.Anything, day).Return([]schedule.Game{{GameID: "0022500601"}}, nil)
	api.schedule.On("PlayersForGame", mock.Anything, "0022500601").Return([]schedule.Player{
		{PlayerID: "201939", PlayerName: "Stephen Curry", TeamCode: "GSW", GameID: "0022500601"},
		{PlayerID: "2544", PlayerName: "LeBron James", TeamCode: "LAL", GameID: "0022500601"},
	}, nil)
	api.schedule.On("GameRosters", mock.Anything, "0022500601").Return(schedule.GameRosters{
		GameID: "0022500601",
		Date:   day,
		Home: schedule.TeamRoster{TeamID: "1610612744", TeamName: "Golden State Warriors", TeamCode: "GSW", Players: []schedule.RosterPlayer{
			{PlayerID: "201939", PlayerName: "Stephen Curry", Position: "G", Jersey: "30"},
		}},
		Away: schedule.TeamRoster{TeamID: "1610612747", TeamName: "Los Angeles Lakers", TeamCode: "LAL"},
	}, nil)
	api.schedule.On("GameRosters", mock.Anything, "0022599999").Return(schedule.GameRosters{}, usecase.ErrNotFound)

	status, body := api.do(t, http.MethodGet, "/v1/nba/players?date=2026-01-12&query=curry", nil)
	require.Equal(t, http.StatusOK, status)
	players := body["data"].([]any)
	require.Len(t, players, 1)
	require.Equal(t, "201939", players[0].(map[string]any)["player_id"])
	require.Equal(t, "GSW", players[0].(map[string]any)["team"])

	status, body = api.do(t, http.MethodGet, "/v1/nba/games/0022500601/players", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"].([]any), 2)

	status, body = api.do(t, http.MethodGet, "/v1/nba/games/0022500601/rosters", nil)
	require.Equal(t, http.StatusOK, status)
	rosters := dataObject(t, body)
	require.Equal(t, "2026-01-12", rosters["date"])
	home := rosters["home"].(map[string]any)
	require.Equal(t, "GSW", home["team_abbr"])
	require.Equal(t, "30", home["players"].([]any)[0].(map[string]any)["jersey"])
	require.Empty(t, rosters["away"].(map[string]any)["players"])

	status, body = api.do(t, http.MethodGet, "/v1/nba/games/0022599999/rosters", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "notFound", errorReason(body))

	status, body = api.do(t, http.MethodGet, "/v1/nba/players", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalidInput", errorReason(body))
}

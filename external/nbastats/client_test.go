package nbastats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

const gameLogHeaders = `["SEASON_ID","Player_ID","Game_ID","GAME_DATE","MATCHUP","WL","MIN","PTS","REB","AST","STL","BLK","TOV","PF"]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		MaxRetries: 1,
		Logger:     logging.NewNop(),
	})
	client.retryDelay = func(int) time.Duration { return 0 }
	return client
}

func TestClient_RecentGames_TopsUpFromPreviousSeason(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		seasons []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playergamelog" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-nba-stats-origin") != "stats" {
			t.Errorf("missing stats origin header")
		}
		season := r.URL.Query().Get("Season")
		mu.Lock()
		seasons = append(seasons, season)
		mu.Unlock()
		switch season {
		case "2025-26":
			_, _ = w.Write([]byte(`{"resultSets":[{"name":"PlayerGameLog","headers":` + gameLogHeaders + `,"rowSet":[
				["22025","201939","0022500601","JAN 12, 2026","GSW vs. LAL","W",36,40,6,8,1,0,3,2],
				["22025","201939","0022500590","JAN 10, 2026","GSW @ PHX","L",34,22,4,5,2,1,4,3],
				["22025","201939","0022500570","JAN 07, 2026","GSW vs. DEN","W",30,18,5,9,0,0,2,1]
			]}]}`))
		case "2024-25":
			_, _ = w.Write([]byte(`{"resultSets":[{"name":"PlayerGameLog","headers":` + gameLogHeaders + `,"rowSet":[
				["22024","201939","0022401200","APR 13, 2025","GSW vs. LAC","W",33,30,5,6,1,0,2,2]
			]}]}`))
		default:
			t.Errorf("unexpected season %s", season)
		}
	})

	before := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	games, err := client.RecentGames(context.Background(), "201939", before, 3)
	if err != nil {
		t.Fatalf("recent games: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("unexpected game count: got=%d want=3", len(games))
	}
	if games[0].GameID != "0022500590" || games[2].GameID != "0022401200" {
		t.Fatalf("unexpected order: got=%s,%s,%s", games[0].GameID, games[1].GameID, games[2].GameID)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seasons) != 2 {
		t.Fatalf("expected two season lookups, got=%v", seasons)
	}
	if pts, _ := games[0].Line.Get(statline.Points); pts != 22 {
		t.Fatalf("unexpected points: got=%v want=22", pts)
	}
	if tov, _ := games[0].Line.Get(statline.Turnovers); tov != 4 {
		t.Fatalf("unexpected turnovers: got=%v want=4", tov)
	}
}

func TestSeasonFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date time.Time
		want string
	}{
		{date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), want: "2025-26"},
		{date: time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC), want: "2025-26"},
		{date: time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), want: "2024-25"},
		{date: time.Date(1999, 11, 2, 0, 0, 0, 0, time.UTC), want: "1999-00"},
	}
	for _, tt := range tests {
		if got := seasonFor(tt.date); got != tt.want {
			t.Fatalf("season for %s: got=%s want=%s", tt.date.Format(time.DateOnly), got, tt.want)
		}
	}
}

func boxScoreHandler(t *testing.T, statusID int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boxscoresummaryv2":
			_, _ = w.Write([]byte(`{"resultSets":[{"name":"GameSummary","headers":["GAME_DATE_EST","GAME_ID","GAME_STATUS_ID"],"rowSet":[["2026-01-12T00:00:00","0022500601",` + strconv.Itoa(statusID) + `]]}]}`))
		case "/boxscoretraditionalv2":
			_, _ = w.Write([]byte(`{"resultSets":[{"name":"PlayerStats","headers":["GAME_ID","TEAM_ABBREVIATION","PLAYER_ID","PLAYER_NAME","COMMENT","MIN","PTS","REB","AST","STL","BLK","TO","PF"],"rowSet":[
				["0022500601","GSW",201939,"Stephen Curry","","35.000000:41",25,3,6,2,0,1,2],
				["0022500601","GSW",1626172,"Kevon Looney","DNP - Coach's Decision ",null,null,null,null,null,null,null,null]
			]}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestClient_BoxScore(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, boxScoreHandler(t, gameStatusFinal))
	ctx := context.Background()

	got, err := client.BoxScore(ctx, "0022500601", "201939")
	if err != nil {
		t.Fatalf("box score: %v", err)
	}
	if got.Status != gamelog.StatusFinal || got.DidNotPlay {
		t.Fatalf("unexpected status: got=%s dnp=%v", got.Status, got.DidNotPlay)
	}
	if got.PlayerName != "Stephen Curry" || got.TeamCode != "GSW" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if got.Minutes < 35.6 || got.Minutes > 35.7 {
		t.Fatalf("unexpected minutes: got=%v", got.Minutes)
	}
	want := map[string]float64{"points": 25, "rebounds": 3, "assists": 6, "steals": 2, "blocks": 0, "turnovers": 1, "personal_fouls": 2}
	for key, value := range want {
		if got.Line.ToMap()[key] != value {
			t.Fatalf("unexpected %s: got=%v want=%v", key, got.Line.ToMap()[key], value)
		}
	}

	dnp, err := client.BoxScore(ctx, "0022500601", "1626172")
	if err != nil {
		t.Fatalf("dnp box score: %v", err)
	}
	if !dnp.DidNotPlay || !dnp.Line.IsEmpty() {
		t.Fatalf("expected dnp with empty line, got=%+v", dnp)
	}

	_, err = client.BoxScore(ctx, "0022500601", "999")
	if !errors.Is(err, gamelog.ErrPlayerNotInGame) {
		t.Fatalf("expected ErrPlayerNotInGame, got=%v", err)
	}
}

func TestClient_BoxScore_NotFinalReturnsStatusOnly(t *testing.T) {
	t.Parallel()

	var traditionalCalls atomic.Int32
	inner := boxScoreHandler(t, 2)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boxscoretraditionalv2" {
			traditionalCalls.Add(1)
		}
		inner(w, r)
	})

	got, err := client.BoxScore(context.Background(), "0022500601", "201939")
	if err != nil {
		t.Fatalf("box score: %v", err)
	}
	if got.Status != gamelog.StatusLive {
		t.Fatalf("unexpected status: got=%s want=%s", got.Status, gamelog.StatusLive)
	}
	if traditionalCalls.Load() != 0 {
		t.Fatalf("traditional box score must not be requested for live games")
	}
}

func TestClient_GamesByDate(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("GameDate"); got != "2026-01-12" {
			t.Errorf("unexpected game date %s", got)
		}
		_, _ = w.Write([]byte(`{"resultSets":[
			{"name":"GameHeader","headers":["GAME_ID","GAME_STATUS_ID","GAME_STATUS_TEXT","HOME_TEAM_ID","VISITOR_TEAM_ID"],"rowSet":[
				["0022500601",3,"Final",1610612744,1610612747],
				["0022500602",1,"9:00 pm ET",1610612743,1610612756]
			]},
			{"name":"LineScore","headers":["GAME_ID","TEAM_ID","TEAM_ABBREVIATION"],"rowSet":[
				["0022500601",1610612744,"GSW"],["0022500601",1610612747,"LAL"],
				["0022500602",1610612743,"DEN"],["0022500602",1610612756,"PHX"]
			]}
		]}`))
	})

	games, err := client.GamesByDate(context.Background(), time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("games by date: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("unexpected game count: got=%d want=2", len(games))
	}
	if games[0].HomeTeam != "GSW" || games[0].AwayTeam != "LAL" || games[0].Status != gamelog.StatusFinal {
		t.Fatalf("unexpected first game: %+v", games[0])
	}
	if games[1].Status != gamelog.StatusScheduled || games[1].StartTime != "9:00 pm ET" {
		t.Fatalf("unexpected second game: %+v", games[1])
	}
}

func TestClient_PlayerName_IsCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"CommonPlayerInfo","headers":["PERSON_ID","DISPLAY_FIRST_LAST"],"rowSet":[[201939,"Stephen Curry"]]}]}`))
	})

	for i := 0; i < 3; i++ {
		name, err := client.PlayerName(context.Background(), "201939")
		if err != nil {
			t.Fatalf("player name: %v", err)
		}
		if name != "Stephen Curry" {
			t.Fatalf("unexpected name: got=%s", name)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got=%d", calls.Load())
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"CommonPlayerInfo","headers":["DISPLAY_FIRST_LAST"],"rowSet":[["Nikola Jokic"]]}]}`))
	})

	name, err := client.PlayerName(context.Background(), "203999")
	if err != nil {
		t.Fatalf("player name: %v", err)
	}
	if name != "Nikola Jokic" || calls.Load() != 2 {
		t.Fatalf("unexpected result: name=%s calls=%d", name, calls.Load())
	}
}

func TestClient_UpstreamFailuresAreClassified(t *testing.T) {
	t.Parallel()

	var states []resilience.CircuitState
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
		OnBreakerState: func(_, to resilience.CircuitState) { states = append(states, to) },
	})
	client.retryDelay = func(int) time.Duration { return 0 }

	before := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := client.RecentGames(context.Background(), "201939", before, 5)
		if !errors.Is(err, usecase.ErrUpstreamUnavailable) {
			t.Fatalf("attempt %d: expected ErrUpstreamUnavailable, got=%v", i, err)
		}
	}
	if len(states) != 1 || states[0] != resilience.CircuitStateOpen {
		t.Fatalf("expected breaker to open once, got=%v", states)
	}
}

func TestClient_BoxScore_UnknownGameIsNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boxscoresummaryv2" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"GameSummary","headers":["GAME_DATE_EST","GAME_ID","GAME_STATUS_ID"],"rowSet":[]}]}`))
	})

	_, err := client.BoxScore(context.Background(), "0022599999", "201939")
	if !errors.Is(err, gamelog.ErrPlayerNotInGame) {
		t.Fatalf("expected ErrPlayerNotInGame, got=%v", err)
	}
}

func TestClient_PlayersForGame(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := boxScoreHandler(t, gameStatusFinal)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		inner(w, r)
	})

	for i := 0; i < 2; i++ {
		players, err := client.PlayersForGame(context.Background(), "0022500601")
		if err != nil {
			t.Fatalf("players for game: %v", err)
		}
		if len(players) != 2 {
			t.Fatalf("unexpected player count: got=%d want=2", len(players))
		}
		if players[0].PlayerID != "201939" || players[0].PlayerName != "Stephen Curry" || players[0].TeamCode != "GSW" || players[0].GameID != "0022500601" {
			t.Fatalf("unexpected first player: %+v", players[0])
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got=%d", calls.Load())
	}
}

func TestClient_PlayersForGame_PregameIsNotCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"PlayerStats","headers":["GAME_ID","TEAM_ABBREVIATION","PLAYER_ID","PLAYER_NAME"],"rowSet":[]}]}`))
	})

	for i := 0; i < 2; i++ {
		players, err := client.PlayersForGame(context.Background(), "0022500602")
		if err != nil {
			t.Fatalf("players for game: %v", err)
		}
		if players == nil || len(players) != 0 {
			t.Fatalf("expected empty non-nil list, got=%v", players)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected every pregame lookup to reach upstream, got=%d", calls.Load())
	}
}

func TestClient_GameRosters(t *testing.T) {
	t.Parallel()

	var rosterCalls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boxscoresummaryv2":
			_, _ = w.Write([]byte(`{"resultSets":[
				{"name":"GameSummary","headers":["GAME_DATE_EST","GAME_ID","GAME_STATUS_ID","HOME_TEAM_ID","VISITOR_TEAM_ID"],"rowSet":[["2026-01-12T00:00:00","0022500602",1,1610612743,1610612756]]},
				{"name":"LineScore","headers":["TEAM_ID","TEAM_ABBREVIATION","TEAM_CITY_NAME","TEAM_NICKNAME"],"rowSet":[
					[1610612743,"DEN","Denver","Nuggets"],[1610612756,"PHX","Phoenix","Suns"]
				]}
			]}`))
		case "/commonteamroster":
			rosterCalls.Add(1)
			if got := r.URL.Query().Get("Season"); got != "2025-26" {
				t.Errorf("unexpected season %s", got)
			}
			switch r.URL.Query().Get("TeamID") {
			case "1610612743":
				_, _ = w.Write([]byte(`{"resultSets":[{"name":"CommonTeamRoster","headers":["TeamID","PLAYER","NUM","POSITION","PLAYER_ID"],"rowSet":[[1610612743,"Nikola Jokic","15","C",203999]]}]}`))
			default:
				_, _ = w.Write([]byte(`{"resultSets":[{"name":"CommonTeamRoster","headers":["TeamID","PLAYER","NUM","POSITION","PLAYER_ID"],"rowSet":[[1610612756,"Devin Booker","1","G",1626164]]}]}`))
			}
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := client.GameRosters(ctx, "0022500602")
		if err != nil {
			t.Fatalf("game rosters: %v", err)
		}
		if got.Home.TeamCode != "DEN" || got.Home.TeamName != "Denver Nuggets" || got.Away.TeamCode != "PHX" {
			t.Fatalf("unexpected teams: home=%+v away=%+v", got.Home, got.Away)
		}
		if len(got.Home.Players) != 1 || got.Home.Players[0].PlayerID != "203999" || got.Home.Players[0].Jersey != "15" {
			t.Fatalf("unexpected home roster: %+v", got.Home.Players)
		}
		if len(got.Away.Players) != 1 || got.Away.Players[0].PlayerName != "Devin Booker" {
			t.Fatalf("unexpected away roster: %+v", got.Away.Players)
		}
	}
	if rosterCalls.Load() != 2 {
		t.Fatalf("expected rosters to be cached per team, got=%d calls", rosterCalls.Load())
	}
}

func TestClient_GameRosters_UnknownGame(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"GameSummary","headers":["GAME_ID"],"rowSet":[]}]}`))
	})

	_, err := client.GameRosters(context.Background(), "0022599999")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestClient_SharedRequestSurvivesFirstCallerCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	arrived := make(chan struct{}, 4)
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(`{"resultSets":[{"name":"CommonPlayerInfo","headers":["DISPLAY_FIRST_LAST"],"rowSet":[["Jayson Tatum"]]}]}`))
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.PlayerName(firstCtx, "1628369")
		firstErr <- err
	}()
	<-arrived

	type outcome struct {
		name string
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		name, err := client.PlayerName(context.Background(), "1628369")
		second <- outcome{name: name, err: err}
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first caller to see its own cancel, got=%v", err)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	got := <-second
	if got.err != nil {
		t.Fatalf("second caller failed: %v", got.err)
	}
	if got.name != "Jayson Tatum" {
		t.Fatalf("unexpected name: got=%s", got.name)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got=%d", calls.Load())
	}
}

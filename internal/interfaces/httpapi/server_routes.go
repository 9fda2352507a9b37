package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerGroupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/groups", handler.CreateGroup)
	mux.HandleFunc("POST /v1/groups/join", handler.JoinGroup)
	mux.HandleFunc("GET /v1/groups/search", handler.SearchGroups)
	mux.HandleFunc("GET /v1/groups/{code}/members", handler.ListGroupMembers)
	mux.HandleFunc("POST /v1/groups/{code}/picks", handler.CreatePick)
	mux.HandleFunc("GET /v1/groups/{code}/picks", handler.ListPicks)
	// Scoring a day overwrites any earlier results for that date.
	mux.HandleFunc("POST /v1/groups/{code}/score", handler.ScoreDay)
	mux.HandleFunc("GET /v1/groups/{code}/leaderboard", handler.DailyLeaderboard)
	mux.HandleFunc("GET /v1/groups/{code}/leaderboard/alltime", handler.AllTimeLeaderboard)
}

func registerNBARoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/nba/games", handler.ListGames)
	mux.HandleFunc("GET /v1/nba/games/{gameID}/players", handler.ListGamePlayers)
	mux.HandleFunc("GET /v1/nba/games/{gameID}/rosters", handler.GetGameRosters)
	mux.HandleFunc("GET /v1/nba/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/nba/players/{playerID}/projection", handler.GetPlayerProjection)
	mux.HandleFunc("GET /v1/nba/players/{playerID}/boxscore", handler.GetPlayerBoxScore)
}

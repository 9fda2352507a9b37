package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListGames")
	defer span.End()

	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.schedule.GamesByDate(ctx, date)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "date", date.Format(dateLayout), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListPlayers")
	defer span.End()

	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	players, err := h.playerLookup.PlayersOnDate(ctx, date, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "date", date.Format(dateLayout), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

func (h *Handler) ListGamePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListGamePlayers")
	defer span.End()

	gameID := r.PathValue("gameID")
	players, err := h.playerLookup.PlayersForGame(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list game players failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

func (h *Handler) GetGameRosters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetGameRosters")
	defer span.End()

	gameID := r.PathValue("gameID")
	rosters, err := h.playerLookup.GameRosters(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "game rosters failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, gameRostersToDTO(rosters))
}

func (h *Handler) GetPlayerProjection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetPlayerProjection")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if playerID == "" {
		writeError(ctx, w, fmt.Errorf("%w: player id is required", usecase.ErrInvalidInput))
		return
	}
	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	item, err := h.projector.Project(ctx, projection.Request{
		PlayerID:   playerID,
		PlayerName: strings.TrimSpace(query.Get("player_name")),
		Date:       date,
		GameID:     strings.TrimSpace(query.Get("game_id")),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "player projection failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, projectionToDTO(item))
}

func (h *Handler) GetPlayerBoxScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetPlayerBoxScore")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	box, err := h.boxScores.Fetch(ctx, usecase.BoxScoreRequest{
		PlayerID: playerID,
		GameID:   strings.TrimSpace(r.URL.Query().Get("game_id")),
		Date:     date,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "player box score failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boxScoreToDTO(box))
}

package httpapi

import "net/http"

// ScoreDay scores every pick of the group for the date. Re-running it replaces
// the stored results.
func (h *Handler) ScoreDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ScoreDay")
	defer span.End()

	code := r.PathValue("code")
	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dayScoringService.ScoreDay(ctx, code, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "score day failed", "code", code, "date", date.Format("2006-01-02"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dayScoreToDTO(result))
}

func (h *Handler) DailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "DailyLeaderboard")
	defer span.End()

	code := r.PathValue("code")
	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.leaderboardService.Daily(ctx, code, date)
	if err != nil {
		h.logger.WarnContext(ctx, "daily leaderboard failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(rows))
}

func (h *Handler) AllTimeLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "AllTimeLeaderboard")
	defer span.End()

	code := r.PathValue("code")
	rows, err := h.leaderboardService.AllTime(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "all-time leaderboard failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(rows))
}

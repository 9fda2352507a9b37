package httpapi

import (
	"net/http"

	"github.com/riskibarqy/daily-pick/internal/usecase"
)

func (h *Handler) CreatePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CreatePick")
	defer span.End()

	code := r.PathValue("code")
	var req createPickRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := usecase.ParseDate(req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.pickService.CreatePick(ctx, usecase.CreatePickInput{
		GroupCode:  code,
		UserID:     req.UserID,
		Date:       date,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		GameID:     req.GameID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create pick failed", "code", code, "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, pickToDTO(created, "", nil))
}

func (h *Handler) ListPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListPicks")
	defer span.End()

	code := r.PathValue("code")
	date, err := requiredDate(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.pickService.ListPicks(ctx, code, date)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(views))
	for _, v := range views {
		items = append(items, pickToDTO(v.Pick, v.UserName, v.Result))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

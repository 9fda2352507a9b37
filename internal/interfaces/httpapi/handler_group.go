package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/daily-pick/internal/usecase"
)

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CreateGroup")
	defer span.End()

	var req createGroupRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	membership, err := h.groupService.CreateGroup(ctx, usecase.CreateGroupInput{
		Name:     req.Name,
		UserName: req.UserName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create group failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, membershipToDTO(membership))
}

func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "JoinGroup")
	defer span.End()

	var req joinGroupRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	membership, err := h.groupService.JoinGroup(ctx, usecase.JoinGroupInput{
		Code:     req.Code,
		UserName: req.UserName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join group failed", "code", req.Code, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipToDTO(membership))
}

func (h *Handler) SearchGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "SearchGroups")
	defer span.End()

	limit, err := optionalInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groups, err := h.groupService.SearchGroups(ctx, strings.TrimSpace(r.URL.Query().Get("query")), limit)
	if err != nil {
		h.logger.WarnContext(ctx, "search groups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, groupToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListGroupMembers")
	defer span.End()

	code := r.PathValue("code")
	members, err := h.groupService.ListMembers(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "list group members failed", "code", code, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]memberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, memberToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

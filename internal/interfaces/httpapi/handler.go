package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	groupService       *usecase.GroupService
	pickService        *usecase.PickService
	leaderboardService *usecase.LeaderboardService
	dayScoringService  *usecase.DayScoringService
	projector          projection.Projector
	boxScores          usecase.BoxScoreFetcher
	playerLookup       *usecase.PlayerLookupService
	schedule           schedule.Provider
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	groupService *usecase.GroupService,
	pickService *usecase.PickService,
	leaderboardService *usecase.LeaderboardService,
	dayScoringService *usecase.DayScoringService,
	projector projection.Projector,
	boxScores usecase.BoxScoreFetcher,
	playerLookup *usecase.PlayerLookupService,
	scheduleProvider schedule.Provider,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		groupService:       groupService,
		pickService:        pickService,
		leaderboardService: leaderboardService,
		dayScoringService:  dayScoringService,
		projector:          projector,
		boxScores:          boxScores,
		playerLookup:       playerLookup,
		schedule:           scheduleProvider,
		logger:             logger.Named("httpapi"),
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, payload any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	decoder := sonic.ConfigStd.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func requiredDate(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date query parameter is required", usecase.ErrInvalidInput)
	}
	return usecase.ParseDate(raw)
}

func optionalInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}

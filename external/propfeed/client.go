package propfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/daily-pick/internal/domain/sportsbook"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 5 * time.Second

var errPropFeedTransient = crerr.New("prop feed transient failure")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	OnBreakerState resilience.StateListener
}

// Client reads prop lines from a JSON feed that serves one document per player and date.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	now        func() time.Time
}

type linesPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Lines      struct {
		Points   *float64 `json:"points"`
		Rebounds *float64 `json:"rebounds"`
		Assists  *float64 `json:"assists"`
	} `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "daily-pick",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger.Named("propfeed"),
		breaker:    resilience.NewCircuitBreakerFromConfig(sportsbook.ProviderPropFeed, cfg.CircuitBreaker, cfg.OnBreakerState),
		now:        time.Now,
	}
}

func (c *Client) Name() string {
	return sportsbook.ProviderPropFeed
}

// FetchLines returns an empty line when the feed has nothing for the player on that date.
func (c *Client) FetchLines(ctx context.Context, req sportsbook.LineRequest) (sportsbook.Lines, error) {
	if c.baseURL == "" {
		return sportsbook.Lines{}, fmt.Errorf("prop feed base url is not configured")
	}
	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" {
		return sportsbook.Lines{}, fmt.Errorf("player id is required")
	}

	out := sportsbook.Lines{
		Provider:   c.Name(),
		PlayerID:   playerID,
		PlayerName: req.PlayerName,
		Date:       req.Date,
		FetchedAt:  c.now().UTC(),
	}

	query := url.Values{}
	query.Set("date", req.Date.Format(time.DateOnly))
	if req.GameID != "" {
		query.Set("game_id", req.GameID)
	}
	fullURL := c.baseURL + "/players/" + url.PathEscape(playerID) + "/lines?" + query.Encode()

	var (
		body  []byte
		found bool
	)
	err := c.breaker.Execute(func() error {
		var err error
		body, found, err = c.get(ctx, fullURL)
		return err
	}, func(err error) bool { return stderrors.Is(err, errPropFeedTransient) })
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "prop feed circuit breaker rejected request", "player_id", playerID, "state", c.breaker.State())
		return sportsbook.Lines{}, fmt.Errorf("%w: prop feed is temporarily unavailable", usecase.ErrUpstreamUnavailable)
	}
	if err != nil {
		return sportsbook.Lines{}, fmt.Errorf("%w: prop feed player=%s: %w", usecase.ErrUpstreamUnavailable, playerID, err)
	}
	if !found {
		return out, nil
	}

	var payload linesPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return sportsbook.Lines{}, fmt.Errorf("%w: decode prop feed payload: %w", usecase.ErrUpstreamUnavailable, err)
	}

	var line statline.Line
	if payload.Lines.Points != nil {
		line = line.With(statline.Points, *payload.Lines.Points)
	}
	if payload.Lines.Rebounds != nil {
		line = line.With(statline.Rebounds, *payload.Lines.Rebounds)
	}
	if payload.Lines.Assists != nil {
		line = line.With(statline.Assists, *payload.Lines.Assists)
	}
	out.Line = line
	if out.PlayerName == "" {
		out.PlayerName = payload.PlayerName
	}
	if !payload.UpdatedAt.IsZero() {
		out.FetchedAt = payload.UpdatedAt.UTC()
	}
	return out, nil
}

// get reports found=false for a 404.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		deadline := time.Now().Add(c.timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}

		resp.Reset()
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errPropFeedTransient, err)
			continue
		}

		status := resp.StatusCode()
		switch {
		case status == fasthttp.StatusNotFound:
			return nil, false, nil
		case status >= 200 && status < 300:
			return append([]byte(nil), resp.Body()...), true, nil
		case status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError:
			lastErr = fmt.Errorf("%w: provider status=%d", errPropFeedTransient, status)
		default:
			return nil, false, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(resp.Body()))
		}
	}

	c.logger.WarnContext(ctx, "prop feed request failed", "url", fullURL, "error", lastErr)
	return nil, false, lastErr
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

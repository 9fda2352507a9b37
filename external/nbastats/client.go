package nbastats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/platform/cache"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL   = "https://stats.nba.com/stats"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	playerNameTTL    = 24 * time.Hour
	gamePlayersTTL   = 6 * time.Hour
	teamRosterTTL    = 6 * time.Hour
)

var errNBAStatsTransient = crerr.New("nba stats transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	OnBreakerState resilience.StateListener
}

// Client reads player game logs, box scores, scoreboards and player info from
// the stats.nba.com JSON endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
	names      *cache.Store[string]
	players    *cache.Store[[]schedule.Player]
	rosters    *cache.Store[schedule.TeamRoster]
	retryDelay func(attempt int) time.Duration
	// requestBudget caps one shared request including its retries.
	requestBudget time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	maxRetries := maxInt(cfg.MaxRetries, 0)
	retryDelay := func(attempt int) time.Duration { return time.Duration(attempt+1) * time.Second }
	budget := time.Duration(maxRetries+1) * httpClient.Timeout
	for attempt := 0; attempt < maxRetries; attempt++ {
		budget += retryDelay(attempt)
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		userAgent:     userAgent,
		maxRetries:    maxRetries,
		logger:        logger.Named("nbastats"),
		breaker:       resilience.NewCircuitBreakerFromConfig("nba_stats", cfg.CircuitBreaker, cfg.OnBreakerState),
		names:         cache.NewStore[string](playerNameTTL, cache.WithLoadTimeout(budget)),
		players:       cache.NewStore[[]schedule.Player](gamePlayersTTL, cache.WithLoadTimeout(budget)),
		rosters:       cache.NewStore[schedule.TeamRoster](teamRosterTTL, cache.WithLoadTimeout(2*budget)),
		retryDelay:    retryDelay,
		requestBudget: budget,
	}
}

func (c *Client) doJSON(ctx context.Context, endpoint string, query url.Values, target any) error {
	fullURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var raw []byte
	err := c.breaker.Execute(func() error {
		body, err := c.sharedRequest(ctx, fullURL)
		if err != nil {
			return err
		}
		raw = body
		return nil
	}, isNBAStatsCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "nba stats circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		return fmt.Errorf("%w: nba stats is temporarily unavailable", usecase.ErrUpstreamUnavailable)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", usecase.ErrUpstreamUnavailable, endpoint, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode %s payload: %w", usecase.ErrUpstreamUnavailable, endpoint, err)
	}
	return nil
}

// sharedRequest collapses concurrent requests for the same URL. The request runs
// detached from the caller that started it and is bounded by the client's own
// budget; every caller stops waiting when its own ctx ends.
func (c *Client) sharedRequest(ctx context.Context, fullURL string) ([]byte, error) {
	ch := c.flight.DoChan(fullURL, func() (any, error) {
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.requestBudget)
		defer cancel()
		return c.executeRequest(reqCtx, fullURL)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		body, ok := res.Val.([]byte)
		if !ok {
			return nil, fmt.Errorf("unexpected response payload type %T", res.Val)
		}
		return body, nil
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errNBAStatsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errNBAStatsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errNBAStatsTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.retryDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "nba stats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// stats.nba.com drops requests that do not look like they come from nba.com.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")
}

func isNBAStatsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errNBAStatsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

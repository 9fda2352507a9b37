package oddsapi

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
	"github.com/riskibarqy/daily-pick/internal/domain/sportsbook"
	"github.com/riskibarqy/daily-pick/internal/platform/cache"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com/v4"
	defaultRegions = "us"
	defaultOddsTTL = 5 * time.Minute
	sportKey       = "basketball_nba"
	redactedValue  = "REDACTED"
)

var errOddsAPITransient = crerr.New("odds api transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Regions    string
	// Location decides which calendar day an event's commence time falls on.
	Location *time.Location
	// CacheTTL keeps a date's event list and each event's odds so players in
	// the same game share one quota hit.
	CacheTTL       time.Duration
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	OnBreakerState resilience.StateListener
}

// Client is a sportsbook.Provider backed by The Odds API v4 player prop markets.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	regions    string
	location   *time.Location
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	events     *cache.Store[[]event]
	odds       *cache.Store[eventOdds]
	now        func() time.Time
	retryDelay func(attempt int) time.Duration
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
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	regions := strings.TrimSpace(cfg.Regions)
	if regions == "" {
		regions = defaultRegions
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultOddsTTL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		regions:    regions,
		location:   location,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger.Named("oddsapi"),
		breaker:    resilience.NewCircuitBreakerFromConfig(sportsbook.ProviderOddsAPI, cfg.CircuitBreaker, cfg.OnBreakerState),
		events:     cache.NewStore[[]event](ttl),
		odds:       cache.NewStore[eventOdds](ttl),
		now:        time.Now,
		retryDelay: func(attempt int) time.Duration { return time.Duration(attempt+1) * 500 * time.Millisecond },
	}
}

func (c *Client) Name() string {
	return sportsbook.ProviderOddsAPI
}

// FetchLines returns the median points, rebounds and assists lines quoted across
// bookmakers for the player on the requested date. When the request names the
// player's team only that team's event is read; otherwise every event on the
// date is tried in turn. An event whose odds cannot be fetched is skipped, and
// the lookup fails only when no event produced a line and at least one failed.
// A player with no quoted props yields an empty line.
func (c *Client) FetchLines(ctx context.Context, req sportsbook.LineRequest) (sportsbook.Lines, error) {
	if c.apiKey == "" {
		return sportsbook.Lines{}, fmt.Errorf("odds api key is not configured")
	}
	playerName := strings.TrimSpace(req.PlayerName)
	if playerName == "" {
		return sportsbook.Lines{}, fmt.Errorf("player name is required to match odds api outcomes")
	}

	events, err := c.eventsOn(ctx, req.Date)
	if err != nil {
		return sportsbook.Lines{}, err
	}

	out := sportsbook.Lines{
		Provider:   c.Name(),
		PlayerID:   req.PlayerID,
		PlayerName: playerName,
		Date:       req.Date,
		FetchedAt:  c.now().UTC(),
	}
	candidates := eventsForTeam(events, req.TeamCode)

	var failures []error
	for _, e := range candidates {
		odds, err := c.eventOdds(ctx, e.ID)
		if err != nil {
			if ctx.Err() != nil {
				return sportsbook.Lines{}, err
			}
			c.logger.WarnContext(ctx, "skipping odds api event",
				"event_id", e.ID,
				"home_team", e.HomeTeam,
				"away_team", e.AwayTeam,
				"error", err,
			)
			failures = append(failures, err)
			continue
		}
		line := odds.lineFor(playerName)
		if line.IsEmpty() {
			continue
		}
		out.Line = line
		c.logger.DebugContext(ctx, "matched odds api event",
			"event_id", e.ID,
			"home_team", e.HomeTeam,
			"away_team", e.AwayTeam,
			"player_name", playerName,
		)
		return out, nil
	}

	if len(failures) > 0 {
		return sportsbook.Lines{}, fmt.Errorf("no line for player=%s, %d of %d events failed: %w",
			playerName, len(failures), len(candidates), stderrors.Join(failures...))
	}
	return out, nil
}

func (c *Client) eventsOn(ctx context.Context, date time.Time) ([]event, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, _, err := c.events.Load(ctx, "events:"+dayStart.Format(time.DateOnly), func(ctx context.Context) ([]event, error) {
		query := url.Values{}
		query.Set("dateFormat", "iso")
		query.Set("commenceTimeFrom", dayStart.UTC().Format("2006-01-02T15:04:05Z"))
		query.Set("commenceTimeTo", dayEnd.UTC().Format("2006-01-02T15:04:05Z"))

		var raw []event
		if err := c.doJSON(ctx, "/sports/"+sportKey+"/events", query, &raw); err != nil {
			return nil, fmt.Errorf("list events date=%s: %w", date.Format(time.DateOnly), err)
		}

		out := make([]event, 0, len(raw))
		for _, e := range raw {
			if e.ID == "" {
				continue
			}
			if !e.CommenceTime.IsZero() {
				local := e.CommenceTime.In(c.location)
				if local.Before(dayStart) || !local.Before(dayEnd) {
					continue
				}
			}
			out = append(out, e)
		}
		return out, nil
	})
	return events, err
}

func (c *Client) eventOdds(ctx context.Context, eventID string) (eventOdds, error) {
	odds, _, err := c.odds.Load(ctx, "odds:"+eventID, func(ctx context.Context) (eventOdds, error) {
		query := url.Values{}
		query.Set("regions", c.regions)
		query.Set("markets", strings.Join(propMarketKeys(), ","))
		query.Set("oddsFormat", "american")
		query.Set("dateFormat", "iso")

		var out eventOdds
		if err := c.doJSON(ctx, "/sports/"+sportKey+"/events/"+url.PathEscape(eventID)+"/odds", query, &out); err != nil {
			return eventOdds{}, fmt.Errorf("fetch event odds event=%s: %w", eventID, err)
		}
		return out, nil
	})
	return odds, err
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	query.Set("apiKey", c.apiKey)
	fullURL := c.baseURL + path + "?" + query.Encode()

	var raw []byte
	err := c.breaker.Execute(func() error {
		body, err := c.executeRequest(ctx, fullURL)
		if err != nil {
			return err
		}
		raw = body
		return nil
	}, isOddsAPICircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "odds api circuit breaker rejected request", "path", path, "state", c.breaker.State())
		return fmt.Errorf("%w: odds api is temporarily unavailable", usecase.ErrUpstreamUnavailable)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", usecase.ErrUpstreamUnavailable, err)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode %s payload: %w", usecase.ErrUpstreamUnavailable, path, err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	safeURL := redactAPIKey(fullURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// url.Error embeds the request URL, which carries the key.
			lastErr = fmt.Errorf("%w: send request %s", errOddsAPITransient, safeURL)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if remaining := resp.Header.Get("x-requests-remaining"); remaining != "" {
				c.logger.DebugContext(ctx, "odds api quota", "remaining", remaining, "used", resp.Header.Get("x-requests-used"))
			}
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOddsAPITransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
				lastErr = fmt.Errorf("%w: provider status=%d url=%s", errOddsAPITransient, resp.StatusCode, safeURL)
			default:
				return nil, fmt.Errorf("provider status=%d url=%s body=%s", resp.StatusCode, safeURL, abbreviateBody(raw))
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

	c.logger.WarnContext(ctx, "odds api request failed", "url", safeURL, "error", lastErr)
	return nil, lastErr
}

func isOddsAPICircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errOddsAPITransient)
}

func redactAPIKey(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	query := parsed.Query()
	if query.Has("apiKey") {
		query.Set("apiKey", redactedValue)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

package propfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/sportsbook"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	cfg.Logger = logging.NewNop()
	return NewClient(cfg)
}

func testRequest() sportsbook.LineRequest {
	return sportsbook.LineRequest{
		PlayerID: "201939",
		Date:     time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestClient_FetchLines(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players/201939/lines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("date") != "2026-01-12" {
			t.Errorf("unexpected date %s", r.URL.Query().Get("date"))
		}
		if r.Header.Get("Authorization") != "Bearer feed-token" {
			t.Errorf("missing bearer token")
		}
		_, _ = w.Write([]byte(`{"player_id":"201939","player_name":"Stephen Curry","lines":{"points":27.5,"rebounds":4.5,"assists":null},"updated_at":"2026-01-12T15:04:05Z"}`))
	}, ClientConfig{APIKey: "feed-token"})

	lines, err := client.FetchLines(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("fetch lines: %v", err)
	}
	if lines.Provider != sportsbook.ProviderPropFeed || lines.PlayerName != "Stephen Curry" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if pts, _ := lines.Line.Get(statline.Points); pts != 27.5 {
		t.Fatalf("unexpected points: got=%v want=27.5", pts)
	}
	if reb, _ := lines.Line.Get(statline.Rebounds); reb != 4.5 {
		t.Fatalf("unexpected rebounds: got=%v want=4.5", reb)
	}
	if lines.Line.Has(statline.Assists) {
		t.Fatalf("null assists must stay unset")
	}
	if want := time.Date(2026, 1, 12, 15, 4, 5, 0, time.UTC); !lines.FetchedAt.Equal(want) {
		t.Fatalf("unexpected fetched at: got=%v want=%v", lines.FetchedAt, want)
	}
}

func TestClient_FetchLines_NotFoundIsEmpty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, ClientConfig{})

	lines, err := client.FetchLines(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("fetch lines: %v", err)
	}
	if !lines.Line.IsEmpty() {
		t.Fatalf("expected empty line, got=%v", lines.Line.ToMap())
	}
}

func TestClient_FetchLines_RetriesThenOpensBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, ClientConfig{
		MaxRetries: 1,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchLines(context.Background(), testRequest())
		if !errors.Is(err, usecase.ErrUpstreamUnavailable) {
			t.Fatalf("attempt %d: expected ErrUpstreamUnavailable, got=%v", i, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retried attempt then an open breaker, calls=%d", calls.Load())
	}
}

func TestClient_FetchLines_RequiresConfiguration(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchLines(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected error without base url")
	}
}

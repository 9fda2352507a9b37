package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	gamelogmock "github.com/riskibarqy/daily-pick/internal/mocks/domain/gamelog"
	basecache "github.com/riskibarqy/daily-pick/internal/platform/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGameLogSource_CachesRecentGames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	before := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	next := gamelogmock.NewSource(t)
	next.On("RecentGames", mock.Anything, "201939", before, 10).
		Return([]gamelog.Game{{GameID: "g-1"}, {GameID: "g-2"}}, nil).
		Once()

	source := NewGameLogSource(next, basecache.NewStore[[]gamelog.Game](time.Minute))
	for i := 0; i < 3; i++ {
		games, err := source.RecentGames(ctx, "201939", before, 10)
		require.NoError(t, err)
		require.Len(t, games, 2)
		games[0].GameID = "mutated"
	}

	games, err := source.RecentGames(ctx, "201939", before, 10)
	require.NoError(t, err)
	require.Equal(t, "g-1", games[0].GameID)
}

func TestGameLogSource_DoesNotCacheErrorsOrBoxScores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	before := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	upstreamErr := errors.New("boom")

	next := gamelogmock.NewSource(t)
	next.On("RecentGames", mock.Anything, "1", before, 5).Return(nil, upstreamErr).Once()
	next.On("RecentGames", mock.Anything, "1", before, 5).Return([]gamelog.Game{{GameID: "g-1"}}, nil).Once()
	next.On("BoxScore", mock.Anything, "g-1", "1").Return(gamelog.BoxScore{Status: gamelog.StatusLive}, nil).Twice()

	source := NewGameLogSource(next, basecache.NewStore[[]gamelog.Game](time.Minute))

	_, err := source.RecentGames(ctx, "1", before, 5)
	require.ErrorIs(t, err, upstreamErr)
	games, err := source.RecentGames(ctx, "1", before, 5)
	require.NoError(t, err)
	require.Len(t, games, 1)

	for i := 0; i < 2; i++ {
		box, err := source.BoxScore(ctx, "g-1", "1")
		require.NoError(t, err)
		require.Equal(t, gamelog.StatusLive, box.Status)
	}
}

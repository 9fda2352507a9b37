package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	basecache "github.com/riskibarqy/daily-pick/internal/platform/cache"
)

// GameLogSource caches game logs read through next. A completed game log does not
// change for a given cut-off date, so entries only expire with the store TTL.
// Box scores are passed through because a live game keeps changing.
type GameLogSource struct {
	next  gamelog.Source
	cache *basecache.Store[[]gamelog.Game]
}

func NewGameLogSource(next gamelog.Source, cache *basecache.Store[[]gamelog.Game]) *GameLogSource {
	return &GameLogSource{next: next, cache: cache}
}

func (s *GameLogSource) RecentGames(ctx context.Context, playerID string, before time.Time, limit int) ([]gamelog.Game, error) {
	key := "gamelog:recent:" + playerID + ":" + before.Format(time.DateOnly) + ":" + strconv.Itoa(limit)
	items, _, err := s.cache.Load(ctx, key, func(ctx context.Context) ([]gamelog.Game, error) {
		items, err := s.next.RecentGames(ctx, playerID, before, limit)
		if err != nil {
			return nil, err
		}
		return append([]gamelog.Game(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]gamelog.Game(nil), items...), nil
}

func (s *GameLogSource) BoxScore(ctx context.Context, gameID, playerID string) (gamelog.BoxScore, error) {
	return s.next.BoxScore(ctx, gameID, playerID)
}

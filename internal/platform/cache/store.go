// Package cache holds typed in-process TTL caches for upstream reads.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrNilLoader = errors.New("cache: loader is required")

const defaultLoadTimeout = 30 * time.Second

type item[V any] struct {
	value   V
	expires time.Time
}

// Store maps keys to values of one type. An entry is live while now < expires;
// a non-positive TTL keeps entries until they are invalidated.
type Store[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl         time.Duration
	clock       func() time.Time
	loadTimeout time.Duration
	group       singleflight.Group
}

type settings struct {
	clock       func() time.Time
	loadTimeout time.Duration
}

type Option func(*settings)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLoadTimeout bounds a shared load once it no longer follows any caller's context.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

func NewStore[V any](ttl time.Duration, opts ...Option) *Store[V] {
	s := settings{clock: time.Now, loadTimeout: defaultLoadTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return &Store[V]{
		items:       make(map[string]item[V]),
		ttl:         ttl,
		clock:       s.clock,
		loadTimeout: s.loadTimeout,
	}
}

func (s *Store[V]) TTL() time.Duration { return s.ttl }

func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if s.live(it) {
		return it.value, true
	}

	s.mu.Lock()
	if cur, ok := s.items[key]; ok && cur.expires.Equal(it.expires) {
		delete(s.items, key)
	}
	s.mu.Unlock()
	return zero, false
}

func (s *Store[V]) Set(key string, value V) {
	if key == "" {
		return
	}
	it := item[V]{value: value}
	if s.ttl > 0 {
		it.expires = s.clock().Add(s.ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

// Invalidate drops key so the next Load goes to the loader.
func (s *Store[V]) Invalidate(key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	s.group.Forget(key)
}

// Len counts stored entries, including expired ones not yet evicted.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Load returns the cached value for key or calls loader once for all concurrent
// callers of the same key. hit reports whether the value was already cached.
// Failed loads are not stored.
//
// The shared loader runs on a context detached from the caller that started it,
// bounded by the load timeout, so one caller giving up never fails the others.
// Each caller still returns as soon as its own ctx is done.
func (s *Store[V]) Load(ctx context.Context, key string, loader func(context.Context) (V, error)) (value V, hit bool, err error) {
	if loader == nil {
		return value, false, ErrNilLoader
	}
	if key == "" {
		value, err = loader(ctx)
		return value, false, err
	}
	if v, ok := s.Get(key); ok {
		return v, true, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		v, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		s.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return value, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return value, false, res.Err
		}
		return res.Val.(V), false, nil
	}
}

func (s *Store[V]) live(it item[V]) bool {
	return s.ttl <= 0 || s.clock().Before(it.expires)
}

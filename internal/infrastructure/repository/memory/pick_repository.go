package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/pick"
)

type PickRepository struct {
	mu      sync.RWMutex
	items   map[string]pick.Pick
	unique  map[string]string
	results map[string]pick.Result
}

func NewPickRepository() *PickRepository {
	return &PickRepository{
		items:   make(map[string]pick.Pick),
		unique:  make(map[string]string),
		results: make(map[string]pick.Result),
	}
}

func (r *PickRepository) Create(_ context.Context, p pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pickKey(p.GroupID, p.UserID, p.Date)
	if _, exists := r.unique[key]; exists {
		return pick.ErrDuplicatePick
	}
	r.items[p.ID] = p
	r.unique[key] = p.ID
	return nil
}

func (r *PickRepository) GetByGroupUserDate(_ context.Context, groupID, userID string, date time.Time) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pickID, ok := r.unique[pickKey(groupID, userID, date)]
	if !ok {
		return pick.Pick{}, false, nil
	}
	return r.items[pickID], true, nil
}

func (r *PickRepository) ListByGroupAndDate(_ context.Context, groupID string, date time.Time) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format(time.DateOnly)
	out := make([]pick.Pick, 0)
	for _, p := range r.items {
		if p.GroupID == groupID && p.Date.Format(time.DateOnly) == day {
			out = append(out, p)
		}
	}
	sortPicks(out)
	return out, nil
}

// SaveResults applies every result or none.
func (r *PickRepository) SaveResults(_ context.Context, results []pick.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, result := range results {
		if _, ok := r.items[result.PickID]; !ok {
			return fmt.Errorf("pick id=%s not found", result.PickID)
		}
	}
	for _, result := range results {
		p := r.items[result.PickID]
		p.Status = result.Status
		r.items[result.PickID] = p
		r.results[result.PickID] = cloneResult(result)
	}
	return nil
}

func (r *PickRepository) ListScoredByGroup(_ context.Context, groupID string, date *time.Time) ([]pick.Scored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	picks := make([]pick.Pick, 0)
	for pickID, result := range r.results {
		p := r.items[pickID]
		if p.GroupID != groupID || result.PickID == "" {
			continue
		}
		if date != nil && p.Date.Format(time.DateOnly) != date.Format(time.DateOnly) {
			continue
		}
		picks = append(picks, p)
	}
	sortPicks(picks)

	out := make([]pick.Scored, 0, len(picks))
	for _, p := range picks {
		out = append(out, pick.Scored{Pick: p, Result: cloneResult(r.results[p.ID])})
	}
	return out, nil
}

func pickKey(groupID, userID string, date time.Time) string {
	return groupID + "::" + userID + "::" + date.Format(time.DateOnly)
}

func sortPicks(items []pick.Pick) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func cloneResult(r pick.Result) pick.Result {
	copied := r
	copied.Breakdown = pick.Breakdown{
		Expected:      cloneFloatMap(r.Breakdown.Expected),
		Actual:        cloneFloatMap(r.Breakdown.Actual),
		Contributions: cloneFloatMap(r.Breakdown.Contributions),
	}
	return copied
}

func cloneFloatMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

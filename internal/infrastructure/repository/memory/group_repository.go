package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/daily-pick/internal/domain/group"
)

type GroupRepository struct {
	mu      sync.RWMutex
	items   map[string]group.Group
	byCode  map[string]string
	members map[string][]group.Member
	orders  []string
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		items:   make(map[string]group.Group),
		byCode:  make(map[string]string),
		members: make(map[string][]group.Member),
	}
}

func (r *GroupRepository) Create(_ context.Context, g group.Group, owner group.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := group.NormalizeCode(g.Code)
	if _, exists := r.byCode[code]; exists {
		return group.ErrDuplicateCode
	}
	if _, exists := r.items[g.ID]; exists {
		return fmt.Errorf("group id=%s already exists", g.ID)
	}

	g.Code = code
	owner.GroupID = g.ID
	r.items[g.ID] = g
	r.byCode[code] = g.ID
	r.members[g.ID] = []group.Member{owner}
	r.orders = append(r.orders, g.ID)
	return nil
}

func (r *GroupRepository) AddMember(_ context.Context, m group.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[m.GroupID]; !exists {
		return fmt.Errorf("group id=%s not found", m.GroupID)
	}
	for _, existing := range r.members[m.GroupID] {
		if existing.UserID == m.UserID {
			return nil
		}
	}
	r.members[m.GroupID] = append(r.members[m.GroupID], m)
	return nil
}

func (r *GroupRepository) GetByCode(_ context.Context, code string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groupID, ok := r.byCode[group.NormalizeCode(code)]
	if !ok {
		return group.Group{}, false, nil
	}
	return r.items[groupID], true, nil
}

func (r *GroupRepository) GetMember(_ context.Context, groupID, userID string) (group.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members[groupID] {
		if m.UserID == userID {
			return m, true, nil
		}
	}
	return group.Member{}, false, nil
}

func (r *GroupRepository) ListMembers(_ context.Context, groupID string) ([]group.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]group.Member(nil), r.members[groupID]...), nil
}

// Search matches the query against names and codes, case-insensitively.
func (r *GroupRepository) Search(_ context.Context, query string, limit int) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]group.Group, 0)
	for _, groupID := range r.orders {
		g := r.items[groupID]
		if strings.Contains(strings.ToLower(g.Name), needle) || strings.Contains(strings.ToLower(g.Code), needle) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

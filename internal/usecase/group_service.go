package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/platform/id"
)

const (
	maxGroupNameLength   = 60
	maxDisplayNameLength = 40
	codeGenerateAttempts = 5
	defaultSearchLimit   = 10
	maxSearchLimit       = 25
)

type GroupIDGenerator interface {
	id.Generator
	id.CodeGenerator
}

type CreateGroupInput struct {
	Name     string
	UserName string
}

type JoinGroupInput struct {
	Code     string
	UserName string
}

// Membership is the group a user belongs to together with the member record.
type Membership struct {
	Group  group.Group
	Member group.Member
}

type GroupService struct {
	groupRepo group.Repository
	idGen     GroupIDGenerator
	now       func() time.Time
}

func NewGroupService(groupRepo group.Repository, idGen GroupIDGenerator) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		idGen:     idGen,
		now:       time.Now,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.CreateGroup")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	userName := strings.TrimSpace(input.UserName)
	if name == "" || len(name) > maxGroupNameLength {
		return Membership{}, fmt.Errorf("%w: group name must be 1-%d characters", ErrInvalidInput, maxGroupNameLength)
	}
	if userName == "" || len(userName) > maxDisplayNameLength {
		return Membership{}, fmt.Errorf("%w: user name must be 1-%d characters", ErrInvalidInput, maxDisplayNameLength)
	}

	groupID, err := s.idGen.NewID()
	if err != nil {
		return Membership{}, fmt.Errorf("generate group id: %w", err)
	}
	userID, err := s.idGen.NewID()
	if err != nil {
		return Membership{}, fmt.Errorf("generate user id: %w", err)
	}

	now := s.now().UTC()
	owner := group.Member{
		GroupID:     groupID,
		UserID:      userID,
		DisplayName: userName,
		JoinedAt:    now,
	}

	for attempt := 0; attempt < codeGenerateAttempts; attempt++ {
		code, err := s.idGen.NewCode(group.CodeLength)
		if err != nil {
			return Membership{}, fmt.Errorf("generate group code: %w", err)
		}

		g := group.Group{
			ID:        groupID,
			Name:      name,
			Code:      code,
			CreatedAt: now,
		}
		err = s.groupRepo.Create(ctx, g, owner)
		if errors.Is(err, group.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			recordSpanError(span, err)
			return Membership{}, fmt.Errorf("create group: %w", err)
		}
		return Membership{Group: g, Member: owner}, nil
	}

	return Membership{}, fmt.Errorf("%w: could not allocate a unique group code", ErrConflict)
}

// JoinGroup adds a member by display name. Joining again with a name already in the
// group returns the existing member, which is how users come back without accounts.
func (s *GroupService) JoinGroup(ctx context.Context, input JoinGroupInput) (Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GroupService.JoinGroup")
	defer span.End()

	userName := strings.TrimSpace(input.UserName)
	if userName == "" || len(userName) > maxDisplayNameLength {
		return Membership{}, fmt.Errorf("%w: user name must be 1-%d characters", ErrInvalidInput, maxDisplayNameLength)
	}

	g, err := s.GetGroup(ctx, input.Code)
	if err != nil {
		return Membership{}, err
	}

	members, err := s.groupRepo.ListMembers(ctx, g.ID)
	if err != nil {
		return Membership{}, fmt.Errorf("list group members: %w", err)
	}
	for _, m := range members {
		if strings.EqualFold(m.DisplayName, userName) {
			return Membership{Group: g, Member: m}, nil
		}
	}

	userID, err := s.idGen.NewID()
	if err != nil {
		return Membership{}, fmt.Errorf("generate user id: %w", err)
	}
	member := group.Member{
		GroupID:     g.ID,
		UserID:      userID,
		DisplayName: userName,
		JoinedAt:    s.now().UTC(),
	}
	if err := s.groupRepo.AddMember(ctx, member); err != nil {
		recordSpanError(span, err)
		return Membership{}, fmt.Errorf("add group member: %w", err)
	}

	return Membership{Group: g, Member: member}, nil
}

// GetGroup looks a group up by code, ignoring case and surrounding spaces.
func (s *GroupService) GetGroup(ctx context.Context, code string) (group.Group, error) {
	code = group.NormalizeCode(code)
	if !group.IsValidCode(code) {
		return group.Group{}, fmt.Errorf("%w: group code must be %d letters or digits", ErrInvalidInput, group.CodeLength)
	}

	g, exists, err := s.groupRepo.GetByCode(ctx, code)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by code: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: group code=%s", ErrNotFound, code)
	}
	return g, nil
}

func (s *GroupService) ListMembers(ctx context.Context, code string) ([]group.Member, error) {
	g, err := s.GetGroup(ctx, code)
	if err != nil {
		return nil, err
	}

	members, err := s.groupRepo.ListMembers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return members, nil
}

func (s *GroupService) SearchGroups(ctx context.Context, query string, limit int) ([]group.Group, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	groups, err := s.groupRepo.Search(ctx, query, clampSearchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}
	return groups, nil
}

func clampSearchLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return limit
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/daily-pick/internal/platform/id"
)

type sequenceCodes struct {
	*id.RandomGenerator
	codes []string
}

func (s *sequenceCodes) NewCode(int) (string, error) {
	code := s.codes[0]
	s.codes = s.codes[1:]
	return code, nil
}

func TestGroupService_CreateJoinAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewGroupRepository()
	service := NewGroupService(repo, id.NewRandomGenerator())

	created, err := service.CreateGroup(ctx, CreateGroupInput{Name: "  Office Hoops ", UserName: "Dana"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if !group.IsValidCode(created.Group.Code) {
		t.Fatalf("invalid generated code: %s", created.Group.Code)
	}
	if created.Group.Name != "Office Hoops" {
		t.Fatalf("unexpected group name: %q", created.Group.Name)
	}

	joined, err := service.JoinGroup(ctx, JoinGroupInput{Code: " " + strings.ToLower(created.Group.Code), UserName: "Eli"})
	if err != nil {
		t.Fatalf("join group: %v", err)
	}
	again, err := service.JoinGroup(ctx, JoinGroupInput{Code: created.Group.Code, UserName: "eli"})
	if err != nil {
		t.Fatalf("re-join group: %v", err)
	}
	if again.Member.UserID != joined.Member.UserID {
		t.Fatalf("re-joining with the same name should return the same member")
	}

	members, err := service.ListMembers(ctx, created.Group.Code)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].DisplayName != "Dana" || members[1].DisplayName != "Eli" {
		t.Fatalf("unexpected members in join order: %+v", members)
	}
}

func TestGroupService_RetriesDuplicateCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewGroupRepository()
	gen := &sequenceCodes{RandomGenerator: id.NewRandomGenerator(), codes: []string{"AAAAAA", "AAAAAA", "BBBBBB"}}
	service := NewGroupService(repo, gen)

	if _, err := service.CreateGroup(ctx, CreateGroupInput{Name: "First", UserName: "A"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := service.CreateGroup(ctx, CreateGroupInput{Name: "Second", UserName: "B"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Group.Code != "BBBBBB" {
		t.Fatalf("unexpected code after retry: got=%s want=BBBBBB", second.Group.Code)
	}
}

func TestGroupService_Validation(t *testing.T) {
	service := NewGroupService(memory.NewGroupRepository(), id.NewRandomGenerator())

	tests := []struct {
		name      string
		run       func() error
		targetErr error
	}{
		{
			name: "empty group name",
			run: func() error {
				_, err := service.CreateGroup(context.Background(), CreateGroupInput{UserName: "A"})
				return err
			},
			targetErr: ErrInvalidInput,
		},
		{
			name: "malformed code",
			run: func() error {
				_, err := service.GetGroup(context.Background(), "ab-1")
				return err
			},
			targetErr: ErrInvalidInput,
		},
		{
			name: "unknown code",
			run: func() error {
				_, err := service.GetGroup(context.Background(), "QQQQQ1")
				return err
			},
			targetErr: ErrNotFound,
		},
		{
			name: "empty search",
			run: func() error {
				_, err := service.SearchGroups(context.Background(), " ", 5)
				return err
			},
			targetErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestClampSearchLimit(t *testing.T) {
	t.Parallel()

	for input, want := range map[int]int{-1: 10, 0: 10, 7: 7, 25: 25, 100: 25} {
		if got := clampSearchLimit(input); got != want {
			t.Fatalf("clamp %d: got=%d want=%d", input, got, want)
		}
	}
}

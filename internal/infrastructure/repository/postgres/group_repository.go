package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/daily-pick/internal/domain/group"
	qb "github.com/riskibarqy/daily-pick/internal/platform/querybuilder"
)

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g group.Group, owner group.Member) error {
	return withTx(ctx, r.db, "create group", func(tx *sqlx.Tx) error {
		query, args, err := qb.InsertModel("groups", groupInsertModel{
			PublicID:  g.ID,
			Name:      g.Name,
			Code:      g.Code,
			CreatedAt: g.CreatedAt,
		}, nil)
		if err != nil {
			return fmt.Errorf("build create group query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create group code=%s: %w", g.Code, group.ErrDuplicateCode)
			}
			return fmt.Errorf("create group: %w", err)
		}

		query, args, err = qb.InsertModel("group_members", memberInsert(owner), nil)
		if err != nil {
			return fmt.Errorf("build create group owner query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("create group owner: %w", err)
		}
		return nil
	})
}

// AddMember is a no-op for a user who already belongs to the group.
func (r *GroupRepository) AddMember(ctx context.Context, m group.Member) error {
	query, args, err := qb.InsertModel("group_members", memberInsert(m), qb.DoNothingOn("group_public_id", "user_id"))
	if err != nil {
		return fmt.Errorf("build add group member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByCode(ctx context.Context, code string) (group.Group, bool, error) {
	query, args, err := qb.Select("*").From("groups").
		Where(qb.Eq("code", code)).
		ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build get group by code query: %w", err)
	}

	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("get group by code: %w", err)
	}
	return groupFromRow(row), true, nil
}

func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (group.Member, bool, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return group.Member{}, false, fmt.Errorf("build get group member query: %w", err)
	}

	var row groupMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Member{}, false, nil
		}
		return group.Member{}, false, fmt.Errorf("get group member: %w", err)
	}
	return memberFromRow(row), true, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]group.Member, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(qb.Eq("group_public_id", groupID)).
		OrderBy("joined_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group members query: %w", err)
	}

	var rows []groupMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}

	out := make([]group.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func (r *GroupRepository) Search(ctx context.Context, term string, limit int) ([]group.Group, error) {
	pattern := likePattern(term)
	builder := qb.Select("*").From("groups").
		Where(qb.Or(qb.ILike("name", pattern), qb.ILike("code", pattern))).
		OrderBy("LOWER(name) ASC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search groups query: %w", err)
	}

	var rows []groupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}

	out := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, groupFromRow(row))
	}
	return out, nil
}

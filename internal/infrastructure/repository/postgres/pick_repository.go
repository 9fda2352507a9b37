package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	qb "github.com/riskibarqy/daily-pick/internal/platform/querybuilder"
)

var upsertPickResult = qb.UpdateOn([]string{"pick_public_id"},
	"run_id",
	"status",
	"score",
	"breakdown",
	"projection_source",
	"provider",
	"game_id",
	"reason",
	"message",
	"scored_at",
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) Create(ctx context.Context, p pick.Pick) error {
	query, args, err := qb.InsertModel("picks", pickInsert(p), nil)
	if err != nil {
		return fmt.Errorf("build create pick query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create pick user=%s date=%s: %w", p.UserID, dateParam(p.Date), pick.ErrDuplicatePick)
		}
		return fmt.Errorf("create pick: %w", err)
	}
	return nil
}

func (r *PickRepository) GetByGroupUserDate(ctx context.Context, groupID, userID string, date time.Time) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
			qb.Eq("pick_date", dateParam(date)),
		).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get pick: %w", err)
	}
	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByGroupAndDate(ctx context.Context, groupID string, date time.Time) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("pick_date", dateParam(date)),
		).
		OrderBy("created_at ASC", "public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}

	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}

// SaveResults writes every result in one transaction, replacing earlier results for the same picks.
func (r *PickRepository) SaveResults(ctx context.Context, results []pick.Result) error {
	if len(results) == 0 {
		return nil
	}

	return withTx(ctx, r.db, "save pick results", func(tx *sqlx.Tx) error {
		for _, result := range results {
			updateQuery, updateArgs, err := qb.Update("picks").
				Set("status", result.Status).
				SetExpr("updated_at", "NOW()").
				Where(qb.Eq("public_id", result.PickID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update pick status query: %w", err)
			}
			res, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
			if err != nil {
				return fmt.Errorf("update pick status pick=%s: %w", result.PickID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected update pick status: %w", err)
			}
			if affected == 0 {
				return fmt.Errorf("pick id=%s not found", result.PickID)
			}

			model, err := resultUpsert(result)
			if err != nil {
				return err
			}
			upsertQuery, upsertArgs, err := qb.InsertModel("pick_results", model, upsertPickResult)
			if err != nil {
				return fmt.Errorf("build upsert pick result query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, upsertQuery, upsertArgs...); err != nil {
				return fmt.Errorf("upsert pick result pick=%s: %w", result.PickID, err)
			}
		}
		return nil
	})
}

func (r *PickRepository) ListScoredByGroup(ctx context.Context, groupID string, date *time.Time) ([]pick.Scored, error) {
	builder := qb.Select(scoredPickColumns...).
		From("picks p").
		Join("pick_results pr", "pr.pick_public_id = p.public_id").
		Where(qb.Eq("p.group_public_id", groupID))
	if date != nil {
		builder = builder.Where(qb.Eq("p.pick_date", dateParam(*date)))
	}
	query, args, err := builder.
		OrderBy("p.pick_date ASC", "p.created_at ASC", "p.public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scored picks query: %w", err)
	}

	var rows []scoredPickRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scored picks: %w", err)
	}

	out := make([]pick.Scored, 0, len(rows))
	for _, row := range rows {
		item, err := scoredFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

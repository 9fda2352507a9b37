package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	"github.com/riskibarqy/daily-pick/internal/domain/statline"
)

type pickTableModel struct {
	ID         int64     `db:"id"`
	PublicID   string    `db:"public_id"`
	GroupID    string    `db:"group_public_id"`
	UserID     string    `db:"user_id"`
	PickDate   time.Time `db:"pick_date"`
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
	GameID     string    `db:"game_id"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type pickInsertModel struct {
	PublicID   string    `db:"public_id"`
	GroupID    string    `db:"group_public_id"`
	UserID     string    `db:"user_id"`
	PickDate   string    `db:"pick_date"`
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
	GameID     string    `db:"game_id"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

type pickResultUpsertModel struct {
	PickID           string    `db:"pick_public_id"`
	RunID            string    `db:"run_id"`
	Status           string    `db:"status"`
	Score            float64   `db:"score"`
	Breakdown        []byte    `db:"breakdown"`
	ProjectionSource string    `db:"projection_source"`
	Provider         string    `db:"provider"`
	GameID           string    `db:"game_id"`
	Reason           string    `db:"reason"`
	Message          string    `db:"message"`
	ScoredAt         time.Time `db:"scored_at"`
}

// scoredPickRow is one picks row joined with its pick_results row.
type scoredPickRow struct {
	PublicID         string    `db:"public_id"`
	GroupID          string    `db:"group_public_id"`
	UserID           string    `db:"user_id"`
	PickDate         time.Time `db:"pick_date"`
	PlayerID         string    `db:"player_id"`
	PlayerName       string    `db:"player_name"`
	PickGameID       string    `db:"game_id"`
	PickStatus       string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	RunID            string    `db:"result_run_id"`
	ResultStatus     string    `db:"result_status"`
	Score            float64   `db:"result_score"`
	Breakdown        []byte    `db:"result_breakdown"`
	ProjectionSource string    `db:"result_projection_source"`
	Provider         string    `db:"result_provider"`
	ResultGameID     string    `db:"result_game_id"`
	Reason           string    `db:"result_reason"`
	Message          string    `db:"result_message"`
	ScoredAt         time.Time `db:"result_scored_at"`
}

var scoredPickColumns = []string{
	"p.public_id",
	"p.group_public_id",
	"p.user_id",
	"p.pick_date",
	"p.player_id",
	"p.player_name",
	"p.game_id",
	"p.status",
	"p.created_at",
	"pr.run_id AS result_run_id",
	"pr.status AS result_status",
	"pr.score AS result_score",
	"pr.breakdown AS result_breakdown",
	"pr.projection_source AS result_projection_source",
	"pr.provider AS result_provider",
	"pr.game_id AS result_game_id",
	"pr.reason AS result_reason",
	"pr.message AS result_message",
	"pr.scored_at AS result_scored_at",
}

func pickFromRow(row pickTableModel) pick.Pick {
	return pick.Pick{
		ID:         row.PublicID,
		GroupID:    row.GroupID,
		UserID:     row.UserID,
		Date:       calendarDate(row.PickDate),
		PlayerID:   row.PlayerID,
		PlayerName: row.PlayerName,
		GameID:     row.GameID,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

func pickInsert(p pick.Pick) pickInsertModel {
	return pickInsertModel{
		PublicID:   p.ID,
		GroupID:    p.GroupID,
		UserID:     p.UserID,
		PickDate:   dateParam(p.Date),
		PlayerID:   p.PlayerID,
		PlayerName: p.PlayerName,
		GameID:     p.GameID,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
	}
}

func resultUpsert(r pick.Result) (pickResultUpsertModel, error) {
	breakdown, err := encodeBreakdown(r.Breakdown)
	if err != nil {
		return pickResultUpsertModel{}, fmt.Errorf("encode breakdown pick=%s: %w", r.PickID, err)
	}
	return pickResultUpsertModel{
		PickID:           r.PickID,
		RunID:            r.RunID,
		Status:           r.Status,
		Score:            r.Score,
		Breakdown:        breakdown,
		ProjectionSource: string(r.ProjectionSource),
		Provider:         r.Provider,
		GameID:           r.GameID,
		Reason:           r.Reason,
		Message:          r.Message,
		ScoredAt:         r.ScoredAt,
	}, nil
}

func scoredFromRow(row scoredPickRow) (pick.Scored, error) {
	breakdown, err := decodeBreakdown(row.Breakdown)
	if err != nil {
		return pick.Scored{}, fmt.Errorf("decode breakdown pick=%s: %w", row.PublicID, err)
	}
	return pick.Scored{
		Pick: pick.Pick{
			ID:         row.PublicID,
			GroupID:    row.GroupID,
			UserID:     row.UserID,
			Date:       calendarDate(row.PickDate),
			PlayerID:   row.PlayerID,
			PlayerName: row.PlayerName,
			GameID:     row.PickGameID,
			Status:     row.PickStatus,
			CreatedAt:  row.CreatedAt.UTC(),
		},
		Result: pick.Result{
			PickID:           row.PublicID,
			RunID:            row.RunID,
			Status:           row.ResultStatus,
			Score:            row.Score,
			Breakdown:        breakdown,
			ProjectionSource: statline.Source(row.ProjectionSource),
			Provider:         row.Provider,
			GameID:           row.ResultGameID,
			Reason:           row.Reason,
			Message:          row.Message,
			ScoredAt:         row.ScoredAt.UTC(),
		},
	}, nil
}

// Empty maps are stored as {} rather than null so an unscored breakdown reads back empty.
func encodeBreakdown(b pick.Breakdown) ([]byte, error) {
	return sonic.Marshal(pick.Breakdown{
		Expected:      nonNilMap(b.Expected),
		Actual:        nonNilMap(b.Actual),
		Contributions: nonNilMap(b.Contributions),
	})
}

func decodeBreakdown(raw []byte) (pick.Breakdown, error) {
	var out pick.Breakdown
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &out); err != nil {
			return pick.Breakdown{}, err
		}
	}
	out.Expected = nonNilMap(out.Expected)
	out.Actual = nonNilMap(out.Actual)
	out.Contributions = nonNilMap(out.Contributions)
	return out, nil
}

func nonNilMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return map[string]float64{}
	}
	return in
}

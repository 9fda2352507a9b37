package postgres

import (
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/group"
)

type groupTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

type groupInsertModel struct {
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

type groupMemberTableModel struct {
	ID          int64     `db:"id"`
	GroupID     string    `db:"group_public_id"`
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at"`
}

type groupMemberInsertModel struct {
	GroupID     string    `db:"group_public_id"`
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at"`
}

func groupFromRow(row groupTableModel) group.Group {
	return group.Group{
		ID:        row.PublicID,
		Name:      row.Name,
		Code:      row.Code,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func memberFromRow(row groupMemberTableModel) group.Member {
	return group.Member{
		GroupID:     row.GroupID,
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		JoinedAt:    row.JoinedAt.UTC(),
	}
}

func memberInsert(m group.Member) groupMemberInsertModel {
	return groupMemberInsertModel{
		GroupID:     m.GroupID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		JoinedAt:    m.JoinedAt,
	}
}

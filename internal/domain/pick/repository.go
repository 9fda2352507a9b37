package pick

import (
	"context"
	"time"
)

// Repository persists picks and their scoring results.
type Repository interface {
	Create(ctx context.Context, p Pick) error
	GetByGroupUserDate(ctx context.Context, groupID, userID string, date time.Time) (Pick, bool, error)
	ListByGroupAndDate(ctx context.Context, groupID string, date time.Time) ([]Pick, error)

	// SaveResults replaces the stored result of every listed pick and updates its status.
	SaveResults(ctx context.Context, results []Result) error
	// ListScoredByGroup returns picks with a stored result; a nil date means all dates.
	ListScoredByGroup(ctx context.Context, groupID string, date *time.Time) ([]Scored, error)
}

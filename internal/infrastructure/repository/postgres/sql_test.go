package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches unique violation code", func(t *testing.T) {
		err := fmt.Errorf("insert pick: %w", &pq.Error{Code: "23505", Constraint: "picks_group_user_date_key"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		err := &pq.Error{Code: "23503"}
		if isUniqueViolation(err) {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(fakeErr("pq: duplicate key value violates unique constraint")) {
			t.Fatalf("expected false for untyped error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get group: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("boom")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "hoops", want: "%hoops%"},
		{in: " 100%_club ", want: `%100\%\_club%`},
		{in: `a\b`, want: `%a\\b%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Fatalf("like pattern %q: got=%q want=%q", tt.in, got, tt.want)
		}
	}
}

func TestCalendarDate(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	got := calendarDate(time.Date(2026, 1, 12, 0, 0, 0, 0, loc))
	want := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected calendar date: got=%v want=%v", got, want)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

package group

import (
	"errors"
	"strings"
	"time"
)

const CodeLength = 6

var ErrDuplicateCode = errors.New("group code already exists")

// Group is a set of members competing on the same leaderboard.
type Group struct {
	ID        string
	Name      string
	Code      string
	CreatedAt time.Time
}

// Member is a user inside a group. Users exist only through membership.
type Member struct {
	GroupID     string
	UserID      string
	DisplayName string
	JoinedAt    time.Time
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

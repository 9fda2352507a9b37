package httpapi

import (
	"math"
	"time"

	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/group"
	"github.com/riskibarqy/daily-pick/internal/domain/pick"
	"github.com/riskibarqy/daily-pick/internal/domain/projection"
	"github.com/riskibarqy/daily-pick/internal/domain/schedule"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

const dateLayout = "2006-01-02"

type createGroupRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	UserName string `json:"user_name" validate:"required,max=40"`
}

type joinGroupRequest struct {
	Code     string `json:"code" validate:"required,len=6,alphanum"`
	UserName string `json:"user_name" validate:"required,max=40"`
}

type createPickRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	PlayerID   string `json:"player_id" validate:"required,max=32"`
	PlayerName string `json:"player_name" validate:"required,max=80"`
	GameID     string `json:"game_id" validate:"omitempty,max=32"`
}

type groupDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type memberDTO struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	JoinedAt time.Time `json:"joined_at"`
}

type membershipDTO struct {
	Group  groupDTO  `json:"group"`
	Member memberDTO `json:"member"`
}

type breakdownDTO struct {
	Expected      map[string]float64 `json:"expected"`
	Actual        map[string]float64 `json:"actual"`
	Contributions map[string]float64 `json:"contributions"`
}

type resultDTO struct {
	RunID            string       `json:"run_id"`
	Status           string       `json:"status"`
	Score            float64      `json:"score"`
	Breakdown        breakdownDTO `json:"breakdown"`
	ProjectionSource string       `json:"projection_source,omitempty"`
	Provider         string       `json:"provider,omitempty"`
	GameID           string       `json:"game_id,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	Message          string       `json:"message,omitempty"`
	ScoredAt         time.Time    `json:"scored_at"`
}

type pickDTO struct {
	ID         string     `json:"id"`
	GroupID    string     `json:"group_id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name,omitempty"`
	Date       string     `json:"date"`
	PlayerID   string     `json:"player_id"`
	PlayerName string     `json:"player_name,omitempty"`
	GameID     string     `json:"game_id,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	Result     *resultDTO `json:"result,omitempty"`
}

type leaderboardRowDTO struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name"`
	Score         float64 `json:"score"`
	ScoredPicks   int     `json:"scored_picks"`
	UnscoredPicks int     `json:"unscored_picks"`
}

type dayScoreDTO struct {
	RunID            string              `json:"run_id"`
	GroupCode        string              `json:"group_code"`
	Date             string              `json:"date"`
	Leaderboard      []leaderboardRowDTO `json:"leaderboard"`
	PicksWithResults []pickDTO           `json:"picks_with_results"`
}

type projectionDTO struct {
	PlayerID   string             `json:"player_id"`
	PlayerName string             `json:"player_name,omitempty"`
	Date       string             `json:"date"`
	GameID     string             `json:"game_id,omitempty"`
	Expected   map[string]float64 `json:"expected"`
	Source     string             `json:"source"`
	Provider   string             `json:"provider,omitempty"`
	GamesUsed  int                `json:"games_used,omitempty"`
	FetchedAt  *time.Time         `json:"fetched_at,omitempty"`
}

type boxScoreDTO struct {
	GameID     string             `json:"game_id"`
	PlayerID   string             `json:"player_id"`
	PlayerName string             `json:"player_name,omitempty"`
	Team       string             `json:"team,omitempty"`
	Status     string             `json:"status"`
	DidNotPlay bool               `json:"did_not_play"`
	Comment    string             `json:"comment,omitempty"`
	Minutes    float64            `json:"minutes"`
	Stats      map[string]float64 `json:"stats"`
}

type gameDTO struct {
	GameID    string `json:"game_id"`
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	StartTime string `json:"start_time,omitempty"`
	Status    string `json:"status"`
}

type playerDTO struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Team       string `json:"team"`
	GameID     string `json:"game_id"`
}

type rosterPlayerDTO struct {
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name"`
	Position   string `json:"position,omitempty"`
	Jersey     string `json:"jersey,omitempty"`
}

type teamRosterDTO struct {
	TeamID   string            `json:"team_id"`
	TeamName string            `json:"team_name"`
	TeamAbbr string            `json:"team_abbr"`
	Players  []rosterPlayerDTO `json:"players"`
}

type gameRostersDTO struct {
	GameID string        `json:"game_id"`
	Date   string        `json:"date,omitempty"`
	Home   teamRosterDTO `json:"home"`
	Away   teamRosterDTO `json:"away"`
}

func groupToDTO(g group.Group) groupDTO {
	return groupDTO{
		ID:        g.ID,
		Name:      g.Name,
		Code:      g.Code,
		CreatedAt: g.CreatedAt,
	}
}

func memberToDTO(m group.Member) memberDTO {
	return memberDTO{
		UserID:   m.UserID,
		UserName: m.DisplayName,
		JoinedAt: m.JoinedAt,
	}
}

func membershipToDTO(m usecase.Membership) membershipDTO {
	return membershipDTO{
		Group:  groupToDTO(m.Group),
		Member: memberToDTO(m.Member),
	}
}

func resultToDTO(r pick.Result) resultDTO {
	return resultDTO{
		RunID:  r.RunID,
		Status: r.Status,
		Score:  displayRound(r.Score),
		Breakdown: breakdownDTO{
			Expected:      nonNilMap(r.Breakdown.Expected),
			Actual:        nonNilMap(r.Breakdown.Actual),
			Contributions: roundedMap(r.Breakdown.Contributions),
		},
		ProjectionSource: string(r.ProjectionSource),
		Provider:         r.Provider,
		GameID:           r.GameID,
		Reason:           r.Reason,
		Message:          r.Message,
		ScoredAt:         r.ScoredAt,
	}
}

func pickToDTO(p pick.Pick, userName string, result *pick.Result) pickDTO {
	out := pickDTO{
		ID:         p.ID,
		GroupID:    p.GroupID,
		UserID:     p.UserID,
		UserName:   userName,
		Date:       p.Date.Format(dateLayout),
		PlayerID:   p.PlayerID,
		PlayerName: p.PlayerName,
		GameID:     p.GameID,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
	}
	if result != nil {
		dto := resultToDTO(*result)
		out.Result = &dto
	}
	return out
}

func leaderboardToDTO(rows []pick.LeaderboardRow) []leaderboardRowDTO {
	out := make([]leaderboardRowDTO, 0, len(rows))
	for i, row := range rows {
		out = append(out, leaderboardRowDTO{
			Rank:          i + 1,
			UserID:        row.UserID,
			UserName:      row.UserName,
			Score:         row.Score,
			ScoredPicks:   row.ScoredPicks,
			UnscoredPicks: row.UnscoredPicks,
		})
	}
	return out
}

func dayScoreToDTO(r usecase.DayScoreResult) dayScoreDTO {
	picks := make([]pickDTO, 0, len(r.Picks))
	for _, item := range r.Picks {
		result := item.Result
		picks = append(picks, pickToDTO(item.Pick, item.UserName, &result))
	}
	return dayScoreDTO{
		RunID:            r.RunID,
		GroupCode:        r.GroupCode,
		Date:             r.Date.Format(dateLayout),
		Leaderboard:      leaderboardToDTO(r.Leaderboard),
		PicksWithResults: picks,
	}
}

func projectionToDTO(p projection.Projection) projectionDTO {
	out := projectionDTO{
		PlayerID:   p.PlayerID,
		PlayerName: p.PlayerName,
		Date:       p.Date.Format(dateLayout),
		GameID:     p.GameID,
		Expected:   p.Line.ToMap(),
		Source:     string(p.Source),
		Provider:   p.Provider,
		GamesUsed:  p.GamesUsed,
	}
	if !p.FetchedAt.IsZero() {
		fetchedAt := p.FetchedAt
		out.FetchedAt = &fetchedAt
	}
	return out
}

func boxScoreToDTO(b gamelog.BoxScore) boxScoreDTO {
	return boxScoreDTO{
		GameID:     b.GameID,
		PlayerID:   b.PlayerID,
		PlayerName: b.PlayerName,
		Team:       b.TeamCode,
		Status:     b.Status,
		DidNotPlay: b.DidNotPlay,
		Comment:    b.Comment,
		Minutes:    b.Minutes,
		Stats:      b.Line.ToMap(),
	}
}

func gameToDTO(g schedule.Game) gameDTO {
	return gameDTO{
		GameID:    g.GameID,
		Date:      g.Date.Format(dateLayout),
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		StartTime: g.StartTime,
		Status:    g.Status,
	}
}

func playersToDTO(players []schedule.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerDTO{
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Team:       p.TeamCode,
			GameID:     p.GameID,
		})
	}
	return out
}

func teamRosterToDTO(t schedule.TeamRoster) teamRosterDTO {
	players := make([]rosterPlayerDTO, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, rosterPlayerDTO(p))
	}
	return teamRosterDTO{
		TeamID:   t.TeamID,
		TeamName: t.TeamName,
		TeamAbbr: t.TeamCode,
		Players:  players,
	}
}

func gameRostersToDTO(g schedule.GameRosters) gameRostersDTO {
	out := gameRostersDTO{
		GameID: g.GameID,
		Home:   teamRosterToDTO(g.Home),
		Away:   teamRosterToDTO(g.Away),
	}
	if !g.Date.IsZero() {
		out.Date = g.Date.Format(dateLayout)
	}
	return out
}

// displayRound rounds half away from zero to 2 decimals and folds -0 into 0.
func displayRound(v float64) float64 {
	out := math.Round(v*100) / 100
	if out == 0 {
		return 0
	}
	return out
}

func roundedMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = displayRound(v)
	}
	return out
}

func nonNilMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return map[string]float64{}
	}
	return in
}

package statline

import "math"

// Category names one of the seven tracked box-score statistics.
type Category string

const (
	Points        Category = "points"
	Rebounds      Category = "rebounds"
	Assists       Category = "assists"
	Steals        Category = "steals"
	Blocks        Category = "blocks"
	Turnovers     Category = "turnovers"
	PersonalFouls Category = "personal_fouls"
)

var allCategories = [...]Category{Points, Rebounds, Assists, Steals, Blocks, Turnovers, PersonalFouls}

// AllCategories returns every category in canonical order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories[:])
	return out
}

// SportsbookCategories are the only categories a prop line can populate.
func SportsbookCategories() []Category {
	return []Category{Points, Rebounds, Assists}
}

func ParseCategory(v string) (Category, bool) {
	for _, c := range allCategories {
		if string(c) == v {
			return c, true
		}
	}
	return "", false
}

// Source tags which projector produced an expected line.
type Source string

const (
	SourceSportsbook     Source = "sportsbook_provider"
	SourceRecentAverages Source = "recent_games_average"
)

// Line is a statistical line where every field is optional.
// A nil field means the stat is not evaluated, which is different from zero.
// Lines are values: mutators return a modified copy.
type Line struct {
	Points        *float64
	Rebounds      *float64
	Assists       *float64
	Steals        *float64
	Blocks        *float64
	Turnovers     *float64
	PersonalFouls *float64
}

// Zero returns a line with all seven fields set to 0.
func Zero() Line {
	var out Line
	for _, c := range allCategories {
		out = out.With(c, 0)
	}
	return out
}

func (l Line) field(c Category) *float64 {
	switch c {
	case Points:
		return l.Points
	case Rebounds:
		return l.Rebounds
	case Assists:
		return l.Assists
	case Steals:
		return l.Steals
	case Blocks:
		return l.Blocks
	case Turnovers:
		return l.Turnovers
	case PersonalFouls:
		return l.PersonalFouls
	default:
		return nil
	}
}

func (l Line) Get(c Category) (float64, bool) {
	v := l.field(c)
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (l Line) Has(c Category) bool {
	return l.field(c) != nil
}

// With returns a copy of l with category c set to v.
func (l Line) With(c Category, v float64) Line {
	p := &v
	switch c {
	case Points:
		l.Points = p
	case Rebounds:
		l.Rebounds = p
	case Assists:
		l.Assists = p
	case Steals:
		l.Steals = p
	case Blocks:
		l.Blocks = p
	case Turnovers:
		l.Turnovers = p
	case PersonalFouls:
		l.PersonalFouls = p
	}
	return l
}

// Categories lists the set fields in canonical order.
func (l Line) Categories() []Category {
	out := make([]Category, 0, len(allCategories))
	for _, c := range allCategories {
		if l.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (l Line) IsEmpty() bool {
	return len(l.Categories()) == 0
}

func (l Line) HasAny(categories ...Category) bool {
	for _, c := range categories {
		if l.Has(c) {
			return true
		}
	}
	return false
}

// Only returns a copy of l that keeps just the listed categories.
func (l Line) Only(categories ...Category) Line {
	var out Line
	for _, c := range categories {
		if v, ok := l.Get(c); ok {
			out = out.With(c, v)
		}
	}
	return out
}

func (l Line) ToMap() map[string]float64 {
	out := make(map[string]float64, len(allCategories))
	for _, c := range allCategories {
		if v, ok := l.Get(c); ok {
			out[string(c)] = v
		}
	}
	return out
}

// FromMap builds a line from stat-name keys, ignoring unknown keys and NaN values.
func FromMap(values map[string]float64) Line {
	var out Line
	for key, v := range values {
		c, ok := ParseCategory(key)
		if !ok || math.IsNaN(v) {
			continue
		}
		out = out.With(c, v)
	}
	return out
}

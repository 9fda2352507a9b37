package nbastats

import (
	"strconv"
	"strings"
)

// The stats endpoints answer with tabular result sets: a header row plus
// positional rows.
type resultSetEnvelope struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type row map[string]any

func (e resultSetEnvelope) rows(name string) []row {
	for _, set := range e.ResultSets {
		if !strings.EqualFold(set.Name, name) {
			continue
		}
		out := make([]row, 0, len(set.RowSet))
		for _, values := range set.RowSet {
			item := make(row, len(set.Headers))
			for i, header := range set.Headers {
				if i < len(values) {
					item[strings.ToUpper(header)] = values[i]
				}
			}
			out = append(out, item)
		}
		return out
	}
	return nil
}

func getString(r row, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func getFloat(r row, key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func getInt(r row, key string) int {
	v, _ := getFloat(r, key)
	return int(v)
}

// parseMinutes accepts "34:12", "34.000000:12", "PT34M12.00S" and plain numbers.
func parseMinutes(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case string:
		value := strings.TrimSpace(v)
		if value == "" {
			return 0
		}
		if strings.HasPrefix(value, "PT") {
			value = strings.TrimPrefix(value, "PT")
			value = strings.TrimSuffix(value, "S")
			value = strings.Replace(value, "M", ":", 1)
		}
		minutesPart, secondsPart, hasSeconds := strings.Cut(value, ":")
		minutes, err := strconv.ParseFloat(minutesPart, 64)
		if err != nil {
			return 0
		}
		if hasSeconds {
			if seconds, err := strconv.ParseFloat(secondsPart, 64); err == nil {
				minutes += seconds / 60
			}
		}
		return minutes
	default:
		return 0
	}
}

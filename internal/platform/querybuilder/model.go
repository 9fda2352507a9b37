package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// Conflict renders an ON CONFLICT clause for an insert.
type Conflict struct {
	target []string
	update []string
}

// DoNothingOn skips rows that collide on the target columns.
func DoNothingOn(target ...string) *Conflict {
	return &Conflict{target: target}
}

// UpdateOn overwrites the listed columns from EXCLUDED when a row collides on target.
func UpdateOn(target []string, columns ...string) *Conflict {
	return &Conflict{target: target, update: columns}
}

func (c *Conflict) String() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("ON CONFLICT (")
	b.WriteString(strings.Join(c.target, ", "))
	b.WriteString(")")
	if len(c.update) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	for i, col := range c.update {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(col)
	}
	return b.String()
}

// InsertModel builds a single-row INSERT from the `db` tags of model.
// Untagged, "-" and unexported fields are skipped.
func InsertModel(table string, model any, conflict *Conflict) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, ErrNoTable
	}
	cols, vals, err := taggedFields(model)
	if err != nil {
		return "", nil, err
	}

	var s stmt
	s.write("INSERT INTO ", table, " (", strings.Join(cols, ", "), ") VALUES (")
	for i, v := range vals {
		if i > 0 {
			s.write(", ")
		}
		s.bind(v)
	}
	s.write(")")
	if clause := conflict.String(); clause != "" {
		s.write(" ", clause)
	}
	return s.done()
}

func taggedFields(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("querybuilder: nil model")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("querybuilder: model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	var (
		cols []string
		vals []any
	)
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, v.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("querybuilder: %s has no db columns", t.Name())
	}
	return cols, vals, nil
}

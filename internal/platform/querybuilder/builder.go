// Package querybuilder renders the small set of PostgreSQL statements the
// repositories issue. Values are always bound as $n parameters; identifiers
// are written as given and must never come from user input.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNoTable   = errors.New("querybuilder: table is required")
	ErrNoColumns = errors.New("querybuilder: columns are required")
)

// stmt accumulates SQL text and the positional arguments bound into it.
type stmt struct {
	sql  strings.Builder
	args []any
}

func (s *stmt) write(parts ...string) {
	for _, p := range parts {
		s.sql.WriteString(p)
	}
}

func (s *stmt) bind(v any) {
	s.args = append(s.args, v)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

// expand writes expr, binding one argument for every '?' marker.
// Markers beyond the supplied arguments are left untouched.
func (s *stmt) expand(expr string, args []any) {
	for len(expr) > 0 {
		i := strings.IndexByte(expr, '?')
		if i < 0 || len(args) == 0 {
			s.sql.WriteString(expr)
			return
		}
		s.sql.WriteString(expr[:i])
		s.bind(args[0])
		args = args[1:]
		expr = expr[i+1:]
	}
}

func (s *stmt) where(conds []Condition) {
	if len(conds) == 0 {
		return
	}
	s.write(" WHERE ")
	And(conds...).render(s)
}

func (s *stmt) done() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition is one boolean term of a WHERE clause.
type Condition interface {
	render(s *stmt)
}

type conditionFunc func(s *stmt)

func (f conditionFunc) render(s *stmt) { f(s) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(s *stmt) {
		s.write(column, " = ")
		s.bind(value)
	})
}

// ILike matches column case-insensitively against a LIKE pattern.
func ILike(column, pattern string) Condition {
	return conditionFunc(func(s *stmt) {
		s.write(column, " ILIKE ")
		s.bind(pattern)
	})
}

func IsNull(column string) Condition {
	return conditionFunc(func(s *stmt) {
		s.write(column, " IS NULL")
	})
}

// Expr is a raw predicate whose '?' markers are bound to args in order.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(s *stmt) {
		s.expand(expr, args)
	})
}

func And(conds ...Condition) Condition {
	return joined(" AND ", "TRUE", conds)
}

// Or groups its terms in parentheses so it composes with the surrounding AND.
func Or(conds ...Condition) Condition {
	inner := joined(" OR ", "FALSE", conds)
	return conditionFunc(func(s *stmt) {
		if len(conds) < 2 {
			inner.render(s)
			return
		}
		s.write("(")
		inner.render(s)
		s.write(")")
	})
}

func joined(sep, empty string, conds []Condition) Condition {
	return conditionFunc(func(s *stmt) {
		if len(conds) == 0 {
			s.write(empty)
			return
		}
		for i, c := range conds {
			if i > 0 {
				s.write(sep)
			}
			c.render(s)
		}
	})
}

type SelectBuilder struct {
	columns []string
	from    string
	joins   []string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.from = table
	return b
}

// Join appends an inner join, e.g. Join("pick_results pr", "pr.pick_public_id = p.public_id").
func (b *SelectBuilder) Join(table, on string) *SelectBuilder {
	b.joins = append(b.joins, " JOIN "+table+" ON "+on)
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, terms...)
	return b
}

// Limit of zero or less means no limit.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, ErrNoColumns
	}
	if strings.TrimSpace(b.from) == "" {
		return "", nil, ErrNoTable
	}

	var s stmt
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.from)
	s.write(b.joins...)
	s.where(b.where)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.done()
}

type assignment struct {
	column string
	value  any
	expr   string
	raw    bool
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a SQL expression such as NOW() or "score + ?".
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, expr: expr, value: args, raw: true})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, ErrNoTable
	}
	if len(b.sets) == 0 {
		return "", nil, ErrNoColumns
	}

	var s stmt
	s.write("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ")
		if a.raw {
			args, _ := a.value.([]any)
			s.expand(a.expr, args)
			continue
		}
		s.bind(a.value)
	}
	s.where(b.where)
	return s.done()
}

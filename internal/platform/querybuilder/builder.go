// Package querybuilder renders the small set of postgres statements the
// repositories need. Values are always bound as $n parameters; raw fragments
// use ? for their own arguments.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

var (
	errNoTable   = errors.New("querybuilder: table is required")
	errNoColumns = errors.New("querybuilder: columns are required")

	errNoConditions = errors.New("querybuilder: delete requires a where clause")
)

// stmt accumulates sql text and its positional arguments.
type stmt struct {
	buf  *bytebufferpool.ByteBuffer
	args []any
}

func newStmt() *stmt {
	return &stmt{buf: bytebufferpool.Get()}
}

func (s *stmt) done() (string, []any) {
	out := s.buf.String()
	bytebufferpool.Put(s.buf)
	s.buf = nil
	return out, s.args
}

func (s *stmt) abort(err error) (string, []any, error) {
	bytebufferpool.Put(s.buf)
	s.buf = nil
	return "", nil, err
}

func (s *stmt) raw(parts ...string) {
	for _, p := range parts {
		_, _ = s.buf.WriteString(p)
	}
}

func (s *stmt) bind(v any) {
	s.args = append(s.args, v)
	s.raw("$", strconv.Itoa(len(s.args)))
}

func (s *stmt) list(items []string) {
	s.raw(strings.Join(items, ", "))
}

// fragment copies text, binding args in order for each ? it meets. Extra ?
// marks are left as they are.
func (s *stmt) fragment(text string, args []any) {
	for len(text) > 0 {
		i := strings.IndexByte(text, '?')
		if i < 0 || len(args) == 0 {
			s.raw(text)
			return
		}
		s.raw(text[:i])
		s.bind(args[0])
		args = args[1:]
		text = text[i+1:]
	}
}

func (s *stmt) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			s.raw(" WHERE ")
		} else {
			s.raw(" AND ")
		}
		c.render(s)
	}
}

// Condition is one AND-ed predicate of a WHERE clause.
type Condition interface {
	render(s *stmt)
}

type condFunc func(s *stmt)

func (f condFunc) render(s *stmt) { f(s) }

func Eq(column string, value any) Condition {
	return condFunc(func(s *stmt) {
		s.raw(column, " = ")
		s.bind(value)
	})
}

func IsNull(column string) Condition {
	return condFunc(func(s *stmt) { s.raw(column, " IS NULL") })
}

// In renders an always-false predicate for an empty set rather than invalid
// sql.
func In(column string, values []any) Condition {
	return condFunc(func(s *stmt) {
		if len(values) == 0 {
			s.raw("1=0")
			return
		}
		s.raw(column, " IN (")
		for i, v := range values {
			if i > 0 {
				s.raw(", ")
			}
			s.bind(v)
		}
		s.raw(")")
	})
}

// Any matches rows whose array column contains value.
func Any(column string, value any) Condition {
	return condFunc(func(s *stmt) {
		s.bind(value)
		s.raw(" = ANY(", column, ")")
	})
}

func Expr(text string, args ...any) Condition {
	return condFunc(func(s *stmt) { s.fragment(text, args) })
}

type SelectBuilder struct {
	columns   []string
	table     string
	joins     []string
	conds     []Condition
	order     []string
	limit     int
	offset    int
	forUpdate bool
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// LeftJoin adds a LEFT JOIN; on is copied verbatim and takes no arguments.
func (b *SelectBuilder) LeftJoin(table, on string) *SelectBuilder {
	b.joins = append(b.joins, " LEFT JOIN "+table+" ON "+on)
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	b.order = append(b.order, terms...)
	return b
}

// Limit ignores values below one.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

// Offset ignores values below one.
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = n
	return b
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.forUpdate = true
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	s := newStmt()
	if len(b.columns) == 0 {
		return s.abort(errNoColumns)
	}
	if strings.TrimSpace(b.table) == "" {
		return s.abort(errNoTable)
	}

	s.raw("SELECT ")
	s.list(b.columns)
	s.raw(" FROM ", b.table)
	s.raw(b.joins...)
	s.where(b.conds)
	if len(b.order) > 0 {
		s.raw(" ORDER BY ")
		s.list(b.order)
	}
	if b.limit > 0 {
		s.raw(" LIMIT ", strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		s.raw(" OFFSET ", strconv.Itoa(b.offset))
	}
	if b.forUpdate {
		s.raw(" FOR UPDATE")
	}

	query, args := s.done()
	return query, args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = columns
	return b
}

// Values appends one row. Call it again for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

// Suffix is emitted verbatim after VALUES, typically an ON CONFLICT clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	s := newStmt()
	if strings.TrimSpace(b.table) == "" {
		return s.abort(errNoTable)
	}
	if len(b.columns) == 0 {
		return s.abort(errNoColumns)
	}
	if len(b.rows) == 0 {
		return s.abort(errors.New("querybuilder: insert needs at least one row"))
	}

	s.raw("INSERT INTO ", b.table, " (")
	s.list(b.columns)
	s.raw(") VALUES ")
	for r, row := range b.rows {
		if len(row) != len(b.columns) {
			return s.abort(errors.New("querybuilder: insert row " + strconv.Itoa(r) + " does not match column count"))
		}
		if r > 0 {
			s.raw(", ")
		}
		s.raw("(")
		for i, v := range row {
			if i > 0 {
				s.raw(", ")
			}
			s.bind(v)
		}
		s.raw(")")
	}
	if b.suffix != "" {
		s.raw(" ", b.suffix)
	}

	query, args := s.done()
	return query, args, nil
}

type assignment struct {
	column string
	render func(s *stmt)
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	conds []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, render: func(s *stmt) { s.bind(value) }})
	return b
}

// SetExpr assigns a sql expression such as "NOW()" or "total + ?".
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, render: func(s *stmt) { s.fragment(expr, args) }})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	s := newStmt()
	if strings.TrimSpace(b.table) == "" {
		return s.abort(errNoTable)
	}
	if len(b.sets) == 0 {
		return s.abort(errors.New("querybuilder: update needs at least one assignment"))
	}

	s.raw("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.raw(", ")
		}
		s.raw(a.column, " = ")
		a.render(s)
	}
	s.where(b.conds)

	query, args := s.done()
	return query, args, nil
}

type DeleteBuilder struct {
	table string
	conds []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// ToSQL refuses to render a DELETE without a WHERE clause.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	s := newStmt()
	if strings.TrimSpace(b.table) == "" {
		return s.abort(errNoTable)
	}
	if len(b.conds) == 0 {
		return s.abort(errNoConditions)
	}

	s.raw("DELETE FROM ", b.table)
	s.where(b.conds)

	query, args := s.done()
	return query, args, nil
}

// Package querybuilder renders small Postgres statements with numbered
// placeholders. It covers the shapes the repositories need and nothing more.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

var (
	errNoTable   = errors.New("querybuilder: table is required")
	errNoColumns = errors.New("querybuilder: columns are required")
	errNoRows    = errors.New("querybuilder: values are required")
	errNoSets    = errors.New("querybuilder: update sets are required")
	errNoWhere   = errors.New("querybuilder: delete without where is refused")
)

// writer accumulates SQL text and its positional arguments.
type writer struct {
	buf  strings.Builder
	args []any
}

func (w *writer) sql(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

func (w *writer) arg(v any) {
	w.args = append(w.args, v)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes text, replacing each ? with the next argument.
func (w *writer) expr(text string, args []any) {
	next := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '?' && next < len(args) {
			w.arg(args[next])
			next++
			continue
		}
		w.buf.WriteByte(text[i])
	}
}

func (w *writer) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.sql(" WHERE ")
		} else {
			w.sql(" AND ")
		}
		c.write(w)
	}
}

func (w *writer) done() (string, []any, error) {
	return w.buf.String(), w.args, nil
}

type Condition interface {
	write(w *writer)
}

type condFunc func(w *writer)

func (f condFunc) write(w *writer) { f(w) }

func Eq(column string, value any) Condition {
	return condFunc(func(w *writer) {
		w.sql(column, " = ")
		w.arg(value)
	})
}

// In renders column IN (...). An empty set matches nothing.
func In(column string, values []any) Condition {
	return condFunc(func(w *writer) {
		if len(values) == 0 {
			w.sql("1=0")
			return
		}
		w.sql(column, " IN (")
		for i, v := range values {
			if i > 0 {
				w.sql(", ")
			}
			w.arg(v)
		}
		w.sql(")")
	})
}

// AnyText renders column = ANY($n) with a single text[] argument.
func AnyText(column string, values []string) Condition {
	return condFunc(func(w *writer) {
		w.sql(column, " = ANY(")
		w.arg(pq.StringArray(values))
		w.sql(")")
	})
}

func IsNull(column string) Condition {
	return condFunc(func(w *writer) { w.sql(column, " IS NULL") })
}

// Expr is a raw fragment; each ? is bound to the next arg.
func Expr(text string, args ...any) Condition {
	return condFunc(func(w *writer) { w.expr(text, args) })
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errNoColumns
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}

	var w writer
	w.sql("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.sql(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.sql(" LIMIT ", strconv.Itoa(b.limit))
	}
	return w.done()
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

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

// OnConflictUpdate appends an upsert clause that overwrites every listed
// column from EXCLUDED.
func (b *InsertBuilder) OnConflictUpdate(conflict []string, columns ...string) *InsertBuilder {
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		sets = append(sets, c+" = EXCLUDED."+c)
	}
	b.suffix = "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errNoTable
	case len(b.columns) == 0:
		return "", nil, errNoColumns
	case len(b.rows) == 0:
		return "", nil, errNoRows
	}

	var w writer
	w.sql("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, errors.New("querybuilder: row " + strconv.Itoa(i) + " does not match column count")
		}
		if i > 0 {
			w.sql(", ")
		}
		w.sql("(")
		for j, v := range row {
			if j > 0 {
				w.sql(", ")
			}
			w.arg(v)
		}
		w.sql(")")
	}
	if b.suffix != "" {
		w.sql(" ", b.suffix)
	}
	return w.done()
}

type UpdateBuilder struct {
	table string
	sets  []Condition
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

func (b *UpdateBuilder) SetExpr(column, text string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, Expr(column+" = "+text, args...))
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.sets) == 0 {
		return "", nil, errNoSets
	}

	var w writer
	w.sql("UPDATE ", b.table, " SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.sql(", ")
		}
		s.write(&w)
	}
	w.where(b.where)
	return w.done()
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errNoTable
	}
	if len(b.where) == 0 {
		return "", nil, errNoWhere
	}

	var w writer
	w.sql("DELETE FROM ", b.table)
	w.where(b.where)
	return w.done()
}

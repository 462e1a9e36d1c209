package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and positional args, handing out $N
// placeholders in order.
type sqlWriter struct {
	buf  strings.Builder
	args []any
}

func (w *sqlWriter) text(s string) {
	w.buf.WriteString(s)
}

func (w *sqlWriter) arg(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$" + strconv.Itoa(len(w.args)))
}

// expand rewrites ? placeholders in expr to $N, binding exprArgs in order.
// Extra ? marks beyond the supplied args are left untouched.
func (w *sqlWriter) expand(expr string, exprArgs []any) {
	if len(exprArgs) == 0 {
		w.buf.WriteString(expr)
		return
	}

	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(exprArgs) {
			w.arg(exprArgs[next])
			next++
			continue
		}
		w.buf.WriteByte(expr[i])
	}
}

// Condition renders one WHERE predicate.
type Condition interface {
	writeSQL(w *sqlWriter)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) writeSQL(w *sqlWriter) {
	w.text(c.column)
	w.text(" = ")
	w.arg(c.value)
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) writeSQL(w *sqlWriter) {
	if len(c.values) == 0 {
		// An empty IN list matches nothing.
		w.text("1=0")
		return
	}

	w.text(c.column)
	w.text(" IN (")
	for i, v := range c.values {
		if i > 0 {
			w.text(", ")
		}
		w.arg(v)
	}
	w.text(")")
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) writeSQL(w *sqlWriter) {
	w.text(c.column)
	w.text(" IS NULL")
}

type exprCondition struct {
	expr string
	args []any
}

func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) writeSQL(w *sqlWriter) {
	w.expand(c.expr, c.args)
}

type eqLiteralCondition struct {
	column string
	value  string
}

// EqLiteral inlines a quoted string literal instead of binding it. Reserved
// for constant discriminators where prepared-statement reuse matters.
func EqLiteral(column, value string) Condition {
	return eqLiteralCondition{column: column, value: value}
}

func (c eqLiteralCondition) writeSQL(w *sqlWriter) {
	w.text(c.column)
	w.text(" = ")
	w.text("'" + strings.ReplaceAll(c.value, "'", "''") + "'")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &sqlWriter{}
	w.text("SELECT ")
	w.text(strings.Join(b.columns, ", "))
	w.text(" FROM ")
	w.text(b.table)

	writeWhere(w, b.where)
	if len(b.groupBy) > 0 {
		w.text(" GROUP BY ")
		w.text(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		w.text(" ORDER BY ")
		w.text(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.text(" LIMIT ")
		w.text(strconv.Itoa(b.limit))
	}

	return w.buf.String(), w.args, nil
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
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL after the VALUES list, e.g. an ON CONFLICT clause
// or RETURNING.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &sqlWriter{}
	w.text("INSERT INTO ")
	w.text(b.table)
	w.text(" (")
	w.text(strings.Join(b.columns, ", "))
	w.text(") VALUES ")

	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.text(", ")
		}
		w.text("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.text(", ")
			}
			w.arg(value)
		}
		w.text(")")
	}

	if b.suffix != "" {
		w.text(" ")
		w.text(b.suffix)
	}

	return w.buf.String(), w.args, nil
}

type setClause struct {
	column   string
	value    any
	expr     string
	exprArgs []any
	isExpr   bool
}

type UpdateBuilder struct {
	table  string
	sets   []setClause
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: expr, exprArgs: args, isExpr: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &sqlWriter{}
	w.text("UPDATE ")
	w.text(b.table)
	w.text(" SET ")

	for i, s := range b.sets {
		if i > 0 {
			w.text(", ")
		}
		w.text(s.column)
		w.text(" = ")
		if s.isExpr {
			w.expand(s.expr, s.exprArgs)
			continue
		}
		w.arg(s.value)
	}

	writeWhere(w, b.where)
	if b.suffix != "" {
		w.text(" ")
		w.text(b.suffix)
	}

	return w.buf.String(), w.args, nil
}

func writeWhere(w *sqlWriter, conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.text(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.text(" AND ")
		}
		c.writeSQL(w)
	}
}

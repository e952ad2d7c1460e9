// Package querybuilder assembles the SQL used by the history repository. Placeholders are
// written as ? and rebound to the driver's style with sqlx.Rebind.
package querybuilder

import (
	"fmt"
	"strings"
)

type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Into(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder

	Or(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder
	AndGroup(fn func(qb QueryBuilder)) QueryBuilder

	OrderBy(col string, asc bool) QueryBuilder
	Limit(n int) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	OnConflict(cols ...string) QueryBuilder
	DoNothing() QueryBuilder
	SetExclude(cols ...string) QueryBuilder

	Build() (string, []interface{})

	getConditions() []Condition
}

type queryBuilder struct {
	schema      string
	table       string
	cols        []string
	conditions  []Condition
	values      [][]interface{}
	orderBy     []string
	limit       int
	onConflict  []string
	excludeCols []string
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{schema: schema}
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, leaf(CondTypeAnd, clause, args))
	return q
}

func (q *queryBuilder) Or(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, leaf(CondTypeOr, clause, args))
	return q
}

func (q *queryBuilder) AndGroup(fn func(qb QueryBuilder)) QueryBuilder {
	sub := NewQueryBuilder(q.schema)
	fn(sub)
	if conds := sub.getConditions(); len(conds) > 0 {
		q.conditions = append(q.conditions, group(CondTypeAnd, conds))
	}
	return q
}

func (q *queryBuilder) getConditions() []Condition {
	return q.conditions
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	dir := "ASC"
	if !asc {
		dir = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, dir))
	return q
}

// Limit caps a select. Zero or less means no limit.
func (q *queryBuilder) Limit(n int) QueryBuilder {
	q.limit = n
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.cols = cols
	return q
}

// Values adds one row.
func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

func (q *queryBuilder) DoNothing() QueryBuilder {
	q.excludeCols = nil
	return q
}

// SetExclude overwrites the given columns from the rejected row on conflict.
func (q *queryBuilder) SetExclude(cols ...string) QueryBuilder {
	q.excludeCols = cols
	return q
}

// Build returns the statement and its arguments. An invalid insert yields an empty query.
func (q *queryBuilder) Build() (string, []interface{}) {
	if len(q.values) > 0 {
		return q.buildInsert()
	}
	return q.buildSelect()
}

func (q *queryBuilder) qualified() string {
	if q.schema == "" {
		return q.table
	}
	return fmt.Sprintf("%s.%s", q.schema, q.table)
}

func (q *queryBuilder) buildSelect() (string, []interface{}) {
	cols := "*"
	if len(q.cols) > 0 {
		cols = strings.Join(q.cols, ", ")
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, q.qualified())

	var args []interface{}
	if len(q.conditions) > 0 {
		condition, condArgs := buildCondition(q.conditions)
		query += fmt.Sprintf(" WHERE %s", condition)
		args = append(args, condArgs...)
	}
	if len(q.orderBy) > 0 {
		query += fmt.Sprintf(" ORDER BY %s", strings.Join(q.orderBy, ", "))
	}
	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}
	return query, args
}

func (q *queryBuilder) buildInsert() (string, []interface{}) {
	numOfParam := len(q.cols)
	if numOfParam == 0 {
		return "", nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", numOfParam), ", ")
	tuples := make([]string, 0, len(q.values))
	args := make([]interface{}, 0, numOfParam*len(q.values))
	for _, row := range q.values {
		if len(row) != numOfParam {
			return "", nil
		}
		tuples = append(tuples, fmt.Sprintf("(%s)", placeholders))
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.qualified(), strings.Join(q.cols, ", "), strings.Join(tuples, ", "))

	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s)", strings.Join(q.onConflict, ", "))
		if len(q.excludeCols) == 0 {
			return query + " DO NOTHING", args
		}
		sets := make([]string, 0, len(q.excludeCols))
		for _, col := range q.excludeCols {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
		query += " DO UPDATE SET " + strings.Join(sets, ", ")
	}
	return query, args
}

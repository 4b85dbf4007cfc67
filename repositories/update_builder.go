package repositories

import (
	"fmt"
	"strings"
)

// setBuilder assembles the SET list of a partial UPDATE with positional arguments.
type setBuilder struct {
	clauses []string
	args    []any
}

func (b *setBuilder) add(column string, value any) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// addExpr adds a clause whose SQL refers to the next placeholder as %[1]s (or %s).
func (b *setBuilder) addExpr(column, expr string, value any) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, column+" = "+fmt.Sprintf(expr, fmt.Sprintf("$%d", len(b.args))))
}

func (b *setBuilder) addRaw(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *setBuilder) empty() bool {
	return len(b.clauses) == 0
}

// build renders UPDATE table SET ... WHERE keyColumn = key RETURNING returning.
func (b *setBuilder) build(table, keyColumn string, key any, returning string) (string, []any) {
	args := append(b.args, key)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", table, strings.Join(b.clauses, ", "), keyColumn, len(args))
	if returning != "" {
		query += " RETURNING " + returning
	}
	return query, args
}

package repo

import (
	"strings"

	"cloud.google.com/go/civil"
)

// assignment is one "column = ?" candidate of a partial UPDATE. Column names
// come from constants in this package, never from input.
type assignment struct {
	column string
	value  any
	set    bool
}

// field turns an optional patch value into an assignment.
func field[T any](column string, v *T) assignment {
	if v == nil {
		return assignment{column: column}
	}
	return assignment{column: column, value: *v, set: true}
}

// dateField binds a civil.Date as its YYYY-MM-DD text form, which both MySQL
// and SQLite accept for DATE columns.
func dateField(column string, v *civil.Date) assignment {
	if v == nil {
		return assignment{column: column}
	}
	return assignment{column: column, value: v.String(), set: true}
}

// buildUpdate renders
//
//	UPDATE <table> SET a = ?, b = ? WHERE <where>
//
// from the assignments that are set, keeping their order. Values are bound,
// never interpolated. Callers skip the call for an empty patch; with nothing
// set the query is empty.
func buildUpdate(table string, assignments []assignment, where string, whereArgs ...any) (query string, args []any) {
	sets := make([]string, 0, len(assignments))
	args = make([]any, 0, len(assignments)+len(whereArgs))
	for _, a := range assignments {
		if !a.set {
			continue
		}
		sets = append(sets, a.column+" = ?")
		args = append(args, a.value)
	}
	if len(sets) == 0 {
		return "", nil
	}
	args = append(args, whereArgs...)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ", "))
	b.WriteString(" WHERE ")
	b.WriteString(where)
	return b.String(), args
}

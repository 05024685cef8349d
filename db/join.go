package db

import (
	"strings"

	"github.com/ledgerlite/ledgerlite/core"
	"github.com/ledgerlite/ledgerlite/sql"
)

// joinRows performs a nested-loop inner equi-join. For every (left, right)
// pair whose join columns are equal, it emits a copy of the left row with
// the right row's fields copied over it, so the right side wins on column
// name collisions. NULL join values never match anything, including NULL.
// Chained joins feed each result set as the next join's left input.
func joinRows(left, right []core.Row, clause sql.JoinClause) ([]core.Row, error) {
	leftColumn := bareColumn(clause.LeftCol)
	rightColumn := bareColumn(clause.RightCol)

	var merged []core.Row
	for _, leftRow := range left {
		leftValue, ok := leftRow[leftColumn]
		if !ok {
			return nil, &NotFoundError{Column: clause.LeftCol}
		}
		if leftValue == nil {
			continue
		}
		for _, rightRow := range right {
			rightValue, ok := rightRow[rightColumn]
			if !ok {
				return nil, &NotFoundError{Column: clause.RightCol}
			}
			if rightValue == nil || !equalValues(leftValue, rightValue) {
				continue
			}
			merged = append(merged, mergeRows(leftRow, rightRow))
		}
	}
	return merged, nil
}

// mergeRows copies the right row's fields over a copy of the left row.
func mergeRows(left, right core.Row) core.Row {
	out := left.Clone()
	for name, value := range right {
		out[name] = value
	}
	return out
}

// bareColumn strips a table qualifier from a column reference.
func bareColumn(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

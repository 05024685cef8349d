package db

import (
	"fmt"

	"github.com/ledgerlite/ledgerlite/core"
	"github.com/ledgerlite/ledgerlite/sql"
)

// matchesWhere evaluates a WHERE expression against one row. The tree shape
// already encodes AND-over-OR precedence, so evaluation is a bottom-up fold.
func matchesWhere(expr sql.Expr, row core.Row) (bool, error) {
	switch e := expr.(type) {
	case sql.LogicalExpr:
		left, err := matchesWhere(e.Left, row)
		if err != nil {
			return false, err
		}
		right, err := matchesWhere(e.Right, row)
		if err != nil {
			return false, err
		}
		if e.Op == sql.LogicalAnd {
			return left && right, nil
		}
		return left || right, nil
	case sql.ComparisonExpr:
		return evaluateComparison(e, row)
	default:
		return false, fmt.Errorf("unsupported WHERE expression %T", expr)
	}
}

func evaluateComparison(cmp sql.ComparisonExpr, row core.Row) (bool, error) {
	left, err := resolveOperand(cmp.Left, row)
	if err != nil {
		return false, err
	}
	right, err := resolveOperand(cmp.Right, row)
	if err != nil {
		return false, err
	}

	// NULL compares false to everything, including NULL
	if left == nil || right == nil {
		return false, nil
	}

	switch cmp.Op {
	case sql.CompareEquals:
		return equalValues(left, right), nil
	case sql.CompareNotEquals:
		return !equalValues(left, right), nil
	}

	return orderValues(left, right, cmp.Op)
}

// resolveOperand turns an operand into a value: literals pass through,
// column references read from the row. Qualified names resolve to the bare
// column in the already-merged row.
func resolveOperand(operand sql.Operand, row core.Row) (any, error) {
	if !operand.IsColumn {
		return operand.Literal, nil
	}
	value, ok := row[operand.ColumnName()]
	if !ok {
		return nil, &NotFoundError{Column: operand.Column}
	}
	return value, nil
}

// equalValues compares two non-null values, promoting across int64 and
// float64. Values of unrelated types are simply unequal.
func equalValues(left, right any) bool {
	if lf, lok := numericValue(left); lok {
		if rf, rok := numericValue(right); rok {
			return lf == rf
		}
		return false
	}
	return left == right
}

// orderValues applies an ordering operator. Both operands must be numeric,
// or both strings (TEXT and TIMESTAMP order lexicographically); anything
// else is a TypeError.
func orderValues(left, right any, op sql.CompareOp) (bool, error) {
	if lf, lok := numericValue(left); lok {
		if rf, rok := numericValue(right); rok {
			return orderFloats(lf, rf, op), nil
		}
	}
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			return orderStrings(ls, rs, op), nil
		}
	}
	return false, &TypeError{
		Expected: "two numeric or two string operands",
		Actual:   fmt.Sprintf("%s and %s", valueTypeName(left), valueTypeName(right)),
	}
}

func orderFloats(left, right float64, op sql.CompareOp) bool {
	switch op {
	case sql.CompareLessThan:
		return left < right
	case sql.CompareGreaterThan:
		return left > right
	case sql.CompareLessThanOrEqual:
		return left <= right
	default:
		return left >= right
	}
}

func orderStrings(left, right string, op sql.CompareOp) bool {
	switch op {
	case sql.CompareLessThan:
		return left < right
	case sql.CompareGreaterThan:
		return left > right
	case sql.CompareLessThanOrEqual:
		return left <= right
	default:
		return left >= right
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

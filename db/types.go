package db

import (
	"fmt"

	"github.com/ledgerlite/ledgerlite/core"
)

// coerceValue checks a literal against the declared column type and returns
// its canonical form. Integer literals are promoted for FLOAT columns;
// everything else must match exactly. NULL passes through here; primary-key
// nullability is the constraint validator's concern.
func coerceValue(value any, column core.Column) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch column.Type {
	case core.IntType:
		if v, ok := value.(int64); ok {
			return v, nil
		}
	case core.FloatType:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		}
	case core.TextType, core.TimestampType:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case core.BoolType:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	}
	return nil, &TypeError{Column: column.Name, Expected: string(column.Type), Actual: valueTypeName(value)}
}

// buildRow validates a positional value list against the schema and returns
// the row. Arity is checked before any per-column validation.
func buildRow(table *core.Table, values []any) (core.Row, error) {
	if len(values) != len(table.Columns) {
		return nil, &TypeError{
			Expected: fmt.Sprintf("%d values for table %s", len(table.Columns), table.Name),
			Actual:   fmt.Sprintf("%d values", len(values)),
		}
	}

	row := make(core.Row, len(values))
	for i, column := range table.Columns {
		value, err := coerceValue(values[i], column)
		if err != nil {
			return nil, err
		}
		row[column.Name] = value
	}
	return row, nil
}

// valueTypeName names a literal's type the way errors should read.
func valueTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "NULL"
	case int64:
		return "INT"
	case float64:
		return "FLOAT"
	case string:
		return "TEXT"
	case bool:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("%T", value)
	}
}

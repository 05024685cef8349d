package core

// NormalizeRow re-canonicalizes a row decoded from JSON against the table
// schema. JSON numbers decode as float64, so INT column values are folded
// back to int64 and whole-number FLOAT values stay float64. Values already in
// canonical form pass through unchanged; unknown columns are kept as-is.
func NormalizeRow(table *Table, row Row) Row {
	if row == nil {
		return nil
	}
	out := make(Row, len(row))
	for name, value := range row {
		column := table.Column(name)
		if column == nil || value == nil {
			out[name] = value
			continue
		}
		switch column.Type {
		case IntType:
			switch v := value.(type) {
			case float64:
				out[name] = int64(v)
			case int:
				out[name] = int64(v)
			default:
				out[name] = value
			}
		case FloatType:
			switch v := value.(type) {
			case int64:
				out[name] = float64(v)
			case int:
				out[name] = float64(v)
			default:
				out[name] = value
			}
		default:
			out[name] = value
		}
	}
	return out
}

package core

// DataType identifies the declared type of a column. Values are stored as
// their string names so they read naturally in errors and schema listings.
type DataType string

const (
	IntType       DataType = "INT"
	TextType      DataType = "TEXT"
	FloatType     DataType = "FLOAT"
	BoolType      DataType = "BOOLEAN"
	TimestampType DataType = "TIMESTAMP"
)

// ValidDataType reports whether s names one of the supported column types.
func ValidDataType(s string) bool {
	switch DataType(s) {
	case IntType, TextType, FloatType, BoolType, TimestampType:
		return true
	}
	return false
}

type Column struct {
	Name       string   `json:"name"`
	Type       DataType `json:"type"`
	PrimaryKey bool     `json:"primary_key"`
	Unique     bool     `json:"unique"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column returns the column with the given name, or nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKey returns the table's primary key column. Schema validation
// guarantees exactly one exists.
func (t *Table) PrimaryKey() *Column {
	for i := range t.Columns {
		if t.Columns[i].PrimaryKey {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Row maps column names to values. Values use the canonical Go types
// int64, float64, string, bool, or nil for NULL.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

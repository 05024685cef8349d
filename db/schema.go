package db

import (
	"sort"

	"github.com/ledgerlite/ledgerlite/core"
)

// SchemaManager holds the table definitions declared during this process.
// Schemas are not persisted; they are redeclared each run while the ledger
// carries the data.
type SchemaManager struct {
	tables map[string]*core.Table
}

func NewSchemaManager() *SchemaManager {
	return &SchemaManager{tables: make(map[string]*core.Table)}
}

// Create validates and registers a table definition: the name must be new,
// column names must not repeat, and exactly one column must be the primary
// key.
func (m *SchemaManager) Create(table core.Table) (*core.Table, error) {
	if _, exists := m.tables[table.Name]; exists {
		return nil, &SchemaError{Kind: SchemaAlreadyExists, Table: table.Name}
	}
	if len(table.Columns) == 0 {
		return nil, &SchemaError{Kind: SchemaInvalid, Table: table.Name, Message: "no columns"}
	}

	seen := make(map[string]bool, len(table.Columns))
	primaryKeys := 0
	for _, column := range table.Columns {
		if seen[column.Name] {
			return nil, &SchemaError{Kind: SchemaInvalid, Table: table.Name, Message: "duplicate column " + column.Name}
		}
		seen[column.Name] = true
		if column.PrimaryKey {
			primaryKeys++
		}
	}
	if primaryKeys != 1 {
		return nil, &SchemaError{Kind: SchemaInvalid, Table: table.Name, Message: "exactly one PRIMARY KEY column is required"}
	}

	stored := table
	m.tables[table.Name] = &stored
	return &stored, nil
}

// Get returns the declared table, or a SchemaError if it is unknown.
func (m *SchemaManager) Get(name string) (*core.Table, error) {
	table, exists := m.tables[name]
	if !exists {
		return nil, &SchemaError{Kind: SchemaNotFound, Table: name}
	}
	return table, nil
}

func (m *SchemaManager) Exists(name string) bool {
	_, exists := m.tables[name]
	return exists
}

// Tables returns the declared table names in sorted order.
func (m *SchemaManager) Tables() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

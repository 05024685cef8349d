// Package index maintains LedgerLite's in-memory unique indexes.
//
// For each table there is one index per primary-key or UNIQUE column: a map
// from a non-null column value to the primary key of the row owning it.
// NULL values are never indexed, so repeated NULLs in a UNIQUE column never
// collide. Indexes are derived state; they are rebuilt from reconstructed
// rows whenever a table is declared.
package index

import "fmt"

// InvariantError signals internal state divergence, such as inserting a
// value the constraint validator should have rejected. It is a bug signal,
// never expected in correct operation.
type InvariantError struct {
	Table  string
	Column string
	Value  any
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("index invariant violated on %s.%s (value %v): %s",
		e.Table, e.Column, e.Value, e.Reason)
}

type indexKey struct {
	table  string
	column string
}

// Manager holds the unique indexes for one engine instance. It is not safe
// for concurrent use; the engine serializes all access.
type Manager struct {
	indexes map[indexKey]map[any]any
}

func NewManager() *Manager {
	return &Manager{indexes: make(map[indexKey]map[any]any)}
}

// Register creates an empty index for (table, column), discarding any
// previous contents.
func (m *Manager) Register(table, column string) {
	m.indexes[indexKey{table, column}] = make(map[any]any)
}

// Drop removes every index belonging to the table.
func (m *Manager) Drop(table string) {
	for key := range m.indexes {
		if key.table == table {
			delete(m.indexes, key)
		}
	}
}

// Exists reports whether value is present in the (table, column) index.
// NULL is never present.
func (m *Manager) Exists(table, column string, value any) bool {
	if value == nil {
		return false
	}
	idx, ok := m.indexes[indexKey{table, column}]
	if !ok {
		return false
	}
	_, present := idx[value]
	return present
}

// Lookup returns the primary key owning value in the (table, column) index.
func (m *Manager) Lookup(table, column string, value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	idx, ok := m.indexes[indexKey{table, column}]
	if !ok {
		return nil, false
	}
	pk, present := idx[value]
	return pk, present
}

// Insert records value -> pk in the (table, column) index. NULL values are
// skipped. Inserting an already-present value is an InvariantError: callers
// must have validated uniqueness first.
func (m *Manager) Insert(table, column string, value, pk any) error {
	if value == nil {
		return nil
	}
	key := indexKey{table, column}
	idx, ok := m.indexes[key]
	if !ok {
		idx = make(map[any]any)
		m.indexes[key] = idx
	}
	if _, present := idx[value]; present {
		return &InvariantError{Table: table, Column: column, Value: value, Reason: "duplicate insert into unique index"}
	}
	idx[value] = pk
	return nil
}

// Remove deletes value from the (table, column) index. Removing a NULL or
// absent value is a no-op.
func (m *Manager) Remove(table, column string, value any) {
	if value == nil {
		return
	}
	if idx, ok := m.indexes[indexKey{table, column}]; ok {
		delete(idx, value)
	}
}

// Update replaces oldValue with newValue for the row owned by pk. Equal
// values are left untouched.
func (m *Manager) Update(table, column string, oldValue, newValue, pk any) error {
	if oldValue == newValue {
		return nil
	}
	m.Remove(table, column, oldValue)
	return m.Insert(table, column, newValue, pk)
}

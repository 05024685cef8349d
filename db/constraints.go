package db

import (
	"github.com/ledgerlite/ledgerlite/core"
	"github.com/ledgerlite/ledgerlite/index"
)

// constraintValidator enforces uniqueness and primary-key rules against the
// in-memory indexes. It runs strictly before any ledger write: a rejected
// row produces no entry and no index change.
type constraintValidator struct {
	idx *index.Manager
}

// validateInsert checks that the primary key is non-null and unused, and
// that every non-null UNIQUE value is unused.
func (v *constraintValidator) validateInsert(table *core.Table, row core.Row) error {
	pkColumn := table.PrimaryKey()
	pk := row[pkColumn.Name]
	if pk == nil {
		return &ConstraintError{Kind: NullPrimaryKey, Table: table.Name, Column: pkColumn.Name}
	}
	if v.idx.Exists(table.Name, pkColumn.Name, pk) {
		return &ConstraintError{Kind: DuplicatePrimaryKey, Table: table.Name, Column: pkColumn.Name, Value: pk}
	}

	for _, column := range table.Columns {
		if !column.Unique || column.PrimaryKey {
			continue
		}
		value := row[column.Name]
		if value == nil {
			continue
		}
		if v.idx.Exists(table.Name, column.Name, value) {
			return &ConstraintError{Kind: DuplicateUnique, Table: table.Name, Column: column.Name, Value: value}
		}
	}
	return nil
}

// validateUpdate checks a replacement row against the row it replaces.
// Changing the primary key is rejected outright; a row's own unchanged
// unique values never conflict with themselves.
func (v *constraintValidator) validateUpdate(table *core.Table, oldRow, newRow core.Row) error {
	pkColumn := table.PrimaryKey()
	if newRow[pkColumn.Name] != oldRow[pkColumn.Name] {
		return &ConstraintError{Kind: PrimaryKeyImmutable, Table: table.Name, Column: pkColumn.Name, Value: newRow[pkColumn.Name]}
	}

	for _, column := range table.Columns {
		if !column.Unique || column.PrimaryKey {
			continue
		}
		value := newRow[column.Name]
		if value == nil || value == oldRow[column.Name] {
			continue
		}
		if v.idx.Exists(table.Name, column.Name, value) {
			return &ConstraintError{Kind: DuplicateUnique, Table: table.Name, Column: column.Name, Value: value}
		}
	}
	return nil
}

package db

import "fmt"

type SchemaErrorKind int

const (
	SchemaNotFound SchemaErrorKind = iota
	SchemaAlreadyExists
	SchemaInvalid
)

// SchemaError reports a failed table declaration or lookup.
type SchemaError struct {
	Kind    SchemaErrorKind
	Table   string
	Message string
}

func (e *SchemaError) Error() string {
	switch e.Kind {
	case SchemaNotFound:
		return fmt.Sprintf("table %s does not exist", e.Table)
	case SchemaAlreadyExists:
		return fmt.Sprintf("table %s already exists", e.Table)
	default:
		return fmt.Sprintf("invalid schema for table %s: %s", e.Table, e.Message)
	}
}

// TypeError reports a value that does not fit its declared column type, or a
// value list whose arity does not match the schema.
type TypeError struct {
	Column   string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("type error: expected %s, got %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("type error on column %s: expected %s, got %s", e.Column, e.Expected, e.Actual)
}

type ConstraintKind int

const (
	DuplicatePrimaryKey ConstraintKind = iota
	DuplicateUnique
	NullPrimaryKey
	PrimaryKeyImmutable
)

// ConstraintError reports a write rejected by constraint validation. The
// rejected statement has produced no ledger entry and no index change.
type ConstraintError struct {
	Kind   ConstraintKind
	Table  string
	Column string
	Value  any
}

func (e *ConstraintError) Error() string {
	switch e.Kind {
	case DuplicatePrimaryKey:
		return fmt.Sprintf("duplicate primary key %v in %s.%s", e.Value, e.Table, e.Column)
	case DuplicateUnique:
		return fmt.Sprintf("duplicate value %v for unique column %s.%s", e.Value, e.Table, e.Column)
	case NullPrimaryKey:
		return fmt.Sprintf("primary key %s.%s must not be NULL", e.Table, e.Column)
	default:
		return fmt.Sprintf("primary key %s.%s cannot be changed; delete and re-insert instead", e.Table, e.Column)
	}
}

// NotFoundError reports a reference to an unknown column.
type NotFoundError struct {
	Column string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown column %s", e.Column)
}

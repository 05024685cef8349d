// Package core provides the data model shared across LedgerLite.
//
// The package defines the column type system, table schemas, rows, and the
// ledger entry record.
//
// # Column Types
//
// Supported column types:
//   - IntType: integers
//   - TextType: strings
//   - FloatType: floating point numbers (integer values are promoted)
//   - BoolType: boolean values
//   - TimestampType: timestamps stored as uninterpreted strings
//
// # Table Definition
//
//	table := core.Table{
//	    Name: "users",
//	    Columns: []core.Column{
//	        {Name: "id", Type: core.IntType, PrimaryKey: true},
//	        {Name: "email", Type: core.TextType, Unique: true},
//	        {Name: "active", Type: core.BoolType},
//	    },
//	}
//
// # Ledger Entries
//
// Every row change is recorded as an immutable Entry carrying before and
// after snapshots. Current table contents are derived by replaying entries
// in append order, never by mutating stored rows in place.
package core

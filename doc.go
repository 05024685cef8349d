// Package ledgerlite provides an embeddable SQL database engine backed by
// an append-only ledger.
//
// LedgerLite never mutates stored rows in place. Every change is persisted
// as an immutable ledger entry with before and after snapshots, and current
// table contents are derived by replaying the ledger. The entry sequence
// doubles as a complete, durable audit history.
//
// # Quick Start
//
// Create an in-memory database:
//
//	instance := ledgerlite.Open(ledger.NewMemoryLog())
//	defer instance.Close()
//	engine := instance.Engine()
//
//	engine.Execute("CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
//	engine.Execute("INSERT INTO users VALUES (1, 'Alice')")
//
//	result, _ := engine.Execute("SELECT * FROM users")
//	result.Display()
//
// Or a durable one:
//
//	instance, err := ledgerlite.OpenFile("data", "ledger.jsonl")
//
// Schemas are process-local: each run redeclares its tables with CREATE
// TABLE, and declaring a table replays its ledger entries to rebuild the
// unique indexes.
//
// # Supported SQL
//
// LedgerLite supports a constrained SQL dialect:
//   - CREATE TABLE with INT, TEXT, FLOAT, BOOLEAN and TIMESTAMP columns,
//     one PRIMARY KEY column, optional UNIQUE columns
//   - INSERT, SELECT, UPDATE, DELETE
//   - WHERE with =, !=, <, >, <=, >= and AND/OR (AND binds tighter)
//   - INNER JOIN on column equality, including chained joins
package ledgerlite

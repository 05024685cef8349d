// Package db implements the LedgerLite query engine.
//
// The engine parses a constrained SQL dialect, validates statements against
// declared schemas, and executes them against ledger-backed tables. Rows are
// never mutated in place: every write appends an immutable ledger entry, and
// reads reconstruct current state by replaying the ledger.
//
// # Usage
//
//	store := ledger.NewStore(ledger.NewMemoryLog())
//	engine := db.NewEngine(store)
//	defer engine.Close()
//
//	result, err := engine.Execute("CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
//	result, err = engine.Execute("INSERT INTO users VALUES (1, 'alice')")
//	result, err = engine.Execute("SELECT * FROM users WHERE id = 1")
//
// Execute returns one of three result kinds: RowSet for SELECT,
// AffectedCount for INSERT/UPDATE/DELETE, SchemaAck for CREATE TABLE.
//
// # Statement pipeline
//
// Writes validate types first, then constraints, and only then append to
// the ledger and update the in-memory indexes, so no entry is ever
// persisted for an invalid row. Multi-row UPDATE and DELETE commit one row
// at a time: if a later row fails validation, earlier rows stay committed.
//
// # Concurrency
//
// An Engine is single-threaded by contract. Embedders with concurrent
// callers (such as the HTTP server) serialize access with their own mutex.
package db

package db

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-git/go-billy/v6/memfs"

	"github.com/ledgerlite/ledgerlite/core"
	"github.com/ledgerlite/ledgerlite/ledger"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT, age INT)")
	return engine
}

func mustExecute(t *testing.T, engine *Engine, sql string) Result {
	t.Helper()

	result, err := engine.Execute(sql)
	if err != nil {
		t.Fatalf("Execute(%q) error: %v", sql, err)
	}
	return result
}

func insertTestData(t *testing.T, engine *Engine) {
	t.Helper()

	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice', 30)")
	mustExecute(t, engine, "INSERT INTO users VALUES (2, 'Bob', 25)")
	mustExecute(t, engine, "INSERT INTO users VALUES (3, 'Charlie', 35)")
}

func selectRows(t *testing.T, engine *Engine, sql string) RowSet {
	t.Helper()

	result := mustExecute(t, engine, sql)
	rs, ok := result.(RowSet)
	if !ok {
		t.Fatalf("Execute(%q) returned %T, expected RowSet", sql, result)
	}
	return rs
}

func TestCreateTable(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))

	result := mustExecute(t, engine, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT)")
	ack, ok := result.(SchemaAck)
	if !ok {
		t.Fatalf("expected SchemaAck, got %T", result)
	}
	if ack.Table != "users" {
		t.Errorf("expected table users, got %s", ack.Table)
	}

	// table declarations never touch the ledger
	_, total, err := engine.History(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("expected empty ledger after CREATE TABLE, got %d entries", total)
	}
}

func TestCreateTableSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind SchemaErrorKind
	}{
		{"duplicate table", "CREATE TABLE users (id INT PRIMARY KEY)", SchemaAlreadyExists},
		{"no primary key", "CREATE TABLE t (a INT, b TEXT)", SchemaInvalid},
		{"two primary keys", "CREATE TABLE t (a INT PRIMARY KEY, b INT PRIMARY KEY)", SchemaInvalid},
		{"repeated column", "CREATE TABLE t (a INT PRIMARY KEY, a TEXT)", SchemaInvalid},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			engine := setupTestEngine(t)
			_, err := engine.Execute(test.sql)

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Kind != test.kind {
				t.Errorf("expected kind %d, got %d", test.kind, schemaErr.Kind)
			}
		})
	}
}

func TestInsertThenSelectStar(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice', 30)")

	rs := selectRows(t, engine, "SELECT * FROM users")
	expected := []core.Row{{"id": int64(1), "name": "Alice", "age": int64(30)}}
	if !reflect.DeepEqual(rs.Rows, expected) {
		t.Errorf("got %v, expected %v", rs.Rows, expected)
	}
	if !reflect.DeepEqual(rs.Columns, []string{"id", "name", "age"}) {
		t.Errorf("expected declared column order, got %v", rs.Columns)
	}
}

func TestInsertTypeErrors(t *testing.T) {
	engine := setupTestEngine(t)

	tests := []struct {
		name string
		sql  string
	}{
		{"wrong type", "INSERT INTO users VALUES (1, 2, 3)"},
		{"float for int", "INSERT INTO users VALUES (1.5, 'a', 3)"},
		{"too few values", "INSERT INTO users VALUES (1, 'a')"},
		{"too many values", "INSERT INTO users VALUES (1, 'a', 2, 3)"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := engine.Execute(test.sql)
			var typeErr *TypeError
			if !errors.As(err, &typeErr) {
				t.Fatalf("expected TypeError, got %v", err)
			}
		})
	}

	// rejected inserts never reach the ledger
	_, total, err := engine.History(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("expected empty ledger, got %d entries", total)
	}
}

func TestInsertUnknownTable(t *testing.T) {
	engine := setupTestEngine(t)

	_, err := engine.Execute("INSERT INTO missing VALUES (1)")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Kind != SchemaNotFound {
		t.Fatalf("expected SchemaError(NotFound), got %v", err)
	}
}

func TestFloatPromotion(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE readings (id INT PRIMARY KEY, value FLOAT)")
	mustExecute(t, engine, "INSERT INTO readings VALUES (1, 5)")

	rs := selectRows(t, engine, "SELECT * FROM readings")
	if rs.Rows[0]["value"] != float64(5) {
		t.Errorf("expected integer literal promoted to float64, got %#v", rs.Rows[0]["value"])
	}
}

func TestConstraintScenario(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY, v TEXT UNIQUE)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 'x')")

	_, err := engine.Execute("INSERT INTO t VALUES (1, 'y')")
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) || constraintErr.Kind != DuplicatePrimaryKey {
		t.Fatalf("expected DuplicatePrimaryKey, got %v", err)
	}

	_, err = engine.Execute("INSERT INTO t VALUES (2, 'x')")
	if !errors.As(err, &constraintErr) || constraintErr.Kind != DuplicateUnique {
		t.Fatalf("expected DuplicateUnique, got %v", err)
	}

	mustExecute(t, engine, "INSERT INTO t VALUES (2, 'z')")

	rs := selectRows(t, engine, "SELECT * FROM t")
	expected := []core.Row{
		{"id": int64(1), "v": "x"},
		{"id": int64(2), "v": "z"},
	}
	if !reflect.DeepEqual(rs.Rows, expected) {
		t.Errorf("got %v, expected %v", rs.Rows, expected)
	}

	// the two rejected inserts produced no ledger entries
	_, total, err := engine.History(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("expected 2 ledger entries, got %d", total)
	}
}

func TestNullPrimaryKeyRejected(t *testing.T) {
	engine := setupTestEngine(t)

	_, err := engine.Execute("INSERT INTO users VALUES (NULL, 'a', 1)")
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) || constraintErr.Kind != NullPrimaryKey {
		t.Fatalf("expected NullPrimaryKey, got %v", err)
	}
}

func TestUniqueColumnAllowsRepeatedNulls(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY, email TEXT UNIQUE)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, NULL)")
	mustExecute(t, engine, "INSERT INTO t VALUES (2, NULL)")
	mustExecute(t, engine, "INSERT INTO t VALUES (3, NULL)")

	rs := selectRows(t, engine, "SELECT * FROM t")
	if len(rs.Rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rs.Rows))
	}
}

func TestUpdateWritesOldAndNewSnapshots(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY, v TEXT UNIQUE)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 'x')")

	result := mustExecute(t, engine, "UPDATE t SET v = 'w' WHERE id = 1")
	affected := result.(AffectedCount)
	if affected.Count != 1 || affected.Operation != core.OpUpdate {
		t.Fatalf("unexpected result %+v", affected)
	}

	rs := selectRows(t, engine, "SELECT * FROM t")
	expected := []core.Row{{"id": int64(1), "v": "w"}}
	if !reflect.DeepEqual(rs.Rows, expected) {
		t.Errorf("got %v, expected %v", rs.Rows, expected)
	}

	entries, _, err := engine.History(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	last := entries[len(entries)-1]
	if last.Operation != core.OpUpdate {
		t.Fatalf("expected UPDATE entry, got %s", last.Operation)
	}
	if !reflect.DeepEqual(last.OldValue, core.Row{"id": int64(1), "v": "x"}) {
		t.Errorf("unexpected old_value %v", last.OldValue)
	}
	if !reflect.DeepEqual(last.NewValue, core.Row{"id": int64(1), "v": "w"}) {
		t.Errorf("unexpected new_value %v", last.NewValue)
	}
}

func TestUpdatePrimaryKeyIsImmutable(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	_, err := engine.Execute("UPDATE users SET id = 9 WHERE id = 1")
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) || constraintErr.Kind != PrimaryKeyImmutable {
		t.Fatalf("expected PrimaryKeyImmutable, got %v", err)
	}

	// assigning the current value is not a change
	result := mustExecute(t, engine, "UPDATE users SET id = 1 WHERE id = 1")
	if result.(AffectedCount).Count != 1 {
		t.Errorf("expected 1 row affected")
	}
}

func TestUpdateKeepingOwnUniqueValue(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY, email TEXT UNIQUE, n INT)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 'a@example.com', 0)")

	// re-assigning a row's own unique value must not conflict with itself
	result := mustExecute(t, engine, "UPDATE t SET email = 'a@example.com', n = 1 WHERE id = 1")
	if result.(AffectedCount).Count != 1 {
		t.Errorf("expected 1 row affected")
	}

	mustExecute(t, engine, "INSERT INTO t VALUES (2, 'b@example.com', 0)")
	_, err := engine.Execute("UPDATE t SET email = 'a@example.com' WHERE id = 2")
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) || constraintErr.Kind != DuplicateUnique {
		t.Fatalf("expected DuplicateUnique, got %v", err)
	}
}

func TestUpdateWithoutWhereAffectsAllRows(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	result := mustExecute(t, engine, "UPDATE users SET age = 40")
	if result.(AffectedCount).Count != 3 {
		t.Fatalf("expected 3 rows affected, got %d", result.(AffectedCount).Count)
	}

	rs := selectRows(t, engine, "SELECT * FROM users WHERE age = 40")
	if len(rs.Rows) != 3 {
		t.Errorf("expected all rows updated, got %d", len(rs.Rows))
	}
}

func TestDeleteWithoutWhereEmptiesOnlyThatTable(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)
	mustExecute(t, engine, "CREATE TABLE orders (id INT PRIMARY KEY, user_id INT)")
	mustExecute(t, engine, "INSERT INTO orders VALUES (100, 1)")

	result := mustExecute(t, engine, "DELETE FROM users")
	if result.(AffectedCount).Count != 3 {
		t.Fatalf("expected 3 rows deleted, got %d", result.(AffectedCount).Count)
	}

	if rows := selectRows(t, engine, "SELECT * FROM users").Rows; len(rows) != 0 {
		t.Errorf("expected users emptied, got %v", rows)
	}
	if rows := selectRows(t, engine, "SELECT * FROM orders").Rows; len(rows) != 1 {
		t.Errorf("expected orders untouched, got %v", rows)
	}
}

func TestDeleteFreesConstraints(t *testing.T) {
	engine := NewEngine(ledger.NewStore(ledger.NewMemoryLog()))
	mustExecute(t, engine, "CREATE TABLE t (id INT PRIMARY KEY, v TEXT UNIQUE)")
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 'x')")
	mustExecute(t, engine, "DELETE FROM t WHERE id = 1")

	// both the primary key and the unique value are reusable
	mustExecute(t, engine, "INSERT INTO t VALUES (1, 'x')")
}

func TestWherePrecedence(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	// a AND b OR c groups as (a AND b) OR c: Charlie fails the AND group
	// but passes c alone
	rs := selectRows(t, engine, "SELECT * FROM users WHERE name = 'Charlie' AND age = 0 OR age = 35")
	if len(rs.Rows) != 1 || rs.Rows[0]["name"] != "Charlie" {
		t.Errorf("expected only Charlie, got %v", rs.Rows)
	}
}

func TestWhereNullComparesFalse(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice', NULL)")

	for _, sql := range []string{
		"SELECT * FROM users WHERE age = NULL",
		"SELECT * FROM users WHERE age != NULL",
		"SELECT * FROM users WHERE age > 0",
	} {
		if rows := selectRows(t, engine, sql).Rows; len(rows) != 0 {
			t.Errorf("%s: expected no rows, got %v", sql, rows)
		}
	}
}

func TestWhereOrderingTypeMismatch(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	_, err := engine.Execute("SELECT * FROM users WHERE age > 'ten'")
	var typeErr *TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestWhereUnknownColumn(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	_, err := engine.Execute("SELECT * FROM users WHERE missing = 1")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSelectProjection(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	rs := selectRows(t, engine, "SELECT name, id FROM users WHERE id = 2")
	expected := []core.Row{{"name": "Bob", "id": int64(2)}}
	if !reflect.DeepEqual(rs.Rows, expected) {
		t.Errorf("got %v, expected %v", rs.Rows, expected)
	}
	if !reflect.DeepEqual(rs.Columns, []string{"name", "id"}) {
		t.Errorf("expected requested column order, got %v", rs.Columns)
	}

	_, err := engine.Execute("SELECT missing FROM users")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRestartReplaysLedger(t *testing.T) {
	fs := memfs.New()

	log, err := ledger.NewFileLog(fs, "ledger.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(ledger.NewStore(log))
	mustExecute(t, engine, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT UNIQUE, age INT)")
	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice', 30)")
	mustExecute(t, engine, "INSERT INTO users VALUES (2, 'Bob', 25)")
	mustExecute(t, engine, "DELETE FROM users WHERE id = 2")
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	// a new process redeclares the schema; declaring rebuilds the indexes
	// from the existing ledger
	log, err = ledger.NewFileLog(fs, "ledger.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	engine = NewEngine(ledger.NewStore(log))
	defer engine.Close()
	mustExecute(t, engine, "CREATE TABLE users (id INT PRIMARY KEY, name TEXT UNIQUE, age INT)")

	rs := selectRows(t, engine, "SELECT * FROM users")
	expected := []core.Row{{"id": int64(1), "name": "Alice", "age": int64(30)}}
	if !reflect.DeepEqual(rs.Rows, expected) {
		t.Fatalf("got %v, expected %v", rs.Rows, expected)
	}

	_, err = engine.Execute("INSERT INTO users VALUES (1, 'Carol', 20)")
	var constraintErr *ConstraintError
	if !errors.As(err, &constraintErr) || constraintErr.Kind != DuplicatePrimaryKey {
		t.Fatalf("expected DuplicatePrimaryKey after replay, got %v", err)
	}
	_, err = engine.Execute("INSERT INTO users VALUES (3, 'Alice', 20)")
	if !errors.As(err, &constraintErr) || constraintErr.Kind != DuplicateUnique {
		t.Fatalf("expected DuplicateUnique after replay, got %v", err)
	}

	// the transaction counter continues where it left off
	mustExecute(t, engine, "INSERT INTO users VALUES (4, 'Dave', 20)")
	entries, _, err := engine.History(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	last := entries[len(entries)-1]
	if last.TransactionID != 4 {
		t.Errorf("expected transaction id 4 after restart, got %d", last.TransactionID)
	}
}

package db

import (
	"fmt"
	"time"

	"github.com/ledgerlite/ledgerlite/core"
	"github.com/ledgerlite/ledgerlite/index"
	"github.com/ledgerlite/ledgerlite/ledger"
	"github.com/ledgerlite/ledgerlite/sql"
)

// Engine executes SQL statements against ledger-backed tables. Each engine
// instance owns its schema, indexes, and ledger store; nothing is shared
// process-wide, so independent instances stay isolated.
//
// The engine is single-threaded by contract: one statement runs to
// completion before the next begins. Callers with concurrent clients (such
// as a web server) must serialize access themselves.
type Engine struct {
	schema      *SchemaManager
	store       *ledger.Store
	idx         *index.Manager
	constraints constraintValidator
}

// NewEngine creates an engine over the given ledger store. Tables are
// declared per process with CREATE TABLE; declaring a table replays its
// existing ledger entries to rebuild the in-memory indexes.
func NewEngine(store *ledger.Store) *Engine {
	idx := index.NewManager()
	return &Engine{
		schema:      NewSchemaManager(),
		store:       store,
		idx:         idx,
		constraints: constraintValidator{idx: idx},
	}
}

// Execute parses and runs one SQL statement. It is the engine's only query
// surface: shells and APIs never touch the internal components directly.
func (engine *Engine) Execute(sqlText string) (Result, error) {
	started := time.Now()

	statement, err := sql.NewParser(sqlText).Parse()
	if err != nil {
		return nil, err
	}

	switch statement.Type() {
	case sql.CreateTableStatementType:
		return engine.executeCreateTable(statement.(sql.CreateTableStatement), started)
	case sql.InsertStatementType:
		return engine.executeInsert(statement.(sql.InsertStatement), started)
	case sql.SelectStatementType:
		return engine.executeSelect(statement.(sql.SelectStatement), started)
	case sql.UpdateStatementType:
		return engine.executeUpdate(statement.(sql.UpdateStatement), started)
	case sql.DeleteStatementType:
		return engine.executeDelete(statement.(sql.DeleteStatement), started)
	default:
		return nil, fmt.Errorf("unsupported statement type %d", statement.Type())
	}
}

// Tables returns the declared table names in sorted order.
func (engine *Engine) Tables() []string {
	return engine.schema.Tables()
}

// Table returns the declared schema for a table.
func (engine *Engine) Table(name string) (*core.Table, error) {
	return engine.schema.Get(name)
}

// Rows reconstructs the current contents of a table from the ledger.
func (engine *Engine) Rows(name string) ([]core.Row, error) {
	table, err := engine.schema.Get(name)
	if err != nil {
		return nil, err
	}
	return engine.store.Reconstruct(table)
}

// History returns one page of ledger entries plus the total count.
func (engine *Engine) History(offset, limit int) ([]core.Entry, int, error) {
	return engine.store.History(offset, limit)
}

// Close releases the ledger store.
func (engine *Engine) Close() error {
	return engine.store.Close()
}

func (engine *Engine) executeCreateTable(statement sql.CreateTableStatement, started time.Time) (Result, error) {
	table, err := engine.schema.Create(core.Table{Name: statement.Table, Columns: statement.Columns})
	if err != nil {
		return nil, err
	}
	if err := engine.rebuildIndexes(table); err != nil {
		return nil, err
	}
	return SchemaAck{Table: table.Name, ExecutionTimeSec: time.Since(started).Seconds()}, nil
}

func (engine *Engine) executeInsert(statement sql.InsertStatement, started time.Time) (Result, error) {
	table, err := engine.schema.Get(statement.Table)
	if err != nil {
		return nil, err
	}

	row, err := buildRow(table, statement.Values)
	if err != nil {
		return nil, err
	}
	if err := engine.constraints.validateInsert(table, row); err != nil {
		return nil, err
	}

	if _, err := engine.store.Append(table.Name, core.OpInsert, nil, row); err != nil {
		return nil, err
	}
	if err := engine.insertIntoIndexes(table, row); err != nil {
		return nil, err
	}

	return AffectedCount{
		Table:            table.Name,
		Operation:        core.OpInsert,
		Count:            1,
		ExecutionTimeSec: time.Since(started).Seconds(),
	}, nil
}

func (engine *Engine) executeSelect(statement sql.SelectStatement, started time.Time) (Result, error) {
	table, err := engine.schema.Get(statement.Table)
	if err != nil {
		return nil, err
	}
	rows, err := engine.store.Reconstruct(table)
	if err != nil {
		return nil, err
	}

	// Chained joins feed each result as the next join's left input; the
	// column list grows with each joined table, in declared order.
	columns := table.ColumnNames()
	for _, join := range statement.Joins {
		joinTable, err := engine.schema.Get(join.Table)
		if err != nil {
			return nil, err
		}
		if !containsColumn(columns, bareColumn(join.LeftCol)) {
			return nil, &NotFoundError{Column: join.LeftCol}
		}
		if joinTable.Column(bareColumn(join.RightCol)) == nil {
			return nil, &NotFoundError{Column: join.RightCol}
		}

		rightRows, err := engine.store.Reconstruct(joinTable)
		if err != nil {
			return nil, err
		}
		rows, err = joinRows(rows, rightRows, join)
		if err != nil {
			return nil, err
		}
		for _, name := range joinTable.ColumnNames() {
			if !containsColumn(columns, name) {
				columns = append(columns, name)
			}
		}
	}

	if statement.Where != nil {
		var filtered []core.Row
		for _, row := range rows {
			match, err := matchesWhere(statement.Where, row)
			if err != nil {
				return nil, err
			}
			if match {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if len(statement.Columns) > 0 {
		selected := make([]string, len(statement.Columns))
		for i, name := range statement.Columns {
			bare := bareColumn(name)
			if !containsColumn(columns, bare) {
				return nil, &NotFoundError{Column: name}
			}
			selected[i] = bare
		}
		columns = selected
	}

	projected := make([]core.Row, len(rows))
	for i, row := range rows {
		out := make(core.Row, len(columns))
		for _, name := range columns {
			out[name] = row[name]
		}
		projected[i] = out
	}

	return RowSet{
		Columns:          columns,
		Rows:             projected,
		ExecutionTimeSec: time.Since(started).Seconds(),
	}, nil
}

func (engine *Engine) executeUpdate(statement sql.UpdateStatement, started time.Time) (Result, error) {
	table, err := engine.schema.Get(statement.Table)
	if err != nil {
		return nil, err
	}

	assignments := make(map[string]any, len(statement.Sets))
	for _, set := range statement.Sets {
		column := table.Column(set.Column)
		if column == nil {
			return nil, &NotFoundError{Column: set.Column}
		}
		value, err := coerceValue(set.Value, *column)
		if err != nil {
			return nil, err
		}
		assignments[column.Name] = value
	}

	rows, err := engine.store.Reconstruct(table)
	if err != nil {
		return nil, err
	}

	// Matching rows are validated and committed one at a time. If a later
	// row fails validation, earlier rows in the same statement remain
	// committed; there is no statement-level rollback.
	count := 0
	for _, oldRow := range rows {
		if statement.Where != nil {
			match, err := matchesWhere(statement.Where, oldRow)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}

		newRow := oldRow.Clone()
		for name, value := range assignments {
			newRow[name] = value
		}
		if err := engine.constraints.validateUpdate(table, oldRow, newRow); err != nil {
			return nil, err
		}

		if _, err := engine.store.Append(table.Name, core.OpUpdate, oldRow, newRow); err != nil {
			return nil, err
		}
		if err := engine.updateIndexes(table, oldRow, newRow); err != nil {
			return nil, err
		}
		count++
	}

	return AffectedCount{
		Table:            table.Name,
		Operation:        core.OpUpdate,
		Count:            count,
		ExecutionTimeSec: time.Since(started).Seconds(),
	}, nil
}

func (engine *Engine) executeDelete(statement sql.DeleteStatement, started time.Time) (Result, error) {
	table, err := engine.schema.Get(statement.Table)
	if err != nil {
		return nil, err
	}
	rows, err := engine.store.Reconstruct(table)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, row := range rows {
		if statement.Where != nil {
			match, err := matchesWhere(statement.Where, row)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}

		if _, err := engine.store.Append(table.Name, core.OpDelete, row, nil); err != nil {
			return nil, err
		}
		engine.removeFromIndexes(table, row)
		count++
	}

	return AffectedCount{
		Table:            table.Name,
		Operation:        core.OpDelete,
		Count:            count,
		ExecutionTimeSec: time.Since(started).Seconds(),
	}, nil
}

// rebuildIndexes re-derives a table's indexes from its ledger entries. It
// runs at declaration time, which is what makes restarting a process
// against an existing ledger work: schemas are redeclared, data replays.
func (engine *Engine) rebuildIndexes(table *core.Table) error {
	for _, column := range table.Columns {
		if column.PrimaryKey || column.Unique {
			engine.idx.Register(table.Name, column.Name)
		}
	}

	rows, err := engine.store.Reconstruct(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := engine.insertIntoIndexes(table, row); err != nil {
			return err
		}
	}
	return nil
}

func (engine *Engine) insertIntoIndexes(table *core.Table, row core.Row) error {
	pkColumn := table.PrimaryKey()
	pk := row[pkColumn.Name]
	if err := engine.idx.Insert(table.Name, pkColumn.Name, pk, pk); err != nil {
		return err
	}
	for _, column := range table.Columns {
		if !column.Unique || column.PrimaryKey {
			continue
		}
		if err := engine.idx.Insert(table.Name, column.Name, row[column.Name], pk); err != nil {
			return err
		}
	}
	return nil
}

func (engine *Engine) updateIndexes(table *core.Table, oldRow, newRow core.Row) error {
	pk := newRow[table.PrimaryKey().Name]
	for _, column := range table.Columns {
		if !column.Unique || column.PrimaryKey {
			continue
		}
		if err := engine.idx.Update(table.Name, column.Name, oldRow[column.Name], newRow[column.Name], pk); err != nil {
			return err
		}
	}
	return nil
}

func (engine *Engine) removeFromIndexes(table *core.Table, row core.Row) {
	pkColumn := table.PrimaryKey()
	engine.idx.Remove(table.Name, pkColumn.Name, row[pkColumn.Name])
	for _, column := range table.Columns {
		if column.Unique && !column.PrimaryKey {
			engine.idx.Remove(table.Name, column.Name, row[column.Name])
		}
	}
}

func containsColumn(columns []string, name string) bool {
	for _, column := range columns {
		if column == name {
			return true
		}
	}
	return false
}

package ledger

import (
	"github.com/ledgerlite/ledgerlite/core"
)

// Store wraps a Log with timestamping, replay-based state reconstruction,
// and history paging. It holds no cached state: every reconstruction is a
// fresh fold over the log.
type Store struct {
	log Log
}

func NewStore(log Log) *Store {
	return &Store{log: log}
}

// Append stamps and persists one change record. The returned entry carries
// the transaction id assigned by the log.
func (s *Store) Append(table string, op core.Operation, oldValue, newValue core.Row) (core.Entry, error) {
	entry := core.Entry{
		TableName: table,
		Operation: op,
		Timestamp: core.Now(),
		OldValue:  oldValue,
		NewValue:  newValue,
	}
	return s.log.Append(entry)
}

// Entries returns every ledger entry in append order.
func (s *Store) Entries() ([]core.Entry, error) {
	return s.log.ReadAll()
}

// Reconstruct derives the current contents of a table by folding its entries
// in append order: INSERT and UPDATE set the row at its primary key, DELETE
// removes it. Live rows come back in first-insertion order of their primary
// keys, so results are deterministic. Values are re-canonicalized against the
// schema because JSON decoding widens all numbers to float64.
func (s *Store) Reconstruct(table *core.Table) ([]core.Row, error) {
	entries, err := s.log.ReadAll()
	if err != nil {
		return nil, err
	}

	pkColumn := table.PrimaryKey().Name
	current := make(map[any]core.Row)
	var order []any

	for _, entry := range entries {
		if entry.TableName != table.Name {
			continue
		}
		switch entry.Operation {
		case core.OpInsert, core.OpUpdate:
			row := core.NormalizeRow(table, entry.NewValue)
			pk := row[pkColumn]
			if _, seen := current[pk]; !seen {
				order = append(order, pk)
			}
			current[pk] = row
		case core.OpDelete:
			old := core.NormalizeRow(table, entry.OldValue)
			delete(current, old[pkColumn])
		}
	}

	rows := make([]core.Row, 0, len(current))
	emitted := make(map[any]bool, len(current))
	for _, pk := range order {
		row, live := current[pk]
		if !live || emitted[pk] {
			continue
		}
		emitted[pk] = true
		rows = append(rows, row)
	}
	return rows, nil
}

// History returns one page of the ledger in append order plus the total
// entry count. Offsets past the end yield an empty page; limit <= 0 means
// no limit.
func (s *Store) History(offset, limit int) ([]core.Entry, int, error) {
	entries, err := s.log.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	total := len(entries)

	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	page := entries[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	return page, total, nil
}

// Close releases the underlying log.
func (s *Store) Close() error {
	return s.log.Close()
}

package ledger

import (
	"sync"

	"github.com/ledgerlite/ledgerlite/core"
)

// Log is an append-only sequence of ledger entries. Append assigns the next
// transaction id (previous max + 1, starting at 1) and persists the entry
// before returning; entries are never rewritten once appended.
type Log interface {
	Append(entry core.Entry) (core.Entry, error)
	ReadAll() ([]core.Entry, error)
	Close() error
}

// MemoryLog keeps entries in memory. It backs throwaway engines and tests;
// durable use goes through FileLog.
type MemoryLog struct {
	mu      sync.Mutex
	entries []core.Entry
	nextID  int64
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{nextID: 1}
}

func (l *MemoryLog) Append(entry core.Entry) (core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.TransactionID = l.nextID
	l.nextID++
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *MemoryLog) ReadAll() ([]core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

func (l *MemoryLog) Close() error {
	return nil
}

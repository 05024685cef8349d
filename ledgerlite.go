package ledgerlite

import (
	"github.com/go-git/go-billy/v6/osfs"

	"github.com/ledgerlite/ledgerlite/db"
	"github.com/ledgerlite/ledgerlite/ledger"
)

// Instance is one embedded database: an engine bound to its ledger store.
type Instance struct {
	store  *ledger.Store
	engine *db.Engine
}

// Open creates an instance over any append-only log, typically
// ledger.NewMemoryLog for throwaway databases and tests.
func Open(log ledger.Log) *Instance {
	store := ledger.NewStore(log)
	return &Instance{
		store:  store,
		engine: db.NewEngine(store),
	}
}

// OpenFile creates an instance whose ledger lives at path inside dir on the
// local filesystem. The file is created if absent; an existing ledger is
// replayed as tables are declared.
func OpenFile(dir, path string) (*Instance, error) {
	log, err := ledger.NewFileLog(osfs.New(dir), path)
	if err != nil {
		return nil, err
	}
	return Open(log), nil
}

// Engine returns the SQL engine. Engines are single-threaded; callers with
// concurrent clients must serialize access.
func (instance *Instance) Engine() *db.Engine {
	return instance.engine
}

// Close releases the ledger store.
func (instance *Instance) Close() error {
	return instance.store.Close()
}

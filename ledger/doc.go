// Package ledger implements LedgerLite's append-only persistence.
//
// Every row change is recorded as an immutable entry; nothing is ever
// rewritten in place. Current table contents are derived by replaying
// entries in append order.
//
// # Logs
//
// Two Log implementations are provided:
//   - FileLog: newline-delimited JSON in a single file on a billy
//     filesystem (osfs for durable use, memfs in tests)
//   - MemoryLog: in-memory, for throwaway engines and tests
//
// # Store
//
//	log, err := ledger.NewFileLog(osfs.New("data"), "ledger.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := ledger.NewStore(log)
//	defer store.Close()
//
//	entry, err := store.Append("users", core.OpInsert, nil, row)
//	rows, err := store.Reconstruct(&table)
//
// # Backup and Restore
//
// The file format is byte-stable, so backup and restore are plain byte
// copies. FileLog.Backup writes to a local path or s3:// URL; RestoreFile
// reads from a local path, http(s):// or s3:// URL.
package ledger

package core

import "time"

// Operation is the kind of change a ledger entry records.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Entry is one immutable change record in the ledger. Entries are written as
// newline-delimited JSON, one object per line, and are never rewritten once
// appended.
//
// OldValue and NewValue pair with the operation: INSERT has only NewValue,
// DELETE has only OldValue, UPDATE has both.
type Entry struct {
	TransactionID int64     `json:"transaction_id"`
	TableName     string    `json:"table_name"`
	Operation     Operation `json:"operation"`
	Timestamp     string    `json:"timestamp"`
	OldValue      Row       `json:"old_value"`
	NewValue      Row       `json:"new_value"`
}

// Now returns the timestamp format used for ledger entries: ISO-8601 in UTC.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Package main provides the HTTP JSON API server for LedgerLite.
package main

import (
	"encoding/json"

	"github.com/ledgerlite/ledgerlite/core"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	SQL string `json:"sql"`
}

// Response is the envelope for every query response.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "rows", "affected" or "schema"
	Result  json.RawMessage `json:"result,omitempty"`
}

// TablesResponse lists the declared tables.
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// TableResponse describes one table: its schema and current contents.
type TableResponse struct {
	Name    string        `json:"name"`
	Columns []core.Column `json:"columns"`
	Rows    []core.Row    `json:"rows"`
}

// HistoryResponse is one page of ledger entries.
type HistoryResponse struct {
	Entries []core.Entry `json:"entries"`
	Offset  int          `json:"offset"`
	Total   int          `json:"total"`
}

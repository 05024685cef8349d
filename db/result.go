package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ledgerlite/ledgerlite/core"
)

type ResultType int

const (
	RowSetResultType ResultType = iota
	AffectedCountResultType
	SchemaAckResultType
)

// Result is the union returned by Engine.Execute: a RowSet for SELECT, an
// AffectedCount for INSERT/UPDATE/DELETE, a SchemaAck for CREATE TABLE.
type Result interface {
	Type() ResultType
	Display()
}

// RowSet carries SELECT output: ordered rows of column name -> value maps.
type RowSet struct {
	Columns          []string   `json:"columns"`
	Rows             []core.Row `json:"rows"`
	ExecutionTimeSec float64    `json:"execution_time_sec"`
}

// AffectedCount reports how many rows a write statement committed.
type AffectedCount struct {
	Table            string         `json:"table"`
	Operation        core.Operation `json:"operation"`
	Count            int            `json:"count"`
	ExecutionTimeSec float64        `json:"execution_time_sec"`
}

// SchemaAck acknowledges a CREATE TABLE. Table declarations produce no
// ledger entry.
type SchemaAck struct {
	Table            string  `json:"table"`
	ExecutionTimeSec float64 `json:"execution_time_sec"`
}

func (result RowSet) Type() ResultType {
	return RowSetResultType
}

func (result AffectedCount) Type() ResultType {
	return AffectedCountResultType
}

func (result SchemaAck) Type() ResultType {
	return SchemaAckResultType
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func (result RowSet) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result AffectedCount) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result SchemaAck) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result RowSet) Display() {
	if len(result.Rows) > 0 {
		table := NewTable(os.Stdout)
		table.Header(result.Columns...)
		for _, row := range result.Rows {
			cells := make([]string, len(result.Columns))
			for i, column := range result.Columns {
				cells[i] = FormatValue(row[column])
			}
			table.Row(cells...)
		}
		table.Render()
	}
	fmt.Printf("%d row(s) (%s)\n", len(result.Rows), result.ExecutionTime())
}

func (result AffectedCount) Display() {
	verb := "affected"
	switch result.Operation {
	case core.OpInsert:
		verb = "inserted"
	case core.OpUpdate:
		verb = "updated"
	case core.OpDelete:
		verb = "deleted"
	}
	fmt.Printf("%d row(s) %s in %s (%s)\n", result.Count, verb, result.Table, result.ExecutionTime())
}

func (result SchemaAck) Display() {
	fmt.Printf("table %s created (%s)\n", result.Table, result.ExecutionTime())
}

// FormatValue renders a row value for display. NULL renders as "NULL";
// floats keep a decimal point so they read as floats.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !containsDot(s) {
			s += ".0"
		}
		return s
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

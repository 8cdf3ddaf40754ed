// Package report aggregates per-file score rows into an ordered result table
// and serializes it.
package report

import (
	"github.com/vocalysis/backend/internal/scorer"
)

// Row status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Row is the outcome for one uploaded file: either a full set of scores or
// an explicit error marker. Warnings carry degraded-adapter notes (grammar
// check skipped, silent audio, missing features).
type Row struct {
	Filename   string        `json:"filename"`
	Status     string        `json:"status"`
	Scores     scorer.Scores `json:"scores"`
	Transcript string        `json:"transcript,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// ErrorRow builds a Row marking an unrecoverable per-file failure.
func ErrorRow(filename string, err error) Row {
	return Row{Filename: filename, Status: StatusError, Error: err.Error()}
}

// Table is an ordered sequence of rows, one per uploaded file in upload
// order.
type Table struct {
	Rows []Row `json:"rows"`
}

// NewTable allocates a table with one slot per expected row so concurrent
// workers can place results by upload index.
func NewTable(n int) *Table {
	return &Table{Rows: make([]Row, n)}
}

// Set places a row at its upload position.
func (t *Table) Set(i int, row Row) {
	t.Rows[i] = row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

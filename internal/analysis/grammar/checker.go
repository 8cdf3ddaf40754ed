package grammar

import (
	"context"
	"errors"
)

// ErrEmptyTranscript is returned when there is no linguistic content to
// check. Callers treat it as zero issues with a warning rather than a hard
// failure.
var ErrEmptyTranscript = errors.New("empty transcript")

// Issue is one grammar problem found in a transcript.
type Issue struct {
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
	Offset  int    `json:"offset,omitempty"`
	Length  int    `json:"length,omitempty"`
}

// Result holds the outcome of a grammar check.
type Result struct {
	IssueCount int     `json:"issue_count"`
	Issues     []Issue `json:"issues,omitempty"`
}

// Checker is the interface for grammar-checking backends.
type Checker interface {
	Check(ctx context.Context, text string) (*Result, error)
	Name() string
}

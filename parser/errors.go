package parser

import "fmt"

// LogError is the only error shape produced by Parse. It is either a
// classified parse failure carrying a reason, or a filtered marker for a
// line whose timestamp is at or below the run watermark. The two cases
// are mutually exclusive: filtered errors have no reason.
type LogError struct {
	Line     string
	Reason   string
	Filtered bool
}

// Error renders the error-surface form. Filtered errors are counted,
// not written, so they never reach this rendering in normal operation.
func (e *LogError) Error() string {
	return fmt.Sprintf("Invalid entry: %s (%s)", e.Line, e.Reason)
}

func newLogError(line, reason string) *LogError {
	return &LogError{Line: line, Reason: reason}
}

func newFiltered(line string) *LogError {
	return &LogError{Line: line, Filtered: true}
}

// IsFiltered reports whether err marks an already-ingested line rather
// than a malformed one.
func IsFiltered(err error) bool {
	le, ok := err.(*LogError)
	return ok && le.Filtered
}

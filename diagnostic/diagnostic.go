// Copyright © 2024 The ELPS authors

// Package diagnostic renders located analysis errors as annotated source
// snippets for CLI output.
package diagnostic

import "fmt"

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
// Columns count runes.  A span whose EndLine follows Line highlights the
// rest of its first line and its last line through EndCol.
type Span struct {
	File    string // path for reading source; display name if unreadable
	Line    int    // 1-based line number
	Col     int    // 1-based start column
	EndLine int    // 1-based last line (0 = Line)
	EndCol  int    // 1-based end column, inclusive (0 = detect from source)
	Label   string // text shown under the underline
}

// lastLine returns the final line covered by s.
func (s Span) lastLine() int {
	if s.EndLine > s.Line {
		return s.EndLine
	}
	return s.Line
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code is the error condition, shown next to the severity when set.
	Code    string
	Message string
	Spans   []Span
	Notes   []string // "= note:" lines
}

// Note appends a note to d.
func (d *Diagnostic) Note(format string, v ...interface{}) {
	d.Notes = append(d.Notes, fmt.Sprintf(format, v...))
}

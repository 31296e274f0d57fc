// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Renderer formats diagnostics as annotated source snippets:
//
//	error[invalid-binding-form]: bindings must contain an even number of forms
//	  --> main.lisp:2:6
//	   |
//	 2 |  (let [a] a)
//	   |       ^^^
//	   |
//
// A Renderer caches the source files it reads and is not safe for
// concurrent use.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	// TabWidth is the number of columns a tab is displayed with.  Zero
	// means 4.
	TabWidth int

	sources map[string][]string
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	bw := bufio.NewWriter(w)
	sw := &snippetWriter{
		w:      bw,
		st:     chooseStyle(r.Color, w),
		gutter: gutterWidth(d.Spans),
	}
	sw.header(d)
	for _, span := range d.Spans {
		r.writeSpan(sw, span)
	}
	for _, note := range d.Notes {
		sw.printf("%s%s note: %s\n", sw.margin(), paint(sw.st.note, "="), note)
	}
	if sw.err != nil {
		return sw.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// gutterWidth is the number of digits in the largest line number shown.
func gutterWidth(spans []Span) int {
	width := 1
	for _, s := range spans {
		if n := len(strconv.Itoa(s.lastLine())); n > width {
			width = n
		}
	}
	return width
}

// snippetWriter keeps the first write error so that a snippet can be
// written without checking every call.
type snippetWriter struct {
	w      io.Writer
	st     style
	gutter int
	err    error
}

func (sw *snippetWriter) printf(format string, a ...interface{}) {
	if sw.err != nil {
		return
	}
	_, sw.err = fmt.Fprintf(sw.w, format, a...)
}

// margin is the blank space left of the gutter bar.
func (sw *snippetWriter) margin() string {
	return strings.Repeat(" ", sw.gutter+2)
}

func (sw *snippetWriter) header(d Diagnostic) {
	sev := d.Severity.String()
	if d.Code != "" {
		sev += "[" + d.Code + "]"
	}
	sw.printf("%s: %s\n", paint(sw.st.forSeverity(d.Severity), sev), paint(sw.st.message, d.Message))
}

// bar writes an empty gutter line.
func (sw *snippetWriter) bar() {
	sw.printf("%s%s\n", sw.margin(), paint(sw.st.gutter, "|"))
}

// sourceLine writes line n of the source with its number in the gutter.
func (sw *snippetWriter) sourceLine(n int, text string) {
	num := fmt.Sprintf(" %*d |", sw.gutter, n)
	sw.printf("%s  %s\n", paint(sw.st.gutter, num), text)
}

// underline writes carets beneath display columns [from, to).
func (sw *snippetWriter) underline(from, to int, label string) {
	if to <= from {
		to = from + 1
	}
	carets := paint(sw.st.underline, strings.Repeat("^", to-from))
	if label != "" {
		carets += " " + paint(sw.st.underline, label)
	}
	sw.printf("%s%s  %s%s\n", sw.margin(), paint(sw.st.gutter, "|"), strings.Repeat(" ", from), carets)
}

func (r *Renderer) writeSpan(sw *snippetWriter, span Span) {
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	sw.printf("%s%s %s\n", strings.Repeat(" ", sw.gutter+1), paint(sw.st.gutter, "-->"), loc)

	first, ok := r.line(span.File, span.Line)
	if !ok {
		sw.bar()
		return
	}
	col := span.Col
	if col <= 0 {
		col = 1
	}
	sw.bar()
	last, hasLast := r.line(span.File, span.lastLine())
	if span.lastLine() == span.Line || !hasLast {
		endCol := span.EndCol
		if endCol <= 0 || span.lastLine() != span.Line {
			endCol = detectEndCol(first, col)
		}
		if endCol < col {
			endCol = col
		}
		sw.sourceLine(span.Line, r.expandTabs(first))
		sw.underline(r.displayCol(first, col), r.displayCol(first, endCol+1), span.Label)
		sw.bar()
		return
	}

	// Multi-line span: the rest of the first line through EndCol of the last.
	sw.sourceLine(span.Line, r.expandTabs(first))
	sw.underline(r.displayCol(first, col), r.displayCol(first, runeLen(first)+1), "")
	if span.lastLine() > span.Line+1 {
		sw.printf("%s\n", paint(sw.st.gutter, "..."))
	}
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = runeLen(last)
	}
	sw.sourceLine(span.lastLine(), r.expandTabs(last))
	sw.underline(r.displayCol(last, indentCol(last)), r.displayCol(last, endCol+1), span.Label)
	sw.bar()
}

// line returns line n (1-based) of file.
func (r *Renderer) line(file string, n int) (string, bool) {
	if n <= 0 || file == "" {
		return "", false
	}
	lines, ok := r.sources[file]
	if !ok {
		lines = r.readLines(file)
		if r.sources == nil {
			r.sources = make(map[string][]string)
		}
		r.sources[file] = lines
	}
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func (r *Renderer) readLines(file string) []string {
	reader := r.SourceReader
	if reader == nil {
		reader = os.ReadFile
	}
	data, err := reader(file)
	if err != nil {
		return nil
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func (r *Renderer) tabWidth() int {
	if r.TabWidth > 0 {
		return r.TabWidth
	}
	return 4
}

func (r *Renderer) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", r.tabWidth()))
}

// displayCol returns the display offset of rune column col (1-based) in s.
func (r *Renderer) displayCol(s string, col int) int {
	w, i := 0, 1
	for _, ch := range s {
		if i >= col {
			return w
		}
		if ch == '\t' {
			w += r.tabWidth()
		} else {
			w++
		}
		i++
	}
	return w + col - i
}

// detectEndCol returns the column of the last rune of the token at col.
func detectEndCol(s string, col int) int {
	rs := []rune(s)
	if col <= 0 || col > len(rs) {
		return col
	}
	end := col - 1
	for end < len(rs) && !strings.ContainsRune(" \t()[]{}", rs[end]) {
		end++
	}
	if end == col-1 {
		return col
	}
	return end
}

// indentCol returns the column of the first non-blank rune in s.
func indentCol(s string) int {
	for i, ch := range []rune(s) {
		if ch != ' ' && ch != '\t' {
			return i + 1
		}
	}
	return 1
}

func runeLen(s string) int {
	return len([]rune(s))
}

// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"errors"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/parser/token"
	"github.com/luthersystems/elpsc/syntax"
)

// FromError converts err into a diagnostic.  Analyzer and reader errors are
// annotated with their source location.  Joined errors produce one
// diagnostic each.
func FromError(err error) []Diagnostic {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var diags []Diagnostic
		for _, e := range joined.Unwrap() {
			diags = append(diags, FromError(e)...)
		}
		return diags
	}
	var aerr *analyzer.Error
	if errors.As(err, &aerr) {
		return []Diagnostic{fromAnalyzerError(aerr)}
	}
	var lerr *token.LocationError
	if errors.As(err, &lerr) {
		return []Diagnostic{{
			Severity: SeverityError,
			Code:     "read-error",
			Message:  lerr.Err.Error(),
			Spans:    []Span{spanAt(lerr.Source, nil, "")},
		}}
	}
	return []Diagnostic{{Severity: SeverityError, Message: err.Error()}}
}

func fromAnalyzerError(err *analyzer.Error) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Code:     err.ConditionName(),
		Message:  err.Message,
	}
	if err.Span.Start != nil || err.Span.End != nil {
		label := ""
		if err.Macro != "" {
			label = "in expansion of " + err.Macro
		}
		d.Spans = append(d.Spans, fromSyntaxSpan(err.Span, label))
	}
	for cause := err.Cause; cause != nil; cause = errors.Unwrap(cause) {
		d.Note("caused by: %v", cause)
	}
	return d
}

func fromSyntaxSpan(sp syntax.Span, label string) Span {
	if sp.Start == nil {
		return spanAt(sp.End, nil, label)
	}
	return spanAt(sp.Start, sp.End, label)
}

// spanAt highlights from start through end.  Without an end the token at
// start is highlighted.
func spanAt(start, end *token.Location, label string) Span {
	if start == nil {
		return Span{File: "<unknown>", Label: label}
	}
	file := start.Path
	if file == "" {
		file = start.File
	}
	s := Span{File: file, Line: start.Line, Col: start.Col, Label: label}
	switch {
	case end == nil || end.Line < start.Line:
	case end.Line == start.Line && end.Col >= start.Col:
		s.EndCol = end.Col
	case end.Line > start.Line:
		s.EndLine = end.Line
		s.EndCol = end.Col
	}
	return s
}

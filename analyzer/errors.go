// Copyright © 2024 The ELPS authors

package analyzer

import (
	"errors"
	"fmt"

	"github.com/luthersystems/elpsc/syntax"
)

// Error conditions reported by the analyzer.  Every *Error matches its own
// condition with errors.Is, along with the conditions of its Cause chain.
var (
	ErrArityMismatch            = errors.New("arity-mismatch")
	ErrInvalidBindingForm       = errors.New("invalid-binding-form")
	ErrUnsupportedParameterForm = errors.New("unsupported-parameter-form")
	ErrInvalidIdentifier        = errors.New("invalid-identifier")
	ErrInvalidRecurPosition     = errors.New("invalid-recur-position")
	ErrUnresolvedSymbol         = errors.New("unresolved-symbol")
	ErrMacroExpansion           = errors.New("macro-expansion-error")
	ErrMalformedSpecialForm     = errors.New("malformed-special-form")
)

// Error is a located analysis failure.
type Error struct {
	// Condition is one of the Err* sentinel values.
	Condition error
	Message   string
	Span      syntax.Span
	// Cause is the underlying failure of a macro body, if any.
	Cause error
	// Macro is the qualified name of the macro that failed to expand.
	Macro string
}

func (e *Error) Error() string {
	if e.Span.IsZero() {
		return fmt.Sprintf("%v: %s", e.Condition, e.Message)
	}
	return fmt.Sprintf("%v: %v: %s", e.Span, e.Condition, e.Message)
}

// Is reports whether target is the condition of e.
func (e *Error) Is(target error) bool {
	return target == e.Condition
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ConditionName returns the name of the error condition.
func (e *Error) ConditionName() string {
	if e.Condition == nil {
		return "error"
	}
	return e.Condition.Error()
}

func errorf(cond error, sp syntax.Span, format string, v ...interface{}) *Error {
	return &Error{
		Condition: cond,
		Message:   fmt.Sprintf(format, v...),
		Span:      sp,
	}
}

// locate fills in missing span ends of err from sp.  Errors that are not
// analyzer errors are returned unchanged.
func locate(err error, sp syntax.Span) error {
	var aerr *Error
	if !errors.As(err, &aerr) {
		return err
	}
	aerr.Span = aerr.Span.Or(sp)
	return err
}

func arityError(form *syntax.Seq, format string, v ...interface{}) *Error {
	return errorf(ErrArityMismatch, form.Span(), format, v...)
}

func malformed(v syntax.Value, format string, args ...interface{}) *Error {
	return errorf(ErrMalformedSpecialForm, spanOf(v), format, args...)
}

func spanOf(v syntax.Value) syntax.Span {
	if v == nil {
		return syntax.Span{}
	}
	return v.Span()
}

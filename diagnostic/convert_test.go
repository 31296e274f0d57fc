// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/compiler"
	"github.com/luthersystems/elpsc/syntax"
)

func compileErr(t *testing.T, src string) error {
	t.Helper()
	c, err := compiler.New(&compiler.Config{})
	require.NoError(t, err)
	_, err = c.Compile(context.Background(), "test.lisp", strings.NewReader(src))
	require.Error(t, err)
	return err
}

func TestFromError_Analyzer(t *testing.T) {
	src := "(def x 1)\n(let [a] a)"
	diags := FromError(compileErr(t, src))
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, "invalid-binding-form", d.Code)
	assert.Equal(t, "bindings must contain an even number of forms", d.Message)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, Span{File: "test.lisp", Line: 2, Col: 6, EndCol: 8}, d.Spans[0])

	var buf bytes.Buffer
	r := testRenderer(map[string]string{"test.lisp": src})
	require.NoError(t, r.RenderAll(&buf, diags))
	assert.Contains(t, buf.String(), " 2 |  (let [a] a)\n   |       ^^^\n")
}

func TestFromError_Joined(t *testing.T) {
	diags := FromError(compileErr(t, "(if)\nfoo"))
	require.Len(t, diags, 2)
	assert.Equal(t, "arity-mismatch", diags[0].Code)
	assert.Equal(t, "unresolved-symbol", diags[1].Code)
	assert.Equal(t, 2, diags[1].Spans[0].Line)
}

func TestFromError_Macro(t *testing.T) {
	diags := FromError(compileErr(t, "(cond 1)"))
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "macro-expansion-error", d.Code)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "in expansion of core/cond", d.Spans[0].Label)
	assert.Equal(t, []string{"caused by: cond requires an even number of forms"}, d.Notes)
}

func TestFromError_Read(t *testing.T) {
	diags := FromError(compileErr(t, "\n  (def x"))
	require.Len(t, diags, 1)
	assert.Equal(t, "read-error", diags[0].Code)
	assert.Equal(t, "unmatched (", diags[0].Message)
	assert.Equal(t, 2, diags[0].Spans[0].Line)
	assert.Equal(t, 3, diags[0].Spans[0].Col)
}

func TestFromError_Plain(t *testing.T) {
	assert.Nil(t, FromError(nil))
	diags := FromError(errors.New("boom"))
	require.Len(t, diags, 1)
	assert.Equal(t, "boom", diags[0].Message)
	assert.Empty(t, diags[0].Spans)

	diags = FromError(&analyzer.Error{Condition: analyzer.ErrUnresolvedSymbol, Message: "m", Span: syntax.Span{}})
	require.Len(t, diags, 1)
	assert.Empty(t, diags[0].Spans)
}

// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func render(t *testing.T, r *Renderer, d Diagnostic) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, d))
	return buf.String()
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(let [a] a)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Code:     "invalid-binding-form",
		Message:  "bindings must contain an even number of forms",
		Spans: []Span{
			{File: "test.lisp", Line: 1, Col: 6, EndCol: 8, Label: "binding vector"},
		},
	})
	assert.Equal(t, strings.Join([]string{
		"error[invalid-binding-form]: bindings must contain an even number of forms",
		"  --> test.lisp:1:6",
		"   |",
		" 1 |  (let [a] a)",
		"   |       ^^^ binding vector",
		"   |",
		"",
	}, "\n"), got)
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(def x 1)\n(def x 2)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityWarning,
		Message:  "redefinition of user/x",
		Spans: []Span{
			{File: "test.lisp", Line: 2, Col: 1, EndCol: 9},
		},
	})
	assert.Contains(t, got, "warning: redefinition of user/x")
	assert.Contains(t, got, "--> test.lisp:2:1")
	assert.Contains(t, got, "(def x 2)")
	assert.Contains(t, got, "^^^^^^^^^")
}

func TestRenderNoSource(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans: []Span{
			{File: "<stdin>", Line: 5, Col: 3},
		},
	})
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(my-macro 1 2)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  `error in expanding macro "user/my-macro"`,
		Spans: []Span{
			{File: "test.lisp", Line: 1, Col: 1, EndCol: 14},
		},
		Notes: []string{
			"caused by: wrong number of arguments",
		},
	})
	assert.Contains(t, got, "= note: caused by: wrong number of arguments")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(fn [a.b] 42)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  `cannot bind "a.b"`,
		Spans: []Span{
			{File: "test.lisp", Line: 1, Col: 6},
		},
	})
	assert.Contains(t, got, "      ^^^\n")
}

func TestRenderAll(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(def x 1)\n(recur 1)\n(if true)",
	})
	diags := []Diagnostic{
		{
			Severity: SeverityError,
			Message:  "can't call 'recur here",
			Spans:    []Span{{File: "test.lisp", Line: 2, Col: 1, EndCol: 9}},
		},
		{
			Severity: SeverityError,
			Message:  "'if requires two or three arguments",
			Spans:    []Span{{File: "test.lisp", Line: 3, Col: 1, EndCol: 9}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	got := buf.String()
	assert.GreaterOrEqual(t, len(strings.Split(got, "\n\n")), 2, "diagnostics are separated by a blank line")
	assert.Contains(t, got, "can't call 'recur here")
	assert.Contains(t, got, "'if requires two or three arguments")
}

func TestRenderNoSpans(t *testing.T) {
	got := render(t, testRenderer(nil), Diagnostic{
		Severity: SeverityError,
		Message:  "open main.lisp: no such file or directory",
	})
	assert.Equal(t, "error: open main.lisp: no such file or directory\n", got)
}

func TestRenderColor(t *testing.T) {
	r := testRenderer(nil)
	r.Color = ColorAlways
	got := render(t, r, Diagnostic{Severity: SeverityNote, Message: "m"})
	assert.Contains(t, got, "\033[")
}

func TestRenderMultiLine(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(let [a 1\n      b]\n  a)",
	})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "bindings must contain an even number of forms",
		Spans:    []Span{{File: "test.lisp", Line: 1, Col: 6, EndLine: 3, EndCol: 4, Label: "here"}},
	})
	assert.Equal(t, strings.Join([]string{
		"error: bindings must contain an even number of forms",
		"  --> test.lisp:1:6",
		"   |",
		" 1 |  (let [a 1",
		"   |       ^^^^",
		"...",
		" 3 |    a)",
		"   |    ^^ here",
		"   |",
		"",
	}, "\n"), got)
}

func TestRenderGutterWidth(t *testing.T) {
	src := strings.Repeat("\n", 11) + "\t(if)"
	r := testRenderer(map[string]string{"test.lisp": src})
	got := render(t, r, Diagnostic{
		Severity: SeverityError,
		Message:  "'if requires two or three arguments",
		Spans:    []Span{{File: "test.lisp", Line: 12, Col: 2, EndCol: 5}},
		Notes:    []string{"n"},
	})
	assert.Contains(t, got, "   --> test.lisp:12:2\n")
	assert.Contains(t, got, " 12 |      (if)\n")
	assert.Contains(t, got, "    |      ^^^^\n")
	assert.Contains(t, got, "    = note: n\n")
}

func TestRenderCachesSource(t *testing.T) {
	reads := 0
	r := &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			reads++
			return []byte("(a)\n(b)"), nil
		},
	}
	diags := []Diagnostic{
		{Message: "one", Spans: []Span{{File: "x.lisp", Line: 1, Col: 1}}},
		{Message: "two", Spans: []Span{{File: "x.lisp", Line: 2, Col: 1}}},
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, diags))
	assert.Equal(t, 1, reads)
	assert.Contains(t, buf.String(), " 2 |  (b)\n")
}

func TestParseColorMode(t *testing.T) {
	for _, test := range []struct {
		in   string
		want ColorMode
	}{
		{"", ColorAuto},
		{"auto", ColorAuto},
		{"always", ColorAlways},
		{"NEVER", ColorNever},
	} {
		got, err := ParseColorMode(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}
	_, err := ParseColorMode("sometimes")
	assert.EqualError(t, err, `unknown color mode: "sometimes"`)
	assert.Equal(t, "always", ColorAlways.String())
}

func TestChooseStyle(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, style{}, chooseStyle(ColorAuto, &buf))
	assert.Equal(t, ansiStyle, chooseStyle(ColorAlways, &buf))
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, style{}, chooseStyle(ColorAuto, os.Stdout))
}

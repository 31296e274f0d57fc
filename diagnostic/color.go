// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color a terminal unless NO_COLOR is set
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

var colorModeNames = [...]string{
	ColorAuto:   "auto",
	ColorAlways: "always",
	ColorNever:  "never",
}

func (m ColorMode) String() string {
	if m < 0 || int(m) >= len(colorModeNames) {
		return fmt.Sprintf("ColorMode(%d)", int(m))
	}
	return colorModeNames[m]
}

// ParseColorMode returns the mode named s ("auto", "always" or "never").
// The empty string selects ColorAuto.
func ParseColorMode(s string) (ColorMode, error) {
	if s == "" {
		return ColorAuto, nil
	}
	for m, name := range colorModeNames {
		if strings.EqualFold(s, name) {
			return ColorMode(m), nil
		}
	}
	return ColorAuto, fmt.Errorf("unknown color mode: %q", s)
}

const (
	ansiReset    = "\033[0m"
	ansiBold     = "\033[1m"
	ansiYellow   = "\033[1;33m"
	ansiBoldRed  = "\033[1;31m"
	ansiBoldBlue = "\033[1;34m"
	ansiBoldCyan = "\033[1;36m"
)

// style holds the escape sequence of each part of a rendered diagnostic.
// The zero style renders plain text.
type style struct {
	severity  [3]string // indexed by Severity
	message   string
	gutter    string
	underline string
	note      string
}

var ansiStyle = style{
	severity: [3]string{
		SeverityError:   ansiBoldRed,
		SeverityWarning: ansiYellow,
		SeverityNote:    ansiBoldCyan,
	},
	message:   ansiBold,
	gutter:    ansiBoldBlue,
	underline: ansiBoldRed,
	note:      ansiBoldCyan,
}

// paint wraps text in code.
func paint(code, text string) string {
	if code == "" || text == "" {
		return text
	}
	return code + text + ansiReset
}

func (s style) forSeverity(sev Severity) string {
	if sev < 0 || int(sev) >= len(s.severity) {
		return ""
	}
	return s.severity[sev]
}

// chooseStyle selects colors for mode.  ColorAuto colors only writers that
// are terminals.
func chooseStyle(mode ColorMode, w io.Writer) style {
	switch mode {
	case ColorAlways:
		return ansiStyle
	case ColorNever:
		return style{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return style{}
	}
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return style{}
	}
	return ansiStyle
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/spf13/viper"

	"github.com/luthersystems/elpsc/diagnostic"
)

// colorMode returns the mode selected by --color or the color setting.
// Invalid values are rejected before any command runs.
func colorMode() diagnostic.ColorMode {
	mode, _ := diagnostic.ParseColorMode(viper.GetString("color"))
	return mode
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// renderErrors renders the failures of a compilation with diagnostic
// formatting.  A hint to expand the source is appended to macro expansion
// failures.
func renderErrors(w io.Writer, err error, sourceFile string) {
	diags := diagnostic.FromError(err)
	for i := range diags {
		if diags[i].Code == "macro-expansion-error" && sourceFile != "" {
			diags[i].Note("try: elpsc expand %s", sourceFile)
		}
	}
	_ = newRenderer().RenderAll(w, diags)
}

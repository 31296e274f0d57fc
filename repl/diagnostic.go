// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/luthersystems/elpsc/diagnostic"
)

// renderError renders err using the diagnostic renderer.  Source snippets
// are not available for stdin so only locations and messages are shown.
func renderError(w io.Writer, err error, color diagnostic.ColorMode) {
	diags := diagnostic.FromError(err)
	if len(diags) > 0 {
		last := &diags[len(diags)-1]
		last.Note("run `elpsc forms` to list special forms and core macros")
	}
	r := &diagnostic.Renderer{Color: color}
	_ = r.RenderAll(w, diags)
}

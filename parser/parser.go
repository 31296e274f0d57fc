// Copyright © 2018 The ELPS authors

// Package parser reads source text into syntax values.
package parser

import (
	"io"

	"github.com/luthersystems/elpsc/parser/rdparser"
	"github.com/luthersystems/elpsc/syntax"
)

// Reader reads the top-level forms of a source stream.
type Reader interface {
	Read(name string, r io.Reader) ([]syntax.Value, error)
}

// NewReader returns a new Reader.
func NewReader() Reader {
	return rdparser.NewReader()
}

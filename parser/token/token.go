// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Token is a lexeme of source text.
type Token struct {
	Type   Type
	Text   string
	Source *Location
	// End is the location of the last rune in the token.
	End *Location
}

type Type uint

// Type constants used for the lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	HASH_BANG

	// Atomic expressions & literals
	SYMBOL
	KEYWORD
	INT
	INT_HEX
	FLOAT
	STRING

	COMMENT

	// Reader macros
	QUOTE
	QUASIQUOTE
	UNQUOTE
	UNQUOTE_SPLICING

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	CURLY_L
	CURLY_R
	ARRAY_L // @[
	TABLE_L // @{
	SET_L   // #{

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:          "invalid",
		ERROR:            "error",
		EOF:              "EOF",
		HASH_BANG:        "#!",
		SYMBOL:           "symbol",
		KEYWORD:          "keyword",
		INT:              "int",
		INT_HEX:          "hex",
		FLOAT:            "float",
		STRING:           "string",
		COMMENT:          ";",
		QUOTE:            "'",
		QUASIQUOTE:       "`",
		UNQUOTE:          ",",
		UNQUOTE_SPLICING: ",@",
		PAREN_L:          "(",
		PAREN_R:          ")",
		BRACE_L:          "[",
		BRACE_R:          "]",
		CURLY_L:          "{",
		CURLY_R:          "}",
		ARRAY_L:          "@[",
		TABLE_L:          "@{",
		SET_L:            "#{",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location is a position in a source stream.
type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	if loc == nil {
		return "<unknown>"
	}
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Copy returns a copy of loc, or nil if loc is nil.
func (loc *Location) Copy() *Location {
	if loc == nil {
		return nil
	}
	cp := *loc
	return &cp
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}

// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/elpsc/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	miscWordRunes   = "0123456789:" + miscWordSymbols
	miscWordSymbols = `._+-*/=<>!&~%?$\|^`
)

// Lexer turns the runes of a token.Scanner into tokens of the surface
// syntax.
type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
	started bool
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// ReadToken returns the next token.  At the end of input ReadToken returns a
// token of type token.EOF on every call.
func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	first := !lex.started
	lex.started = true
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		if err := lex.scanner.Err(); err != nil {
			return lex.emitError(err)
		}
		return lex.errorf("invalid utf-8 sequence in source text")
	}
	switch c := lex.scanner.Rune(); c {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '[':
		return lex.emitText(token.BRACE_L)
	case ']':
		return lex.emitText(token.BRACE_R)
	case '{':
		return lex.emitText(token.CURLY_L)
	case '}':
		return lex.emitText(token.CURLY_R)
	case '\'':
		return lex.emitText(token.QUOTE)
	case '`':
		return lex.emitText(token.QUASIQUOTE)
	case ',':
		if lex.scanner.AcceptRune('@') {
			return lex.emitText(token.UNQUOTE_SPLICING)
		}
		return lex.emitText(token.UNQUOTE)
	case '@':
		switch {
		case lex.scanner.AcceptRune('['):
			return lex.emitText(token.ARRAY_L)
		case lex.scanner.AcceptRune('{'):
			return lex.emitText(token.TABLE_L)
		}
		return lex.errorf("unexpected text following @: %q", lex.peekRune())
	case '#':
		switch {
		case lex.scanner.AcceptRune('{'):
			return lex.emitText(token.SET_L)
		case first && lex.scanner.AcceptRune('!'):
			lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
			return lex.emitText(token.HASH_BANG)
		}
		return lex.errorf("invalid dispatch macro character %q", lex.peekRune())
	case ';':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case ':':
		if lex.scanner.AcceptSeq(isWord) == 0 {
			return lex.errorf("empty keyword")
		}
		return lex.emitText(token.KEYWORD)
	case '"':
		return lex.readString()
	case '-', '+':
		if isDigit(lex.peekRune()) {
			return lex.readNumber()
		}
		return lex.readSymbol()
	default:
		if isDigit(c) {
			return lex.readNumber()
		}
		if isWordStart(c) {
			return lex.readSymbol()
		}
		return lex.emit(token.INVALID, fmt.Sprintf("unexpected text starting with %q", c))
	}
}

func (lex *Lexer) readString() []*token.Token {
	for {
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			if lex.scanner.EOF() {
				return lex.errorf("unterminated string literal")
			}
			return lex.emitError(lex.scanner.Err())
		}
		switch lex.scanner.Rune() {
		case '"':
			return lex.emitText(token.STRING)
		case '\\':
			// The escaped character is validated during parsing.
			if !lex.scanner.Accept(func(c rune) bool { return true }) {
				return lex.errorf("unterminated string literal")
			}
		}
	}
}

func (lex *Lexer) readSymbol() []*token.Token {
	lex.scanner.AcceptSeq(isWord)
	return lex.emitText(token.SYMBOL)
}

func (lex *Lexer) readNumber() []*token.Token {
	if lex.scanner.Rune() == '0' && lex.scanner.AcceptAny("xX") {
		n := lex.scanner.AcceptSeq(isHexDigit)
		if n == 0 || isWord(lex.peekRune()) {
			return lex.errorf("invalid hexadecimal literal starting: %v", lex.scanner.Text())
		}
		return lex.emitText(token.INT_HEX)
	}
	lex.scanner.AcceptSeqDigit()
	typ := token.INT
	if lex.scanner.AcceptRune('.') {
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
		}
		typ = token.FLOAT
	}
	if lex.scanner.AcceptAny("eE") {
		lex.scanner.AcceptAny("+-")
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
		}
		typ = token.FLOAT
	}
	if isWord(lex.peekRune()) {
		return lex.errorf("invalid number literal starting: %v", lex.scanner.Text())
	}
	return lex.emitText(typ)
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	loc := lex.scanner.LocStart()
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: loc,
		End:    lex.scanner.Loc(),
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitError(err error) []*token.Token {
	if err == nil || err == io.EOF {
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.scanner.Ignore()
	}
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c >= 0x80 || strings.ContainsRune(miscWordSymbols, c)
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || c == '_' || c >= 0x80 || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

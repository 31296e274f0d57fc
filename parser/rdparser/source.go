// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/elpsc/parser/lexer"
	"github.com/luthersystems/elpsc/parser/token"
)

// TokenStream is an arbitrary sequence of tokens, usually a *lexer.Lexer.
type TokenStream interface {
	// ReadToken returns the next tokens of the input.  ReadToken never
	// returns an empty slice.  At the end of input it returns a token.EOF
	// token and after an io error a token.ERROR token, on every call.
	ReadToken() []*token.Token
}

// TokenGenerator implements TokenStream with a function.
type TokenGenerator func() []*token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() []*token.Token {
	return fn()
}

// TokenSource gives the parser one token of lookahead over a TokenStream.
// Token is the last token consumed.
type TokenSource struct {
	Token *token.Token

	lex     TokenStream
	pending []*token.Token // read from lex but not yet consumed
}

// NewTokenStreamSource returns a TokenSource reading from stream.
func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{lex: stream}
}

// NewTokenSource returns a TokenSource that lexes the text of scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

// Peek returns the next token without consuming it.
func (s *TokenSource) Peek() *token.Token {
	if len(s.pending) == 0 {
		s.pending = s.lex.ReadToken()
	}
	return s.pending[0]
}

// Accept consumes the next token if fn reports true for it.
func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if !fn(s.Peek()) {
		return false
	}
	s.next()
	return true
}

// AcceptType consumes the next token if it has one of the given types.
func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	next := s.Peek().Type
	for _, t := range typ {
		if next == t {
			s.next()
			return true
		}
	}
	return false
}

// Scan consumes the next token.  At EOF Token is set to the EOF token,
// which stays pending, and Scan returns false.
func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.next()
	return true
}

// IsEOF reports whether the next token is token.EOF.
func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

// Reset drops the lookahead so that the next token is read from the
// stream.
func (s *TokenSource) Reset() {
	s.pending = nil
}

func (s *TokenSource) next() {
	s.Token = s.Peek()
	s.pending = s.pending[1:]
}

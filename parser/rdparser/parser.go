// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/luthersystems/elpsc/parser/token"
	"github.com/luthersystems/elpsc/syntax"
)

// Reader reads syntax values from source text.
type Reader struct {
}

// NewReader returns a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses all expressions in r.
func (*Reader) Read(name string, r io.Reader) ([]syntax.Value, error) {
	s := token.NewScanner(name, r)
	p := New(s)
	return p.ParseProgram()
}

// ReadLocation is like Read but records loc as the physical path of the
// source in every location.
func (*Reader) ReadLocation(name string, loc string, r io.Reader) ([]syntax.Value, error) {
	s := token.NewScanner(name, r)
	s.SetPath(loc)
	p := New(s)
	return p.ParseProgram()
}

// Parser is a recursive descent parser producing syntax values.
type Parser struct {
	parsing bool
	src     *TokenSource
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// Parse is a generic entry point that is similar to ParseExpression but is
// capable of handling EOF before reading an expression.
func (p *Parser) Parse() (syntax.Value, error) {
	p.ignoreComments()
	if p.src.IsEOF() {
		return nil, io.EOF
	}
	return p.ParseExpression()
}

// ParseProgram parses a series of expressions potentially preceded by a
// hash-bang, `#!`.
func (p *Parser) ParseProgram() ([]syntax.Value, error) {
	var exprs []syntax.Value

	p.ignoreComments()
	p.src.AcceptType(token.HASH_BANG)

	for {
		expr, err := p.Parse()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}

	return exprs, nil
}

// ParseExpression parses a single expression.  Unlike Parse, ParseExpression
// requires an expression to be present in the input stream and will report
// unexpected EOF tokens encountered.
func (p *Parser) ParseExpression() (syntax.Value, error) {
	fn := p.parseExpression()

	// Flag that we are in the middle of an expression so that an Interactive
	// parser can choose a continuation prompt.
	if !p.parsing {
		p.parsing = true
		defer func() { p.parsing = false }()
	}

	return fn(p)
}

type parseFn func(p *Parser) (syntax.Value, error)

func (p *Parser) parseExpression() parseFn {
	p.ignoreComments()
	switch p.PeekType() {
	case token.INT:
		return (*Parser).ParseLiteralInt
	case token.INT_HEX:
		return (*Parser).ParseLiteralIntHex
	case token.FLOAT:
		return (*Parser).ParseLiteralFloat
	case token.STRING:
		return (*Parser).ParseLiteralString
	case token.KEYWORD:
		return (*Parser).ParseKeyword
	case token.SYMBOL:
		return (*Parser).ParseSymbol
	case token.QUOTE:
		return quoteParser(token.QUOTE, "quote")
	case token.QUASIQUOTE:
		return quoteParser(token.QUASIQUOTE, "quasiquote")
	case token.UNQUOTE:
		return quoteParser(token.UNQUOTE, "unquote")
	case token.UNQUOTE_SPLICING:
		return quoteParser(token.UNQUOTE_SPLICING, "unquote-splicing")
	case token.PAREN_L:
		return seqParser(token.PAREN_L, token.PAREN_R, syntax.NewList)
	case token.BRACE_L:
		return seqParser(token.BRACE_L, token.BRACE_R, syntax.NewVector)
	case token.ARRAY_L:
		return seqParser(token.ARRAY_L, token.BRACE_R, syntax.NewArray)
	case token.CURLY_L:
		return mapParser(token.CURLY_L, syntax.NewMap)
	case token.TABLE_L:
		return mapParser(token.TABLE_L, syntax.NewTable)
	case token.SET_L:
		return (*Parser).ParseSet
	case token.ERROR, token.INVALID:
		return func(p *Parser) (syntax.Value, error) {
			p.ReadToken()
			return nil, p.errorf("%s", p.TokenText())
		}
	default:
		return func(p *Parser) (syntax.Value, error) {
			p.ReadToken()
			return nil, p.errorf("unexpected token: %v", p.TokenType())
		}
	}
}

func (p *Parser) ParseLiteralInt() (syntax.Value, error) {
	if !p.Accept(token.INT) {
		return nil, p.errorf("invalid integer literal: %v", p.PeekType())
	}
	text := strings.TrimPrefix(p.TokenText(), "+")
	x, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("integer literal overflows int: %v", p.TokenText())
	}
	return p.located(syntax.Int(x)), nil
}

func (p *Parser) ParseLiteralIntHex() (syntax.Value, error) {
	if !p.Accept(token.INT_HEX) {
		return nil, p.errorf("unexpected token: %v", p.PeekType())
	}
	text := p.TokenText()
	x, err := strconv.ParseInt(text[2:], 16, 64)
	if err != nil {
		return nil, p.errorf("hex literal overflows int: %v", text)
	}
	return p.located(syntax.Int(x)), nil
}

func (p *Parser) ParseLiteralFloat() (syntax.Value, error) {
	if !p.Accept(token.FLOAT) {
		return nil, p.errorf("invalid float literal: %v", p.PeekType())
	}
	x, err := strconv.ParseFloat(p.TokenText(), 64)
	if err != nil {
		return nil, p.errorf("invalid floating point literal: %v", p.TokenText())
	}
	return p.located(syntax.Float(x)), nil
}

func (p *Parser) ParseLiteralString() (syntax.Value, error) {
	if !p.Accept(token.STRING) {
		return nil, p.errorf("invalid string literal: %v", p.PeekType())
	}
	text := p.TokenText()
	s, err := unquote(text[1 : len(text)-1])
	if err != nil {
		return nil, p.errorf("invalid string literal: %v", text)
	}
	return p.located(syntax.String(s)), nil
}

// unquote interprets the escape sequences of a string literal body.  Unlike
// strconv.Unquote the body may span lines.
func unquote(body string) (string, error) {
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var b strings.Builder
	for len(body) > 0 {
		c, _, tail, err := strconv.UnquoteChar(body, '"')
		if err != nil {
			return "", err
		}
		b.WriteRune(c)
		body = tail
	}
	return b.String(), nil
}

func (p *Parser) ParseKeyword() (syntax.Value, error) {
	if !p.Accept(token.KEYWORD) {
		return nil, p.errorf("invalid keyword: %v", p.PeekType())
	}
	name := norm.NFC.String(strings.TrimPrefix(p.TokenText(), ":"))
	return p.located(syntax.Keyword(name)), nil
}

// ParseSymbol parses a symbol.  The symbols nil, true and false denote
// literals.  Symbol names are normalized to NFC so that canonically
// equivalent spellings resolve to the same binding.
func (p *Parser) ParseSymbol() (syntax.Value, error) {
	if !p.Accept(token.SYMBOL) {
		return nil, p.errorf("invalid symbol: %v", p.PeekType())
	}
	text := norm.NFC.String(p.TokenText())
	switch text {
	case "nil":
		return p.located(syntax.Nil()), nil
	case "true":
		return p.located(syntax.Bool(true)), nil
	case "false":
		return p.located(syntax.Bool(false)), nil
	}
	return p.located(syntax.ParseSymbol(text)), nil
}

func quoteParser(typ token.Type, op string) parseFn {
	return func(p *Parser) (syntax.Value, error) {
		if !p.Accept(typ) {
			return nil, p.errorf("invalid %s: %v", op, p.PeekType())
		}
		tok := p.src.Token
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		sym := syntax.Sym(op).At(tokenSpan(tok))
		form := syntax.NewList(sym, expr)
		return syntax.WithSpan(form, syntax.Span{Start: tok.Source, End: expr.Span().End}), nil
	}
}

// parseElements parses expressions until a token of type closing.
func (p *Parser) parseElements(closing token.Type) (open *token.Token, elems []syntax.Value, err error) {
	open = p.src.Token
	for {
		p.ignoreComments()
		if p.src.IsEOF() {
			return nil, nil, p.errorfAt(open.Source, "unmatched %s", open.Text)
		}
		if p.Accept(closing) {
			return open, elems, nil
		}
		x, err := p.ParseExpression()
		if err != nil {
			return nil, nil, err
		}
		elems = append(elems, x)
	}
}

func (p *Parser) closedSpan(open *token.Token) syntax.Span {
	return syntax.Span{Start: open.Source, End: p.src.Token.End}
}

func seqParser(opening, closing token.Type, ctor func(...syntax.Value) *syntax.Seq) parseFn {
	return func(p *Parser) (syntax.Value, error) {
		if !p.Accept(opening) {
			return nil, p.errorf("unexpected token: %v", p.PeekType())
		}
		open, elems, err := p.parseElements(closing)
		if err != nil {
			return nil, err
		}
		return ctor(elems...).At(p.closedSpan(open)), nil
	}
}

func mapParser(opening token.Type, ctor func(...syntax.Entry) *syntax.Map) parseFn {
	return func(p *Parser) (syntax.Value, error) {
		if !p.Accept(opening) {
			return nil, p.errorf("unexpected token: %v", p.PeekType())
		}
		open, elems, err := p.parseElements(token.CURLY_R)
		if err != nil {
			return nil, err
		}
		if len(elems)%2 != 0 {
			return nil, p.errorfAt(open.Source, "map literal has an odd number of forms")
		}
		entries := make([]syntax.Entry, 0, len(elems)/2)
		for i := 0; i < len(elems); i += 2 {
			entries = append(entries, syntax.Entry{Key: elems[i], Value: elems[i+1]})
		}
		m := ctor(entries...)
		if m.Len() != len(entries) {
			return nil, p.errorfAt(open.Source, "map literal contains duplicate keys")
		}
		return syntax.WithSpan(m, p.closedSpan(open)), nil
	}
}

func (p *Parser) ParseSet() (syntax.Value, error) {
	if !p.Accept(token.SET_L) {
		return nil, p.errorf("unexpected token: %v", p.PeekType())
	}
	open, elems, err := p.parseElements(token.CURLY_R)
	if err != nil {
		return nil, err
	}
	return syntax.WithSpan(syntax.NewSet(elems...), p.closedSpan(open)), nil
}

func (p *Parser) ignoreComments() {
	for p.Accept(token.COMMENT) {
	}
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) PeekLocation() *token.Location {
	return p.src.Peek().Source
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func tokenSpan(tok *token.Token) syntax.Span {
	return syntax.Span{Start: tok.Source, End: tok.End}
}

// located attaches the span of the current token to v.
func (p *Parser) located(v syntax.Value) syntax.Value {
	return syntax.WithSpan(v, tokenSpan(p.src.Token))
}

func (p *Parser) errorf(format string, v ...interface{}) error {
	return p.errorfAt(p.Location(), format, v...)
}

func (p *Parser) errorfAt(loc *token.Location, format string, v ...interface{}) error {
	return &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: loc,
	}
}

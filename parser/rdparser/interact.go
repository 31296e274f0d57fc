// Copyright © 2018 The ELPS authors

package rdparser

import (
	"bytes"
	"sync"

	"github.com/luthersystems/elpsc/parser/lexer"
	"github.com/luthersystems/elpsc/parser/token"
	"github.com/luthersystems/elpsc/syntax"
)

// Interactive parses one expression at a time from line oriented input such
// as a terminal.  Read is called whenever the parser needs more tokens and
// typically returns the tokens of one line, produced by Lex.
type Interactive struct {
	Read TokenGenerator

	prompt     string
	promptCont string
	file       string
	lines      int // lines passed to Lex

	mut sync.RWMutex
	buf []*token.Token
	src *TokenSource
	p   *Parser
}

// NewInteractive initializes and returns a new Interactive parser.
func NewInteractive(read TokenGenerator) *Interactive {
	p := &Interactive{
		Read: read,
		file: "stdin",
	}
	p.src = NewTokenStreamSource(TokenGenerator(p.read))
	p.p = NewFromSource(p.src)
	return p
}

// SetPrompts configures the string prompts returned by p.Prompt().  The cont
// string is used to prompt the user when the parser is in the middle of
// parsing an expression at the start of a line.
func (p *Interactive) SetPrompts(prompt, cont string) {
	p.prompt = prompt
	p.promptCont = cont
}

// SetFile sets the file name of locations produced by Lex.
func (p *Interactive) SetFile(name string) {
	p.file = name
}

// Prompt returns the prompt for the next line of input.
func (p *Interactive) Prompt() string {
	if p.IsParsing() {
		return p.promptCont
	}
	return p.prompt
}

// IsParsing returns true if p is in the middle of parsing an expression.
// IsParsing can be called at any time, potentially by concurrent goroutines or
// when p is nil.
func (p *Interactive) IsParsing() bool {
	if p == nil {
		return false
	}
	p.mut.RLock()
	defer p.mut.RUnlock()
	return p.p.parsing
}

// Lex returns the tokens of one line of input.  Lines are numbered across
// calls so that locations name the line of the session they were entered
// on.  Lexing stops after an error token, which the parser reports.  Lex
// returns nil for a blank line.  It is meant to be called from Read.
func (p *Interactive) Lex(line []byte) []*token.Token {
	line = bytes.TrimRight(line, "\r\n")
	p.lines++
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	scanner := token.NewScanner(p.file, bytes.NewReader(line))
	scanner.SetLine(p.lines)
	lex := lexer.New(scanner)
	var toks []*token.Token
	for {
		next := lex.ReadToken()
		for _, tok := range next {
			if tok.Type == token.EOF {
				return toks
			}
			toks = append(toks, tok)
			if tok.Type == token.ERROR {
				return toks
			}
		}
	}
}

// read is the TokenStream of the parser.  It is called with p.mut held and
// releases it while waiting on Read.
func (p *Interactive) read() []*token.Token {
	if tok := p.readBuffer(); tok != nil {
		return tok
	}

	p.mut.Unlock()
	defer p.mut.Lock()
	if p.Read == nil {
		panic("nil read func")
	}
	p.buf = p.Read()
	if len(p.buf) == 0 {
		panic("no tokens read")
	}
	return p.readBuffer()
}

func (p *Interactive) readBuffer() []*token.Token {
	if len(p.buf) == 0 {
		return nil
	}
	tok := p.buf[0]
	p.buf = p.buf[1:]
	return []*token.Token{tok}
}

// Parse parses one expression from the interactive token stream and returns
// it, or any error encountered.  A REPL would call this function in its main
// runloop.  After a parse error the rest of the current line is discarded,
// lookahead included, so that corrected source can be re-read.
func (p *Interactive) Parse() (syntax.Value, error) {
	p.mut.Lock()
	defer p.mut.Unlock()
	v, err := p.p.Parse()
	if err != nil {
		p.buf = nil
		p.src.Reset()
		return nil, err
	}
	return v, nil
}

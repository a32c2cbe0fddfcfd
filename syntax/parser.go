// Package syntax implements lexical analysis with layout (spec.md §4.A)
// and recursive-descent parsing (spec.md §4.B) for OtterLang source files.
package syntax

import (
	"fmt"

	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

// Parser is a recursive-descent, single-token-lookahead parser, grounded on
// bootstrap/syntax/parser.go's next/got/assert/want token-cursor idiom.
// Parsers are created once per file.
type Parser struct {
	file string
	lx   *Lexer
	sink *report.Sink

	tok  *Token
	prev *Token
	la   *Token // one extra token of lookahead, filled lazily by peek2
}

// NewParser creates a parser over a source file already opened as r.
func NewParser(file string, lx *Lexer, sink *report.Sink) *Parser {
	p := &Parser{file: file, lx: lx, sink: sink}
	p.advance()
	return p
}

// NewSubParser creates a parser over an f-string embedded-expression
// fragment, used by parseFString to parse each `{...}` segment with its
// own token stream.
func NewSubParser(file, src string, start report.Span, sink *report.Sink) *Parser {
	lx := newEmbeddedLexer(file, src, start, sink)
	return NewParser(file, lx, sink)
}

// ParseModule parses a full source file into a Module AST.
func (p *Parser) ParseModule() *ast.Module {
	items := p.parseTopLevel()
	return &ast.Module{
		Base:  ast.NewBase(report.Span{File: p.file}),
		File:  p.file,
		Items: items,
	}
}

// -----------------------------------------------------------------------------
// Token cursor

func (p *Parser) advance() {
	p.prev = p.tok
	if p.la != nil {
		p.tok, p.la = p.la, nil
	} else {
		p.tok = p.lx.NextToken()
	}
}

// peek2 returns the token after the current one without consuming it,
// lexing and caching it on first use. Used for the few spots the grammar
// needs two tokens of lookahead (keyword-argument disambiguation).
func (p *Parser) peek2() *Token {
	if p.la == nil {
		p.la = p.lx.NextToken()
	}
	return p.la
}

func (p *Parser) at(kind Kind) bool { return p.tok.Kind == kind }

func (p *Parser) atAny(kinds ...Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

// accept consumes the current token if it matches kind, returning whether
// it did.
func (p *Parser) accept(kind Kind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

// expect reports an error if the current token is not of kind, then
// advances regardless (error-recovery keeps the parser moving).
func (p *Parser) expect(kind Kind) *Token {
	if !p.at(kind) {
		p.reject(kind)
		return p.tok
	}
	tok := p.tok
	p.advance()
	return tok
}

// skipNewlines consumes a run of NEWLINE tokens.
func (p *Parser) skipNewlines() {
	for p.at(TOK_NEWLINE) {
		p.advance()
	}
}

// -----------------------------------------------------------------------------
// Error recovery

func (p *Parser) reject(expected Kind) {
	p.errorf("unexpected token %s, expected %s", describe(p.tok.Kind), describe(expected))
}

func (p *Parser) errorf(format string, args ...any) {
	p.sink.Add(report.Errorf(report.CodeParseError, p.tok.Span, format, args...))
}

// syncTo advances until one of the given kinds (or EOF) is reached, the
// parser's resync point after a recoverable parse error (spec.md §7:
// "parse syncs at the next NEWLINE/DEDENT").
func (p *Parser) syncTo(kinds ...Kind) {
	for !p.atAny(kinds...) && !p.at(TOK_EOF) {
		p.advance()
	}
}

func describe(k Kind) string {
	switch k {
	case TOK_NEWLINE:
		return "newline"
	case TOK_EOF:
		return "end of file"
	case TOK_INDENT:
		return "indent"
	case TOK_DEDENT:
		return "dedent"
	default:
		return fmt.Sprintf("token %d", int(k))
	}
}

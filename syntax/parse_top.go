package syntax

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

// parseTopLevel parses the top-level item list of a module. Only `use`,
// `pub use`, `type`, `struct`, `enum`, `fn`, their `pub` variants, `let`,
// and expression-statements are allowed here; bare control-flow is a
// parse error (spec.md §4.B, "Top-level restriction").
func (p *Parser) parseTopLevel() []ast.Item {
	var items []ast.Item

	p.skipNewlines()
	for !p.at(TOK_EOF) {
		if item := p.parseItem(); item != nil {
			items = append(items, item)
		} else {
			p.syncTo(TOK_NEWLINE, TOK_EOF)
		}
		p.skipNewlines()
	}

	return items
}

func (p *Parser) parseItem() ast.Item {
	switch p.tok.Kind {
	case TOK_USE:
		return p.parseUse()
	case TOK_PUB:
		return p.parsePub()
	case TOK_TYPE:
		return p.parseTypeAlias(ast.VisModulePrivate)
	case TOK_STRUCT:
		return p.parseStruct(ast.VisModulePrivate)
	case TOK_ENUM:
		return p.parseEnum(ast.VisModulePrivate)
	case TOK_FN:
		return p.parseFunction(ast.VisModulePrivate, "")
	case TOK_LET:
		return p.parseLetItem(ast.VisModulePrivate)
	default:
		start := p.tok.Span
		expr := p.parseExpr()
		return &ast.ExprItem{Base: ast.NewBase(report.Over(start, p.prev.Span)), Value: expr}
	}
}

// parsePub handles `pub use ...` and `pub <type|struct|enum|fn|let>`.
func (p *Parser) parsePub() ast.Item {
	p.advance() // consume `pub`

	if p.at(TOK_USE) {
		return p.parsePubUse()
	}

	switch p.tok.Kind {
	case TOK_TYPE:
		return p.parseTypeAlias(ast.VisPublic)
	case TOK_STRUCT:
		return p.parseStruct(ast.VisPublic)
	case TOK_ENUM:
		return p.parseEnum(ast.VisPublic)
	case TOK_FN:
		return p.parseFunction(ast.VisPublic, "")
	case TOK_LET:
		return p.parseLetItem(ast.VisPublic)
	default:
		p.errorf("expected a declaration after `pub`")
		return nil
	}
}

func (p *Parser) parseLetItem(vis ast.Visibility) ast.Item {
	start := p.tok.Span
	p.advance() // `let`

	name := p.expect(TOK_IDENT).Value

	var typeExpr ast.TypeExpr
	if p.accept(TOK_COLON) {
		typeExpr = p.parseTypeExpr()
	}

	p.expect(TOK_ASSIGN)
	init := p.parseExpr()

	return &ast.LetItem{
		Base: ast.NewBase(report.Over(start, p.prev.Span)),
		Vis:  vis,
		Name: name,
		Type: typeExpr,
		Init: init,
	}
}

// parseUsePath parses `a/b/c`, `./rel/path`, `rust:crate_name`, accepting
// `/` and `:` as segment separators and a leading `.`/`..` anchor.
func (p *Parser) parseUsePath() []string {
	var segs []string

	if p.at(TOK_DOT) || p.at(TOK_DOTDOT) {
		segs = append(segs, ".")
		for p.at(TOK_DOT) || p.at(TOK_DOTDOT) {
			if p.at(TOK_DOTDOT) {
				segs = append(segs, "..")
			}
			p.advance()
			p.expect(TOK_SLASH)
		}
	}

	segs = append(segs, p.expect(TOK_IDENT).Value)
	for p.at(TOK_SLASH) || p.at(TOK_COLON) {
		p.advance()
		segs = append(segs, p.expect(TOK_IDENT).Value)
	}

	return segs
}

func (p *Parser) parseUse() ast.Item {
	start := p.tok.Span
	p.advance() // `use`

	path := p.parseUsePath()
	alias := ""
	if p.accept(TOK_AS) {
		alias = p.expect(TOK_IDENT).Value
	}

	return &ast.UseItem{
		Base:  ast.NewBase(report.Over(start, p.prev.Span)),
		Path:  path,
		Alias: alias,
	}
}

func (p *Parser) parsePubUse() ast.Item {
	start := p.prev.Span // `pub` already consumed
	p.advance()          // `use`

	path := p.parseUsePath()
	alias := ""
	whole := true
	if p.accept(TOK_AS) {
		alias = p.expect(TOK_IDENT).Value
		whole = false
	}

	return &ast.PubUseItem{
		Base:  ast.NewBase(report.Over(start, p.prev.Span)),
		Path:  path,
		Alias: alias,
		Whole: whole,
	}
}

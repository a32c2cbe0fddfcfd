package syntax

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

// parsePattern parses a match/destructuring pattern (spec.md §3):
// {Wildcard, Binding(name), Literal, EnumVariant(path, sub-patterns...),
// StructDestructure(path, fields), ListPattern(head...,rest?,tail...)}.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.tok.Span

	switch p.tok.Kind {
	case TOK_UNDERSCORE:
		p.advance()
		return &ast.WildcardPattern{Base: ast.NewBase(start)}
	case TOK_INTLIT, TOK_FLOATLIT, TOK_STRINGLIT, TOK_TRUE, TOK_FALSE, TOK_NONE, TOK_MINUS:
		return &ast.LiteralPattern{Base: ast.NewBase(start), Lit: p.parseLiteralForPattern()}
	case TOK_LBRACKET:
		return p.parseListPattern(start)
	case TOK_IDENT:
		return p.parsePathPattern(start)
	default:
		p.errorf("unexpected token in pattern")
		p.advance()
		return &ast.WildcardPattern{Base: ast.NewBase(start)}
	}
}

func (p *Parser) parseLiteralForPattern() *ast.Literal {
	start := p.tok.Span
	neg := p.accept(TOK_MINUS)

	var kind ast.LiteralKind
	var value string
	switch p.tok.Kind {
	case TOK_INTLIT:
		kind, value = ast.LitInt, p.tok.Value
	case TOK_FLOATLIT:
		kind, value = ast.LitFloat, p.tok.Value
	case TOK_STRINGLIT:
		kind, value = ast.LitString, p.tok.Value
	case TOK_TRUE, TOK_FALSE:
		kind, value = ast.LitBool, p.tok.Value
	case TOK_NONE:
		kind, value = ast.LitNone, ""
	default:
		p.errorf("expected a literal pattern")
	}
	p.advance()

	if neg {
		value = "-" + value
	}

	return &ast.Literal{Base: ast.NewBase(report.Over(start, p.prev.Span)), Kind: kind, Value: value}
}

// parsePathPattern disambiguates a plain binding (`x`) from an
// enum-variant pattern (`Option.Some(x)`) and a struct destructure
// (`Point { x, y }`) by looking at what follows a dotted identifier path.
func (p *Parser) parsePathPattern(start report.Span) ast.Pattern {
	var path []string
	path = append(path, p.tok.Value)
	p.advance()

	for p.at(TOK_DOT) {
		p.advance()
		path = append(path, p.expect(TOK_IDENT).Value)
	}

	if len(path) == 1 && !p.atAny(TOK_LPAREN, TOK_LBRACE) {
		return &ast.BindingPattern{Base: ast.NewBase(report.Over(start, p.prev.Span)), Name: path[0]}
	}

	if p.accept(TOK_LPAREN) {
		var subs []ast.Pattern
		for !p.at(TOK_RPAREN) {
			subs = append(subs, p.parsePattern())
			if !p.accept(TOK_COMMA) {
				break
			}
		}
		p.expect(TOK_RPAREN)
		return &ast.EnumVariantPattern{
			Base:    ast.NewBase(report.Over(start, p.prev.Span)),
			Path:    path,
			SubPats: subs,
		}
	}

	if p.accept(TOK_LBRACE) {
		fields := map[string]ast.Pattern{}
		var order []string
		for !p.at(TOK_RBRACE) {
			p.skipNewlines()
			if p.at(TOK_RBRACE) {
				break
			}
			name := p.expect(TOK_IDENT).Value
			var sub ast.Pattern
			if p.accept(TOK_COLON) {
				sub = p.parsePattern()
			} else {
				sub = &ast.BindingPattern{Base: ast.NewBase(p.prev.Span), Name: name}
			}
			fields[name] = sub
			order = append(order, name)
			p.skipNewlines()
			if !p.accept(TOK_COMMA) {
				break
			}
			p.skipNewlines()
		}
		p.skipNewlines()
		p.expect(TOK_RBRACE)
		return &ast.StructDestructurePattern{
			Base:       ast.NewBase(report.Over(start, p.prev.Span)),
			Path:       path,
			Fields:     fields,
			FieldOrder: order,
		}
	}

	// Dotted path with no payload: treat as an enum unit-variant pattern.
	return &ast.EnumVariantPattern{Base: ast.NewBase(report.Over(start, p.prev.Span)), Path: path}
}

func (p *Parser) parseListPattern(start report.Span) ast.Pattern {
	p.advance() // `[`

	var head []ast.Pattern
	var rest *ast.BindingPattern
	var tail []ast.Pattern
	sawRest := false

	for !p.at(TOK_RBRACKET) {
		if p.at(TOK_STAR) {
			p.advance()
			name := p.expect(TOK_IDENT).Value
			rest = &ast.BindingPattern{Base: ast.NewBase(p.prev.Span), Name: name}
			sawRest = true
		} else {
			sub := p.parsePattern()
			if sawRest {
				tail = append(tail, sub)
			} else {
				head = append(head, sub)
			}
		}

		if !p.accept(TOK_COMMA) {
			break
		}
	}
	p.expect(TOK_RBRACKET)

	return &ast.ListPattern{
		Base: ast.NewBase(report.Over(start, p.prev.Span)),
		Head: head,
		Rest: rest,
		Tail: tail,
	}
}

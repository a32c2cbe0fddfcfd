package syntax

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

// parseTypeExpr parses a type expression: {Named(path, generics...),
// Function(params->ret), Tuple, Unit} (spec.md §3).
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	start := p.tok.Span

	if p.at(TOK_LPAREN) {
		return p.parseParenOrFuncType(start)
	}

	return p.parseNamedType(start)
}

func (p *Parser) parseNamedType(start report.Span) ast.TypeExpr {
	var path []string
	path = append(path, p.expect(TOK_IDENT).Value)
	for p.accept(TOK_DOT) {
		path = append(path, p.expect(TOK_IDENT).Value)
	}

	var generics []ast.TypeExpr
	if p.accept(TOK_LT) {
		for !p.at(TOK_GT) {
			generics = append(generics, p.parseTypeExpr())
			if !p.accept(TOK_COMMA) {
				break
			}
		}
		p.expect(TOK_GT)
	}

	return &ast.NamedType{
		Base:     ast.NewBase(report.Over(start, p.prev.Span)),
		Path:     path,
		Generics: generics,
	}
}

// parseParenOrFuncType disambiguates `(T1, T2)` tuple types from
// `(params) -> ret` function types and `()` the unit type.
func (p *Parser) parseParenOrFuncType(start report.Span) ast.TypeExpr {
	p.advance() // `(`

	if p.at(TOK_RPAREN) {
		p.advance()
		if p.accept(TOK_ARROW) {
			ret := p.parseTypeExpr()
			return &ast.FuncType{Base: ast.NewBase(report.Over(start, p.prev.Span)), Ret: ret}
		}
		return &ast.UnitType{Base: ast.NewBase(report.Over(start, p.prev.Span))}
	}

	var elems []ast.TypeExpr
	elems = append(elems, p.parseTypeExpr())
	for p.accept(TOK_COMMA) {
		elems = append(elems, p.parseTypeExpr())
	}
	p.expect(TOK_RPAREN)

	if p.accept(TOK_ARROW) {
		ret := p.parseTypeExpr()
		return &ast.FuncType{
			Base:   ast.NewBase(report.Over(start, p.prev.Span)),
			Params: elems,
			Ret:    ret,
		}
	}

	return &ast.TupleType{Base: ast.NewBase(report.Over(start, p.prev.Span)), Elems: elems}
}

// parseGenericParams parses an optional `<T, U, ...>` parameter list on a
// function/struct/enum/type-alias declaration.
func (p *Parser) parseGenericParams() []ast.GenericParam {
	if !p.accept(TOK_LT) {
		return nil
	}

	var params []ast.GenericParam
	for !p.at(TOK_GT) {
		params = append(params, ast.GenericParam{Name: p.expect(TOK_IDENT).Value})
		if !p.accept(TOK_COMMA) {
			break
		}
	}
	p.expect(TOK_GT)
	return params
}

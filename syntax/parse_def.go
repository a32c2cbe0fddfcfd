package syntax

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

func (p *Parser) parseTypeAlias(vis ast.Visibility) ast.Item {
	start := p.tok.Span
	p.advance() // `type`

	name := p.expect(TOK_IDENT).Value
	generics := p.parseGenericParams()
	p.expect(TOK_ASSIGN)
	target := p.parseTypeExpr()
	p.expectStmtEnd()

	return &ast.TypeAliasItem{
		Base:     ast.NewBase(report.Over(start, p.prev.Span)),
		Vis:      vis,
		Name:     name,
		Generics: generics,
		Target:   target,
	}
}

// parseStruct parses `struct Name<generics>: field: Type = default ...`,
// with method (`fn`) declarations interleaved among the field lines.
func (p *Parser) parseStruct(vis ast.Visibility) ast.Item {
	start := p.tok.Span
	p.advance() // `struct`

	name := p.expect(TOK_IDENT).Value
	generics := p.parseGenericParams()
	p.expect(TOK_COLON)

	item := &ast.StructItem{Vis: vis, Name: name, Generics: generics}

	if !p.at(TOK_INDENT) {
		p.parseStructMember(item)
	} else {
		p.advance()
		p.skipNewlines()
		for !p.at(TOK_DEDENT) && !p.at(TOK_EOF) {
			p.parseStructMember(item)
			p.skipNewlines()
		}
		p.expect(TOK_DEDENT)
	}

	item.Base = ast.NewBase(report.Over(start, p.prev.Span))
	return item
}

func (p *Parser) parseStructMember(item *ast.StructItem) {
	switch p.tok.Kind {
	case TOK_PUB:
		p.advance()
		if p.at(TOK_FN) {
			item.Methods = append(item.Methods, p.parseFunction(ast.VisPublic, item.Name).(*ast.FunctionItem))
			return
		}
		item.Fields = append(item.Fields, p.parseFieldDecl())
	case TOK_FN:
		item.Methods = append(item.Methods, p.parseFunction(ast.VisModulePrivate, item.Name).(*ast.FunctionItem))
	case TOK_IDENT:
		item.Fields = append(item.Fields, p.parseFieldDecl())
	default:
		p.errorf("expected a field or method declaration in struct body")
		p.syncTo(TOK_NEWLINE, TOK_DEDENT, TOK_EOF)
	}
}

func (p *Parser) parseFieldDecl() ast.FieldDecl {
	name := p.expect(TOK_IDENT).Value
	p.expect(TOK_COLON)
	typeExpr := p.parseTypeExpr()

	var def ast.Expr
	if p.accept(TOK_ASSIGN) {
		def = p.parseExpr()
	}
	p.expectStmtEnd()

	return ast.FieldDecl{Name: name, Type: typeExpr, Default: def}
}

// parseEnum parses `enum Name<generics>: Variant: (T1, T2) ... Unit ...`.
func (p *Parser) parseEnum(vis ast.Visibility) ast.Item {
	start := p.tok.Span
	p.advance() // `enum`

	name := p.expect(TOK_IDENT).Value
	generics := p.parseGenericParams()
	p.expect(TOK_COLON)
	p.expect(TOK_INDENT)

	var variants []ast.VariantDecl
	p.skipNewlines()
	for !p.at(TOK_DEDENT) && !p.at(TOK_EOF) {
		vname := p.expect(TOK_IDENT).Value
		var payload []ast.TypeExpr
		if p.accept(TOK_COLON) {
			p.expect(TOK_LPAREN)
			for !p.at(TOK_RPAREN) {
				payload = append(payload, p.parseTypeExpr())
				if !p.accept(TOK_COMMA) {
					break
				}
			}
			p.expect(TOK_RPAREN)
		}
		p.expectStmtEnd()
		variants = append(variants, ast.VariantDecl{Name: vname, Payload: payload})
		p.skipNewlines()
	}
	p.expect(TOK_DEDENT)

	return &ast.EnumItem{
		Base:     ast.NewBase(report.Over(start, p.prev.Span)),
		Vis:      vis,
		Name:     name,
		Generics: generics,
		Variants: variants,
	}
}

// parseFunction parses `fn name<generics>(params) -> ret: body`. When
// receiver is non-empty, the first parameter is implicitly `self`: a
// leading `self` in the parameter list is skipped if written, and `self`
// never appears in Params.
func (p *Parser) parseFunction(vis ast.Visibility, receiver string) ast.Item {
	start := p.tok.Span
	p.advance() // `fn`

	name := p.expect(TOK_IDENT).Value
	generics := p.parseGenericParams()

	p.expect(TOK_LPAREN)
	params := p.parseParamList(receiver != "")
	p.expect(TOK_RPAREN)

	var ret ast.TypeExpr
	if p.accept(TOK_ARROW) {
		ret = p.parseTypeExpr()
	}

	p.expect(TOK_COLON)
	body := p.parseBlock()

	return &ast.FunctionItem{
		Base:     ast.NewBase(report.Over(start, p.prev.Span)),
		Vis:      vis,
		Name:     name,
		Receiver: receiver,
		Generics: generics,
		Params:   params,
		Ret:      ret,
		Body:     body,
	}
}

// parseParamList parses a function's parameter list, skipping a leading
// `self` token when the function is a method, and enforcing that once a
// parameter declares a default, every subsequent parameter must too.
func (p *Parser) parseParamList(isMethod bool) []ast.Param {
	if isMethod && p.at(TOK_SELF) {
		p.advance()
		p.accept(TOK_COMMA)
	}

	var params []ast.Param
	sawDefault := false

	for !p.at(TOK_RPAREN) {
		name := p.expect(TOK_IDENT).Value

		var typeExpr ast.TypeExpr
		if p.accept(TOK_COLON) {
			typeExpr = p.parseTypeExpr()
		}

		var def ast.Expr
		if p.accept(TOK_ASSIGN) {
			def = p.parseExpr()
			sawDefault = true
		} else if sawDefault {
			p.sink.Add(report.Errorf(report.CodeDefaultParamOrder, p.prev.Span,
				"parameter %q must have a default: it follows a parameter that does", name))
		}

		params = append(params, ast.Param{Name: name, Type: typeExpr, Default: def})
		if !p.accept(TOK_COMMA) {
			break
		}
	}

	return params
}

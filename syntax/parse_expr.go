package syntax

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

// parseExpr parses a full expression via precedence climbing, following
// spec.md §4.B's table:
//
//	or < and < not < is/is-not,==,!=,<,<=,>,>= < .. < +,- < *,/,% < unary < postfix
func (p *Parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(TOK_OR) {
		start := left.Span()
		p.advance()
		right := p.parseAnd()
		left = &ast.Logical{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: ast.LogicalOr, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for p.at(TOK_AND) {
		start := left.Span()
		p.advance()
		right := p.parseNot()
		left = &ast.Logical{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: ast.LogicalAnd, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) parseNot() ast.Expr {
	if p.at(TOK_NOT) {
		start := p.tok.Span
		p.advance()
		operand := p.parseNot()
		return &ast.Unary{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: ast.UnaryNot, Operand: operand}
	}
	return p.parseComparison()
}

var comparisonOps = map[Kind]ast.BinaryKind{
	TOK_EQ:   ast.BinEq,
	TOK_NEQ:  ast.BinNeq,
	TOK_LT:   ast.BinLt,
	TOK_LTEQ: ast.BinLtEq,
	TOK_GT:   ast.BinGt,
	TOK_GTEQ: ast.BinGtEq,
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseRange()

	if p.at(TOK_IS) {
		start := left.Span()
		p.advance()
		negated := p.accept(TOK_NOT)
		right := p.parseRange()
		return &ast.Is{Base: ast.NewBase(report.Over(start, p.prev.Span)), Negated: negated, Lhs: left, Rhs: right}
	}

	if op, ok := comparisonOps[p.tok.Kind]; ok {
		start := left.Span()
		p.advance()
		right := p.parseRange()
		return &ast.Binary{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: op, Lhs: left, Rhs: right}
	}

	return left
}

func (p *Parser) parseRange() ast.Expr {
	left := p.parseAdditive()
	if p.at(TOK_DOTDOT) {
		start := left.Span()
		p.advance()
		right := p.parseAdditive()
		return &ast.Range{Base: ast.NewBase(report.Over(start, p.prev.Span)), Lo: left, Hi: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.atAny(TOK_PLUS, TOK_MINUS) {
		start := left.Span()
		op := ast.BinAdd
		if p.tok.Kind == TOK_MINUS {
			op = ast.BinSub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: op, Lhs: left, Rhs: right}
	}
	return left
}

var multiplicativeOps = map[Kind]ast.BinaryKind{
	TOK_STAR:    ast.BinMul,
	TOK_SLASH:   ast.BinDiv,
	TOK_PERCENT: ast.BinMod,
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		op, ok := multiplicativeOps[p.tok.Kind]
		if !ok {
			break
		}
		start := left.Span()
		p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: op, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(TOK_MINUS) {
		start := p.tok.Span
		p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Base: ast.NewBase(report.Over(start, p.prev.Span)), Op: ast.UnaryNeg, Operand: operand}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any run of
// `.field`, `(args)`, `[index]` suffixes.
func (p *Parser) parsePostfix() ast.Expr {
	start := p.tok.Span
	expr := p.parsePrimary()

	for {
		switch {
		case p.at(TOK_DOT):
			p.advance()
			field := p.expect(TOK_IDENT).Value
			expr = &ast.MemberAccess{Base: ast.NewBase(report.Over(start, p.prev.Span)), Root: expr, Field: field}
		case p.at(TOK_LPAREN):
			p.advance()
			args, kwargs := p.parseCallArgs()
			p.expect(TOK_RPAREN)
			expr = &ast.Call{Base: ast.NewBase(report.Over(start, p.prev.Span)), Callee: expr, Args: args, KwArgs: kwargs}
		case p.at(TOK_LBRACKET):
			p.advance()
			idx := p.parseExpr()
			p.expect(TOK_RBRACKET)
			expr = &ast.Index{Base: ast.NewBase(report.Over(start, p.prev.Span)), Seq: expr, Index: idx}
		default:
			return expr
		}
	}
}

// parseCallArgs parses `arg, arg, name: arg, ...`, splitting positional
// from keyword arguments by a one-token lookahead for `ident :`.
func (p *Parser) parseCallArgs() ([]ast.Expr, map[string]ast.Expr) {
	var args []ast.Expr
	var kwargs map[string]ast.Expr

	for !p.at(TOK_RPAREN) {
		if p.at(TOK_IDENT) && p.peek2().Kind == TOK_COLON {
			name := p.tok.Value
			p.advance()
			p.advance() // `:`
			val := p.parseExpr()
			if kwargs == nil {
				kwargs = map[string]ast.Expr{}
			}
			kwargs[name] = val
		} else {
			args = append(args, p.parseExpr())
		}
		if !p.accept(TOK_COMMA) {
			break
		}
	}
	return args, kwargs
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.tok.Span

	switch p.tok.Kind {
	case TOK_INTLIT:
		v := p.tok.Value
		p.advance()
		return &ast.Literal{Base: ast.NewBase(start), Kind: ast.LitInt, Value: v}
	case TOK_FLOATLIT:
		v := p.tok.Value
		p.advance()
		return &ast.Literal{Base: ast.NewBase(start), Kind: ast.LitFloat, Value: v}
	case TOK_STRINGLIT:
		v := p.tok.Value
		p.advance()
		return &ast.Literal{Base: ast.NewBase(start), Kind: ast.LitString, Value: v}
	case TOK_TRUE, TOK_FALSE:
		v := p.tok.Value
		p.advance()
		return &ast.Literal{Base: ast.NewBase(start), Kind: ast.LitBool, Value: v}
	case TOK_NONE:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(start), Kind: ast.LitNone}
	case TOK_FSTRING_BEGIN:
		return p.parseFString(start)
	case TOK_IDENT:
		return p.parseIdentOrStructLit(start)
	case TOK_SELF:
		p.advance()
		return &ast.Identifier{Base: ast.NewBase(start), Name: "self"}
	case TOK_LPAREN:
		return p.parseParenOrTuple(start)
	case TOK_LBRACKET:
		return p.parseListOrComprehension(start)
	case TOK_LBRACE:
		return p.parseDictOrComprehension(start)
	case TOK_LAMBDA:
		return p.parseLambda(start)
	case TOK_SPAWN:
		p.advance()
		operand := p.parseExpr()
		return &ast.Spawn{Base: ast.NewBase(report.Over(start, p.prev.Span)), Operand: operand}
	case TOK_AWAIT:
		p.advance()
		operand := p.parseExpr()
		return &ast.Await{Base: ast.NewBase(report.Over(start, p.prev.Span)), Operand: operand}
	case TOK_MATCH:
		return p.parseMatch(start)
	default:
		p.errorf("unexpected token %s in expression", describe(p.tok.Kind))
		tok := p.tok
		p.advance()
		return &ast.Literal{Base: ast.NewBase(tok.Span), Kind: ast.LitNone}
	}
}

// parseIdentOrStructLit disambiguates a bare identifier/dotted-path
// reference from a struct literal (`Path { field: value }`) by checking
// for a following `{`.
func (p *Parser) parseIdentOrStructLit(start report.Span) ast.Expr {
	name := p.tok.Value
	p.advance()

	var expr ast.Expr = &ast.Identifier{Base: ast.NewBase(start), Name: name}
	path := []string{name}

	for p.at(TOK_DOT) {
		p.advance()
		field := p.expect(TOK_IDENT).Value
		path = append(path, field)
		expr = &ast.MemberAccess{Base: ast.NewBase(report.Over(start, p.prev.Span)), Root: expr, Field: field}
	}

	// Explicit `Path<T>{...}` generic arguments in expression position are
	// not supported: the `<` would be indistinguishable from a
	// less-than comparison without unbounded lookahead. Generic struct
	// literals rely on inference from field values instead.
	if p.at(TOK_LBRACE) {
		return p.parseStructLit(start, path)
	}

	return expr
}

func (p *Parser) parseStructLit(start report.Span, path []string) ast.Expr {
	p.advance() // `{`
	p.skipNewlines()

	fields := map[string]ast.Expr{}
	var order []string
	var spread ast.Expr

	for !p.at(TOK_RBRACE) {
		if p.at(TOK_DOTDOT) {
			p.advance()
			spread = p.parseExpr()
		} else {
			name := p.expect(TOK_IDENT).Value
			p.expect(TOK_COLON)
			val := p.parseExpr()
			fields[name] = val
			order = append(order, name)
		}
		p.skipNewlines()
		if !p.accept(TOK_COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	p.expect(TOK_RBRACE)

	return &ast.StructLit{
		Base:       ast.NewBase(report.Over(start, p.prev.Span)),
		Path:       path,
		Fields:     fields,
		FieldOrder: order,
		Spread:     spread,
	}
}

// parseParenOrTuple disambiguates a parenthesized expression from a tuple
// literal: `(e)` is just `e`; `(e,)` and `(e1, e2, ...)` are tuple calls to
// the builtin tuple constructor, represented here as a Call on a synthetic
// `tuple` identifier so later stages can treat tuples uniformly with other
// builtin collection constructors.
func (p *Parser) parseParenOrTuple(start report.Span) ast.Expr {
	p.advance() // `(`

	if p.at(TOK_RPAREN) {
		p.advance()
		return &ast.Call{Base: ast.NewBase(report.Over(start, p.prev.Span)), Callee: &ast.Identifier{Base: ast.NewBase(start), Name: "tuple"}}
	}

	first := p.parseExpr()
	if p.at(TOK_RPAREN) {
		p.advance()
		return first
	}

	elems := []ast.Expr{first}
	for p.accept(TOK_COMMA) {
		if p.at(TOK_RPAREN) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(TOK_RPAREN)

	return &ast.Call{
		Base:   ast.NewBase(report.Over(start, p.prev.Span)),
		Callee: &ast.Identifier{Base: ast.NewBase(start), Name: "tuple"},
		Args:   elems,
	}
}

// parseListOrComprehension parses `[e1, e2, ...]` or `[yield for target in
// iter if filter]`.
func (p *Parser) parseListOrComprehension(start report.Span) ast.Expr {
	p.advance() // `[`
	p.skipNewlines()

	if p.at(TOK_RBRACKET) {
		p.advance()
		return &ast.ListLit{Base: ast.NewBase(report.Over(start, p.prev.Span))}
	}

	first := p.parseExpr()
	p.skipNewlines()

	if p.at(TOK_FOR) {
		p.advance()
		target := p.parsePattern()
		p.expect(TOK_IN)
		iter := p.parseExpr()
		var filter ast.Expr
		if p.accept(TOK_IF) {
			filter = p.parseExpr()
		}
		p.skipNewlines()
		p.expect(TOK_RBRACKET)
		return &ast.ListComprehension{
			Base:   ast.NewBase(report.Over(start, p.prev.Span)),
			Yield:  first,
			Target: target,
			Iter:   iter,
			Filter: filter,
		}
	}

	elems := []ast.Expr{first}
	for p.accept(TOK_COMMA) {
		p.skipNewlines()
		if p.at(TOK_RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpr())
		p.skipNewlines()
	}
	p.skipNewlines()
	p.expect(TOK_RBRACKET)

	return &ast.ListLit{Base: ast.NewBase(report.Over(start, p.prev.Span)), Elems: elems}
}

// parseDictOrComprehension parses `{k1: v1, ...}` or `{kexpr: vexpr for
// target in iter if filter}`.
func (p *Parser) parseDictOrComprehension(start report.Span) ast.Expr {
	p.advance() // `{`
	p.skipNewlines()

	if p.at(TOK_RBRACE) {
		p.advance()
		return &ast.DictLit{Base: ast.NewBase(report.Over(start, p.prev.Span))}
	}

	key := p.parseExpr()
	p.expect(TOK_COLON)
	val := p.parseExpr()
	p.skipNewlines()

	if p.at(TOK_FOR) {
		p.advance()
		target := p.parsePattern()
		p.expect(TOK_IN)
		iter := p.parseExpr()
		var filter ast.Expr
		if p.accept(TOK_IF) {
			filter = p.parseExpr()
		}
		p.skipNewlines()
		p.expect(TOK_RBRACE)
		return &ast.DictComprehension{
			Base:    ast.NewBase(report.Over(start, p.prev.Span)),
			KeyExpr: key,
			ValExpr: val,
			Target:  target,
			Iter:    iter,
			Filter:  filter,
		}
	}

	entries := []ast.DictEntry{{Key: key, Value: val}}
	for p.accept(TOK_COMMA) {
		p.skipNewlines()
		if p.at(TOK_RBRACE) {
			break
		}
		k := p.parseExpr()
		p.expect(TOK_COLON)
		v := p.parseExpr()
		entries = append(entries, ast.DictEntry{Key: k, Value: v})
		p.skipNewlines()
	}
	p.skipNewlines()
	p.expect(TOK_RBRACE)

	return &ast.DictLit{Base: ast.NewBase(report.Over(start, p.prev.Span)), Entries: entries}
}

// parseLambda parses `lambda p1, p2: body`.
func (p *Parser) parseLambda(start report.Span) ast.Expr {
	p.advance() // `lambda`

	var params []ast.Param
	for !p.at(TOK_COLON) {
		name := p.expect(TOK_IDENT).Value
		var def ast.Expr
		if p.accept(TOK_ASSIGN) {
			def = p.parseExpr()
		}
		params = append(params, ast.Param{Name: name, Default: def})
		if !p.accept(TOK_COMMA) {
			break
		}
	}
	p.expect(TOK_COLON)
	body := p.parseBlock()

	return &ast.Lambda{Base: ast.NewBase(report.Over(start, p.prev.Span)), Params: params, Body: body}
}

// parseMatch parses `match scrutinee: case pattern: body ...`.
func (p *Parser) parseMatch(start report.Span) ast.Expr {
	p.advance() // `match`
	scrutinee := p.parseExpr()
	p.expect(TOK_COLON)
	p.expect(TOK_INDENT)

	var cases []ast.MatchCase
	p.skipNewlines()
	for p.at(TOK_CASE) {
		p.advance()
		pat := p.parsePattern()
		p.expect(TOK_COLON)
		body := p.parseBlock()
		cases = append(cases, ast.MatchCase{Pattern: pat, Body: body})
		p.skipNewlines()
	}
	p.expect(TOK_DEDENT)

	return &ast.Match{Base: ast.NewBase(report.Over(start, p.prev.Span)), Scrutinee: scrutinee, Cases: cases}
}

// parseFString converts the lexer's pre-split FStringParts into an
// ast.FString, parsing each embedded-expression segment with a fresh
// sub-parser over its raw source (spec.md §4.B).
func (p *Parser) parseFString(start report.Span) ast.Expr {
	parts := p.tok.FStringParts
	p.advance()

	f := &ast.FString{Base: ast.NewBase(start)}
	for _, part := range parts {
		if !part.IsExpr {
			f.Pieces = append(f.Pieces, ast.FStringPiece{Text: part.Text})
			continue
		}
		sub := NewSubParser(p.file, part.Text, part.Span, p.sink)
		expr := sub.parseExpr()
		f.Pieces = append(f.Pieces, ast.FStringPiece{Expr: expr})
	}
	return f
}

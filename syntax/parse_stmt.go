package syntax

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
)

// parseStmt parses a single statement (spec.md §3): {Let, Assign,
// AugAssign (desugared here), Return, Break, Continue, Pass, If, While,
// For, Try, Raise, ExprStmt}.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.tok.Kind {
	case TOK_LET:
		return p.parseLetStmt()
	case TOK_RETURN:
		return p.parseReturnStmt()
	case TOK_BREAK:
		s := &ast.BreakStmt{Base: ast.NewBase(p.tok.Span)}
		p.advance()
		p.expectStmtEnd()
		return s
	case TOK_CONTINUE:
		s := &ast.ContinueStmt{Base: ast.NewBase(p.tok.Span)}
		p.advance()
		p.expectStmtEnd()
		return s
	case TOK_PASS:
		s := &ast.PassStmt{Base: ast.NewBase(p.tok.Span)}
		p.advance()
		p.expectStmtEnd()
		return s
	case TOK_IF:
		return p.parseIfStmt()
	case TOK_WHILE:
		return p.parseWhileStmt()
	case TOK_FOR:
		return p.parseForStmt()
	case TOK_TRY:
		return p.parseTryStmt()
	case TOK_RAISE:
		return p.parseRaiseStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

// expectStmtEnd consumes the NEWLINE terminating a single-line statement;
// EOF and DEDENT both work as a statement end (matching the teacher's
// "EOF can work as a newline" assert carve-out).
func (p *Parser) expectStmtEnd() {
	if p.atAny(TOK_NEWLINE) {
		p.advance()
	} else if !p.atAny(TOK_EOF, TOK_DEDENT) {
		p.reject(TOK_NEWLINE)
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `let`

	name := p.expect(TOK_IDENT).Value

	var typeExpr ast.TypeExpr
	if p.accept(TOK_COLON) {
		typeExpr = p.parseTypeExpr()
	}

	p.expect(TOK_ASSIGN)
	init := p.parseExpr()
	p.expectStmtEnd()

	return &ast.LetStmt{
		Base: ast.NewBase(report.Over(start, p.prev.Span)),
		Name: name,
		Type: typeExpr,
		Init: init,
	}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `return`

	var value ast.Expr
	if !p.atAny(TOK_NEWLINE, TOK_EOF, TOK_DEDENT) {
		value = p.parseExpr()
	}
	p.expectStmtEnd()

	return &ast.ReturnStmt{Base: ast.NewBase(report.Over(start, p.prev.Span)), Value: value}
}

func (p *Parser) parseRaiseStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `raise`

	var value ast.Expr
	if !p.atAny(TOK_NEWLINE, TOK_EOF, TOK_DEDENT) {
		value = p.parseExpr()
	}
	p.expectStmtEnd()

	return &ast.RaiseStmt{Base: ast.NewBase(report.Over(start, p.prev.Span)), Value: value}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `if`

	cond := p.parseExpr()
	p.expect(TOK_COLON)
	body := p.parseBlock()

	stmt := &ast.IfStmt{Body: body}

	for p.at(TOK_ELIF) {
		p.advance()
		elifCond := p.parseExpr()
		p.expect(TOK_COLON)
		elifBody := p.parseBlock()
		stmt.Elifs = append(stmt.Elifs, ast.ElifClause{Cond: elifCond, Body: elifBody})
	}

	if p.at(TOK_ELSE) {
		p.advance()
		p.expect(TOK_COLON)
		stmt.Else = p.parseBlock()
	}

	stmt.Cond = cond
	stmt.Base = ast.NewBase(report.Over(start, p.prev.Span))
	return stmt
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `while`

	cond := p.parseExpr()
	p.expect(TOK_COLON)
	body := p.parseBlock()

	return &ast.WhileStmt{Base: ast.NewBase(report.Over(start, p.prev.Span)), Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `for`

	target := p.parsePattern()
	p.expect(TOK_IN)
	iter := p.parseExpr()
	p.expect(TOK_COLON)
	body := p.parseBlock()

	return &ast.ForStmt{
		Base:   ast.NewBase(report.Over(start, p.prev.Span)),
		Target: target,
		Iter:   iter,
		Body:   body,
	}
}

func (p *Parser) parseTryStmt() ast.Stmt {
	start := p.tok.Span
	p.advance() // `try`
	p.expect(TOK_COLON)
	body := p.parseBlock()

	stmt := &ast.TryStmt{Body: body}

	for p.at(TOK_EXCEPT) {
		p.advance()
		var path []string
		var name string
		if !p.at(TOK_COLON) {
			path = append(path, p.expect(TOK_IDENT).Value)
			for p.accept(TOK_DOT) {
				path = append(path, p.expect(TOK_IDENT).Value)
			}
			if p.accept(TOK_AS) {
				name = p.expect(TOK_IDENT).Value
			}
		}
		p.expect(TOK_COLON)
		handlerBody := p.parseBlock()
		stmt.Handlers = append(stmt.Handlers, ast.ExceptHandler{Path: path, Name: name, Body: handlerBody})
	}

	if p.at(TOK_ELSE) {
		p.advance()
		p.expect(TOK_COLON)
		stmt.Else = p.parseBlock()
	}

	if p.at(TOK_FINALLY) {
		p.advance()
		p.expect(TOK_COLON)
		stmt.Finally = p.parseBlock()
	}

	stmt.Base = ast.NewBase(report.Over(start, p.prev.Span))
	return stmt
}

// parseExprOrAssignStmt parses an expression statement, an assignment, or
// a compound assignment, desugaring `x op= e` to `x = x op e` at parse
// time (spec.md §4.B).
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.tok.Span
	expr := p.parseExpr()

	if augOp, ok := augAssignOps[p.tok.Kind]; ok {
		p.advance()
		rhs := p.parseExpr()
		p.expectStmtEnd()

		desugared := &ast.Binary{
			Base: ast.NewBase(report.Over(start, p.prev.Span)),
			Op:   augOp,
			Lhs:  expr,
			Rhs:  rhs,
		}
		return &ast.AssignStmt{
			Base:   ast.NewBase(report.Over(start, p.prev.Span)),
			Target: expr,
			Value:  desugared,
		}
	}

	if p.at(TOK_ASSIGN) {
		p.advance()
		value := p.parseExpr()
		p.expectStmtEnd()
		return &ast.AssignStmt{Base: ast.NewBase(report.Over(start, p.prev.Span)), Target: expr, Value: value}
	}

	p.expectStmtEnd()
	return &ast.ExprStmt{Base: ast.NewBase(report.Over(start, p.prev.Span)), Value: expr}
}

var augAssignOps = map[Kind]ast.BinaryKind{
	TOK_PLUS_ASSIGN:    ast.BinAdd,
	TOK_MINUS_ASSIGN:   ast.BinSub,
	TOK_STAR_ASSIGN:    ast.BinMul,
	TOK_SLASH_ASSIGN:   ast.BinDiv,
	TOK_PERCENT_ASSIGN: ast.BinMod,
}

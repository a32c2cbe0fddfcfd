package syntax

import "github.com/otterlang/otterc/ast"

// parseBlock implements the header-colon rule (spec.md §4.B): the caller
// has just consumed a header ending in `:`. The body is either a single
// inline statement on the same line, or an INDENT ... DEDENT block.
func (p *Parser) parseBlock() []ast.Stmt {
	if p.accept(TOK_INDENT) {
		var stmts []ast.Stmt
		p.skipNewlines()
		for !p.at(TOK_DEDENT) && !p.at(TOK_EOF) {
			if s := p.parseStmt(); s != nil {
				stmts = append(stmts, s)
			} else {
				p.syncTo(TOK_NEWLINE, TOK_DEDENT, TOK_EOF)
			}
			p.skipNewlines()
		}
		p.expect(TOK_DEDENT)
		return stmts
	}

	stmt := p.parseStmt()
	if stmt == nil {
		return nil
	}
	return []ast.Stmt{stmt}
}

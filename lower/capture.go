package lower

import "github.com/otterlang/otterc/ast"

// captureFreeVars collects every bare name referenced anywhere inside a
// lambda's parameter defaults and body, over-approximating freely: a name
// later shadowed by an inner let or parameter is still reported, since the
// lowerer's own scope stack lets the inner binding take precedence when
// the lambda body is actually lowered. Only names that resolve to a
// current local slot are turned into captures by the caller.
func captureFreeVars(e *ast.Lambda) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)
	var walkPattern func(ast.Pattern)

	walkPattern = func(p ast.Pattern) {
		switch pp := p.(type) {
		case *ast.EnumVariantPattern:
			for _, sp := range pp.SubPats {
				walkPattern(sp)
			}
		case *ast.StructDestructurePattern:
			for _, name := range pp.FieldOrder {
				walkPattern(pp.Fields[name])
			}
		case *ast.ListPattern:
			for _, sp := range pp.Head {
				walkPattern(sp)
			}
			for _, sp := range pp.Tail {
				walkPattern(sp)
			}
		}
	}

	walkExpr = func(expr ast.Expr) {
		if expr == nil {
			return
		}
		switch e := expr.(type) {
		case *ast.Identifier:
			add(e.Name)
		case *ast.MemberAccess:
			walkExpr(e.Root)
		case *ast.Call:
			walkExpr(e.Callee)
			for _, a := range e.Args {
				walkExpr(a)
			}
			for _, a := range e.KwArgs {
				walkExpr(a)
			}
		case *ast.Index:
			walkExpr(e.Seq)
			walkExpr(e.Index)
		case *ast.Unary:
			walkExpr(e.Operand)
		case *ast.Binary:
			walkExpr(e.Lhs)
			walkExpr(e.Rhs)
		case *ast.Logical:
			walkExpr(e.Lhs)
			walkExpr(e.Rhs)
		case *ast.Is:
			walkExpr(e.Lhs)
			walkExpr(e.Rhs)
		case *ast.Range:
			walkExpr(e.Lo)
			walkExpr(e.Hi)
		case *ast.ListLit:
			for _, el := range e.Elems {
				walkExpr(el)
			}
		case *ast.DictLit:
			for _, en := range e.Entries {
				walkExpr(en.Key)
				walkExpr(en.Value)
			}
		case *ast.StructLit:
			for _, name := range e.FieldOrder {
				walkExpr(e.Fields[name])
			}
			walkExpr(e.Spread)
		case *ast.Lambda:
			for _, p := range e.Params {
				walkExpr(p.Default)
			}
			for _, s := range e.Body {
				walkStmt(s)
			}
		case *ast.Await:
			walkExpr(e.Operand)
		case *ast.Spawn:
			walkExpr(e.Operand)
		case *ast.Match:
			walkExpr(e.Scrutinee)
			for _, mc := range e.Cases {
				walkPattern(mc.Pattern)
				for _, s := range mc.Body {
					walkStmt(s)
				}
			}
		case *ast.FString:
			for _, piece := range e.Pieces {
				walkExpr(piece.Expr)
			}
		case *ast.ListComprehension:
			walkExpr(e.Iter)
			walkPattern(e.Target)
			walkExpr(e.Filter)
			walkExpr(e.Yield)
		case *ast.DictComprehension:
			walkExpr(e.Iter)
			walkPattern(e.Target)
			walkExpr(e.Filter)
			walkExpr(e.KeyExpr)
			walkExpr(e.ValExpr)
		}
	}

	walkStmt = func(stmt ast.Stmt) {
		switch s := stmt.(type) {
		case *ast.LetStmt:
			walkExpr(s.Init)
		case *ast.AssignStmt:
			walkExpr(s.Target)
			walkExpr(s.Value)
		case *ast.ReturnStmt:
			walkExpr(s.Value)
		case *ast.IfStmt:
			walkExpr(s.Cond)
			for _, st := range s.Body {
				walkStmt(st)
			}
			for _, el := range s.Elifs {
				walkExpr(el.Cond)
				for _, st := range el.Body {
					walkStmt(st)
				}
			}
			for _, st := range s.Else {
				walkStmt(st)
			}
		case *ast.WhileStmt:
			walkExpr(s.Cond)
			for _, st := range s.Body {
				walkStmt(st)
			}
		case *ast.ForStmt:
			walkExpr(s.Iter)
			walkPattern(s.Target)
			for _, st := range s.Body {
				walkStmt(st)
			}
		case *ast.TryStmt:
			for _, st := range s.Body {
				walkStmt(st)
			}
			for _, h := range s.Handlers {
				for _, st := range h.Body {
					walkStmt(st)
				}
			}
			for _, st := range s.Else {
				walkStmt(st)
			}
			for _, st := range s.Finally {
				walkStmt(st)
			}
		case *ast.RaiseStmt:
			walkExpr(s.Value)
		case *ast.ExprStmt:
			walkExpr(s.Value)
		}
	}

	for _, p := range e.Params {
		walkExpr(p.Default)
	}
	for _, s := range e.Body {
		walkStmt(s)
	}
	return out
}

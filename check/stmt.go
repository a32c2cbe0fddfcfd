package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/types"
)

// checkFunction checks one function or method body against its own
// (possibly generic) signature, setting up the enclosing-return-type and
// loop-depth bookkeeping bootstrap/walk/walker.go resets per definition.
func (c *Checker) checkFunction(mod *depm.Module, fn *ast.FunctionItem) {
	sig := c.funcSig(mod, fn)

	c.pushScope()
	defer c.popScope()

	if fn.Receiver != "" {
		if sym, ok := c.resolved.ModuleScopes[mod].Lookup(fn.Receiver); ok {
			if decl, ok := sym.Node.(*ast.StructItem); ok {
				c.defineLocal("self", c.structTemplate(mod, sym, decl))
			}
		}
	}
	for i, p := range fn.Params {
		if p.Default != nil {
			c.checkExpr(mod, p.Default)
			c.mustUnifyWiden(p.Default, sig.Params[i])
		}
		c.defineLocal(p.Name, sig.Params[i])
	}

	savedRet, savedLoop, savedInFunc := c.enclosingReturn, c.loopDepth, c.inFunction
	c.enclosingReturn = sig.Ret
	c.loopDepth = 0
	c.inFunction = true
	defer func() { c.enclosingReturn, c.loopDepth, c.inFunction = savedRet, savedLoop, savedInFunc }()

	bodyType, diverges := c.checkBlock(mod, fn.Body)
	if !diverges {
		c.mustUnify(fn.Span(), sig.Ret, bodyType)
	}
}

// checkBlock checks a statement sequence and returns the type the block
// yields when used as an expression (spec.md §4.E control-flow typing): the
// join of every branch's tail type, excluding branches that diverge.
// Callers push their own scope first; checkBlock does not push one of its
// own, since a block's statements need to see siblings bound earlier in
// the same block (a `let` followed by a use of it, say).
func (c *Checker) checkBlock(mod *depm.Module, body []ast.Stmt) (joined types.Type, diverges bool) {
	joined = types.Primitive(types.PrimUnit)
	for i, s := range body {
		t, div := c.checkStmt(mod, s)
		if i == len(body)-1 {
			joined = t
			diverges = div
		}
	}
	return joined, diverges
}

// checkScopedBlock pushes a fresh scope around body, the shape every
// nested if/while/for/try/match body needs.
func (c *Checker) checkScopedBlock(mod *depm.Module, body []ast.Stmt) (types.Type, bool) {
	c.pushScope()
	defer c.popScope()
	return c.checkBlock(mod, body)
}

// checkStmt checks one statement, returning the type it contributes if it
// ends in an expression-valued position (an ExprStmt or a control-flow
// statement used as the tail of a block) and whether it diverges
// (return/raise on every path).
func (c *Checker) checkStmt(mod *depm.Module, stmt ast.Stmt) (types.Type, bool) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		initType := c.checkExpr(mod, s.Init)
		declared := initType
		if s.Type != nil {
			declared = c.elaborateType(mod, s.Type, nil)
			c.mustUnifyWiden(s.Init, declared)
		}
		c.defineLocal(s.Name, declared)
		return types.Primitive(types.PrimUnit), false

	case *ast.AssignStmt:
		targetType := c.checkExpr(mod, s.Target)
		c.checkExpr(mod, s.Value)
		c.mustUnifyWiden(s.Value, targetType)
		return types.Primitive(types.PrimUnit), false

	case *ast.ReturnStmt:
		if s.Value == nil {
			c.mustUnify(s.Span(), c.enclosingReturn, types.Primitive(types.PrimUnit))
		} else {
			c.checkExpr(mod, s.Value)
			c.mustUnifyWiden(s.Value, c.enclosingReturn)
		}
		return types.AnyType, true

	case *ast.RaiseStmt:
		if s.Value != nil {
			c.checkExpr(mod, s.Value)
		}
		return types.AnyType, true

	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.errorf(s.Span(), report.CodeIllegalTopLevel, "break outside a loop")
		}
		return types.AnyType, true

	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			c.errorf(s.Span(), report.CodeIllegalTopLevel, "continue outside a loop")
		}
		return types.AnyType, true

	case *ast.PassStmt:
		return types.Primitive(types.PrimUnit), false

	case *ast.IfStmt:
		return c.checkIf(mod, s)

	case *ast.WhileStmt:
		c.checkExpr(mod, s.Cond)
		c.mustUnify(s.Cond.Span(), types.Primitive(types.PrimBool), c.typeOf(s.Cond))
		c.loopDepth++
		c.checkScopedBlock(mod, s.Body)
		c.loopDepth--
		return types.Primitive(types.PrimUnit), false

	case *ast.ForStmt:
		iterType := c.checkExpr(mod, s.Iter)
		elemType := c.forElemType(s.Iter.Span(), iterType)
		c.pushScope()
		c.bindPattern(mod, s.Target, elemType)
		c.loopDepth++
		c.checkBlock(mod, s.Body)
		c.loopDepth--
		c.popScope()
		return types.Primitive(types.PrimUnit), false

	case *ast.TryStmt:
		return c.checkTry(mod, s)

	case *ast.ExprStmt:
		t := c.checkExpr(mod, s.Value)
		return t, false

	default:
		return types.Primitive(types.PrimUnit), false
	}
}

func (c *Checker) checkIf(mod *depm.Module, s *ast.IfStmt) (types.Type, bool) {
	c.checkExpr(mod, s.Cond)
	c.mustUnify(s.Cond.Span(), types.Primitive(types.PrimBool), c.typeOf(s.Cond))

	bodyType, bodyDiverges := c.checkScopedBlock(mod, s.Body)
	allDiverge := bodyDiverges
	joined, anyLive := bodyType, !bodyDiverges

	for _, el := range s.Elifs {
		c.checkExpr(mod, el.Cond)
		c.mustUnify(el.Cond.Span(), types.Primitive(types.PrimBool), c.typeOf(el.Cond))
		t, div := c.checkScopedBlock(mod, el.Body)
		allDiverge = allDiverge && div
		if !div {
			joined, anyLive = c.joinBranch(joined, anyLive, t)
		}
	}

	if s.Else != nil {
		t, div := c.checkScopedBlock(mod, s.Else)
		allDiverge = allDiverge && div
		if !div {
			joined, anyLive = c.joinBranch(joined, anyLive, t)
		}
	} else {
		// No else: the if-as-expression can fall through yielding unit.
		allDiverge = false
		joined, anyLive = c.joinBranch(joined, anyLive, types.Primitive(types.PrimUnit))
	}

	if !anyLive {
		return types.AnyType, allDiverge
	}
	return joined, allDiverge
}

func (c *Checker) joinBranch(joined types.Type, anyLive bool, t types.Type) (types.Type, bool) {
	if !anyLive {
		return t, true
	}
	if !types.Unify(joined, t) {
		return types.AnyType, true
	}
	return joined, true
}

func (c *Checker) checkTry(mod *depm.Module, s *ast.TryStmt) (types.Type, bool) {
	joined, div := c.checkScopedBlock(mod, s.Body)
	anyLive := !div
	for _, h := range s.Handlers {
		c.pushScope()
		if h.Name != "" {
			c.defineLocal(h.Name, types.AnyType)
		}
		t, hdiv := c.checkBlock(mod, h.Body)
		c.popScope()
		if !hdiv {
			joined, anyLive = c.joinBranch(joined, anyLive, t)
		}
	}
	if s.Else != nil {
		t, ediv := c.checkScopedBlock(mod, s.Else)
		if !ediv {
			joined, anyLive = c.joinBranch(joined, anyLive, t)
		}
	}
	if s.Finally != nil {
		// finally contributes no type (spec.md §4.E).
		c.checkScopedBlock(mod, s.Finally)
	}
	if !anyLive {
		return types.AnyType, true
	}
	return joined, false
}

// forElemType requires iterType to be something the lowerer can drive an
// iterator-protocol loop over: a Range (typed List<int>, see expr.go's
// checkRange), a List<T>, or a string (iterated by character, yielding
// string).
func (c *Checker) forElemType(span report.Span, iterType types.Type) types.Type {
	switch t := types.InnerType(iterType).(type) {
	case *types.ListType:
		return t.Elem
	case types.Primitive:
		if t == types.PrimString {
			return types.Primitive(types.PrimString)
		}
	}
	if types.Equals(iterType, types.AnyType) {
		return types.AnyType
	}
	c.errorf(span, report.CodeTypeMismatch, "%s is not iterable", iterType.Repr())
	return types.AnyType
}

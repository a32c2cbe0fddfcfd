package lower

import (
	"strings"

	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ir"
	"github.com/otterlang/otterc/types"
)

// lowerBlock lowers a plain statement sequence with no tail value consumed
// (a while/for body, a non-tail branch of an if nested earlier in a
// block). Every statement, including a trailing if/match, is lowered for
// its side effects only.
func (l *Lowerer) lowerBlock(mod *depm.Module, body []ast.Stmt) {
	for _, s := range body {
		l.lowerStmt(mod, s)
	}
}

// lowerBlockTail lowers body the way a function or lambda body needs: every
// statement but the last runs for side effects, and the last becomes a Ret
// of retType.
func (l *Lowerer) lowerBlockTail(mod *depm.Module, body []ast.Stmt, retType types.Type) {
	l.lowerBlockFinish(mod, body, func(v ir.Value, t types.Type) {
		if !l.b.Block.Terminated() {
			l.b.Ret(l.coerce(v, t, retType))
		}
	})
}

// lowerBlockFinish lowers body the way any tail-typed block needs (a
// function body, a match arm, a try clause): every statement but the last
// runs for side effects, and the last is lowered in tail position so that
// a trailing `if`/`match` propagates its branches' values through finish
// instead of being discarded (spec.md §4.E's block-as-expression typing,
// which check.checkBlock mirrors by joining every branch's tail type).
// finish is invoked once per leaf branch rather than through a merged phi,
// duplicating the tail logic at some code-size cost to avoid a general
// SSA value-merge primitive the block IR has no other use for.
func (l *Lowerer) lowerBlockFinish(mod *depm.Module, body []ast.Stmt, finish func(ir.Value, types.Type)) {
	if len(body) == 0 {
		finish(ir.ConstUnit(), unitType)
		return
	}
	for _, s := range body[:len(body)-1] {
		l.lowerStmt(mod, s)
	}
	l.lowerTailStmt(mod, body[len(body)-1], finish)
}

func (l *Lowerer) lowerTailStmt(mod *depm.Module, stmt ast.Stmt, finish func(ir.Value, types.Type)) {
	switch s := stmt.(type) {
	case *ast.IfStmt:
		l.lowerTailIf(mod, s, finish)
	case *ast.ExprStmt:
		if m, ok := s.Value.(*ast.Match); ok {
			l.lowerTailMatch(mod, m, finish)
			return
		}
		v := l.lowerExpr(mod, s.Value)
		if !l.b.Block.Terminated() {
			finish(v, l.typeOf(s.Value))
		}
	default:
		l.lowerStmt(mod, stmt)
		if !l.b.Block.Terminated() {
			finish(ir.ConstUnit(), unitType)
		}
	}
}

func (l *Lowerer) lowerTailIf(mod *depm.Module, s *ast.IfStmt, finish func(ir.Value, types.Type)) {
	cond := l.lowerExpr(mod, s.Cond)
	thenB := l.fn.AppendBlock("then")
	elseB := l.fn.AppendBlock("else")
	l.b.CondBr(cond, thenB, elseB)

	l.b.Position(thenB)
	l.pushScope()
	l.lowerBlockFinish(mod, s.Body, finish)
	l.popScope()

	l.b.Position(elseB)
	l.lowerTailElifChain(mod, s.Elifs, s.Else, finish)
}

func (l *Lowerer) lowerTailElifChain(mod *depm.Module, elifs []ast.ElifClause, elseBody []ast.Stmt, finish func(ir.Value, types.Type)) {
	if len(elifs) == 0 {
		l.pushScope()
		l.lowerBlockFinish(mod, elseBody, finish)
		l.popScope()
		return
	}
	el := elifs[0]
	cond := l.lowerExpr(mod, el.Cond)
	thenB := l.fn.AppendBlock("elif")
	elseB := l.fn.AppendBlock("else")
	l.b.CondBr(cond, thenB, elseB)

	l.b.Position(thenB)
	l.pushScope()
	l.lowerBlockFinish(mod, el.Body, finish)
	l.popScope()

	l.b.Position(elseB)
	l.lowerTailElifChain(mod, elifs[1:], elseBody, finish)
}

func (l *Lowerer) lowerTailMatch(mod *depm.Module, m *ast.Match, finish func(ir.Value, types.Type)) {
	scrut := l.lowerExpr(mod, m.Scrutinee)
	scrutT := l.typeOf(m.Scrutinee)
	l.lowerMatchArms(mod, scrut, scrutT, m.Cases, func(body []ast.Stmt) {
		l.lowerBlockFinish(mod, body, finish)
	})
}

// lowerStmt lowers one statement for its side effects, discarding any tail
// value.
func (l *Lowerer) lowerStmt(mod *depm.Module, stmt ast.Stmt) {
	if l.b.Block.Terminated() {
		return
	}
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v := l.lowerExpr(mod, s.Init)
		t := l.typeOf(s.Init)
		slot := l.b.Alloca(t)
		l.b.Store(slot, l.widenIfMarked(s.Init, v))
		l.defineLocal(s.Name, slot)

	case *ast.AssignStmt:
		v := l.lowerExpr(mod, s.Value)
		v = l.widenIfMarked(s.Value, v)
		l.lowerAssignTo(mod, s.Target, v)

	case *ast.ReturnStmt:
		l.lowerReturn(mod, s)

	case *ast.RaiseStmt:
		l.runFinallyChain(mod)
		if s.Value != nil {
			v := l.lowerExpr(mod, s.Value)
			l.raise(v)
		} else if len(l.caughtExceptions) > 0 {
			l.raise(l.caughtExceptions[len(l.caughtExceptions)-1])
		} else {
			l.raise(ir.ConstNull(types.AnyType))
		}
		if len(l.landingPads) > 0 {
			l.b.Br(l.landingPads[len(l.landingPads)-1])
		} else {
			l.b.Unreachable()
		}

	case *ast.BreakStmt:
		l.runFinallyChain(mod)
		if len(l.loopBreak) > 0 {
			l.b.Br(l.loopBreak[len(l.loopBreak)-1])
		}

	case *ast.ContinueStmt:
		l.runFinallyChain(mod)
		if len(l.loopContinue) > 0 {
			l.b.Br(l.loopContinue[len(l.loopContinue)-1])
		}

	case *ast.PassStmt:
		// no-op

	case *ast.IfStmt:
		l.lowerIf(mod, s)

	case *ast.WhileStmt:
		l.lowerWhile(mod, s)

	case *ast.ForStmt:
		l.lowerFor(mod, s)

	case *ast.TryStmt:
		l.lowerTry(mod, s)

	case *ast.ExprStmt:
		l.lowerExpr(mod, s.Value)
	}
}

// lowerAssignTo stores v through target's address: a local's stack slot, a
// struct field, or a list/dict element via the runtime's mutation
// intrinsics.
func (l *Lowerer) lowerAssignTo(mod *depm.Module, target ast.Expr, v ir.Value) {
	switch t := target.(type) {
	case *ast.Identifier:
		if slot, ok := l.lookupLocal(t.Name); ok {
			l.b.Store(slot, v)
			return
		}
		if sym := l.symbolOf(t); sym != nil {
			l.b.Store(&ir.GlobalRef{Name: qualify(mod, sym.Name), Typ: v.Type()}, v)
		}
	case *ast.MemberAccess:
		if field, ok := l.checked.Fields[t.ID()]; ok {
			base := l.lowerExpr(mod, t.Root)
			addr := l.b.FieldAddr(base, field.Name, field.Type)
			l.b.Store(addr, v)
			return
		}
	case *ast.Index:
		seq := l.lowerExpr(mod, t.Seq)
		idx := l.lowerExpr(mod, t.Index)
		switch it := types.InnerType(l.typeOf(t.Seq)).(type) {
		case *types.ListType:
			l.callExtern("otter_list_set", []types.Type{ptrType, intType, it.Elem}, unitType, seq, idx, v)
		case *types.DictType:
			l.dictSet(seq, idx, v)
		}
	}
}

func (l *Lowerer) lowerReturn(mod *depm.Module, s *ast.ReturnStmt) {
	l.runFinallyChain(mod)
	if s.Value == nil {
		l.b.Ret(ir.ConstUnit())
		return
	}
	v := l.lowerExpr(mod, s.Value)
	l.b.Ret(l.widenIfMarked(s.Value, v))
}

// runFinallyChain re-lowers every enclosing try statement's finally body,
// innermost first, so break/continue/return/raise each guarantee the
// cleanup block runs on every exit path (spec.md §5). The finally body is
// lowered again at each exit site rather than branched to as a shared
// landing pad, since it may itself contain a `return` that needs this
// exit's own retType in scope.
func (l *Lowerer) runFinallyChain(mod *depm.Module) {
	for i := len(l.finallyStack) - 1; i >= 0; i-- {
		l.pushScope()
		l.lowerBlock(mod, l.finallyStack[i])
		l.popScope()
	}
}

func (l *Lowerer) lowerIf(mod *depm.Module, s *ast.IfStmt) {
	cond := l.lowerExpr(mod, s.Cond)
	thenB := l.fn.AppendBlock("then")
	elseB := l.fn.AppendBlock("else")
	mergeB := l.fn.AppendBlock("merge")
	l.b.CondBr(cond, thenB, elseB)

	l.b.Position(thenB)
	l.pushScope()
	l.lowerBlock(mod, s.Body)
	l.popScope()
	l.b.Br(mergeB)

	l.b.Position(elseB)
	l.lowerElifChain(mod, s.Elifs, s.Else, mergeB)

	l.b.Position(mergeB)
}

func (l *Lowerer) lowerElifChain(mod *depm.Module, elifs []ast.ElifClause, elseBody []ast.Stmt, mergeB *ir.Block) {
	if len(elifs) == 0 {
		l.pushScope()
		l.lowerBlock(mod, elseBody)
		l.popScope()
		l.b.Br(mergeB)
		return
	}
	el := elifs[0]
	cond := l.lowerExpr(mod, el.Cond)
	thenB := l.fn.AppendBlock("elif")
	elseB := l.fn.AppendBlock("else")
	l.b.CondBr(cond, thenB, elseB)

	l.b.Position(thenB)
	l.pushScope()
	l.lowerBlock(mod, el.Body)
	l.popScope()
	l.b.Br(mergeB)

	l.b.Position(elseB)
	l.lowerElifChain(mod, elifs[1:], elseBody, mergeB)
}

func (l *Lowerer) lowerWhile(mod *depm.Module, s *ast.WhileStmt) {
	headerB := l.fn.AppendBlock("while_head")
	bodyB := l.fn.AppendBlock("while_body")
	exitB := l.fn.AppendBlock("while_exit")

	l.b.Br(headerB)
	l.b.Position(headerB)
	cond := l.lowerExpr(mod, s.Cond)
	l.b.CondBr(cond, bodyB, exitB)

	l.b.Position(bodyB)
	l.loopBreak = append(l.loopBreak, exitB)
	l.loopContinue = append(l.loopContinue, headerB)
	l.pushScope()
	l.lowerBlock(mod, s.Body)
	l.popScope()
	l.loopBreak = l.loopBreak[:len(l.loopBreak)-1]
	l.loopContinue = l.loopContinue[:len(l.loopContinue)-1]
	l.b.Br(headerB)

	l.b.Position(exitB)
}

// lowerFor lowers `for x in iter: body`. A Range iterable (checked as
// List<int> by checkRange but still syntactically an ast.Range at this
// node) becomes an induction-variable counting loop per spec.md §4.F;
// anything else drives an index-based loop against the runtime's
// list/string length+get intrinsics, standing in for the general
// iterator-protocol intrinsic spec.md §4.F describes, since
// check.forElemType only ever admits List<T> or string as non-Range
// iterables.
func (l *Lowerer) lowerFor(mod *depm.Module, s *ast.ForStmt) {
	if rng, ok := s.Iter.(*ast.Range); ok {
		l.lowerForRange(mod, s, rng)
		return
	}
	l.lowerForIndexed(mod, s)
}

func (l *Lowerer) lowerForRange(mod *depm.Module, s *ast.ForStmt, rng *ast.Range) {
	lo := l.lowerExpr(mod, rng.Lo)
	hi := l.lowerExpr(mod, rng.Hi)
	idxSlot := l.b.Alloca(intType)
	l.b.Store(idxSlot, lo)

	headerB := l.fn.AppendBlock("for_head")
	bodyB := l.fn.AppendBlock("for_body")
	stepB := l.fn.AppendBlock("for_step")
	exitB := l.fn.AppendBlock("for_exit")

	l.b.Br(headerB)
	l.b.Position(headerB)
	cur := l.b.Load(idxSlot, intType)
	cond := l.b.Cmp(ir.OpCmpLt, cur, hi)
	l.b.CondBr(cond, bodyB, exitB)

	l.b.Position(bodyB)
	l.pushScope()
	l.defineLocal(targetName(s.Target), idxSlot)
	l.loopBreak = append(l.loopBreak, exitB)
	l.loopContinue = append(l.loopContinue, stepB)
	l.lowerBlock(mod, s.Body)
	l.loopBreak = l.loopBreak[:len(l.loopBreak)-1]
	l.loopContinue = l.loopContinue[:len(l.loopContinue)-1]
	l.popScope()
	l.b.Br(stepB)

	l.b.Position(stepB)
	cur2 := l.b.Load(idxSlot, intType)
	next := l.b.Arith(ir.OpAdd, cur2, ir.ConstInt(1), intType)
	l.b.Store(idxSlot, next)
	l.b.Br(headerB)

	l.b.Position(exitB)
}

func (l *Lowerer) lowerForIndexed(mod *depm.Module, s *ast.ForStmt) {
	seq := l.lowerExpr(mod, s.Iter)
	seqT := l.typeOf(s.Iter)
	elemT := types.Type(stringType)
	isString := true
	if lt, ok := types.InnerType(seqT).(*types.ListType); ok {
		elemT = lt.Elem
		isString = false
	}

	length := l.listLen(seq)
	if isString {
		length = l.callExtern("otter_string_len", []types.Type{stringType}, intType, seq)
	}

	idxSlot := l.b.Alloca(intType)
	l.b.Store(idxSlot, ir.ConstInt(0))

	headerB := l.fn.AppendBlock("for_head")
	bodyB := l.fn.AppendBlock("for_body")
	stepB := l.fn.AppendBlock("for_step")
	exitB := l.fn.AppendBlock("for_exit")

	l.b.Br(headerB)
	l.b.Position(headerB)
	cur := l.b.Load(idxSlot, intType)
	cond := l.b.Cmp(ir.OpCmpLt, cur, length)
	l.b.CondBr(cond, bodyB, exitB)

	l.b.Position(bodyB)
	var elem *ir.Reg
	if isString {
		elem = l.callExtern("otter_string_char_at", []types.Type{stringType, intType}, stringType, seq, cur)
	} else {
		elem = l.listGet(seq, cur, elemT)
	}
	l.pushScope()
	l.bindPattern(mod, s.Target, elem, elemT)
	l.loopBreak = append(l.loopBreak, exitB)
	l.loopContinue = append(l.loopContinue, stepB)
	l.lowerBlock(mod, s.Body)
	l.loopBreak = l.loopBreak[:len(l.loopBreak)-1]
	l.loopContinue = l.loopContinue[:len(l.loopContinue)-1]
	l.popScope()
	l.b.Br(stepB)

	l.b.Position(stepB)
	cur2 := l.b.Load(idxSlot, intType)
	next := l.b.Arith(ir.OpAdd, cur2, ir.ConstInt(1), intType)
	l.b.Store(idxSlot, next)
	l.b.Br(headerB)

	l.b.Position(exitB)
}

func targetName(p ast.Pattern) string {
	if bp, ok := p.(*ast.BindingPattern); ok {
		return bp.Name
	}
	return "_"
}

// lowerTry establishes a landing pad block for s's handlers: a raise
// statement lowered inside the body of this same function branches
// directly to it instead of unwinding, since this IR has no
// invoke/landingpad terminator. A raise inside a called function is not
// routed to this pad: with no pad of its own it ends in Unreachable. The pad loads the pending exception
// (otter_raise's counterpart otter_current_exception) and dispatches to
// the first matching handler, re-raising to the next outer pad if none
// match. finally is pushed onto finallyStack for the duration of
// body+handlers so every exit path runs it, then lowered again directly
// on the normal fall-through edge.
func (l *Lowerer) lowerTry(mod *depm.Module, s *ast.TryStmt) {
	if s.Finally != nil {
		l.finallyStack = append(l.finallyStack, s.Finally)
	}

	bodyB := l.fn.AppendBlock("try_body")
	mergeB := l.fn.AppendBlock("try_merge")

	var checkB *ir.Block
	if len(s.Handlers) > 0 {
		checkB = l.fn.AppendBlock("try_except")
		l.landingPads = append(l.landingPads, checkB)
	}

	l.b.Br(bodyB)
	l.b.Position(bodyB)
	l.pushScope()
	l.lowerBlock(mod, s.Body)
	l.popScope()
	if !l.b.Block.Terminated() {
		l.b.Br(mergeB)
	}

	if checkB != nil {
		l.landingPads = l.landingPads[:len(l.landingPads)-1]
		l.b.Position(checkB)
		pending := l.callExtern("otter_current_exception", nil, types.AnyType)
		l.lowerHandlerChain(mod, s.Handlers, pending, mergeB)
	}

	if s.Else != nil {
		elseB := l.fn.AppendBlock("try_else")
		l.b.Position(elseB)
		l.pushScope()
		l.lowerBlock(mod, s.Else)
		l.popScope()
		if !l.b.Block.Terminated() {
			l.b.Br(mergeB)
		}
	}

	if s.Finally != nil {
		l.finallyStack = l.finallyStack[:len(l.finallyStack)-1]
	}

	l.b.Position(mergeB)
	if s.Finally != nil {
		l.pushScope()
		l.lowerBlock(mod, s.Finally)
		l.popScope()
	}
}

func (l *Lowerer) lowerHandlerChain(mod *depm.Module, handlers []ast.ExceptHandler, pending ir.Value, mergeB *ir.Block) {
	if len(handlers) == 0 {
		l.raise(pending)
		if len(l.landingPads) > 0 {
			l.b.Br(l.landingPads[len(l.landingPads)-1])
		} else {
			l.b.Unreachable()
		}
		return
	}
	h := handlers[0]
	if len(h.Path) == 0 {
		l.lowerHandlerBody(mod, h, pending, mergeB)
		return
	}
	nextB := l.fn.AppendBlock("except_next")
	handleB := l.fn.AppendBlock("except_handle")
	matched := l.callExtern("otter_exception_matches", []types.Type{types.AnyType, stringType}, boolType, pending, ir.ConstString(strings.Join(h.Path, ".")))
	l.b.CondBr(matched, handleB, nextB)

	l.b.Position(handleB)
	l.lowerHandlerBody(mod, h, pending, mergeB)

	l.b.Position(nextB)
	l.lowerHandlerChain(mod, handlers[1:], pending, mergeB)
}

func (l *Lowerer) lowerHandlerBody(mod *depm.Module, h ast.ExceptHandler, pending ir.Value, mergeB *ir.Block) {
	l.pushScope()
	if h.Name != "" {
		slot := l.b.Alloca(types.AnyType)
		l.b.Store(slot, pending)
		l.defineLocal(h.Name, slot)
	}
	l.caughtExceptions = append(l.caughtExceptions, pending)
	l.lowerBlock(mod, h.Body)
	l.caughtExceptions = l.caughtExceptions[:len(l.caughtExceptions)-1]
	l.popScope()
	if !l.b.Block.Terminated() {
		l.b.Br(mergeB)
	}
}

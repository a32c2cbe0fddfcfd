package lower

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ir"
	"github.com/otterlang/otterc/types"
)

// bindPattern binds every capture pat introduces against an
// already-known-matching value, with no test emitted: the caller (a
// for-loop target, a comprehension target) has already established the
// scrutinee's shape some other way. Mirrors check.bindPattern's dispatch,
// minus the type checks it performs alongside binding.
func (l *Lowerer) bindPattern(mod *depm.Module, pat ast.Pattern, value ir.Value, valueType types.Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
	case *ast.BindingPattern:
		slot := l.b.Alloca(valueType)
		l.b.Store(slot, value)
		l.defineLocal(p.Name, slot)
	case *ast.LiteralPattern:
	case *ast.EnumVariantPattern:
		et, ok := types.InnerType(valueType).(*types.EnumType)
		if !ok {
			return
		}
		idx, variant, ok := enumVariantIndex(et, p.Path[len(p.Path)-1])
		if !ok {
			return
		}
		for i, sp := range p.SubPats {
			payload := types.Type(types.AnyType)
			if i < len(variant.Payload) {
				payload = variant.Payload[i]
			}
			addr := l.b.EnumPayloadAddr(value, idx, i, payload)
			elem := l.b.Load(addr, payload)
			l.bindPattern(mod, sp, elem, payload)
		}
	case *ast.StructDestructurePattern:
		st, ok := types.InnerType(valueType).(*types.StructType)
		if !ok {
			return
		}
		for _, name := range p.FieldOrder {
			field, ok := st.FieldByName(name)
			if !ok {
				continue
			}
			addr := l.b.FieldAddr(value, field.Name, field.Type)
			elem := l.b.Load(addr, field.Type)
			l.bindPattern(mod, p.Fields[name], elem, field.Type)
		}
	case *ast.ListPattern:
		elem := types.Type(types.AnyType)
		if lt, ok := types.InnerType(valueType).(*types.ListType); ok {
			elem = lt.Elem
		}
		for i, sp := range p.Head {
			v := l.listGet(value, ir.ConstInt(int64(i)), elem)
			l.bindPattern(mod, sp, v, elem)
		}
		if p.Rest != nil {
			rest := l.callExtern("otter_list_slice", []types.Type{ptrType, intType, intType}, ptrType,
				value, ir.ConstInt(int64(len(p.Head))), ir.ConstInt(int64(len(p.Tail))))
			slot := l.b.Alloca(&types.ListType{Elem: elem})
			l.b.Store(slot, rest)
			l.defineLocal(p.Rest.Name, slot)
		}
		for i, sp := range p.Tail {
			length := l.listLen(value)
			idx := l.b.Arith(ir.OpSub, length, ir.ConstInt(int64(len(p.Tail)-i)), intType)
			v := l.listGet(value, idx, elem)
			l.bindPattern(mod, sp, v, elem)
		}
	}
}

func enumVariantIndex(et *types.EnumType, name string) (int, types.EnumVariant, bool) {
	for i, v := range et.Variants {
		if v.Name == name {
			return i, v, true
		}
	}
	return 0, types.EnumVariant{}, false
}

// testPattern emits whatever comparisons pat requires against value,
// binding every capture it introduces along the success path, and calls
// cont with the builder positioned in the block where pat is known to
// match. Any test failure branches straight to onFail. Conjuncts are
// compiled as a chain of blocks rather than a boolean expression since
// this IR has no logical-and op over bool values; cont is the
// continuation for "everything tested so far matched".
func (l *Lowerer) testPattern(mod *depm.Module, pat ast.Pattern, value ir.Value, valueType types.Type, onFail *ir.Block, cont func()) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		cont()

	case *ast.BindingPattern:
		slot := l.b.Alloca(valueType)
		l.b.Store(slot, value)
		l.defineLocal(p.Name, slot)
		cont()

	case *ast.LiteralPattern:
		lv := l.lowerLiteralConst(p.Lit)
		eq := l.b.Cmp(ir.OpCmpEq, value, lv)
		okB := l.fn.AppendBlock("pat_ok")
		l.b.CondBr(eq, okB, onFail)
		l.b.Position(okB)
		cont()

	case *ast.EnumVariantPattern:
		et, ok := types.InnerType(valueType).(*types.EnumType)
		if !ok {
			cont()
			return
		}
		idx, variant, ok := enumVariantIndex(et, p.Path[len(p.Path)-1])
		if !ok {
			l.b.Br(onFail)
			return
		}
		tag := l.b.EnumTag(value)
		eq := l.b.Cmp(ir.OpCmpEq, tag, ir.ConstInt(int64(idx)))
		okB := l.fn.AppendBlock("pat_ok")
		l.b.CondBr(eq, okB, onFail)
		l.b.Position(okB)

		items := make([]patItem, len(p.SubPats))
		for i, sp := range p.SubPats {
			payload := types.Type(types.AnyType)
			if i < len(variant.Payload) {
				payload = variant.Payload[i]
			}
			addr := l.b.EnumPayloadAddr(value, idx, i, payload)
			elem := l.b.Load(addr, payload)
			items[i] = patItem{pat: sp, value: elem, typ: payload}
		}
		l.testSeq(mod, items, onFail, cont)

	case *ast.StructDestructurePattern:
		st, ok := types.InnerType(valueType).(*types.StructType)
		if !ok {
			cont()
			return
		}
		items := make([]patItem, 0, len(p.FieldOrder))
		for _, name := range p.FieldOrder {
			field, ok := st.FieldByName(name)
			if !ok {
				continue
			}
			addr := l.b.FieldAddr(value, field.Name, field.Type)
			elem := l.b.Load(addr, field.Type)
			items = append(items, patItem{pat: p.Fields[name], value: elem, typ: field.Type})
		}
		l.testSeq(mod, items, onFail, cont)

	case *ast.ListPattern:
		elem := types.Type(types.AnyType)
		if lt, ok := types.InnerType(valueType).(*types.ListType); ok {
			elem = lt.Elem
		}
		length := l.listLen(value)
		minLen := int64(len(p.Head) + len(p.Tail))
		var lenOK *ir.Reg
		if p.Rest != nil {
			lenOK = l.b.Cmp(ir.OpCmpGe, length, ir.ConstInt(minLen))
		} else {
			lenOK = l.b.Cmp(ir.OpCmpEq, length, ir.ConstInt(minLen))
		}
		okB := l.fn.AppendBlock("pat_ok")
		l.b.CondBr(lenOK, okB, onFail)
		l.b.Position(okB)

		items := make([]patItem, 0, len(p.Head)+len(p.Tail))
		for i, sp := range p.Head {
			v := l.listGet(value, ir.ConstInt(int64(i)), elem)
			items = append(items, patItem{pat: sp, value: v, typ: elem})
		}
		for i, sp := range p.Tail {
			idx := l.b.Arith(ir.OpSub, length, ir.ConstInt(int64(len(p.Tail)-i)), intType)
			v := l.listGet(value, idx, elem)
			items = append(items, patItem{pat: sp, value: v, typ: elem})
		}
		l.testSeq(mod, items, onFail, func() {
			if p.Rest != nil {
				rest := l.callExtern("otter_list_slice", []types.Type{ptrType, intType, intType}, ptrType,
					value, ir.ConstInt(int64(len(p.Head))), ir.ConstInt(int64(len(p.Tail))))
				slot := l.b.Alloca(&types.ListType{Elem: elem})
				l.b.Store(slot, rest)
				l.defineLocal(p.Rest.Name, slot)
			}
			cont()
		})
	}
}

type patItem struct {
	pat   ast.Pattern
	value ir.Value
	typ   types.Type
}

func (l *Lowerer) testSeq(mod *depm.Module, items []patItem, onFail *ir.Block, cont func()) {
	if len(items) == 0 {
		cont()
		return
	}
	head := items[0]
	l.testPattern(mod, head.pat, head.value, head.typ, onFail, func() {
		l.testSeq(mod, items[1:], onFail, cont)
	})
}

// lowerMatchArms compiles a match's arms as a sequential chain of pattern
// tests (mirroring check.checkMatch's own sequential arm walk rather than
// a merged decision tree): each arm's test failure falls through to the
// next arm, and falling off the end raises a match-failure exception,
// standing in for the runtime check a non-exhaustive match needs even
// though the checker already warned about it at compile time.
// lowerBody receives the matched arm's statement body with the builder
// positioned inside the fresh per-arm scope the caller pushed.
func (l *Lowerer) lowerMatchArms(mod *depm.Module, scrut ir.Value, scrutT types.Type, cases []ast.MatchCase, lowerBody func([]ast.Stmt)) {
	l.lowerMatchArmsFrom(mod, scrut, scrutT, cases, lowerBody)
}

func (l *Lowerer) lowerMatchArmsFrom(mod *depm.Module, scrut ir.Value, scrutT types.Type, cases []ast.MatchCase, lowerBody func([]ast.Stmt)) {
	if len(cases) == 0 {
		l.raise(l.callExtern("otter_match_error", nil, types.AnyType))
		if len(l.landingPads) > 0 {
			l.b.Br(l.landingPads[len(l.landingPads)-1])
		} else {
			l.b.Unreachable()
		}
		return
	}
	mc := cases[0]
	nextB := l.fn.AppendBlock("match_next")
	l.pushScope()
	l.testPattern(mod, mc.Pattern, scrut, scrutT, nextB, func() {
		lowerBody(mc.Body)
	})
	l.popScope()
	l.b.Position(nextB)
	l.lowerMatchArmsFrom(mod, scrut, scrutT, cases[1:], lowerBody)
}

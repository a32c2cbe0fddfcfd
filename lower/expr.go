package lower

import (
	"strconv"

	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ir"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// lowerExpr dispatches over every expression kind, mirroring
// check.checkExpr's own switch node-for-node.
func (l *Lowerer) lowerExpr(mod *depm.Module, e ast.Expr) ir.Value {
	switch ex := e.(type) {
	case *ast.Literal:
		return l.lowerLiteralConst(ex)
	case *ast.Identifier:
		return l.lowerIdentifier(mod, ex)
	case *ast.MemberAccess:
		return l.lowerMemberAccess(mod, ex)
	case *ast.Call:
		return l.lowerCall(mod, ex)
	case *ast.Index:
		return l.lowerIndex(mod, ex)
	case *ast.Unary:
		return l.lowerUnary(mod, ex)
	case *ast.Binary:
		return l.lowerBinary(mod, ex)
	case *ast.Logical:
		return l.lowerLogical(mod, ex)
	case *ast.Is:
		return l.lowerIs(mod, ex)
	case *ast.Range:
		return l.lowerRange(mod, ex)
	case *ast.ListLit:
		return l.lowerListLit(mod, ex)
	case *ast.DictLit:
		return l.lowerDictLit(mod, ex)
	case *ast.StructLit:
		return l.lowerStructLit(mod, ex)
	case *ast.Lambda:
		return l.lowerLambda(mod, ex)
	case *ast.Await:
		return l.lowerAwait(mod, ex)
	case *ast.Spawn:
		return l.lowerSpawn(mod, ex)
	case *ast.Match:
		return l.lowerMatch(mod, ex)
	case *ast.FString:
		return l.lowerFString(mod, ex)
	case *ast.ListComprehension:
		return l.lowerListComprehension(mod, ex)
	case *ast.DictComprehension:
		return l.lowerDictComprehension(mod, ex)
	default:
		return ir.ConstNull(types.AnyType)
	}
}

// lowerLiteralConst parses a literal's text into a constant value.
// Literal.Value is the lexer's token value (numbers with `_` separators
// removed, string contents without quotes and with escapes decoded), so
// int/float go through strconv, strings are used as-is, and bool compares
// against the literal string "true".
func (l *Lowerer) lowerLiteralConst(lit *ast.Literal) *ir.Const {
	switch lit.Kind {
	case ast.LitInt:
		v, _ := strconv.ParseInt(lit.Value, 10, 64)
		return ir.ConstInt(v)
	case ast.LitFloat:
		v, _ := strconv.ParseFloat(lit.Value, 64)
		return ir.ConstFloat(v)
	case ast.LitString:
		return ir.ConstString(lit.Value)
	case ast.LitBool:
		return ir.ConstBool(lit.Value == "true")
	default: // LitNone
		return ir.ConstNull(types.AnyType)
	}
}

// widenIfMarked applies the int->float widen the checker recorded for
// expr (spec.md §4.E), if any.
func (l *Lowerer) widenIfMarked(expr ast.Expr, v ir.Value) ir.Value {
	if l.checked.Widen[expr.ID()] {
		return l.b.IntToFloat(v)
	}
	return v
}

// coerce widens v from `from` to `to` when the two types structurally
// call for an int->float cast, for call sites (struct-field defaults, the
// module-init store) the checker never ran mustUnifyWiden against and so
// never left a Widen marker for.
func (l *Lowerer) coerce(v ir.Value, from, to types.Type) ir.Value {
	if needed, ok := types.Widen(from, to); ok && needed {
		return l.b.IntToFloat(v)
	}
	return v
}

// -----------------------------------------------------------------------------

// isBuiltinValueName reports whether name is one of the universe-scope
// builtins that also has a sensible value-type (resolve.builtinNames,
// check.builtinValueType); print and tuple are call-only.
func isBuiltinValueName(name string) bool {
	switch name {
	case "str", "int", "float", "bool", "len":
		return true
	default:
		return false
	}
}

// builtinClosureValue wraps a builtin used as a bare value (passed as a
// callback, stored in a variable) into a closure over its extern symbol,
// the rare path checkIdentifier's builtinValueType handles on the typing
// side.
func (l *Lowerer) builtinClosureValue(name string, ft *types.FuncType) ir.Value {
	extern := "otter_to_" + name
	if name == "len" {
		extern = "otter_builtin_len"
	}
	l.extern(extern, ft.Params, ft.Ret)
	fn := &ir.FuncRef{Name: extern, Typ: ft}
	return l.b.MakeClosure(fn, ir.ConstNull(types.AnyType), ft)
}

// lowerIdentifier mirrors checkIdentifier's exact lookup order: a current
// local slot first, then the rare "builtin used as a value" case, then
// the symbol resolve.Bind attached to this node.
func (l *Lowerer) lowerIdentifier(mod *depm.Module, e *ast.Identifier) ir.Value {
	if slot, ok := l.lookupLocal(e.Name); ok {
		return l.b.Load(slot, slot.Typ)
	}
	if isBuiltinValueName(e.Name) {
		if ft, ok := types.InnerType(l.typeOf(e)).(*types.FuncType); ok {
			return l.builtinClosureValue(e.Name, ft)
		}
	}
	sym := l.symbolOf(e)
	if sym == nil {
		return ir.ConstNull(types.AnyType)
	}
	return l.valueOfSymbol(mod, sym, e)
}

// valueOfSymbol loads a resolved value symbol: a free function/method
// becomes a closure over its qualified name (so it can be passed around
// like any other value; direct-call sites bypass this and emit a plain
// Call instead), a module-scope let loads its global, and an FFI binding
// becomes a closure over the oracle-resolved extern symbol.
func (l *Lowerer) valueOfSymbol(mod *depm.Module, sym *resolve.Symbol, e ast.Expr) ir.Value {
	switch decl := sym.Node.(type) {
	case *ast.FunctionItem:
		ft, _ := types.InnerType(l.typeOf(e)).(*types.FuncType)
		if ft == nil {
			ft = &types.FuncType{Ret: types.AnyType}
		}
		name := qualify(mod, decl.Name)
		return l.b.MakeClosure(&ir.FuncRef{Name: name, Typ: ft}, ir.ConstNull(types.AnyType), ft)
	case *ast.LetItem:
		t := l.typeOf(e)
		return l.b.Load(&ir.GlobalRef{Name: qualify(mod, sym.Name), Typ: t}, t)
	case nil:
		if sym.FfiPath != "" {
			sig, err := l.oracle.Lookup(sym.FfiPath)
			if err == nil {
				ft := &types.FuncType{Params: sig.Params, Ret: sig.Ret}
				l.extern(sig.Name, sig.Params, sig.Ret)
				return l.b.MakeClosure(&ir.FuncRef{Name: sig.Name, Typ: ft}, ir.ConstNull(types.AnyType), ft)
			}
		}
	}
	return ir.ConstNull(types.AnyType)
}

// lowerMemberAccess handles the same three shapes checkMemberAccess does:
// a module member, a bare enum-unit reference, and a struct field load.
func (l *Lowerer) lowerMemberAccess(mod *depm.Module, e *ast.MemberAccess) ir.Value {
	if sym, ok := l.resolved.Bindings[e.ID()]; ok {
		target := mod
		if rootSym := l.symbolOf(e.Root); rootSym != nil && rootSym.Kind == resolve.SymModule {
			target = rootSym.Module
		}
		return l.valueOfSymbol(target, sym, e)
	}

	if idx, ok := l.checked.EnumVariant[e.ID()]; ok {
		return l.enumNew(idx, l.typeOf(e))
	}

	if field, ok := l.checked.Fields[e.ID()]; ok {
		base := l.lowerExpr(mod, e.Root)
		addr := l.b.FieldAddr(base, field.Name, field.Type)
		return l.b.Load(addr, field.Type)
	}

	return ir.ConstNull(types.AnyType)
}

func (l *Lowerer) lowerIndex(mod *depm.Module, e *ast.Index) ir.Value {
	seq := l.lowerExpr(mod, e.Seq)
	idx := l.lowerExpr(mod, e.Index)
	switch t := types.InnerType(l.typeOf(e.Seq)).(type) {
	case *types.ListType:
		return l.listGet(seq, idx, t.Elem)
	case *types.DictType:
		return l.dictGet(seq, idx, t.Value)
	case types.Primitive:
		if t == types.PrimString {
			return l.callExtern("otter_string_char_at", []types.Type{stringType, intType}, stringType, seq, idx)
		}
	}
	return ir.ConstNull(types.AnyType)
}

// -----------------------------------------------------------------------------

// lowerCall dispatches the same way checkCall resolves a call's shape: a
// builtin short-circuit, an enum-variant construction, a module-member
// call, a method-or-field call, and finally the general dynamic case.
func (l *Lowerer) lowerCall(mod *depm.Module, e *ast.Call) ir.Value {
	if id, ok := e.Callee.(*ast.Identifier); ok {
		if _, shadowed := l.lookupLocal(id.Name); !shadowed {
			if v, handled := l.lowerBuiltinCall(mod, e, id.Name); handled {
				return v
			}
			if sym := l.symbolOf(id); sym != nil {
				if decl, ok := sym.Node.(*ast.FunctionItem); ok {
					name := qualify(mod, decl.Name)
					args := l.lowerCallArgs(mod, e, decl)
					return l.b.Call(name, l.typeOf(e), args...)
				}
			}
		}
	}

	if ma, ok := e.Callee.(*ast.MemberAccess); ok {
		if idx, ok := l.checked.EnumVariant[e.ID()]; ok {
			return l.lowerEnumConstruct(mod, e, ma, idx)
		}
		if sym, isModuleMember := l.resolved.Bindings[ma.ID()]; isModuleMember {
			return l.lowerModuleMemberCall(mod, e, ma, sym)
		}
		return l.lowerMethodOrFieldCall(mod, e, ma)
	}

	callee := l.lowerExpr(mod, e.Callee)
	args := l.lowerCallArgs(mod, e, nil)
	return l.b.CallClosure(callee, l.typeOf(e), args...)
}

// lowerBuiltinCall lowers print/len/str/int/float/bool/tuple, the
// universe-scope names with no declaration of their own.
func (l *Lowerer) lowerBuiltinCall(mod *depm.Module, e *ast.Call, name string) (ir.Value, bool) {
	switch name {
	case "print":
		var msg ir.Value
		for _, a := range e.Args {
			v := l.lowerExpr(mod, a)
			if l.checked.Stringify[a.ID()] {
				v = l.toString(v, l.typeOf(a))
			}
			if msg == nil {
				msg = v
			} else {
				msg = l.stringConcat(msg, l.stringConcat(ir.ConstString(" "), v))
			}
		}
		if msg == nil {
			msg = ir.ConstString("")
		}
		l.callExtern("otter_print_line", []types.Type{stringType}, unitType, msg)
		return ir.ConstUnit(), true

	case "len":
		v := l.lowerExpr(mod, e.Args[0])
		switch types.InnerType(l.typeOf(e.Args[0])).(type) {
		case *types.ListType:
			return l.listLen(v), true
		case *types.DictType:
			return l.callExtern("otter_dict_len", []types.Type{ptrType}, intType, v), true
		default:
			return l.callExtern("otter_string_len", []types.Type{stringType}, intType, v), true
		}

	case "str":
		v := l.lowerExpr(mod, e.Args[0])
		return l.toString(v, l.typeOf(e.Args[0])), true

	case "int":
		v := l.lowerExpr(mod, e.Args[0])
		return l.callExtern("otter_to_int", []types.Type{types.AnyType}, intType, v), true

	case "float":
		v := l.lowerExpr(mod, e.Args[0])
		return l.callExtern("otter_to_float", []types.Type{types.AnyType}, floatType, v), true

	case "bool":
		v := l.lowerExpr(mod, e.Args[0])
		return l.callExtern("otter_to_bool", []types.Type{types.AnyType}, boolType, v), true

	case "tuple":
		list := l.listNew()
		for _, a := range e.Args {
			l.listPush(list, l.lowerExpr(mod, a))
		}
		return list, true

	default:
		return nil, false
	}
}

// lowerModuleMemberCall lowers `alias.name(args)`, which resolve.Bind has
// already traced onto sym directly: a free function in the target module,
// an FFI symbol, or (rarely) a let-bound closure value.
func (l *Lowerer) lowerModuleMemberCall(mod *depm.Module, e *ast.Call, ma *ast.MemberAccess, sym *resolve.Symbol) ir.Value {
	target := mod
	if rootSym := l.symbolOf(ma.Root); rootSym != nil && rootSym.Kind == resolve.SymModule {
		target = rootSym.Module
	}

	if decl, ok := sym.Node.(*ast.FunctionItem); ok {
		name := qualify(target, decl.Name)
		args := l.lowerCallArgs(mod, e, decl)
		return l.b.Call(name, l.typeOf(e), args...)
	}

	if sym.FfiPath != "" {
		if sig, err := l.oracle.Lookup(sym.FfiPath); err == nil {
			l.extern(sig.Name, sig.Params, sig.Ret)
			args := l.lowerCallArgs(mod, e, nil)
			return l.b.Call(sig.Name, l.typeOf(e), args...)
		}
	}

	callee := l.valueOfSymbol(target, sym, ma)
	args := l.lowerCallArgs(mod, e, nil)
	return l.b.CallClosure(callee, l.typeOf(e), args...)
}

// lowerMethodOrFieldCall lowers `root.name(args)` where name is not a
// module member: a direct call when root's type declares a method by that
// name, a CallClosure against a loaded field otherwise, and a fully
// dynamic CallClosure when root's own type isn't known statically at all.
func (l *Lowerer) lowerMethodOrFieldCall(mod *depm.Module, e *ast.Call, ma *ast.MemberAccess) ir.Value {
	rootT := l.typeOf(ma.Root)
	st, ok := types.InnerType(rootT).(*types.StructType)
	if !ok {
		callee := l.lowerExpr(mod, e.Callee)
		args := l.lowerCallArgs(mod, e, nil)
		return l.b.CallClosure(callee, l.typeOf(e), args...)
	}

	decl, _ := st.Decl().(*ast.StructItem)
	var method *ast.FunctionItem
	if decl != nil {
		for _, m := range decl.Methods {
			if m.Name == ma.Field {
				method = m
				break
			}
		}
	}

	root := l.lowerExpr(mod, ma.Root)

	if method != nil {
		owner := l.structOwner[decl]
		name := methodName(qualify(owner, decl.Name), method.Name)
		args := append([]ir.Value{root}, l.lowerCallArgs(mod, e, method)...)
		return l.b.Call(name, l.typeOf(e), args...)
	}

	if field, ok := st.FieldByName(ma.Field); ok {
		addr := l.b.FieldAddr(root, field.Name, field.Type)
		closure := l.b.Load(addr, field.Type)
		args := l.lowerCallArgs(mod, e, nil)
		return l.b.CallClosure(closure, l.typeOf(e), args...)
	}

	return ir.ConstNull(types.AnyType)
}

// lowerEnumConstruct lowers `EnumName.Variant(args)`: allocate the tagged
// union, then store each argument into its payload slot.
func (l *Lowerer) lowerEnumConstruct(mod *depm.Module, e *ast.Call, ma *ast.MemberAccess, idx int) ir.Value {
	et := l.typeOf(e)
	v := l.enumNew(idx, et)
	variant := enumVariantAt(et, idx)
	for i, a := range e.Args {
		if i >= len(variant.Payload) {
			break
		}
		payload := variant.Payload[i]
		val := l.widenIfMarked(a, l.lowerExpr(mod, a))
		addr := l.b.EnumPayloadAddr(v, idx, i, payload)
		l.b.Store(addr, val)
	}
	return v
}

func enumVariantAt(t types.Type, idx int) types.EnumVariant {
	et, ok := types.InnerType(t).(*types.EnumType)
	if !ok || idx < 0 || idx >= len(et.Variants) {
		return types.EnumVariant{}
	}
	return et.Variants[idx]
}

// lowerCallArgs lowers a call's arguments positionally, or (when kwargs
// are present against a known declaration) by parameter name, matching
// check.checkKwArgs's own contract exactly: e.Args are checked for side
// effects only and never unified against a parameter when kwargs are
// used, so they are lowered here for side effects only too, and every
// parameter's real value comes from a matching kwarg, else its default
// (evaluated in the caller's own module, an accepted simplification: the
// checker itself only ever checks a default expression once, against the
// declaration's own raw, possibly generic, parameter type), else a zero
// value.
func (l *Lowerer) lowerCallArgs(mod *depm.Module, e *ast.Call, decl *ast.FunctionItem) []ir.Value {
	if len(e.KwArgs) == 0 || decl == nil {
		args := make([]ir.Value, len(e.Args))
		for i, a := range e.Args {
			args[i] = l.widenIfMarked(a, l.lowerExpr(mod, a))
		}
		return args
	}

	for _, a := range e.Args {
		l.lowerExpr(mod, a)
	}

	args := make([]ir.Value, len(decl.Params))
	for i, p := range decl.Params {
		if val, ok := e.KwArgs[p.Name]; ok {
			args[i] = l.widenIfMarked(val, l.lowerExpr(mod, val))
			continue
		}
		if p.Default != nil {
			args[i] = l.widenIfMarked(p.Default, l.lowerExpr(mod, p.Default))
			continue
		}
		args[i] = zeroValue(types.AnyType)
	}
	return args
}

// -----------------------------------------------------------------------------

func (l *Lowerer) lowerUnary(mod *depm.Module, e *ast.Unary) ir.Value {
	v := l.lowerExpr(mod, e.Operand)
	switch e.Op {
	case ast.UnaryNeg:
		return l.b.Neg(v)
	case ast.UnaryNot:
		return l.b.Not(v)
	default:
		return v
	}
}

func arithOp(op ast.BinaryKind) ir.Op {
	switch op {
	case ast.BinSub:
		return ir.OpSub
	case ast.BinMul:
		return ir.OpMul
	case ast.BinDiv:
		return ir.OpDiv
	case ast.BinMod:
		return ir.OpMod
	default:
		return ir.OpAdd
	}
}

func cmpOp(op ast.BinaryKind) ir.Op {
	switch op {
	case ast.BinLt:
		return ir.OpCmpLt
	case ast.BinLtEq:
		return ir.OpCmpLe
	case ast.BinGt:
		return ir.OpCmpGt
	case ast.BinGtEq:
		return ir.OpCmpGe
	default:
		return ir.OpCmpEq
	}
}

func (l *Lowerer) lowerBinary(mod *depm.Module, e *ast.Binary) ir.Value {
	switch e.Op {
	case ast.BinAdd:
		if types.Equals(l.typeOf(e), stringType) {
			lv := l.lowerExpr(mod, e.Lhs)
			if l.checked.Stringify[e.Lhs.ID()] {
				lv = l.toString(lv, l.typeOf(e.Lhs))
			}
			rv := l.lowerExpr(mod, e.Rhs)
			if l.checked.Stringify[e.Rhs.ID()] {
				rv = l.toString(rv, l.typeOf(e.Rhs))
			}
			return l.stringConcat(lv, rv)
		}
		lv := l.widenIfMarked(e.Lhs, l.lowerExpr(mod, e.Lhs))
		rv := l.widenIfMarked(e.Rhs, l.lowerExpr(mod, e.Rhs))
		return l.b.Arith(ir.OpAdd, lv, rv, l.typeOf(e))

	case ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinMod:
		lv := l.widenIfMarked(e.Lhs, l.lowerExpr(mod, e.Lhs))
		rv := l.widenIfMarked(e.Rhs, l.lowerExpr(mod, e.Rhs))
		return l.b.Arith(arithOp(e.Op), lv, rv, l.typeOf(e))

	case ast.BinEq, ast.BinNeq:
		lv := l.lowerExpr(mod, e.Lhs)
		rv := l.lowerExpr(mod, e.Rhs)
		op := ir.OpCmpEq
		if e.Op == ast.BinNeq {
			op = ir.OpCmpNe
		}
		return l.b.Cmp(op, lv, rv)

	case ast.BinLt, ast.BinLtEq, ast.BinGt, ast.BinGtEq:
		lv := l.widenIfMarked(e.Lhs, l.lowerExpr(mod, e.Lhs))
		rv := l.widenIfMarked(e.Rhs, l.lowerExpr(mod, e.Rhs))
		return l.b.Cmp(cmpOp(e.Op), lv, rv)

	default:
		return ir.ConstNull(types.AnyType)
	}
}

// lowerLogical lowers `and`/`or` via an explicit boolean stack slot rather
// than a phi, matching the loop-counter idiom the rest of this package
// already uses for merging values across blocks.
func (l *Lowerer) lowerLogical(mod *depm.Module, e *ast.Logical) ir.Value {
	lv := l.lowerExpr(mod, e.Lhs)
	slot := l.b.Alloca(boolType)
	l.b.Store(slot, lv)

	rhsB := l.fn.AppendBlock("logical_rhs")
	mergeB := l.fn.AppendBlock("logical_merge")
	if e.Op == ast.LogicalAnd {
		l.b.CondBr(lv, rhsB, mergeB)
	} else {
		l.b.CondBr(lv, mergeB, rhsB)
	}

	l.b.Position(rhsB)
	rv := l.lowerExpr(mod, e.Rhs)
	l.b.Store(slot, rv)
	l.b.Br(mergeB)

	l.b.Position(mergeB)
	return l.b.Load(slot, boolType)
}

func (l *Lowerer) lowerIs(mod *depm.Module, e *ast.Is) ir.Value {
	lv := l.lowerExpr(mod, e.Lhs)
	rv := l.lowerExpr(mod, e.Rhs)
	eq := l.b.Cmp(ir.OpCmpEq, lv, rv)
	if e.Negated {
		return l.b.Not(eq)
	}
	return eq
}

// lowerRange materializes a Range used as a plain value into a concrete
// List<int>; a Range used directly as a for-loop's iterable never reaches
// this path, since lowerFor intercepts that shape before calling lowerExpr.
func (l *Lowerer) lowerRange(mod *depm.Module, e *ast.Range) ir.Value {
	lo := l.lowerExpr(mod, e.Lo)
	hi := l.lowerExpr(mod, e.Hi)
	list := l.listNew()

	idxSlot := l.b.Alloca(intType)
	l.b.Store(idxSlot, lo)

	headerB := l.fn.AppendBlock("range_head")
	bodyB := l.fn.AppendBlock("range_body")
	exitB := l.fn.AppendBlock("range_exit")

	l.b.Br(headerB)
	l.b.Position(headerB)
	cur := l.b.Load(idxSlot, intType)
	cond := l.b.Cmp(ir.OpCmpLt, cur, hi)
	l.b.CondBr(cond, bodyB, exitB)

	l.b.Position(bodyB)
	l.listPush(list, cur)
	next := l.b.Arith(ir.OpAdd, cur, ir.ConstInt(1), intType)
	l.b.Store(idxSlot, next)
	l.b.Br(headerB)

	l.b.Position(exitB)
	return list
}

func (l *Lowerer) lowerListLit(mod *depm.Module, e *ast.ListLit) ir.Value {
	list := l.listNew()
	for _, el := range e.Elems {
		v := l.widenIfMarked(el, l.lowerExpr(mod, el))
		l.listPush(list, v)
	}
	return list
}

func (l *Lowerer) lowerDictLit(mod *depm.Module, e *ast.DictLit) ir.Value {
	dict := l.dictNew()
	for _, entry := range e.Entries {
		k := l.widenIfMarked(entry.Key, l.lowerExpr(mod, entry.Key))
		v := l.widenIfMarked(entry.Value, l.lowerExpr(mod, entry.Value))
		l.dictSet(dict, k, v)
	}
	return dict
}

// defaultExprFor finds the declared default expression for a struct's
// field named name, or nil.
func defaultExprFor(decl *ast.StructItem, name string) ast.Expr {
	if decl == nil {
		return nil
	}
	for _, f := range decl.Fields {
		if f.Name == name {
			return f.Default
		}
	}
	return nil
}

// lowerStructLit allocates a struct value and fills every field in
// priority order: an explicit literal value, the spread base, the
// declaration's own default expression (evaluated in the struct's own
// module, via coerce rather than widenIfMarked since checkItem never
// records a Widen marker for a struct field default), or a zero value.
func (l *Lowerer) lowerStructLit(mod *depm.Module, e *ast.StructLit) ir.Value {
	inst, ok := types.InnerType(l.typeOf(e)).(*types.StructType)
	if !ok {
		return ir.ConstNull(types.AnyType)
	}
	decl, _ := inst.Decl().(*ast.StructItem)

	var spread ir.Value
	if e.Spread != nil {
		spread = l.lowerExpr(mod, e.Spread)
	}

	v := l.gcAlloc(ir.ConstInt(0), inst)
	for _, f := range inst.Fields {
		var val ir.Value
		switch {
		case e.Fields[f.Name] != nil:
			val = l.widenIfMarked(e.Fields[f.Name], l.lowerExpr(mod, e.Fields[f.Name]))
		case spread != nil:
			addr := l.b.FieldAddr(spread, f.Name, f.Type)
			val = l.b.Load(addr, f.Type)
		default:
			if def := defaultExprFor(decl, f.Name); def != nil {
				owner := mod
				if decl != nil {
					owner = l.structOwner[decl]
				}
				val = l.coerce(l.lowerExpr(owner, def), l.typeOf(def), f.Type)
			} else {
				val = zeroValue(f.Type)
			}
		}
		addr := l.b.FieldAddr(v, f.Name, f.Type)
		l.b.Store(addr, val)
	}
	return v
}

// -----------------------------------------------------------------------------

// lowerClosureExpr builds an env struct over lambda's captured locals and
// queues its body for lowering into a fresh top-level ir.Func, returning a
// MakeClosure value bundling the two. Shared between lowerLambda (the
// env's element type comes from the lambda's own checked FuncType) and
// lowerSpawn (which synthesizes a zero-parameter thunk around its operand
// rather than reusing a checker-elaborated ast.Lambda node).
func (l *Lowerer) lowerClosureExpr(mod *depm.Module, lambda *ast.Lambda, ft *types.FuncType) ir.Value {
	names := captureFreeVars(lambda)
	var fields []types.StructField
	slots := map[string]*ir.Reg{}
	for _, name := range names {
		slot, ok := l.lookupLocal(name)
		if !ok {
			continue
		}
		fields = append(fields, types.StructField{Name: name, Type: slot.Typ})
		slots[name] = slot
	}
	env := types.NewStructType(l.freshTemp("closure_env"), nil, nil, fields)

	envVal := ir.Value(ir.ConstNull(types.AnyType))
	if len(fields) > 0 {
		alloc := l.gcAlloc(ir.ConstInt(0), env)
		for _, f := range fields {
			addr := l.b.FieldAddr(alloc, f.Name, f.Type)
			l.b.Store(addr, l.b.Load(slots[f.Name], f.Type))
		}
		envVal = alloc
	}

	fnName := qualify(mod, l.freshTemp("lambda"))
	l.pendingLambdas = append(l.pendingLambdas, pendingLambda{name: fnName, expr: lambda, mod: mod, env: env, ft: ft})

	return l.b.MakeClosure(&ir.FuncRef{Name: fnName, Typ: ft}, envVal, ft)
}

func (l *Lowerer) lowerLambda(mod *depm.Module, e *ast.Lambda) ir.Value {
	ft, ok := types.InnerType(l.typeOf(e)).(*types.FuncType)
	if !ok {
		ft = &types.FuncType{Ret: types.AnyType}
	}
	return l.lowerClosureExpr(mod, e, ft)
}

func (l *Lowerer) lowerAwait(mod *depm.Module, e *ast.Await) ir.Value {
	v := l.lowerExpr(mod, e.Operand)
	return l.taskAwait(v, l.typeOf(e))
}

// lowerSpawn desugars `spawn expr` into a zero-parameter thunk closure
// wrapping expr's evaluation, reusing lowerClosureExpr's capture-and-queue
// machinery rather than going through the checker's own ast.Lambda shape
// (expr already carries a valid, checker-registered NodeID; the
// synthetic wrapping statement around it never needs one of its own).
func (l *Lowerer) lowerSpawn(mod *depm.Module, e *ast.Spawn) ir.Value {
	resultT := l.typeOf(e.Operand)
	thunk := &ast.Lambda{
		Base: ast.NewBase(report.ZeroSpan),
		Body: []ast.Stmt{&ast.ExprStmt{Base: ast.NewBase(report.ZeroSpan), Value: e.Operand}},
	}
	closure := l.lowerClosureExpr(mod, thunk, &types.FuncType{Ret: resultT})
	return l.taskSpawn(closure, resultT)
}

// lowerMatch lowers a match used as a value-producing expression: each
// arm stores its tail value into a shared slot and branches to a merge
// block, reusing the same arm-chaining machinery lowerTailMatch drives for
// statement-position matches.
func (l *Lowerer) lowerMatch(mod *depm.Module, e *ast.Match) ir.Value {
	scrut := l.lowerExpr(mod, e.Scrutinee)
	scrutT := l.typeOf(e.Scrutinee)
	resT := l.typeOf(e)
	slot := l.b.Alloca(resT)
	mergeB := l.fn.AppendBlock("match_expr_merge")

	l.lowerMatchArms(mod, scrut, scrutT, e.Cases, func(body []ast.Stmt) {
		l.lowerBlockFinish(mod, body, func(v ir.Value, t types.Type) {
			if !l.b.Block.Terminated() {
				l.b.Store(slot, l.coerce(v, t, resT))
				l.b.Br(mergeB)
			}
		})
	})

	l.b.Position(mergeB)
	return l.b.Load(slot, resT)
}

// lowerFString folds every piece into a single string via stringConcat,
// stringifying non-string expression pieces per the checked.Stringify
// markers checkFString recorded.
func (l *Lowerer) lowerFString(mod *depm.Module, e *ast.FString) ir.Value {
	var acc ir.Value
	for _, piece := range e.Pieces {
		var s ir.Value
		if piece.Expr == nil {
			s = ir.ConstString(piece.Text)
		} else {
			v := l.lowerExpr(mod, piece.Expr)
			if l.checked.Stringify[piece.Expr.ID()] {
				v = l.toString(v, l.typeOf(piece.Expr))
			}
			s = v
		}
		if acc == nil {
			acc = s
		} else {
			acc = l.stringConcat(acc, s)
		}
	}
	if acc == nil {
		return ir.ConstString("")
	}
	return acc
}

func (l *Lowerer) lowerListComprehension(mod *depm.Module, e *ast.ListComprehension) ir.Value {
	list := l.listNew()
	l.lowerComprehensionLoop(mod, e.Target, e.Iter, e.Filter, func() {
		v := l.lowerExpr(mod, e.Yield)
		l.listPush(list, v)
	})
	return list
}

func (l *Lowerer) lowerDictComprehension(mod *depm.Module, e *ast.DictComprehension) ir.Value {
	dict := l.dictNew()
	l.lowerComprehensionLoop(mod, e.Target, e.Iter, e.Filter, func() {
		k := l.lowerExpr(mod, e.KeyExpr)
		v := l.lowerExpr(mod, e.ValExpr)
		l.dictSet(dict, k, v)
	})
	return dict
}

// lowerComprehensionLoop drives iter the same way lowerFor does (a Range
// becomes a counting loop, anything else an index-based list/string walk),
// binding target once per iteration and running body for every element
// that passes filter.
func (l *Lowerer) lowerComprehensionLoop(mod *depm.Module, target ast.Pattern, iter ast.Expr, filter ast.Expr, body func()) {
	if rng, ok := iter.(*ast.Range); ok {
		l.lowerComprehensionRange(mod, target, rng, filter, body)
		return
	}
	l.lowerComprehensionIndexed(mod, target, iter, filter, body)
}

func (l *Lowerer) lowerComprehensionRange(mod *depm.Module, target ast.Pattern, rng *ast.Range, filter ast.Expr, body func()) {
	lo := l.lowerExpr(mod, rng.Lo)
	hi := l.lowerExpr(mod, rng.Hi)
	idxSlot := l.b.Alloca(intType)
	l.b.Store(idxSlot, lo)

	headerB := l.fn.AppendBlock("comp_head")
	bodyB := l.fn.AppendBlock("comp_body")
	stepB := l.fn.AppendBlock("comp_step")
	exitB := l.fn.AppendBlock("comp_exit")

	l.b.Br(headerB)
	l.b.Position(headerB)
	cur := l.b.Load(idxSlot, intType)
	cond := l.b.Cmp(ir.OpCmpLt, cur, hi)
	l.b.CondBr(cond, bodyB, exitB)

	l.b.Position(bodyB)
	l.pushScope()
	l.bindPattern(mod, target, cur, intType)
	l.lowerComprehensionFilterBody(mod, filter, body)
	l.popScope()
	l.b.Br(stepB)

	l.b.Position(stepB)
	cur2 := l.b.Load(idxSlot, intType)
	next := l.b.Arith(ir.OpAdd, cur2, ir.ConstInt(1), intType)
	l.b.Store(idxSlot, next)
	l.b.Br(headerB)

	l.b.Position(exitB)
}

func (l *Lowerer) lowerComprehensionIndexed(mod *depm.Module, target ast.Pattern, iter ast.Expr, filter ast.Expr, body func()) {
	seq := l.lowerExpr(mod, iter)
	seqT := l.typeOf(iter)
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

	headerB := l.fn.AppendBlock("comp_head")
	bodyB := l.fn.AppendBlock("comp_body")
	stepB := l.fn.AppendBlock("comp_step")
	exitB := l.fn.AppendBlock("comp_exit")

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
	l.bindPattern(mod, target, elem, elemT)
	l.lowerComprehensionFilterBody(mod, filter, body)
	l.popScope()
	l.b.Br(stepB)

	l.b.Position(stepB)
	cur2 := l.b.Load(idxSlot, intType)
	next := l.b.Arith(ir.OpAdd, cur2, ir.ConstInt(1), intType)
	l.b.Store(idxSlot, next)
	l.b.Br(headerB)

	l.b.Position(exitB)
}

func (l *Lowerer) lowerComprehensionFilterBody(mod *depm.Module, filter ast.Expr, body func()) {
	if filter == nil {
		body()
		return
	}
	cond := l.lowerExpr(mod, filter)
	passB := l.fn.AppendBlock("comp_pass")
	skipB := l.fn.AppendBlock("comp_skip")
	l.b.CondBr(cond, passB, skipB)
	l.b.Position(passB)
	body()
	l.b.Br(skipB)
	l.b.Position(skipB)
}

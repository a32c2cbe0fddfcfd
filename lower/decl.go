package lower

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ir"
	"github.com/otterlang/otterc/types"
)

// lowerItem dispatches over one top-level item. Structs and enums
// contribute no function/global of their own (their layout lives entirely
// in the types.Type the checker already attached to every expression that
// needs it); only functions, methods, module-scope lets, and module-scope
// expression items (lowered into __otter_init) produce ir.Module entries
// directly here.
func (l *Lowerer) lowerItem(mod *depm.Module, item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionItem:
		l.lowerFunction(mod, it, qualify(mod, it.Name))
	case *ast.StructItem:
		for _, m := range it.Methods {
			l.lowerFunction(mod, m, methodName(qualify(mod, it.Name), m.Name))
		}
	case *ast.EnumItem:
		// no standalone lowering: construction sites (check.Result.EnumVariant)
		// carry everything lowerExpr needs.
	case *ast.LetItem:
		l.lowerModuleLet(mod, it)
	case *ast.ExprItem:
		l.lowerModuleExprItem(mod, it)
	case *ast.UseItem, *ast.PubUseItem:
		// nothing to lower; rust: paths are resolved lazily at each call
		// site through the FFI oracle.
	}
}

func methodName(structQualified, method string) string {
	return structQualified + "." + method
}

// lowerFunction lowers one function or method body into a fresh ir.Func,
// positioning the builder at its entry block the way
// bootstrap/codegen/generator.go's generateFunc does before walking the
// body.
func (l *Lowerer) lowerFunction(mod *depm.Module, fn *ast.FunctionItem, name string) {
	sig := l.checked.FuncSig(fn)

	var params []*ir.Reg
	if fn.Receiver != "" {
		selfT := l.receiverType(mod, fn.Receiver)
		params = append(params, &ir.Reg{Name: "self", Typ: selfT})
	}
	for i, p := range fn.Params {
		pt := types.AnyType
		if i < len(sig.Params) {
			pt = sig.Params[i]
		}
		params = append(params, &ir.Reg{Name: p.Name, Typ: pt})
	}

	irFn := ir.NewFunc(name, params, sig.Ret, fn.Vis == ast.VisPublic)
	l.mod.Funcs = append(l.mod.Funcs, irFn)

	savedFn, savedB := l.fn, l.b
	l.fn = irFn
	entry := irFn.AppendBlock("entry")
	l.b = ir.NewBuilder(irFn)
	l.b.Position(entry)

	l.pushScope()
	for _, p := range params {
		slot := l.b.Alloca(p.Typ)
		l.b.Store(slot, p)
		l.defineLocal(p.Name, slot)
	}
	for i, p := range fn.Params {
		if p.Default != nil && i < len(sig.Params) {
			// Default application happens at call sites the checker has
			// already fully typed; nothing extra to lower here.
		}
	}

	l.lowerBlockTail(mod, fn.Body, sig.Ret)
	if !l.b.Block.Terminated() {
		l.b.Ret(zeroValue(sig.Ret))
	}
	l.popScope()

	l.fn, l.b = savedFn, savedB
}

// receiverType looks up the struct a method's receiver name refers to, the
// uninstantiated template (a bare-name receiver always refers to the
// struct's own type parameters, never a concrete instantiation) the same
// way check.checkFunction binds `self`.
func (l *Lowerer) receiverType(mod *depm.Module, receiver string) types.Type {
	if sym, ok := l.resolved.ModuleScopes[mod].Lookup(receiver); ok {
		if t, ok := l.checked.DeclType(sym); ok {
			return t
		}
	}
	return types.AnyType
}

// lowerModuleLet lowers a module-scope `let` into an ir.Global. A
// literal initializer becomes the global's Init directly; anything else
// (a call, a struct literal, ...) is lowered into the module graph's single
// synthetic init function (moduleInitFunc) the driver must run before main,
// since ir.Global.Init can only hold a constant Value.
func (l *Lowerer) lowerModuleLet(mod *depm.Module, it *ast.LetItem) {
	name := qualify(mod, it.Name)
	t := types.AnyType
	if sym, ok := l.resolved.ModuleScopes[mod].Lookup(it.Name); ok {
		if dt, ok := l.checked.DeclType(sym); ok {
			t = dt
		}
	}
	g := &ir.Global{Name: name, Typ: t, Public: it.Vis == ast.VisPublic}
	l.mod.Globals = append(l.mod.Globals, g)

	if lit, ok := it.Init.(*ast.Literal); ok {
		g.Init = l.lowerLiteralConst(lit)
		return
	}

	initFn := l.moduleInitFunc()
	savedFn, savedB := l.fn, l.b
	l.fn = initFn
	l.b = ir.NewBuilder(initFn)
	l.b.Position(initFn.Blocks[len(initFn.Blocks)-1])
	l.pushScope()
	v := l.lowerExpr(mod, it.Init)
	l.b.Store(&ir.GlobalRef{Name: name, Typ: t}, l.coerce(v, l.typeOf(it.Init), t))
	l.popScope()
	l.fn, l.b = savedFn, savedB
}

// moduleInitFunc returns this module graph's single `__otter_init`
// function, creating it (with one open, unterminated block ready for more
// stores) on first use.
func (l *Lowerer) moduleInitFunc() *ir.Func {
	for _, f := range l.mod.Funcs {
		if f.Name == "__otter_init" {
			return f
		}
	}
	fn := ir.NewFunc("__otter_init", nil, unitType, true)
	fn.AppendBlock("entry")
	l.mod.Funcs = append(l.mod.Funcs, fn)
	return fn
}

func (l *Lowerer) lowerModuleExprItem(mod *depm.Module, it *ast.ExprItem) {
	initFn := l.moduleInitFunc()
	savedFn, savedB := l.fn, l.b
	l.fn = initFn
	l.b = ir.NewBuilder(initFn)
	l.b.Position(initFn.Blocks[len(initFn.Blocks)-1])
	l.pushScope()
	l.lowerExpr(mod, it.Value)
	l.popScope()
	l.fn, l.b = savedFn, savedB
}

func zeroValue(t types.Type) ir.Value {
	switch p, ok := types.InnerType(t).(types.Primitive); {
	case ok && p == types.PrimInt:
		return ir.ConstInt(0)
	case ok && p == types.PrimFloat:
		return ir.ConstFloat(0)
	case ok && p == types.PrimBool:
		return ir.ConstBool(false)
	case ok && p == types.PrimString:
		return ir.ConstString("")
	default:
		return ir.ConstUnit()
	}
}

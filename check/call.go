package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// checkCall types a call expression. Three shapes are handled: a direct
// builtin reference (print/len/str/int/float/bool/tuple, always in scope
// per resolve/builtins.go), a method call (`x.method(...)`, the struct
// field-access case resolve.Bind leaves for the checker), and the general
// case of calling a FuncType-valued expression.
func (c *Checker) checkCall(mod *depm.Module, e *ast.Call) types.Type {
	if id, ok := e.Callee.(*ast.Identifier); ok {
		if _, shadowed := c.lookupLocal(id.Name); !shadowed {
			if t, handled := c.checkBuiltinCall(mod, e, id.Name); handled {
				return c.set(e, t)
			}
		}
	}

	if ma, ok := e.Callee.(*ast.MemberAccess); ok {
		if decl, sym := c.enumRootDecl(ma); decl != nil {
			if variant, idx, ok := c.enumVariantTarget(decl, ma.Field); ok {
				return c.set(e, c.checkEnumConstruct(mod, e, ma, decl, sym, variant, idx))
			}
		}
		if _, isModuleMember := c.resolved.Bindings[ma.ID()]; !isModuleMember {
			return c.checkMethodOrFieldCall(mod, e, ma)
		}
	}

	calleeType := c.checkExpr(mod, e.Callee)
	ft, ok := types.InnerType(calleeType).(*types.FuncType)
	if !ok {
		if types.Equals(calleeType, types.AnyType) {
			c.checkArgsUntyped(mod, e)
			return c.set(e, types.AnyType)
		}
		c.errorf(e.Span(), report.CodeTypeMismatch, "%s is not callable", calleeType.Repr())
		c.checkArgsUntyped(mod, e)
		return c.set(e, types.AnyType)
	}

	decl := c.calleeFunctionDecl(e.Callee)
	if len(e.KwArgs) > 0 {
		if decl == nil {
			c.errorf(e.Span(), report.CodeTypeMismatch, "keyword arguments require a direct function reference")
			for _, a := range e.KwArgs {
				c.checkExpr(mod, a)
			}
		} else {
			c.checkKwArgs(mod, e, decl, ft)
		}
		return c.set(e, ft.Ret)
	}

	c.checkPositionalArgs(mod, e, ft.Params)
	return c.set(e, ft.Ret)
}

// checkMethodOrFieldCall handles `root.name(args)` where name is not a
// module member: root's checked type must be a struct declaring a method
// called name.
func (c *Checker) checkMethodOrFieldCall(mod *depm.Module, e *ast.Call, ma *ast.MemberAccess) types.Type {
	rootType := c.checkExpr(mod, ma.Root)
	st, ok := types.InnerType(rootType).(*types.StructType)
	if !ok {
		if types.Equals(rootType, types.AnyType) {
			c.checkArgsUntyped(mod, e)
			return c.set(e, types.AnyType)
		}
		c.errorf(ma.Span(), report.CodeUnknownField, "%s has no field %q", rootType.Repr(), ma.Field)
		c.checkArgsUntyped(mod, e)
		return c.set(e, types.AnyType)
	}

	decl, ok := st.Decl().(*ast.StructItem)
	if !ok {
		c.errorf(ma.Span(), report.CodeUnknownField, "%s has no method %q", st.Repr(), ma.Field)
		c.checkArgsUntyped(mod, e)
		return c.set(e, types.AnyType)
	}

	var method *ast.FunctionItem
	for _, m := range decl.Methods {
		if m.Name == ma.Field {
			method = m
			break
		}
	}
	if method == nil {
		if field, ok := st.FieldByName(ma.Field); ok {
			c.result.Fields[ma.ID()] = field
			if ft, ok := types.InnerType(field.Type).(*types.FuncType); ok {
				c.checkPositionalArgs(mod, e, ft.Params)
				return c.set(e, ft.Ret)
			}
		}
		c.errorf(ma.Span(), report.CodeUnknownField, "%s has no method %q", st.Repr(), ma.Field)
		c.checkArgsUntyped(mod, e)
		return c.set(e, types.AnyType)
	}

	sig := c.funcSig(mod, method)
	if len(decl.Generics) > 0 && len(decl.Generics) == len(st.Args) {
		sub := types.NewSubst(genericNames(decl.Generics), st.Args)
		sig = types.Apply(sig, sub).(*types.FuncType)
	}

	if len(e.KwArgs) > 0 {
		c.checkKwArgs(mod, e, method, sig)
		return c.set(e, sig.Ret)
	}
	c.checkPositionalArgs(mod, e, sig.Params)
	return c.set(e, sig.Ret)
}

func (c *Checker) checkPositionalArgs(mod *depm.Module, e *ast.Call, params []types.Type) {
	if len(e.Args) != len(params) {
		c.errorf(e.Span(), report.CodeArityMismatch, "expected %d argument(s), got %d", len(params), len(e.Args))
	}
	for i, a := range e.Args {
		c.checkExpr(mod, a)
		if i < len(params) {
			c.mustUnifyWiden(a, params[i])
		}
	}
}

func (c *Checker) checkArgsUntyped(mod *depm.Module, e *ast.Call) {
	for _, a := range e.Args {
		c.checkExpr(mod, a)
	}
	for _, a := range e.KwArgs {
		c.checkExpr(mod, a)
	}
}

func (c *Checker) checkKwArgs(mod *depm.Module, e *ast.Call, decl *ast.FunctionItem, sig *types.FuncType) {
	seen := map[string]bool{}
	for name, val := range e.KwArgs {
		idx := -1
		for i, p := range decl.Params {
			if p.Name == name {
				idx = i
				break
			}
		}
		if idx == -1 {
			c.errorf(val.Span(), report.CodeUnknownField, "%s has no parameter %q", decl.Name, name)
			c.checkExpr(mod, val)
			continue
		}
		seen[name] = true
		c.checkExpr(mod, val)
		if idx < len(sig.Params) {
			c.mustUnifyWiden(val, sig.Params[idx])
		}
	}
	for _, a := range e.Args {
		c.checkExpr(mod, a)
	}
	for _, p := range decl.Params {
		if !seen[p.Name] && p.Default == nil {
			c.errorf(e.Span(), report.CodeMissingField, "missing argument %q", p.Name)
		}
	}
}

// calleeFunctionDecl returns the declaration a call's callee resolves to
// directly (an identifier or a module member naming a function), so kwargs
// can be matched by parameter name; nil for anything else (a lambda
// stored in a variable has no declaration to name its parameters with, so
// keyword arguments aren't supported against it).
func (c *Checker) calleeFunctionDecl(callee ast.Expr) *ast.FunctionItem {
	var sym *resolve.Symbol
	switch e := callee.(type) {
	case *ast.Identifier:
		sym = c.symbolOf(e)
	case *ast.MemberAccess:
		sym = c.resolved.Bindings[e.ID()]
	}
	if sym == nil {
		return nil
	}
	decl, _ := sym.Node.(*ast.FunctionItem)
	return decl
}

// checkBuiltinCall types a call to one of the universe-scope builtins
// (resolve/builtins.go), which have no declaration to build a FuncType
// signature from.
func (c *Checker) checkBuiltinCall(mod *depm.Module, e *ast.Call, name string) (types.Type, bool) {
	switch name {
	case "print":
		for _, a := range e.Args {
			c.checkExpr(mod, a)
		}
		return types.Primitive(types.PrimUnit), true
	case "len":
		if len(e.Args) != 1 {
			c.errorf(e.Span(), report.CodeArityMismatch, "len takes exactly one argument")
		}
		for _, a := range e.Args {
			t := c.checkExpr(mod, a)
			c.checkHasLength(a, t)
		}
		return types.Primitive(types.PrimInt), true
	case "str":
		c.checkArgsUntyped(mod, e)
		return types.Primitive(types.PrimString), true
	case "int":
		c.checkArgsUntyped(mod, e)
		return types.Primitive(types.PrimInt), true
	case "float":
		c.checkArgsUntyped(mod, e)
		return types.Primitive(types.PrimFloat), true
	case "bool":
		c.checkArgsUntyped(mod, e)
		return types.Primitive(types.PrimBool), true
	case "tuple":
		elems := make([]types.Type, len(e.Args))
		for i, a := range e.Args {
			elems[i] = c.checkExpr(mod, a)
		}
		return &types.TupleType{Elems: elems}, true
	default:
		return nil, false
	}
}

func (c *Checker) checkHasLength(expr ast.Expr, t types.Type) {
	switch v := types.InnerType(t).(type) {
	case *types.ListType, *types.DictType:
		return
	case types.Primitive:
		if v == types.PrimString {
			return
		}
	}
	if types.Equals(t, types.AnyType) {
		return
	}
	c.errorf(expr.Span(), report.CodeTypeMismatch, "%s has no length", t.Repr())
}

// builtinValueType types a bare reference to a builtin name used as a
// value rather than called directly (eg. passed as a callback). Only
// handles the common case, a unary conversion function; print/tuple as
// bare values have no single meaningful type and are left unhandled.
func (c *Checker) builtinValueType(name string) (types.Type, bool) {
	switch name {
	case "str":
		return &types.FuncType{Params: []types.Type{types.AnyType}, Ret: types.Primitive(types.PrimString)}, true
	case "int":
		return &types.FuncType{Params: []types.Type{types.AnyType}, Ret: types.Primitive(types.PrimInt)}, true
	case "float":
		return &types.FuncType{Params: []types.Type{types.AnyType}, Ret: types.Primitive(types.PrimFloat)}, true
	case "bool":
		return &types.FuncType{Params: []types.Type{types.AnyType}, Ret: types.Primitive(types.PrimBool)}, true
	case "len":
		return &types.FuncType{Params: []types.Type{types.AnyType}, Ret: types.Primitive(types.PrimInt)}, true
	default:
		return nil, false
	}
}

func inferGeneric(declared, actual types.Type, bound map[string]types.Type) {
	switch d := declared.(type) {
	case *types.GenericRef:
		if _, ok := bound[d.Name]; !ok {
			bound[d.Name] = actual
		}
	case *types.ListType:
		if a, ok := types.InnerType(actual).(*types.ListType); ok {
			inferGeneric(d.Elem, a.Elem, bound)
		}
	case *types.DictType:
		if a, ok := types.InnerType(actual).(*types.DictType); ok {
			inferGeneric(d.Key, a.Key, bound)
			inferGeneric(d.Value, a.Value, bound)
		}
	case *types.TaskType:
		if a, ok := types.InnerType(actual).(*types.TaskType); ok {
			inferGeneric(d.Result, a.Result, bound)
		}
	}
}

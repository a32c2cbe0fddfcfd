package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// genericEnv maps a declaration's own generic parameter names to the
// GenericRef placeholder used while building its uninstantiated template.
type genericEnv map[string]*types.GenericRef

// elaborateType turns a source type annotation into a types.Type, resolving
// named references against mod's collected scope (bare name) or, for a
// dotted path, against the module the leading segments name. gen supplies
// the enclosing declaration's own generic parameters, if any.
func (c *Checker) elaborateType(mod *depm.Module, te ast.TypeExpr, gen genericEnv) types.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		return c.elaborateNamed(mod, t, gen)
	case *ast.FuncType:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.elaborateType(mod, p, gen)
		}
		ret := types.Type(types.Primitive(types.PrimUnit))
		if t.Ret != nil {
			ret = c.elaborateType(mod, t.Ret, gen)
		}
		return &types.FuncType{Params: params, Ret: ret}
	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.elaborateType(mod, e, gen)
		}
		return &types.TupleType{Elems: elems}
	case *ast.UnitType:
		return types.Primitive(types.PrimUnit)
	default:
		return types.AnyType
	}
}

func (c *Checker) elaborateNamed(mod *depm.Module, t *ast.NamedType, gen genericEnv) types.Type {
	if len(t.Path) == 1 {
		name := t.Path[0]
		if ref, ok := gen[name]; ok {
			return ref
		}
		if prim, ok := primitiveByName(name); ok {
			return prim
		}
		switch name {
		case "List":
			if len(t.Generics) != 1 {
				c.errorf(t.Span(), report.CodeArityMismatch, "List takes exactly one type argument")
				return types.AnyType
			}
			return &types.ListType{Elem: c.elaborateType(mod, t.Generics[0], gen)}
		case "Dict":
			if len(t.Generics) != 2 {
				c.errorf(t.Span(), report.CodeArityMismatch, "Dict takes exactly two type arguments")
				return types.AnyType
			}
			return &types.DictType{Key: c.elaborateType(mod, t.Generics[0], gen), Value: c.elaborateType(mod, t.Generics[1], gen)}
		case "Task":
			if len(t.Generics) != 1 {
				c.errorf(t.Span(), report.CodeArityMismatch, "Task takes exactly one type argument")
				return types.AnyType
			}
			return &types.TaskType{Result: c.elaborateType(mod, t.Generics[0], gen)}
		}

		sym, ok := c.resolved.ModuleScopes[mod].Lookup(name)
		if !ok {
			c.errorf(t.Span(), report.CodeUnresolvedName, "undefined type %q", name)
			return types.AnyType
		}
		return c.instantiateSymbol(mod, sym, t, gen)
	}

	target, err := c.loader.ResolveModule(t.Path[:len(t.Path)-1], mod.AbsPath)
	if err != nil {
		c.errorf(t.Span(), report.CodeUnresolvedName, "%s", err.Error())
		return types.AnyType
	}
	name := t.Path[len(t.Path)-1]
	sym, ok := c.resolved.ModuleScopes[target].Lookup(name)
	if !ok || !sym.Public {
		c.errorf(t.Span(), report.CodeUnresolvedName, "module has no public type %q", name)
		return types.AnyType
	}
	return c.instantiateSymbol(target, sym, t, gen)
}

// instantiateSymbol builds the concrete type a NamedType reference
// resolves to: a type-alias target, or a struct/enum instantiated with the
// given generic arguments (or Any for each parameter if the reference
// supplied none, so a bare `Box` naming a generic `struct Box<T>` still
// type-checks as `Box<Any>`).
func (c *Checker) instantiateSymbol(mod *depm.Module, sym *resolve.Symbol, ref *ast.NamedType, gen genericEnv) types.Type {
	switch decl := sym.Node.(type) {
	case *ast.TypeAliasItem:
		return c.aliasTarget(mod, sym, decl)
	case *ast.StructItem:
		tmpl := c.structTemplate(mod, sym, decl)
		args := c.elaborateArgs(mod, decl.Generics, ref.Generics, ref.Span(), gen)
		if len(args) == 0 {
			return tmpl
		}
		return types.Apply(tmpl, types.NewSubst(genericNames(decl.Generics), args))
	case *ast.EnumItem:
		tmpl := c.enumTemplate(mod, sym, decl)
		args := c.elaborateArgs(mod, decl.Generics, ref.Generics, ref.Span(), gen)
		if len(args) == 0 {
			return tmpl
		}
		return types.Apply(tmpl, types.NewSubst(genericNames(decl.Generics), args))
	default:
		c.errorf(ref.Span(), report.CodeUnresolvedName, "%q does not name a type", sym.Name)
		return types.AnyType
	}
}

// elaborateArgs elaborates a NamedType reference's explicit generic
// arguments, or allocates one fresh GenericRef-as-Any placeholder per
// declared parameter if the reference supplied none (OtterLang infers
// struct-literal generics from field values rather than requiring
// explicit arguments at every use, spec.md §4.E).
func (c *Checker) elaborateArgs(mod *depm.Module, params []ast.GenericParam, supplied []ast.TypeExpr, span report.Span, gen genericEnv) []types.Type {
	if len(supplied) == 0 {
		if len(params) == 0 {
			return nil
		}
		args := make([]types.Type, len(params))
		for i := range params {
			args[i] = types.AnyType
		}
		return args
	}
	if len(supplied) != len(params) {
		c.errorf(span, report.CodeArityMismatch, "expected %d type argument(s), got %d", len(params), len(supplied))
	}
	args := make([]types.Type, len(params))
	for i := range params {
		if i < len(supplied) {
			args[i] = c.elaborateType(mod, supplied[i], gen)
		} else {
			args[i] = types.AnyType
		}
	}
	return args
}

func genericNames(params []ast.GenericParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func primitiveByName(name string) (types.Type, bool) {
	switch name {
	case "int":
		return types.Primitive(types.PrimInt), true
	case "float":
		return types.Primitive(types.PrimFloat), true
	case "bool":
		return types.Primitive(types.PrimBool), true
	case "string":
		return types.Primitive(types.PrimString), true
	default:
		return nil, false
	}
}

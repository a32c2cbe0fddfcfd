package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// checkItem dispatches over a module's top-level items. Declared-type
// construction (structTemplate/enumTemplate/funcSig) is lazy and memoized
// on declTypes, so an item referenced before its own declaration is
// checked (eg. mutually-recursive struct fields) still elaborates
// correctly; body-checking below still runs once per item in source order.
func (c *Checker) checkItem(mod *depm.Module, item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionItem:
		c.checkFunction(mod, it)
	case *ast.StructItem:
		sym := c.topSymbol(mod, it.Name)
		c.structTemplate(mod, sym, it)
		c.pushScope()
		for _, field := range it.Fields {
			if field.Default != nil {
				c.checkExpr(mod, field.Default)
			}
		}
		c.popScope()
		for _, m := range it.Methods {
			c.checkFunction(mod, m)
		}
	case *ast.EnumItem:
		sym := c.topSymbol(mod, it.Name)
		c.enumTemplate(mod, sym, it)
	case *ast.TypeAliasItem:
		sym := c.topSymbol(mod, it.Name)
		c.aliasTarget(mod, sym, it)
	case *ast.LetItem:
		sym := c.topSymbol(mod, it.Name)
		c.letType(mod, sym, it)
	case *ast.ExprItem:
		c.pushScope()
		c.checkExpr(mod, it.Value)
		c.popScope()
	case *ast.UseItem, *ast.PubUseItem:
		// nothing to check
	}
}

// topSymbol looks up one of this module's own top-level names, which
// collectModule guarantees is present.
func (c *Checker) topSymbol(mod *depm.Module, name string) *resolve.Symbol {
	sym, _ := c.resolved.ModuleScopes[mod].Lookup(name)
	return sym
}

// structTemplate builds (and memoizes) the uninstantiated StructType for a
// struct declaration: field types reference the declaration's own
// GenericRef placeholders rather than concrete arguments.
func (c *Checker) structTemplate(mod *depm.Module, sym *resolve.Symbol, decl *ast.StructItem) *types.StructType {
	if t, ok := c.declTypes[sym]; ok {
		return t.(*types.StructType)
	}
	gen := genericEnvOf(decl.Generics)
	args := genericRefArgs(decl.Generics)

	// Register a fields-less placeholder before elaborating fields, so a
	// field typed as this same struct (a recursive/self-referential field
	// behind a List/Dict/pointer-shaped container) finds a template instead
	// of recursing forever.
	tmpl := types.NewStructType(decl.Name, decl, args, nil)
	c.declTypes[sym] = tmpl

	fields := make([]types.StructField, len(decl.Fields))
	for i, f := range decl.Fields {
		fields[i] = types.StructField{Name: f.Name, Type: c.elaborateType(mod, f.Type, gen)}
	}
	tmpl.Fields = fields
	return tmpl
}

// enumTemplate builds (and memoizes) the uninstantiated EnumType for an
// enum declaration.
func (c *Checker) enumTemplate(mod *depm.Module, sym *resolve.Symbol, decl *ast.EnumItem) *types.EnumType {
	if t, ok := c.declTypes[sym]; ok {
		return t.(*types.EnumType)
	}
	gen := genericEnvOf(decl.Generics)
	args := genericRefArgs(decl.Generics)

	tmpl := types.NewEnumType(decl.Name, decl, args, nil)
	c.declTypes[sym] = tmpl

	variants := make([]types.EnumVariant, len(decl.Variants))
	for i, v := range decl.Variants {
		payload := make([]types.Type, len(v.Payload))
		for j, p := range v.Payload {
			payload[j] = c.elaborateType(mod, p, gen)
		}
		variants[i] = types.EnumVariant{Name: v.Name, Payload: payload}
	}
	tmpl.Variants = variants
	return tmpl
}

// aliasTarget elaborates a type alias's target, detecting alias cycles
// (`type A = B`, `type B = A`) the same way depm's loader detects import
// cycles: a currently-in-progress marker re-entered before completion.
func (c *Checker) aliasTarget(mod *depm.Module, sym *resolve.Symbol, decl *ast.TypeAliasItem) types.Type {
	if t, ok := c.declTypes[sym]; ok {
		return t
	}
	if c.aliasInProgress[sym] {
		c.errorf(decl.Span(), report.CodeOccursCheck, "type alias %q is defined in terms of itself", decl.Name)
		return types.AnyType
	}
	c.aliasInProgress[sym] = true
	gen := genericEnvOf(decl.Generics)
	target := c.elaborateType(mod, decl.Target, gen)
	delete(c.aliasInProgress, sym)
	c.declTypes[sym] = target
	return target
}

func genericEnvOf(params []ast.GenericParam) genericEnv {
	if len(params) == 0 {
		return nil
	}
	gen := make(genericEnv, len(params))
	for _, p := range params {
		gen[p.Name] = &types.GenericRef{Name: p.Name}
	}
	return gen
}

func genericRefArgs(params []ast.GenericParam) []types.Type {
	if len(params) == 0 {
		return nil
	}
	args := make([]types.Type, len(params))
	for i, p := range params {
		args[i] = &types.GenericRef{Name: p.Name}
	}
	return args
}

// letType builds (and memoizes) a module-scope let binding's type: the
// init expression's checked type, narrowed against a declared annotation
// if one was given. Memoized like aliasTarget so a let referenced by an
// earlier-declared function (forward reference) checks its initializer
// exactly once.
func (c *Checker) letType(mod *depm.Module, sym *resolve.Symbol, decl *ast.LetItem) types.Type {
	if t, ok := c.declTypes[sym]; ok {
		return t
	}
	c.pushScope()
	c.checkExpr(mod, decl.Init)
	declared := c.typeOf(decl.Init)
	if decl.Type != nil {
		declared = c.elaborateType(mod, decl.Type, nil)
		c.mustUnifyWiden(decl.Init, declared)
	}
	c.popScope()
	c.declTypes[sym] = declared
	return declared
}

// resolveStructPath resolves a StructLit's Path the same way elaborateNamed
// resolves a NamedType's path: a bare name against mod's own scope, a
// dotted path against the module the leading segments name.
func (c *Checker) resolveStructPath(mod *depm.Module, path []string, span report.Span) (*ast.StructItem, *depm.Module, *resolve.Symbol) {
	target := mod
	name := path[0]
	if len(path) > 1 {
		var err error
		target, err = c.loader.ResolveModule(path[:len(path)-1], mod.AbsPath)
		if err != nil {
			c.errorf(span, report.CodeUnresolvedName, "%s", err.Error())
			return nil, nil, nil
		}
		name = path[len(path)-1]
	}
	sym, ok := c.resolved.ModuleScopes[target].Lookup(name)
	if !ok || (target != mod && !sym.Public) {
		c.errorf(span, report.CodeUnresolvedName, "undefined struct %q", name)
		return nil, nil, nil
	}
	decl, ok := sym.Node.(*ast.StructItem)
	if !ok {
		c.errorf(span, report.CodeTypeMismatch, "%q is not a struct", name)
		return nil, nil, nil
	}
	return decl, target, sym
}

// funcSig builds (and memoizes) a function or method's signature as a
// FuncType, with `self` excluded (the checker binds self's type directly
// from the receiver struct instead of threading it through FuncType).
func (c *Checker) funcSig(mod *depm.Module, decl *ast.FunctionItem) *types.FuncType {
	if sig, ok := c.funcSigs[decl]; ok {
		return sig
	}
	gen := genericEnvOf(decl.Generics)
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		if p.Type != nil {
			params[i] = c.elaborateType(mod, p.Type, gen)
		} else {
			params[i] = types.AnyType
		}
	}
	ret := types.Type(types.Primitive(types.PrimUnit))
	if decl.Ret != nil {
		ret = c.elaborateType(mod, decl.Ret, gen)
	}
	sig := &types.FuncType{Params: params, Ret: ret}
	c.funcSigs[decl] = sig
	return sig
}

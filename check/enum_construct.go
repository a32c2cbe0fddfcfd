package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// enumVariantTarget reports whether ma is `EnumName.Variant`: its root
// names an enum type symbol (as opposed to a module alias or a value)
// and its field names one of that enum's variants. Mirrors
// resolveStructPath's path-to-declaration resolution, but for the one
// case resolve.Bind never records a binding for: a bare type name used
// as a value-constructing callee.
func (c *Checker) enumVariantTarget(decl *ast.EnumItem, field string) (ast.VariantDecl, int, bool) {
	for i, v := range decl.Variants {
		if v.Name == field {
			return v, i, true
		}
	}
	return ast.VariantDecl{}, -1, false
}

// enumRootDecl resolves ma.Root to the enum declaration it names, or nil
// if it names anything else (a value, a module alias, an unresolved
// name).
func (c *Checker) enumRootDecl(ma *ast.MemberAccess) (*ast.EnumItem, *resolve.Symbol) {
	rootIdent, ok := ma.Root.(*ast.Identifier)
	if !ok {
		return nil, nil
	}
	sym := c.symbolOf(rootIdent)
	if sym == nil || sym.Kind != resolve.SymType {
		return nil, nil
	}
	decl, ok := sym.Node.(*ast.EnumItem)
	if !ok {
		return nil, nil
	}
	return decl, sym
}

// checkEnumConstruct types `EnumName.Variant(args)`, inferring the enum's
// generic arguments from the supplied payload values the same way
// checkStructLit infers a struct literal's, and recording which variant
// was constructed for the lowerer (no AST shape exists to tell a variant
// construction call apart from an ordinary method call once checked, so
// the index is kept on the side rather than re-derived during lowering).
func (c *Checker) checkEnumConstruct(mod *depm.Module, e *ast.Call, ma *ast.MemberAccess, decl *ast.EnumItem, sym *resolve.Symbol, variant ast.VariantDecl, index int) types.Type {
	tmpl := c.enumTemplate(mod, sym, decl)
	vtmpl, _ := tmpl.VariantByName(variant.Name)

	if len(e.Args) != len(vtmpl.Payload) {
		c.errorf(e.Span(), report.CodeArityMismatch, "variant %q takes %d value(s), got %d", variant.Name, len(vtmpl.Payload), len(e.Args))
	}

	bound := map[string]types.Type{}
	for i, a := range e.Args {
		at := c.checkExpr(mod, a)
		if i < len(vtmpl.Payload) {
			inferGeneric(vtmpl.Payload[i], at, bound)
		}
	}

	args := make([]types.Type, len(decl.Generics))
	for i, p := range decl.Generics {
		if t, ok := bound[p.Name]; ok {
			args[i] = t
		} else {
			args[i] = types.AnyType
		}
	}

	inst := tmpl
	if len(decl.Generics) > 0 {
		inst = types.Apply(tmpl, types.NewSubst(genericNames(decl.Generics), args)).(*types.EnumType)
	}

	ivariant, _ := inst.VariantByName(variant.Name)
	for i, a := range e.Args {
		if i < len(ivariant.Payload) {
			c.mustUnifyWiden(a, ivariant.Payload[i])
		}
	}

	c.result.EnumVariant[e.ID()] = index
	c.result.EnumVariant[ma.ID()] = index
	return c.set(e, inst)
}

// checkEnumUnitRef types a bare `EnumName.Variant` reference to a
// payload-less variant, used directly as a value rather than called.
func (c *Checker) checkEnumUnitRef(mod *depm.Module, ma *ast.MemberAccess, decl *ast.EnumItem, sym *resolve.Symbol, variant ast.VariantDecl, index int) types.Type {
	tmpl := c.enumTemplate(mod, sym, decl)
	if len(variant.Payload) > 0 {
		c.errorf(ma.Span(), report.CodeArityMismatch, "variant %q takes %d value(s), got 0", variant.Name, len(variant.Payload))
	}
	c.result.EnumVariant[ma.ID()] = index
	return c.set(ma, tmpl)
}

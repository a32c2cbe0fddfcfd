package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/types"
)

// bindPattern checks pat against an already-known scrutinee type, defining
// every capture it introduces in the current scope. Callers push their own
// scope first (a for-loop target, a comprehension target, a match arm).
func (c *Checker) bindPattern(mod *depm.Module, pat ast.Pattern, scrutineeType types.Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		// binds nothing
	case *ast.BindingPattern:
		c.defineLocal(p.Name, scrutineeType)
	case *ast.LiteralPattern:
		lt := c.checkLiteral(p.Lit)
		c.mustUnify(p.Span(), scrutineeType, lt)
	case *ast.EnumVariantPattern:
		c.bindEnumVariantPattern(mod, p, scrutineeType)
	case *ast.StructDestructurePattern:
		c.bindStructDestructurePattern(mod, p, scrutineeType)
	case *ast.ListPattern:
		c.bindListPattern(mod, p, scrutineeType)
	}
}

// bindEnumVariantPattern matches scrutineeType (which checking the match's
// scrutinee already pinned to a concrete enum) against the variant named
// by the pattern's last path segment, typing each sub-pattern against that
// variant's payload.
func (c *Checker) bindEnumVariantPattern(mod *depm.Module, p *ast.EnumVariantPattern, scrutineeType types.Type) {
	et, ok := types.InnerType(scrutineeType).(*types.EnumType)
	if !ok {
		if !types.Equals(scrutineeType, types.AnyType) {
			c.errorf(p.Span(), report.CodeTypeMismatch, "%s is not an enum", scrutineeType.Repr())
		}
		for _, sp := range p.SubPats {
			c.bindPattern(mod, sp, types.AnyType)
		}
		return
	}

	name := p.Path[len(p.Path)-1]
	variant, ok := et.VariantByName(name)
	if !ok {
		c.errorf(p.Span(), report.CodeUnknownField, "%s has no variant %q", et.Repr(), name)
		for _, sp := range p.SubPats {
			c.bindPattern(mod, sp, types.AnyType)
		}
		return
	}

	if len(p.SubPats) != len(variant.Payload) {
		c.errorf(p.Span(), report.CodeArityMismatch, "variant %q takes %d value(s), got %d", name, len(variant.Payload), len(p.SubPats))
	}
	for i, sp := range p.SubPats {
		payload := types.Type(types.AnyType)
		if i < len(variant.Payload) {
			payload = variant.Payload[i]
		}
		c.bindPattern(mod, sp, payload)
	}
}

func (c *Checker) bindStructDestructurePattern(mod *depm.Module, p *ast.StructDestructurePattern, scrutineeType types.Type) {
	st, ok := types.InnerType(scrutineeType).(*types.StructType)
	if !ok {
		if !types.Equals(scrutineeType, types.AnyType) {
			c.errorf(p.Span(), report.CodeTypeMismatch, "%s is not a struct", scrutineeType.Repr())
		}
		for _, name := range p.FieldOrder {
			c.bindPattern(mod, p.Fields[name], types.AnyType)
		}
		return
	}

	for _, name := range p.FieldOrder {
		field, ok := st.FieldByName(name)
		if !ok {
			c.errorf(p.Span(), report.CodeUnknownField, "%s has no field %q", st.Repr(), name)
			c.bindPattern(mod, p.Fields[name], types.AnyType)
			continue
		}
		c.bindPattern(mod, p.Fields[name], field.Type)
	}
}

func (c *Checker) bindListPattern(mod *depm.Module, p *ast.ListPattern, scrutineeType types.Type) {
	elem := types.Type(types.AnyType)
	if lt, ok := types.InnerType(scrutineeType).(*types.ListType); ok {
		elem = lt.Elem
	} else if !types.Equals(scrutineeType, types.AnyType) {
		c.errorf(p.Span(), report.CodeTypeMismatch, "%s is not a list", scrutineeType.Repr())
	}

	for _, sp := range p.Head {
		c.bindPattern(mod, sp, elem)
	}
	for _, sp := range p.Tail {
		c.bindPattern(mod, sp, elem)
	}
	if p.Rest != nil {
		c.defineLocal(p.Rest.Name, &types.ListType{Elem: elem})
	}
}

// checkMatch types a match expression: every live (non-diverging) arm's
// body must join to a common type, and an enum scrutinee with no
// wildcard/binding catch-all arm is checked for variant coverage
// (spec.md §4.E exhaustiveness; a case dominated by an earlier catch-all
// is flagged unreachable).
func (c *Checker) checkMatch(mod *depm.Module, e *ast.Match) types.Type {
	scrutType := c.checkExpr(mod, e.Scrutinee)

	et, isEnum := types.InnerType(scrutType).(*types.EnumType)
	var covered map[string]bool
	if isEnum {
		covered = map[string]bool{}
	}

	joined := types.Type(types.AnyType)
	anyLive := false
	catchAllSeen := false

	for _, mc := range e.Cases {
		if catchAllSeen {
			c.warnf(mc.Pattern.Span(), report.CodeUnreachableArm, "unreachable match arm")
		}

		c.pushScope()
		c.bindPattern(mod, mc.Pattern, scrutType)
		t, div := c.checkBlock(mod, mc.Body)
		c.popScope()
		if !div {
			joined, anyLive = c.joinBranch(joined, anyLive, t)
		}

		switch pat := mc.Pattern.(type) {
		case *ast.WildcardPattern, *ast.BindingPattern:
			catchAllSeen = true
		case *ast.EnumVariantPattern:
			if isEnum {
				covered[pat.Path[len(pat.Path)-1]] = true
			}
		}
	}

	if isEnum && !catchAllSeen {
		for _, v := range et.Variants {
			if !covered[v.Name] {
				c.warnf(e.Span(), report.CodeNonExhaustive, "match on %s is not exhaustive: missing case for %q", et.Repr(), v.Name)
			}
		}
	}

	if !anyLive {
		return c.set(e, types.AnyType)
	}
	return c.set(e, joined)
}

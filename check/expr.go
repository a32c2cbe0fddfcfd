package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// checkExpr checks one expression and records its elaborated type in the
// result side-table, returning it for the caller's own use without a
// second side-table lookup.
func (c *Checker) checkExpr(mod *depm.Module, expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.checkLiteral(e)
	case *ast.Identifier:
		return c.checkIdentifier(mod, e)
	case *ast.MemberAccess:
		return c.checkMemberAccess(mod, e)
	case *ast.Call:
		return c.checkCall(mod, e)
	case *ast.Index:
		return c.checkIndex(mod, e)
	case *ast.Unary:
		return c.checkUnary(mod, e)
	case *ast.Binary:
		return c.checkBinary(mod, e)
	case *ast.Logical:
		return c.checkLogical(mod, e)
	case *ast.Is:
		return c.checkIs(mod, e)
	case *ast.Range:
		return c.checkRange(mod, e)
	case *ast.ListLit:
		return c.checkListLit(mod, e)
	case *ast.DictLit:
		return c.checkDictLit(mod, e)
	case *ast.StructLit:
		return c.checkStructLit(mod, e)
	case *ast.Lambda:
		return c.checkLambda(mod, e)
	case *ast.Await:
		return c.checkAwait(mod, e)
	case *ast.Spawn:
		return c.checkSpawn(mod, e)
	case *ast.Match:
		return c.checkMatch(mod, e)
	case *ast.FString:
		return c.checkFString(mod, e)
	case *ast.ListComprehension:
		return c.checkListComprehension(mod, e)
	case *ast.DictComprehension:
		return c.checkDictComprehension(mod, e)
	default:
		return types.AnyType
	}
}

func (c *Checker) checkLiteral(e *ast.Literal) types.Type {
	switch e.Kind {
	case ast.LitInt:
		return c.set(e, types.Primitive(types.PrimInt))
	case ast.LitFloat:
		return c.set(e, types.Primitive(types.PrimFloat))
	case ast.LitString:
		return c.set(e, types.Primitive(types.PrimString))
	case ast.LitBool:
		return c.set(e, types.Primitive(types.PrimBool))
	default: // LitNone: unifies with anything, lowered as a null payload.
		return c.set(e, types.AnyType)
	}
}

// checkIdentifier resolves a bare name against the checker's own local
// scope stack first (parameters, let bindings, self, pattern captures),
// falling back to the module-scope symbol resolve.Bind already attached
// to this node.
func (c *Checker) checkIdentifier(mod *depm.Module, e *ast.Identifier) types.Type {
	if t, ok := c.lookupLocal(e.Name); ok {
		return c.set(e, t)
	}
	if t, handled := c.builtinValueType(e.Name); handled {
		return c.set(e, t)
	}
	sym := c.symbolOf(e)
	if sym == nil {
		return c.set(e, types.AnyType)
	}
	return c.set(e, c.valueTypeOf(mod, sym, e.Span()))
}

// valueTypeOf types a resolved value symbol: a function reference (its
// signature) or a module-scope let (its declared/inferred type).
func (c *Checker) valueTypeOf(mod *depm.Module, sym *resolve.Symbol, span report.Span) types.Type {
	switch decl := sym.Node.(type) {
	case *ast.FunctionItem:
		return c.funcSig(mod, decl)
	case *ast.LetItem:
		return c.letType(mod, sym, decl)
	case nil:
		if sym.FfiPath != "" {
			sig, err := c.oracle.Lookup(sym.FfiPath)
			if err != nil {
				c.errorf(span, report.CodeFfiLookupFailed, "%s", err.Error())
				return types.AnyType
			}
			return &types.FuncType{Params: sig.Params, Ret: sig.Ret}
		}
		c.errorf(span, report.CodeUnresolvedName, "%q is not a value", sym.Name)
		return types.AnyType
	default:
		c.errorf(span, report.CodeUnresolvedName, "%q is not a value", sym.Name)
		return types.AnyType
	}
}

// checkMemberAccess handles both shapes bindMemberAccess left for the
// checker: a module-alias member (already resolved onto this node's own
// id by resolve.Bind) and a struct-value field access (left unresolved,
// since resolve has no type information to find the field with).
func (c *Checker) checkMemberAccess(mod *depm.Module, e *ast.MemberAccess) types.Type {
	if sym, ok := c.resolved.Bindings[e.ID()]; ok {
		target := mod
		if rootSym := c.symbolOf(e.Root); rootSym != nil && rootSym.Kind == resolve.SymModule {
			target = rootSym.Module
		}
		return c.set(e, c.valueTypeOf(target, sym, e.Span()))
	}

	if decl, sym := c.enumRootDecl(e); decl != nil {
		if variant, idx, ok := c.enumVariantTarget(decl, e.Field); ok {
			return c.checkEnumUnitRef(mod, e, decl, sym, variant, idx)
		}
	}

	rootType := c.checkExpr(mod, e.Root)
	st, ok := types.InnerType(rootType).(*types.StructType)
	if !ok {
		if types.Equals(rootType, types.AnyType) {
			return c.set(e, types.AnyType)
		}
		c.errorf(e.Span(), report.CodeUnknownField, "%s has no field %q", rootType.Repr(), e.Field)
		return c.set(e, types.AnyType)
	}
	field, ok := st.FieldByName(e.Field)
	if !ok {
		c.errorf(e.Span(), report.CodeUnknownField, "%s has no field %q", st.Repr(), e.Field)
		return c.set(e, types.AnyType)
	}
	c.result.Fields[e.ID()] = field
	return c.set(e, field.Type)
}

func (c *Checker) checkIndex(mod *depm.Module, e *ast.Index) types.Type {
	seqType := c.checkExpr(mod, e.Seq)
	idxType := c.checkExpr(mod, e.Index)
	switch t := types.InnerType(seqType).(type) {
	case *types.ListType:
		c.mustUnify(e.Index.Span(), types.Primitive(types.PrimInt), idxType)
		return c.set(e, t.Elem)
	case *types.DictType:
		c.mustUnify(e.Index.Span(), t.Key, idxType)
		return c.set(e, t.Value)
	case types.Primitive:
		if t == types.PrimString {
			c.mustUnify(e.Index.Span(), types.Primitive(types.PrimInt), idxType)
			return c.set(e, types.Primitive(types.PrimString))
		}
	}
	if types.Equals(seqType, types.AnyType) {
		return c.set(e, types.AnyType)
	}
	c.errorf(e.Span(), report.CodeTypeMismatch, "%s is not indexable", seqType.Repr())
	return c.set(e, types.AnyType)
}

func (c *Checker) checkLogical(mod *depm.Module, e *ast.Logical) types.Type {
	lt := c.checkExpr(mod, e.Lhs)
	rt := c.checkExpr(mod, e.Rhs)
	c.mustUnify(e.Lhs.Span(), types.Primitive(types.PrimBool), lt)
	c.mustUnify(e.Rhs.Span(), types.Primitive(types.PrimBool), rt)
	return c.set(e, types.Primitive(types.PrimBool))
}

// checkIs types `a is b` / `a is not b`. Checked against None, this is
// just an ordinary unification per spec.md §4.E.
func (c *Checker) checkIs(mod *depm.Module, e *ast.Is) types.Type {
	lt := c.checkExpr(mod, e.Lhs)
	rt := c.checkExpr(mod, e.Rhs)
	c.mustUnify(e.Span(), lt, rt)
	return c.set(e, types.Primitive(types.PrimBool))
}

func (c *Checker) checkRange(mod *depm.Module, e *ast.Range) types.Type {
	c.checkExpr(mod, e.Lo)
	c.checkExpr(mod, e.Hi)
	c.mustUnify(e.Lo.Span(), types.Primitive(types.PrimInt), c.typeOf(e.Lo))
	c.mustUnify(e.Hi.Span(), types.Primitive(types.PrimInt), c.typeOf(e.Hi))
	return c.set(e, &types.ListType{Elem: types.Primitive(types.PrimInt)})
}

func (c *Checker) checkListLit(mod *depm.Module, e *ast.ListLit) types.Type {
	if len(e.Elems) == 0 {
		return c.set(e, &types.ListType{Elem: types.AnyType})
	}
	elemType := c.checkExpr(mod, e.Elems[0])
	for _, el := range e.Elems[1:] {
		c.checkExpr(mod, el)
		c.mustUnifyWiden(el, elemType)
	}
	return c.set(e, &types.ListType{Elem: elemType})
}

func (c *Checker) checkDictLit(mod *depm.Module, e *ast.DictLit) types.Type {
	if len(e.Entries) == 0 {
		return c.set(e, &types.DictType{Key: types.AnyType, Value: types.AnyType})
	}
	kt := c.checkExpr(mod, e.Entries[0].Key)
	vt := c.checkExpr(mod, e.Entries[0].Value)
	for _, entry := range e.Entries[1:] {
		c.checkExpr(mod, entry.Key)
		c.checkExpr(mod, entry.Value)
		c.mustUnifyWiden(entry.Key, kt)
		c.mustUnifyWiden(entry.Value, vt)
	}
	return c.set(e, &types.DictType{Key: kt, Value: vt})
}

// checkStructLit resolves a struct literal's declaration, infers its
// generic arguments from the shape of the supplied field values (spec.md
// §4.E: struct-literal generics are inferred, not written out), and
// verifies every non-defaulted field is covered by a literal field, the
// spread base, or a declared default.
func (c *Checker) checkStructLit(mod *depm.Module, e *ast.StructLit) types.Type {
	decl, declMod, sym := c.resolveStructPath(mod, e.Path, e.Span())
	if decl == nil {
		for _, name := range e.FieldOrder {
			c.checkExpr(mod, e.Fields[name])
		}
		if e.Spread != nil {
			c.checkExpr(mod, e.Spread)
		}
		return c.set(e, types.AnyType)
	}
	tmpl := c.structTemplate(declMod, sym, decl)

	var spreadType types.Type
	if e.Spread != nil {
		spreadType = c.checkExpr(mod, e.Spread)
	}

	bound := map[string]types.Type{}
	for _, name := range e.FieldOrder {
		valExpr := e.Fields[name]
		valType := c.checkExpr(mod, valExpr)
		field, ok := tmpl.FieldByName(name)
		if !ok {
			c.errorf(valExpr.Span(), report.CodeUnknownField, "%s has no field %q", decl.Name, name)
			continue
		}
		inferGeneric(field.Type, valType, bound)
		if _, isRef := field.Type.(*types.GenericRef); !isRef {
			c.mustUnifyWiden(valExpr, field.Type)
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
		inst = types.Apply(tmpl, types.NewSubst(genericNames(decl.Generics), args)).(*types.StructType)
	}

	for _, f := range inst.Fields {
		if _, given := e.Fields[f.Name]; given {
			continue
		}
		if e.Spread != nil {
			continue
		}
		if !structFieldHasDefault(decl, f.Name) {
			c.errorf(e.Span(), report.CodeMissingField, "missing field %q", f.Name)
		}
	}
	if e.Spread != nil {
		c.mustUnify(e.Spread.Span(), inst, spreadType)
	}

	return c.set(e, inst)
}

func structFieldHasDefault(decl *ast.StructItem, name string) bool {
	for _, f := range decl.Fields {
		if f.Name == name {
			return f.Default != nil
		}
	}
	return false
}

// checkLambda checks an anonymous function. Unannotated parameters default
// to Any; `return` inside a lambda unifies against an Any placeholder
// rather than a declared return type, since lambdas have no return
// annotation to check against (an accepted simplification, see DESIGN.md).
func (c *Checker) checkLambda(mod *depm.Module, e *ast.Lambda) types.Type {
	c.pushScope()
	params := make([]types.Type, len(e.Params))
	for i, p := range e.Params {
		pt := types.Type(types.AnyType)
		if p.Type != nil {
			pt = c.elaborateType(mod, p.Type, nil)
		}
		if p.Default != nil {
			c.checkExpr(mod, p.Default)
			c.mustUnifyWiden(p.Default, pt)
		}
		params[i] = pt
		c.defineLocal(p.Name, pt)
	}

	savedRet, savedLoop, savedInFunc := c.enclosingReturn, c.loopDepth, c.inFunction
	c.enclosingReturn = types.AnyType
	c.loopDepth = 0
	c.inFunction = true
	ret, _ := c.checkBlock(mod, e.Body)
	c.enclosingReturn, c.loopDepth, c.inFunction = savedRet, savedLoop, savedInFunc
	c.popScope()

	return c.set(e, &types.FuncType{Params: params, Ret: ret})
}

func (c *Checker) checkSpawn(mod *depm.Module, e *ast.Spawn) types.Type {
	opType := c.checkExpr(mod, e.Operand)
	return c.set(e, &types.TaskType{Result: opType})
}

// checkAwait enforces spec.md §4.E's async typing: `await e` where
// `e : Task<T>` yields `T`; await is an error outside a function body,
// where there is no enclosing task to suspend.
func (c *Checker) checkAwait(mod *depm.Module, e *ast.Await) types.Type {
	if !c.inFunction {
		c.errorf(e.Span(), report.CodeAwaitOutsideAsync, "await is not allowed outside a function body")
	}
	opType := c.checkExpr(mod, e.Operand)
	tt, ok := types.InnerType(opType).(*types.TaskType)
	if !ok {
		if types.Equals(opType, types.AnyType) {
			return c.set(e, types.AnyType)
		}
		c.errorf(e.Span(), report.CodeTypeMismatch, "cannot await %s: not a Task", opType.Repr())
		return c.set(e, types.AnyType)
	}
	return c.set(e, tt.Result)
}

// checkFString types every embedded piece, marking the ones that are not
// already string-typed so the lowerer inserts a to_string call around
// them, in source order (spec.md §4.F's f-string lowering).
func (c *Checker) checkFString(mod *depm.Module, e *ast.FString) types.Type {
	for _, piece := range e.Pieces {
		if piece.Expr == nil {
			continue
		}
		t := c.checkExpr(mod, piece.Expr)
		if !types.Equals(t, types.Primitive(types.PrimString)) {
			c.result.Stringify[piece.Expr.ID()] = true
		}
	}
	return c.set(e, types.Primitive(types.PrimString))
}

func (c *Checker) checkListComprehension(mod *depm.Module, e *ast.ListComprehension) types.Type {
	iterType := c.checkExpr(mod, e.Iter)
	elemType := c.forElemType(e.Iter.Span(), iterType)
	c.pushScope()
	c.bindPattern(mod, e.Target, elemType)
	if e.Filter != nil {
		c.checkExpr(mod, e.Filter)
		c.mustUnify(e.Filter.Span(), types.Primitive(types.PrimBool), c.typeOf(e.Filter))
	}
	yieldType := c.checkExpr(mod, e.Yield)
	c.popScope()
	return c.set(e, &types.ListType{Elem: yieldType})
}

func (c *Checker) checkDictComprehension(mod *depm.Module, e *ast.DictComprehension) types.Type {
	iterType := c.checkExpr(mod, e.Iter)
	elemType := c.forElemType(e.Iter.Span(), iterType)
	c.pushScope()
	c.bindPattern(mod, e.Target, elemType)
	if e.Filter != nil {
		c.checkExpr(mod, e.Filter)
		c.mustUnify(e.Filter.Span(), types.Primitive(types.PrimBool), c.typeOf(e.Filter))
	}
	kt := c.checkExpr(mod, e.KeyExpr)
	vt := c.checkExpr(mod, e.ValExpr)
	c.popScope()
	return c.set(e, &types.DictType{Key: kt, Value: vt})
}

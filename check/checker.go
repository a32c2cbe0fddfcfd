// Package check implements OtterLang's bidirectional, unification-based
// type checker. It walks the resolved AST module-by-module, attaching
// elaborated types to a side-table keyed by ast.NodeID rather than
// mutating nodes, per spec.md §9. Grounded on bootstrap/walk/*'s Walker:
// a per-definition pass over a local scope stack, reporting through a
// shared sink and substituting the poisoned Any type to keep walking
// after an error instead of aborting the whole pass (bootstrap/walk
// aborts the current definition via panic/recover; this checker instead
// follows resolve's non-panicking "record + substitute Any" convention,
// which the rest of this codebase already uses end to end).
package check

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ffi"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
	"github.com/otterlang/otterc/types"
)

// Result is the output of checking a module graph.
type Result struct {
	// Types maps every checked expression's NodeID to its elaborated type.
	Types map[ast.NodeID]types.Type

	// Widen marks expressions the lowerer must insert an int->float
	// widening cast around (spec.md §4.F "numeric coercion").
	Widen map[ast.NodeID]bool

	// Stringify marks f-string embedded-expression pieces that need a
	// runtime to_string call inserted around them during lowering
	// (spec.md §4.E f-strings; every non-string piece needs one).
	Stringify map[ast.NodeID]bool

	// Fields records, for an *ast.MemberAccess on a struct value (as
	// opposed to a module alias, which resolve.Bind already handles),
	// which struct field it refers to.
	Fields map[ast.NodeID]types.StructField

	// EnumVariant records, for an `EnumName.Variant` MemberAccess or the
	// Call wrapping one, which of the enum's variants (by index) it
	// constructs.
	EnumVariant map[ast.NodeID]int

	// FuncSigs and DeclTypes mirror Checker's own declTypes/funcSigs
	// caches, exposed so the lowerer can recover a function's elaborated
	// signature or a top-level symbol's elaborated type without redoing
	// the elaboration work.
	FuncSigs  map[*ast.FunctionItem]*types.FuncType
	DeclTypes map[*resolve.Symbol]types.Type
}

// FuncSig returns fn's elaborated signature, computed during Check.
func (r *Result) FuncSig(fn *ast.FunctionItem) *types.FuncType {
	return r.FuncSigs[fn]
}

// DeclType returns a top-level symbol's elaborated type (a struct/enum
// template, an alias target, or a let's declared/inferred type), if sym
// was checked.
func (r *Result) DeclType(sym *resolve.Symbol) (types.Type, bool) {
	t, ok := r.DeclTypes[sym]
	return t, ok
}

// Checker checks one loaded module graph.
type Checker struct {
	sink     *report.Sink
	loader   *depm.Loader
	resolved *resolve.Result
	result   *Result
	oracle   ffi.Oracle

	// localScopes is the checker's own lexical scope stack of inferred
	// variable types (see env.go), independent of resolve.Scope.
	localScopes []map[string]types.Type

	// declTypes caches the elaborated declared type of a top-level
	// struct/enum/alias symbol: a generic struct/enum's uninstantiated
	// template with GenericRef placeholders for its own type parameters,
	// or an alias's elaborated target.
	declTypes map[*resolve.Symbol]types.Type

	// funcSigs caches a function or method's elaborated FuncType, keyed by
	// declaration rather than resolve.Symbol since methods are never
	// themselves registered as module-scope symbols (they're reached
	// through `value.method()`, not by bare name).
	funcSigs map[*ast.FunctionItem]*types.FuncType

	// aliasInProgress marks the type aliases whose target is currently
	// being elaborated, so aliasTarget can detect an alias cycle the same
	// way depm's import-cycle search does (the finished target is cached
	// in declTypes).
	aliasInProgress map[*resolve.Symbol]bool

	enclosingReturn types.Type
	loopDepth       int

	// inFunction reports whether checking is currently inside a function
	// or method body, as opposed to a module-scope `let` initializer.
	// `await` at module scope has no enclosing task scheduler to suspend
	// on, so it is rejected with CodeAwaitOutsideAsync (spec.md §4.E:
	// "elsewhere await is an error").
	inFunction bool
}

// NewChecker creates a checker over an already name-resolved module graph.
// oracle answers FFI symbol lookups for `rust:` paths; pass
// ffi.NewStaticOracle(nil) when the manifest declares none.
func NewChecker(sink *report.Sink, loader *depm.Loader, resolved *resolve.Result, oracle ffi.Oracle) *Checker {
	declTypes := map[*resolve.Symbol]types.Type{}
	funcSigs := map[*ast.FunctionItem]*types.FuncType{}
	return &Checker{
		sink:     sink,
		loader:   loader,
		resolved: resolved,
		oracle:   oracle,
		result: &Result{
			Types:       map[ast.NodeID]types.Type{},
			Widen:       map[ast.NodeID]bool{},
			Stringify:   map[ast.NodeID]bool{},
			Fields:      map[ast.NodeID]types.StructField{},
			EnumVariant: map[ast.NodeID]int{},
			FuncSigs:    funcSigs,
			DeclTypes:   declTypes,
		},
		declTypes:       declTypes,
		funcSigs:        funcSigs,
		aliasInProgress: map[*resolve.Symbol]bool{},
	}
}

// Check type-checks every module the loader has loaded.
func (c *Checker) Check(modules []*depm.Module) *Result {
	for _, mod := range modules {
		for _, f := range mod.Files {
			for _, item := range f.AST.Items {
				c.checkItem(mod, item)
			}
		}
	}
	return c.result
}

// -----------------------------------------------------------------------------

// set records t as expr's elaborated type and returns it, the common
// shape of every checkExpr case.
func (c *Checker) set(expr ast.Expr, t types.Type) types.Type {
	c.result.Types[expr.ID()] = t
	return t
}

func (c *Checker) typeOf(expr ast.Expr) types.Type {
	if t, ok := c.result.Types[expr.ID()]; ok {
		return t
	}
	return types.AnyType
}

func (c *Checker) errorf(span report.Span, code report.Code, format string, args ...any) {
	c.sink.Add(report.Errorf(code, span, format, args...))
}

func (c *Checker) warnf(span report.Span, code report.Code, format string, args ...any) {
	c.sink.Add(report.Warnf(code, span, format, args...))
}

// mustUnify unifies expected and actual, reporting a TypeMismatch and
// returning Any on failure so callers can keep going without re-checking.
func (c *Checker) mustUnify(span report.Span, expected, actual types.Type) types.Type {
	if types.Equals(expected, types.AnyType) || types.Equals(actual, types.AnyType) {
		return expected
	}
	if !types.Unify(expected, actual) {
		c.errorf(span, report.CodeTypeMismatch, "expected type %s but got %s", expected.Repr(), actual.Repr())
		return types.AnyType
	}
	return expected
}

// mustUnifyWiden is mustUnify plus spec.md §4.E's implicit int->float
// widening: if expr's checked type is int and the context wants float, it
// records a Widen marker for the lowerer instead of reporting a mismatch.
func (c *Checker) mustUnifyWiden(expr ast.Expr, expected types.Type) types.Type {
	actual := c.typeOf(expr)
	if needed, ok := types.Widen(actual, expected); ok {
		if needed {
			c.result.Widen[expr.ID()] = true
		}
		return expected
	}
	return c.mustUnify(expr.Span(), expected, actual)
}

// symbolOf returns the resolve.Symbol a resolved identifier/member-access
// node was bound to, or nil if none was recorded (a poisoned reference).
func (c *Checker) symbolOf(node ast.Node) *resolve.Symbol {
	sym, ok := c.resolved.Bindings[node.ID()]
	if !ok {
		return nil
	}
	return sym
}

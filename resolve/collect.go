package resolve

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
)

// Result is the output of resolving an entire module graph: a side-table
// from identifier/member-access NodeID to the Symbol it refers to, plus
// each module's own top-level scope (consulted by the type checker to look
// up a struct/enum definition by name).
type Result struct {
	Bindings     map[ast.NodeID]*Symbol
	ModuleScopes map[*depm.Module]*Scope
}

// Resolver runs the Collect and Bind passes over a module graph.
type Resolver struct {
	sink     *report.Sink
	loader   *depm.Loader
	universe *Scope
	result   *Result
}

// NewResolver creates a resolver reporting into sink. loader must already
// have fully loaded the module graph being resolved: Bind looks up `use`
// targets via loader.ResolveModule without triggering new loads.
func NewResolver(sink *report.Sink, loader *depm.Loader) *Resolver {
	return &Resolver{
		sink:     sink,
		loader:   loader,
		universe: newUniverseScope(),
		result: &Result{
			Bindings:     map[ast.NodeID]*Symbol{},
			ModuleScopes: map[*depm.Module]*Scope{},
		},
	}
}

// Resolve runs Collect then Bind over every module the loader has loaded.
func (r *Resolver) Resolve(modules []*depm.Module) *Result {
	for _, mod := range modules {
		r.collectModule(mod)
	}
	for _, mod := range modules {
		r.bindModule(mod)
	}
	return r.result
}

// collectModule defines every top-level item across a module's files into
// one shared module scope (spec.md §4.C: a module is the union of its
// files' top-level items, not per-file scoping).
func (r *Resolver) collectModule(mod *depm.Module) {
	sc := newScope(r.universe)
	r.result.ModuleScopes[mod] = sc

	for _, f := range mod.Files {
		for _, item := range f.AST.Items {
			r.collectItem(sc, item)
		}
	}
}

func (r *Resolver) collectItem(sc *Scope, item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionItem:
		r.defineOrRedefine(sc, it.Name, &Symbol{Name: it.Name, Kind: SymValue, Public: it.Vis == ast.VisPublic, Span: it.Span(), Node: it})
	case *ast.StructItem:
		r.defineOrRedefine(sc, it.Name, &Symbol{Name: it.Name, Kind: SymType, Public: it.Vis == ast.VisPublic, Span: it.Span(), Node: it})
	case *ast.EnumItem:
		r.defineOrRedefine(sc, it.Name, &Symbol{Name: it.Name, Kind: SymType, Public: it.Vis == ast.VisPublic, Span: it.Span(), Node: it})
	case *ast.TypeAliasItem:
		r.defineOrRedefine(sc, it.Name, &Symbol{Name: it.Name, Kind: SymType, Public: it.Vis == ast.VisPublic, Span: it.Span(), Node: it})
	case *ast.LetItem:
		r.defineOrRedefine(sc, it.Name, &Symbol{Name: it.Name, Kind: SymValue, Public: it.Vis == ast.VisPublic, Span: it.Span(), Node: it})
	case *ast.UseItem, *ast.PubUseItem, *ast.ExprItem:
		// `use` bindings are installed during Bind, once every module's
		// scope exists to bind the alias against; ExprItem has no name.
	}
}

func (r *Resolver) defineOrRedefine(sc *Scope, name string, sym *Symbol) {
	if prev := sc.define(name, sym); prev != nil {
		r.sink.Add(report.Errorf(report.CodeRedefinition, sym.Span,
			"%q is defined more than once in this module (previous definition at line %d)", name, prev.Span.StartLine))
	}
}

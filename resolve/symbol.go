// Package resolve implements two-pass name resolution over a loaded module
// graph: Collect populates each module's top-level symbol table, then Bind
// walks every file's AST resolving identifier references against a scope
// stack. Grounded on bootstrap/depm/{symbol_table,resolve}.go's
// SymbolTable/Define/unresolved-reference shape, adapted from Chai's
// single-package model to OtterLang's multi-module `use` graph.
package resolve

import (
	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/report"
)

// Kind discriminates what a Symbol names.
type Kind int

const (
	SymValue  Kind = iota // let bindings, function names, parameters
	SymType               // struct/enum/type-alias names
	SymModule             // a `use`-bound module alias
)

// Symbol is a single resolved name.
type Symbol struct {
	Name   string
	Kind   Kind
	Public bool
	Span   report.Span

	// Node is the defining AST node of a top-level item: *ast.FunctionItem,
	// *ast.StructItem, *ast.EnumItem, *ast.TypeAliasItem or *ast.LetItem.
	// Nil for builtins, parameters, `self`, local lets, pattern bindings,
	// except-handler names, and the synthetic module symbols `use` creates.
	Node ast.Node

	// Module is set when Kind is SymModule: the module this alias refers
	// to, consulted when binding `alias.Field` member accesses.
	Module *depm.Module

	// FfiPath is set instead of Node/Module when this symbol names a
	// `use rust:...` binding: the path's crate/symbol segments joined
	// verbatim, handed to the FFI oracle as-is at check time (spec.md §6,
	// "rust:<crate> paths are delegated verbatim to the FFI oracle").
	FfiPath string
}

// poisoned is the placeholder symbol Bind attaches to an identifier that
// failed to resolve, so that one unresolved name does not cascade into a
// report for every subsequent use of it in the same scope (spec.md §7's
// poisoned-symbol fallback).
var poisoned = &Symbol{Name: "<poisoned>", Kind: SymValue}

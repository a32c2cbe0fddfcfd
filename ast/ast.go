// Package ast defines the OtterLang abstract syntax tree. Nodes are
// immutable after construction; the resolver and type checker attach
// results via side-tables keyed by NodeID rather than mutating nodes
// (spec.md §9, "side-tables over node mutation"), following
// bootstrap/ast/expr.go's Expr-interface + embedded-base pattern.
package ast

import "github.com/otterlang/otterc/report"

// NodeID uniquely identifies an AST node for side-table lookups.
type NodeID uint64

var nextNodeID NodeID

func newNodeID() NodeID {
	nextNodeID++
	return nextNodeID
}

// Node is implemented by every AST node.
type Node interface {
	ID() NodeID
	Span() report.Span
}

// Base is embedded by every concrete node and supplies ID()/Span().
type Base struct {
	id   NodeID
	span report.Span
}

// NewBase constructs a Base over the given span, assigning a fresh NodeID.
func NewBase(span report.Span) Base {
	return Base{id: newNodeID(), span: span}
}

func (b Base) ID() NodeID        { return b.id }
func (b Base) Span() report.Span { return b.span }

// Module is the root node of a single parsed source file: an ordered list
// of top-level items.
type Module struct {
	Base

	File  string
	Items []Item
}

// Item is a top-level module member.
type Item interface {
	Node
	itemNode()
}

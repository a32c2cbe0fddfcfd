package ast

// Pattern is implemented by every match-pattern node (spec.md §3).
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_`: matches anything, binds nothing.
type WildcardPattern struct {
	Base
}

func (*WildcardPattern) patternNode() {}

// BindingPattern binds the matched value to Name.
type BindingPattern struct {
	Base

	Name string
}

func (*BindingPattern) patternNode() {}

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	Base

	Lit *Literal
}

func (*LiteralPattern) patternNode() {}

// EnumVariantPattern matches a tagged enum variant and destructures its
// payload tuple.
type EnumVariantPattern struct {
	Base

	Path    []string
	SubPats []Pattern
}

func (*EnumVariantPattern) patternNode() {}

// StructDestructurePattern matches a struct value and destructures named
// fields.
type StructDestructurePattern struct {
	Base

	Path   []string
	Fields map[string]Pattern
	// FieldOrder preserves source order for deterministic diagnostics and
	// decision-tree construction.
	FieldOrder []string
}

func (*StructDestructurePattern) patternNode() {}

// ListPattern matches a list by head elements, an optional rest binding,
// and tail elements: `[a, b, *rest, z]`.
type ListPattern struct {
	Base

	Head []Pattern
	Rest *BindingPattern // nil if no rest capture
	Tail []Pattern
}

func (*ListPattern) patternNode() {}

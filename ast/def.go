package ast

// Visibility is the declared visibility of a top-level item.
type Visibility int

const (
	VisModulePrivate Visibility = iota
	VisPublic
)

// UseItem is `use path` or `use path as alias`.
type UseItem struct {
	Base

	Path  []string
	Alias string // empty if no `as` clause; defaults to the last segment
}

func (*UseItem) itemNode() {}

// PubUseItem is `pub use path [as alias]`, re-exporting a symbol or an
// entire module's public surface.
type PubUseItem struct {
	Base

	Path  []string
	Alias string
	// Whole is true when Path names a module rather than a specific symbol
	// within it (`pub use ./shapes` vs `pub use ./shapes/Circle`).
	Whole bool
}

func (*PubUseItem) itemNode() {}

// GenericParam is one `<T>` type-parameter declaration.
type GenericParam struct {
	Name string
}

// TypeAliasItem is `type Name<generics> = TypeExpr`.
type TypeAliasItem struct {
	Base

	Vis      Visibility
	Name     string
	Generics []GenericParam
	Target   TypeExpr
}

func (*TypeAliasItem) itemNode() {}

// FieldDecl is one field of a struct, or one case of a tagged-union
// variant's payload when named.
type FieldDecl struct {
	Name    string
	Type    TypeExpr
	Default Expr // nil if no default
}

// StructItem is `struct Name<generics>: field: Type ...` plus methods.
type StructItem struct {
	Base

	Vis      Visibility
	Name     string
	Generics []GenericParam
	Fields   []FieldDecl
	Methods  []*FunctionItem
}

func (*StructItem) itemNode() {}

// VariantDecl is one `Name: (T1, T2, ...)` case of an enum.
type VariantDecl struct {
	Name    string
	Payload []TypeExpr // empty for a unit variant
}

// EnumItem is `enum Name<generics>: Variant: (T...) ...`.
type EnumItem struct {
	Base

	Vis      Visibility
	Name     string
	Generics []GenericParam
	Variants []VariantDecl
}

func (*EnumItem) itemNode() {}

// FunctionItem is `fn name<generics>(params) -> ret: body`. When Receiver
// is non-empty, this is a method declared inside a struct body and its
// first parameter is implicitly `self`.
type FunctionItem struct {
	Base

	Vis      Visibility
	Name     string
	Receiver string // enclosing struct name, or "" for a free function
	Generics []GenericParam
	Params   []Param
	Ret      TypeExpr // nil for an inferred/unit return
	Body     []Stmt
}

func (*FunctionItem) itemNode() {}

// LetItem is a module-scope `let name: Type = init`.
type LetItem struct {
	Base

	Vis  Visibility
	Name string
	Type TypeExpr
	Init Expr
}

func (*LetItem) itemNode() {}

// ExprItem wraps a bare top-level expression statement (spec.md §4.B
// permits expression-statements at module scope).
type ExprItem struct {
	Base

	Value Expr
}

func (*ExprItem) itemNode() {}

package ast

// TypeExpr is a type written in source text: {Named, Function, Tuple, Unit}.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedType is `path<generics...>`, eg. `List<int>` or `Option<T>`.
type NamedType struct {
	Base

	Path     []string
	Generics []TypeExpr
}

func (*NamedType) typeExprNode() {}

// FuncType is `(params...) -> ret`.
type FuncType struct {
	Base

	Params []TypeExpr
	Ret    TypeExpr
}

func (*FuncType) typeExprNode() {}

// TupleType is `(T1, T2, ...)` used as a type.
type TupleType struct {
	Base

	Elems []TypeExpr
}

func (*TupleType) typeExprNode() {}

// UnitType is the zero-element tuple/void type, `()`.
type UnitType struct {
	Base
}

func (*UnitType) typeExprNode() {}

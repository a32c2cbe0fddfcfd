package ast

// Expr is implemented by every expression node. Unlike the teacher's
// ExprBase (bootstrap/ast/expr.go), elaborated type information is not
// stored on the node itself: it lives in the type checker's side-table
// keyed by NodeID, per spec.md §9.
type Expr interface {
	Node
	exprNode()
}

// Literal is a single literal value: int, float, string, bool, or none.
type Literal struct {
	Base

	Kind  LiteralKind
	Value string
}

func (*Literal) exprNode() {}

// LiteralKind discriminates the kind of a Literal node.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNone
)

// Identifier is a bare name reference.
type Identifier struct {
	Base

	Name string
}

func (*Identifier) exprNode() {}

// MemberAccess is `root.field`.
type MemberAccess struct {
	Base

	Root  Expr
	Field string
}

func (*MemberAccess) exprNode() {}

// Call is a function/method call.
type Call struct {
	Base

	Callee Expr
	Args   []Expr
	// KwArgs holds keyword arguments for struct-literal-style calls; most
	// calls use only Args.
	KwArgs map[string]Expr
}

func (*Call) exprNode() {}

// Index is `seq[idx]`.
type Index struct {
	Base

	Seq   Expr
	Index Expr
}

func (*Index) exprNode() {}

// UnaryKind enumerates unary operators.
type UnaryKind int

const (
	UnaryNeg UnaryKind = iota
	UnaryNot
)

// Unary is a prefix unary operator application. Right-associative, per
// spec.md §4.B's precedence table.
type Unary struct {
	Base

	Op      UnaryKind
	Operand Expr
}

func (*Unary) exprNode() {}

// BinaryKind enumerates binary arithmetic/comparison operators.
type BinaryKind int

const (
	BinAdd BinaryKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNeq
	BinLt
	BinLtEq
	BinGt
	BinGtEq
)

// Binary is a binary operator application.
type Binary struct {
	Base

	Op       BinaryKind
	Lhs, Rhs Expr
}

func (*Binary) exprNode() {}

// LogicalKind enumerates short-circuiting logical operators.
type LogicalKind int

const (
	LogicalAnd LogicalKind = iota
	LogicalOr
)

// Logical is `a and b` / `a or b`.
type Logical struct {
	Base

	Op       LogicalKind
	Lhs, Rhs Expr
}

func (*Logical) exprNode() {}

// Is is `a is b` / `a is not b`.
type Is struct {
	Base

	Negated  bool
	Lhs, Rhs Expr
}

func (*Is) exprNode() {}

// Range is `a..b`, used as a for-loop iterable or a first-class value.
type Range struct {
	Base

	Lo, Hi Expr
}

func (*Range) exprNode() {}

// ListLit is `[e1, e2, ...]`.
type ListLit struct {
	Base

	Elems []Expr
}

func (*ListLit) exprNode() {}

// DictEntry is one `key: value` pair of a dict literal.
type DictEntry struct {
	Key, Value Expr
}

// DictLit is `{k1: v1, k2: v2, ...}`.
type DictLit struct {
	Base

	Entries []DictEntry
}

func (*DictLit) exprNode() {}

// StructLit is `Path { field: value, ... }`.
type StructLit struct {
	Base

	Path       []string
	Fields     map[string]Expr
	FieldOrder []string
	Spread     Expr // non-nil for `Path { ..base, field: value }`
}

func (*StructLit) exprNode() {}

// Param is one lambda/function parameter.
type Param struct {
	Name    string
	Type    TypeExpr // nil if inferred (lambdas may omit annotations)
	Default Expr     // nil if no default
}

// Lambda is an anonymous function expression.
type Lambda struct {
	Base

	Params []Param
	Body   []Stmt
}

func (*Lambda) exprNode() {}

// Await is `await e`.
type Await struct {
	Base

	Operand Expr
}

func (*Await) exprNode() {}

// Spawn is `spawn e`.
type Spawn struct {
	Base

	Operand Expr
}

func (*Spawn) exprNode() {}

// MatchCase is one `case pattern: body` arm of a match expression.
type MatchCase struct {
	Pattern Pattern
	Body    []Stmt
}

// Match is a `match scrutinee: case ... ` expression/statement.
type Match struct {
	Base

	Scrutinee Expr
	Cases     []MatchCase
}

func (*Match) exprNode() {}

// FString is a literal with embedded, pre-parsed expression pieces. Pieces
// alternate conceptually between literal text and expressions, per
// spec.md §3's "pre-split sequence" f-string contract; Literal pieces carry
// a non-nil Text and nil Expr, expression pieces the reverse.
type FStringPiece struct {
	Text string
	Expr Expr
}

// FString is an f-string literal desugared at parse time into a sequence of
// string and parsed-expression pieces (spec.md §4.B).
type FString struct {
	Base

	Pieces []FStringPiece
}

func (*FString) exprNode() {}

// ListComprehension is `[yield for target in iter if filter]`.
type ListComprehension struct {
	Base

	Yield  Expr
	Target Pattern
	Iter   Expr
	Filter Expr // nil if no filter clause
}

func (*ListComprehension) exprNode() {}

// DictComprehension is `{kexpr: vexpr for target in iter if filter}`.
type DictComprehension struct {
	Base

	KeyExpr, ValExpr Expr
	Target           Pattern
	Iter             Expr
	Filter           Expr
}

func (*DictComprehension) exprNode() {}

// Package types implements OtterLang's type representation: primitives,
// structural compounds, and nominal user types, plus the unification
// substitution machinery the checker drives.
package types

import "strings"

// Type is any OtterLang type. equals is unexported so only code within this
// package may compare types directly; everyone else goes through Equals,
// which unwraps type variables first.
type Type interface {
	equals(other Type) bool
	Repr() string
}

// Primitive enumerates the scalar built-in types.
type Primitive int

const (
	PrimUnit Primitive = iota
	PrimBool
	PrimInt
	PrimFloat
	PrimString
)

func (p Primitive) equals(other Type) bool {
	op, ok := other.(Primitive)
	return ok && p == op
}

func (p Primitive) Repr() string {
	switch p {
	case PrimUnit:
		return "()"
	case PrimBool:
		return "bool"
	case PrimInt:
		return "int"
	case PrimFloat:
		return "float"
	case PrimString:
		return "string"
	default:
		return "?"
	}
}

// IsNumeric reports whether p participates in arithmetic.
func (p Primitive) IsNumeric() bool {
	return p == PrimInt || p == PrimFloat
}

// Any is the poisoned type substituted for expressions whose real type
// could not be determined, so later checks don't cascade further errors
// (spec.md §4.E: "unify to Any to dampen cascading errors").
type anyType struct{}

// AnyType is the single poisoned/top type value.
var AnyType Type = anyType{}

func (anyType) equals(other Type) bool { return true }
func (anyType) Repr() string           { return "Any" }

// -----------------------------------------------------------------------------

// ListType is `List<Elem>`.
type ListType struct {
	Elem Type
}

func (lt *ListType) equals(other Type) bool {
	olt, ok := other.(*ListType)
	return ok && Equals(lt.Elem, olt.Elem)
}

func (lt *ListType) Repr() string { return "List<" + lt.Elem.Repr() + ">" }

// DictType is `Dict<Key, Value>`.
type DictType struct {
	Key   Type
	Value Type
}

func (dt *DictType) equals(other Type) bool {
	odt, ok := other.(*DictType)
	return ok && Equals(dt.Key, odt.Key) && Equals(dt.Value, odt.Value)
}

func (dt *DictType) Repr() string { return "Dict<" + dt.Key.Repr() + ", " + dt.Value.Repr() + ">" }

// TupleType is a fixed-arity structural product `(T1, T2, ...)`.
type TupleType struct {
	Elems []Type
}

func (tt *TupleType) equals(other Type) bool {
	ott, ok := other.(*TupleType)
	if !ok || len(tt.Elems) != len(ott.Elems) {
		return false
	}
	for i, e := range tt.Elems {
		if !Equals(e, ott.Elems[i]) {
			return false
		}
	}
	return true
}

func (tt *TupleType) Repr() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range tt.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Repr())
	}
	sb.WriteByte(')')
	return sb.String()
}

// FuncType is `(params...) -> ret`.
type FuncType struct {
	Params []Type
	Ret    Type
}

func (ft *FuncType) equals(other Type) bool {
	oft, ok := other.(*FuncType)
	if !ok || len(ft.Params) != len(oft.Params) {
		return false
	}
	for i, p := range ft.Params {
		if !Equals(p, oft.Params[i]) {
			return false
		}
	}
	return Equals(ft.Ret, oft.Ret)
}

func (ft *FuncType) Repr() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range ft.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Repr())
	}
	sb.WriteString(") -> ")
	sb.WriteString(ft.Ret.Repr())
	return sb.String()
}

// TaskType is `Task<T>`, the type of a value produced by `spawn`.
type TaskType struct {
	Result Type
}

func (tt *TaskType) equals(other Type) bool {
	ott, ok := other.(*TaskType)
	return ok && Equals(tt.Result, ott.Result)
}

func (tt *TaskType) Repr() string { return "Task<" + tt.Result.Repr() + ">" }

// -----------------------------------------------------------------------------

// NamedType is anything declared with a name in source: a struct, an enum,
// or a resolved type alias target. Named types compare nominally: two
// named types are equal only if they share a declaration, then their
// instantiated generic arguments are compared argument-wise.
type NamedType interface {
	Type
	Decl() any // *ast.StructItem or *ast.EnumItem, compared by identity
}

// StructType is a struct declaration instantiated with concrete generic
// arguments (Args is empty for a non-generic struct).
type StructType struct {
	Name   string
	decl   any
	Args   []Type
	Fields []StructField
}

// StructField is one field of an instantiated struct type.
type StructField struct {
	Name string
	Type Type
}

func NewStructType(name string, decl any, args []Type, fields []StructField) *StructType {
	return &StructType{Name: name, decl: decl, Args: args, Fields: fields}
}

func (st *StructType) Decl() any   { return st.decl }
func (st *StructType) equals(other Type) bool {
	ost, ok := other.(*StructType)
	if !ok || st.decl != ost.decl || len(st.Args) != len(ost.Args) {
		return false
	}
	for i, a := range st.Args {
		if !Equals(a, ost.Args[i]) {
			return false
		}
	}
	return true
}

func (st *StructType) Repr() string { return reprGeneric(st.Name, st.Args) }

// FieldByName returns the field named name, if the struct declares one.
func (st *StructType) FieldByName(name string) (StructField, bool) {
	for _, f := range st.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// EnumType is an enum declaration instantiated with concrete generic
// arguments.
type EnumType struct {
	Name     string
	decl     any
	Args     []Type
	Variants []EnumVariant
}

// EnumVariant is one case of an instantiated enum type.
type EnumVariant struct {
	Name    string
	Payload []Type
}

func NewEnumType(name string, decl any, args []Type, variants []EnumVariant) *EnumType {
	return &EnumType{Name: name, decl: decl, Args: args, Variants: variants}
}

func (et *EnumType) Decl() any { return et.decl }

func (et *EnumType) equals(other Type) bool {
	oet, ok := other.(*EnumType)
	if !ok || et.decl != oet.decl || len(et.Args) != len(oet.Args) {
		return false
	}
	for i, a := range et.Args {
		if !Equals(a, oet.Args[i]) {
			return false
		}
	}
	return true
}

func (et *EnumType) Repr() string { return reprGeneric(et.Name, et.Args) }

// VariantByName returns the variant named name, if the enum declares one.
func (et *EnumType) VariantByName(name string) (EnumVariant, bool) {
	for _, v := range et.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return EnumVariant{}, false
}

func reprGeneric(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('<')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Repr())
	}
	sb.WriteByte('>')
	return sb.String()
}

// Equals reports whether two types unify to the same concrete type, first
// unwrapping any bound type variables on either side. It never mutates
// either type; use Unify to perform inference.
func Equals(a, b Type) bool {
	a, b = InnerType(a), InnerType(b)
	if _, ok := a.(anyType); ok {
		return true
	}
	if _, ok := b.(anyType); ok {
		return true
	}
	return a.equals(b)
}

// InnerType follows a (possibly chained) type variable to its bound value,
// or returns t unchanged if t is not a variable or is an unbound one.
func InnerType(t Type) Type {
	for {
		tv, ok := t.(*Var)
		if !ok || tv.Value == nil {
			return t
		}
		t = tv.Value
	}
}

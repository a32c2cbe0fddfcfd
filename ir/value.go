// Package ir implements OtterLang's backend-neutral intermediate
// representation: a module of functions built from basic blocks of
// value-producing instructions and a terminator, plus externs and globals
// for the symbols a function body can reference. It is the lowerer's
// output and the codegen package's input.
package ir

import (
	"fmt"

	"github.com/otterlang/otterc/types"
)

// Value is anything usable as an instruction operand: a register bound by
// a prior instruction, a function parameter, a global, or a constant.
type Value interface {
	Type() types.Type
	Repr() string
}

// Reg is the SSA result of an instruction or a function parameter. Two
// Regs are the same value iff they are the same pointer.
type Reg struct {
	Name string
	Typ  types.Type
}

func (r *Reg) Type() types.Type { return r.Typ }
func (r *Reg) Repr() string     { return "%" + r.Name }

// GlobalRef names a module-scope global variable.
type GlobalRef struct {
	Name string
	Typ  types.Type
}

func (g *GlobalRef) Type() types.Type { return g.Typ }
func (g *GlobalRef) Repr() string     { return "@" + g.Name }

// FuncRef names a function or extern, used as a call callee or a closure
// payload (spawn/lambda capture).
type FuncRef struct {
	Name string
	Typ  *types.FuncType
}

func (f *FuncRef) Type() types.Type { return f.Typ }
func (f *FuncRef) Repr() string     { return "@" + f.Name }

// ConstKind enumerates the shapes Const can hold.
type ConstKind int

const (
	ConstKindInt ConstKind = iota
	ConstKindFloat
	ConstKindBool
	ConstKindString
	ConstKindUnit
	ConstKindNull
)

// Const is a compile-time-known scalar operand.
type Const struct {
	Kind ConstKind
	I    int64
	F    float64
	S    string
	Typ  types.Type
}

func (c *Const) Type() types.Type { return c.Typ }

func (c *Const) Repr() string {
	switch c.Kind {
	case ConstKindInt:
		return fmt.Sprintf("%d", c.I)
	case ConstKindFloat:
		return fmt.Sprintf("%g", c.F)
	case ConstKindBool:
		if c.I != 0 {
			return "true"
		}
		return "false"
	case ConstKindString:
		return fmt.Sprintf("%q", c.S)
	case ConstKindNull:
		return "null"
	default:
		return "()"
	}
}

func ConstInt(v int64) *Const {
	return &Const{Kind: ConstKindInt, I: v, Typ: types.Primitive(types.PrimInt)}
}

func ConstFloat(v float64) *Const {
	return &Const{Kind: ConstKindFloat, F: v, Typ: types.Primitive(types.PrimFloat)}
}

func ConstBool(v bool) *Const {
	i := int64(0)
	if v {
		i = 1
	}
	return &Const{Kind: ConstKindBool, I: i, Typ: types.Primitive(types.PrimBool)}
}

func ConstString(v string) *Const {
	return &Const{Kind: ConstKindString, S: v, Typ: types.Primitive(types.PrimString)}
}

func ConstUnit() *Const {
	return &Const{Kind: ConstKindUnit, Typ: types.Primitive(types.PrimUnit)}
}

// ConstNull is the null pointer, used as an enum payload filler and as the
// initial value of a pointer-shaped stack slot before its first store.
func ConstNull(t types.Type) *Const {
	return &Const{Kind: ConstKindNull, Typ: t}
}

package ir

import (
	"fmt"
	"strings"
)

// Op is an instruction opcode. Grounded on bootstrap/mir's OpCode table
// (mir_instr.go), extended with the memory, struct/enum layout, and
// collection/string intrinsic ops this lowerer's target needs.
type Op int

const (
	OpAlloca Op = iota
	OpLoad
	OpStore

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg

	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpNot

	OpIntToFloat

	OpCall
	OpCallIntrinsic
	OpCallClosure

	OpFieldAddr
	OpGCAlloc

	OpEnumTag
	OpEnumPayloadAddr

	OpMakeClosure

	OpStringConcat
	OpToString
)

var opNames = [...]string{
	OpAlloca:          "alloca",
	OpLoad:            "load",
	OpStore:           "store",
	OpAdd:             "add",
	OpSub:             "sub",
	OpMul:             "mul",
	OpDiv:             "div",
	OpMod:             "mod",
	OpNeg:             "neg",
	OpCmpEq:           "cmp_eq",
	OpCmpNe:           "cmp_ne",
	OpCmpLt:           "cmp_lt",
	OpCmpLe:           "cmp_le",
	OpCmpGt:           "cmp_gt",
	OpCmpGe:           "cmp_ge",
	OpNot:             "not",
	OpIntToFloat:      "int_to_float",
	OpCall:            "call",
	OpCallIntrinsic:   "call_intrinsic",
	OpCallClosure:     "call_closure",
	OpFieldAddr:       "field_addr",
	OpGCAlloc:         "gc_alloc",
	OpEnumTag:         "enum_tag",
	OpEnumPayloadAddr: "enum_payload_addr",
	OpMakeClosure:     "make_closure",
	OpStringConcat:    "string_concat",
	OpToString:        "to_string",
}

// Instr is a single value-producing (or, for store, side-effecting)
// instruction. Callee names the target for OpCall/OpCallIntrinsic; Field
// names the struct field for OpFieldAddr; Index selects the variant and
// PayloadIdx the field within that variant's payload for
// OpEnumPayloadAddr.
type Instr struct {
	Result *Reg
	Op     Op
	Args   []Value

	Callee     string
	Field      string
	Index      int
	PayloadIdx int
}

func (i *Instr) Repr() string {
	var sb strings.Builder
	if i.Result != nil {
		sb.WriteString(i.Result.Repr())
		sb.WriteString(" = ")
	}
	sb.WriteString(opNames[i.Op])
	if i.Callee != "" {
		sb.WriteByte(' ')
		sb.WriteString(i.Callee)
	}
	if i.Field != "" {
		sb.WriteByte(' ')
		sb.WriteString(i.Field)
	}
	for _, a := range i.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.Repr())
	}
	return sb.String()
}

// Terminator ends a basic block: br, cond_br, ret, or unreachable.
type Terminator interface {
	Repr() string
}

type Br struct{ Target *Block }

func (b *Br) Repr() string { return "br " + b.Target.Name }

type CondBr struct {
	Cond        Value
	True, False *Block
}

func (c *CondBr) Repr() string {
	return fmt.Sprintf("cond_br %s, %s, %s", c.Cond.Repr(), c.True.Name, c.False.Name)
}

// Ret returns Value, or no value at all (a unit-returning function) when
// Value is nil.
type Ret struct{ Value Value }

func (r *Ret) Repr() string {
	if r.Value == nil {
		return "ret"
	}
	return "ret " + r.Value.Repr()
}

// Unreachable marks a block that control can never actually reach, eg.
// the fallthrough after an exhaustive match's last arm or the block past
// a raise/panic call.
type Unreachable struct{}

func (*Unreachable) Repr() string { return "unreachable" }

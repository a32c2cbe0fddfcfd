package ir

import (
	"fmt"

	"github.com/otterlang/otterc/types"
)

// Func is a function definition: a signature plus a graph of basic
// blocks, the first of which is its entry point.
type Func struct {
	Name   string
	Params []*Reg
	Ret    types.Type
	Public bool
	Blocks []*Block

	nextReg   int
	nextBlock int
}

// NewFunc creates an empty function with no blocks; callers append at
// least an entry block with AppendBlock before emitting instructions.
func NewFunc(name string, params []*Reg, ret types.Type, public bool) *Func {
	return &Func{Name: name, Params: params, Ret: ret, Public: public}
}

// AppendBlock adds a new block labelled with an auto-numbered name built
// from label (eg. "then" -> "then0") and returns it.
func (f *Func) AppendBlock(label string) *Block {
	b := &Block{Name: fmt.Sprintf("%s%d", label, f.nextBlock)}
	f.nextBlock++
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewReg allocates a fresh SSA register of type t, not yet bound to any
// instruction; callers set it as an Instr's Result before emitting.
func (f *Func) NewReg(t types.Type) *Reg {
	r := &Reg{Name: fmt.Sprintf("t%d", f.nextReg), Typ: t}
	f.nextReg++
	return r
}

// Entry is the function's first block, the one control enters at a call.
func (f *Func) Entry() *Block {
	return f.Blocks[0]
}

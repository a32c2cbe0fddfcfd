package ir

import "github.com/otterlang/otterc/types"

// Builder emits instructions into a function's current block, matching
// the `g.block`/`g.irb.BuildXxx` positioning style of
// bootstrap/codegen/generator.go: the lowerer repositions a Builder onto
// a new block after branching (cf. generateIfTree's g.block = thenBlock)
// rather than threading a block argument through every lowering call.
type Builder struct {
	Func  *Func
	Block *Block
}

// NewBuilder positions a Builder at f's entry block, which callers must
// have already appended.
func NewBuilder(f *Func) *Builder {
	return &Builder{Func: f, Block: f.Entry()}
}

// Position moves the builder to b, the usual move after branching into a
// freshly appended block.
func (bu *Builder) Position(b *Block) {
	bu.Block = b
}

func (bu *Builder) emit(op Op, typ types.Type, args ...Value) *Reg {
	r := bu.Func.NewReg(typ)
	bu.Block.Emit(&Instr{Result: r, Op: op, Args: args})
	return r
}

func (bu *Builder) Alloca(t types.Type) *Reg {
	return bu.emit(OpAlloca, t)
}

func (bu *Builder) Load(ptr Value, t types.Type) *Reg {
	return bu.emit(OpLoad, t, ptr)
}

func (bu *Builder) Store(ptr, val Value) {
	bu.Block.Emit(&Instr{Op: OpStore, Args: []Value{ptr, val}})
}

func (bu *Builder) Arith(op Op, lhs, rhs Value, t types.Type) *Reg {
	return bu.emit(op, t, lhs, rhs)
}

func (bu *Builder) Cmp(op Op, lhs, rhs Value) *Reg {
	return bu.emit(op, types.Primitive(types.PrimBool), lhs, rhs)
}

func (bu *Builder) Neg(v Value) *Reg {
	return bu.emit(OpNeg, v.Type(), v)
}

func (bu *Builder) Not(v Value) *Reg {
	return bu.emit(OpNot, types.Primitive(types.PrimBool), v)
}

func (bu *Builder) IntToFloat(v Value) *Reg {
	return bu.emit(OpIntToFloat, types.Primitive(types.PrimFloat), v)
}

func (bu *Builder) Call(callee string, ret types.Type, args ...Value) *Reg {
	r := bu.Func.NewReg(ret)
	bu.Block.Emit(&Instr{Result: r, Op: OpCall, Callee: callee, Args: args})
	return r
}

func (bu *Builder) CallIntrinsic(name string, ret types.Type, args ...Value) *Reg {
	r := bu.Func.NewReg(ret)
	bu.Block.Emit(&Instr{Result: r, Op: OpCallIntrinsic, Callee: name, Args: args})
	return r
}

// CallClosure calls a runtime closure value (a lambda, or a struct field
// holding one) rather than a statically-named function: closure is the
// first Arg, followed by the call's ordinary arguments, since this op has
// no fixed Callee name to dispatch through.
func (bu *Builder) CallClosure(closure Value, ret types.Type, args ...Value) *Reg {
	r := bu.Func.NewReg(ret)
	full := append([]Value{closure}, args...)
	bu.Block.Emit(&Instr{Result: r, Op: OpCallClosure, Args: full})
	return r
}

func (bu *Builder) FieldAddr(base Value, field string, fieldType types.Type) *Reg {
	r := bu.Func.NewReg(fieldType)
	bu.Block.Emit(&Instr{Result: r, Op: OpFieldAddr, Field: field, Args: []Value{base}})
	return r
}

func (bu *Builder) GCAlloc(size Value, t types.Type) *Reg {
	return bu.emit(OpGCAlloc, t, size)
}

func (bu *Builder) EnumTag(v Value) *Reg {
	return bu.emit(OpEnumTag, types.Primitive(types.PrimInt), v)
}

func (bu *Builder) EnumPayloadAddr(v Value, variantIndex, payloadIdx int, payloadType types.Type) *Reg {
	r := bu.Func.NewReg(payloadType)
	bu.Block.Emit(&Instr{Result: r, Op: OpEnumPayloadAddr, Index: variantIndex, PayloadIdx: payloadIdx, Args: []Value{v}})
	return r
}

func (bu *Builder) MakeClosure(fn *FuncRef, env Value, t types.Type) *Reg {
	return bu.emit(OpMakeClosure, t, fn, env)
}

func (bu *Builder) StringConcat(a, b Value) *Reg {
	return bu.emit(OpStringConcat, types.Primitive(types.PrimString), a, b)
}

func (bu *Builder) ToString(v Value) *Reg {
	return bu.emit(OpToString, types.Primitive(types.PrimString), v)
}

// Br closes the current block with an unconditional branch, unless it is
// already terminated (eg. the block ended in a raise/return).
func (bu *Builder) Br(target *Block) {
	if !bu.Block.Terminated() {
		bu.Block.Term = &Br{Target: target}
	}
}

func (bu *Builder) CondBr(cond Value, t, f *Block) {
	bu.Block.Term = &CondBr{Cond: cond, True: t, False: f}
}

func (bu *Builder) Ret(v Value) {
	bu.Block.Term = &Ret{Value: v}
}

func (bu *Builder) Unreachable() {
	bu.Block.Term = &Unreachable{}
}

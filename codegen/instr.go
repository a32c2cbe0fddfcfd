package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	oir "github.com/otterlang/otterc/ir"
	otypes "github.com/otterlang/otterc/types"
)

var zero32 = constant.NewInt(types.I32, 0)

// generateInstr emits the LLVM realization of one three-address
// instruction into llB, binding its result (if any) into g.regs for
// later operands to look up.
func (g *Generator) generateInstr(llB *ir.Block, instr *oir.Instr) {
	var result value.Value

	switch instr.Op {
	case oir.OpAlloca:
		result = llB.NewAlloca(g.convType(instr.Result.Typ))

	case oir.OpLoad:
		result = llB.NewLoad(g.convType(instr.Result.Typ), g.val(instr.Args[0]))

	case oir.OpStore:
		ptr := g.val(instr.Args[0])
		var elemTy types.Type = types.I8Ptr
		if pt, ok := ptr.Type().(*types.PointerType); ok {
			elemTy = pt.ElemType
		}
		llB.NewStore(g.valAs(llB, instr.Args[1], elemTy), ptr)
		return

	case oir.OpAdd, oir.OpSub, oir.OpMul, oir.OpDiv, oir.OpMod:
		result = g.generateArith(llB, instr)

	case oir.OpNeg:
		v := g.val(instr.Args[0])
		if _, isFloat := v.Type().(*types.FloatType); isFloat {
			result = llB.NewFNeg(v)
		} else {
			result = llB.NewSub(constant.NewInt(types.I64, 0), v)
		}

	case oir.OpCmpEq, oir.OpCmpNe, oir.OpCmpLt, oir.OpCmpLe, oir.OpCmpGt, oir.OpCmpGe:
		result = g.generateCmp(llB, instr)

	case oir.OpNot:
		result = llB.NewXor(g.val(instr.Args[0]), constant.NewInt(types.I1, 1))

	case oir.OpIntToFloat:
		result = llB.NewSIToFP(g.val(instr.Args[0]), types.Double)

	case oir.OpCall:
		result = g.generateCall(llB, instr)

	case oir.OpCallIntrinsic:
		result = g.generateCallIntrinsic(llB, instr)

	case oir.OpCallClosure:
		result = g.generateCallClosure(llB, instr)

	case oir.OpFieldAddr:
		result = g.generateFieldAddr(llB, instr)

	case oir.OpGCAlloc:
		result = g.generateGCAlloc(llB, instr)

	case oir.OpEnumTag:
		addr := g.enumFieldAddr(llB, instr.Args[0], 0, -1, types.I64)
		result = llB.NewLoad(types.I64, addr)

	case oir.OpEnumPayloadAddr:
		result = g.generateEnumPayloadAddr(llB, instr)

	case oir.OpMakeClosure:
		result = g.generateMakeClosure(llB, instr)

	case oir.OpStringConcat:
		fn := g.getStringConcatFn()
		a := g.valAs(llB, instr.Args[0], types.I8Ptr)
		b := g.valAs(llB, instr.Args[1], types.I8Ptr)
		result = llB.NewCall(fn, a, b)

	case oir.OpToString:
		result = g.generateToString(llB, instr)

	default:
		panic(fmt.Sprintf("codegen: unhandled op %v", instr.Op))
	}

	if instr.Result != nil && result != nil {
		g.regs[instr.Result] = result
	}
}

func (g *Generator) generateArith(llB *ir.Block, instr *oir.Instr) value.Value {
	want := g.convType(instr.Result.Typ)
	_, isFloat := want.(*types.FloatType)
	a := g.valAs(llB, instr.Args[0], want)
	b := g.valAs(llB, instr.Args[1], want)
	if isFloat {
		switch instr.Op {
		case oir.OpAdd:
			return llB.NewFAdd(a, b)
		case oir.OpSub:
			return llB.NewFSub(a, b)
		case oir.OpMul:
			return llB.NewFMul(a, b)
		case oir.OpDiv:
			return llB.NewFDiv(a, b)
		default:
			return llB.NewFRem(a, b)
		}
	}
	switch instr.Op {
	case oir.OpAdd:
		return llB.NewAdd(a, b)
	case oir.OpSub:
		return llB.NewSub(a, b)
	case oir.OpMul:
		return llB.NewMul(a, b)
	case oir.OpDiv:
		return llB.NewSDiv(a, b)
	default:
		return llB.NewSRem(a, b)
	}
}

func (g *Generator) generateCmp(llB *ir.Block, instr *oir.Instr) value.Value {
	lhsTy := otypes.InnerType(instr.Args[0].Type())
	prim, isPrim := lhsTy.(otypes.Primitive)
	isFloat := isPrim && prim == otypes.PrimFloat

	a := g.val(instr.Args[0])
	b := g.val(instr.Args[1])
	b = g.coerce(llB, b, a.Type())

	if isFloat {
		pred := map[oir.Op]enum.FPred{
			oir.OpCmpEq: enum.FPredOEQ,
			oir.OpCmpNe: enum.FPredONE,
			oir.OpCmpLt: enum.FPredOLT,
			oir.OpCmpLe: enum.FPredOLE,
			oir.OpCmpGt: enum.FPredOGT,
			oir.OpCmpGe: enum.FPredOGE,
		}[instr.Op]
		return llB.NewFCmp(pred, a, b)
	}
	pred := map[oir.Op]enum.IPred{
		oir.OpCmpEq: enum.IPredEQ,
		oir.OpCmpNe: enum.IPredNE,
		oir.OpCmpLt: enum.IPredSLT,
		oir.OpCmpLe: enum.IPredSLE,
		oir.OpCmpGt: enum.IPredSGT,
		oir.OpCmpGe: enum.IPredSGE,
	}[instr.Op]
	return llB.NewICmp(pred, a, b)
}

// generateCall realizes a call to a named module function or extern,
// prepending the synthesized env argument a module function's signature
// expects (an extern never takes one; it is never a closure).
func (g *Generator) generateCall(llB *ir.Block, instr *oir.Instr) value.Value {
	if fn, ok := g.funcs[instr.Callee]; ok {
		args := make([]value.Value, 0, len(instr.Args)+1)
		args = append(args, constant.NewNull(types.I8Ptr))
		for i, a := range instr.Args {
			want := fn.Params[i+1].Type()
			args = append(args, g.valAs(llB, a, want))
		}
		return g.emitCall(llB, fn, fn.Sig.RetType, args)
	}
	if fn, ok := g.externs[instr.Callee]; ok {
		args := make([]value.Value, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = g.valAs(llB, a, fn.Params[i].Type())
		}
		return g.emitCall(llB, fn, fn.Sig.RetType, args)
	}
	panic("codegen: unresolved call target " + instr.Callee)
}

// generateCallIntrinsic realizes a call to a symbol package lower never
// actually names yet (no current lowering reaches OpCallIntrinsic), by
// lazily declaring an extern matching the instruction's own argument and
// result types, the same fallback bootstrap/codegen/generator.go's
// getIntrinsic applies for a builtin it has not seen before.
func (g *Generator) generateCallIntrinsic(llB *ir.Block, instr *oir.Instr) value.Value {
	fn, ok := g.externs[instr.Callee]
	if !ok {
		params := make([]*ir.Param, len(instr.Args))
		for i, a := range instr.Args {
			params[i] = ir.NewParam("", g.convType(a.Type()))
		}
		var ret types.Type = types.Void
		if instr.Result != nil {
			ret = g.convType(instr.Result.Typ)
		}
		fn = g.mod.NewFunc(instr.Callee, ret, params...)
		fn.Linkage = enum.LinkageExternal
		g.externs[instr.Callee] = fn
	}
	args := make([]value.Value, len(instr.Args))
	for i, a := range instr.Args {
		args[i] = g.valAs(llB, a, fn.Params[i].Type())
	}
	return g.emitCall(llB, fn, fn.Sig.RetType, args)
}

// generateCallClosure unpacks closure's code and env pointers, casts the
// code pointer to a function type matching this call's own operands, and
// calls through it: a closure's function pointer can point at either an
// ordinary function or a lowered lambda body interchangeably, since both
// share the env-first calling convention.
func (g *Generator) generateCallClosure(llB *ir.Block, instr *oir.Instr) value.Value {
	closure := g.valAs(llB, instr.Args[0], closureType)
	fnPtr := llB.NewExtractValue(closure, 0)
	envPtr := llB.NewExtractValue(closure, 1)

	var retTy types.Type = types.Void
	if instr.Result != nil {
		retTy = g.convType(instr.Result.Typ)
	}
	argVals := make([]value.Value, 0, len(instr.Args))
	paramTys := make([]types.Type, 0, len(instr.Args))
	paramTys = append(paramTys, envParamType)
	argVals = append(argVals, envPtr)
	for _, a := range instr.Args[1:] {
		v := g.val(a)
		argVals = append(argVals, v)
		paramTys = append(paramTys, v.Type())
	}

	fnTy := types.NewFunc(retTy, paramTys...)
	typedFn := llB.NewBitCast(fnPtr, types.NewPointer(fnTy))
	return g.emitCall(llB, typedFn, retTy, argVals)
}

// emitCall issues the actual llir call, substituting the canonical unit
// value for a void call's "result" so later uses of a unit-typed result
// register still resolve to something.
func (g *Generator) emitCall(llB *ir.Block, callee value.Value, retTy types.Type, args []value.Value) value.Value {
	call := llB.NewCall(callee, args...)
	if retTy.Equal(types.Void) {
		return constant.NewInt(types.I1, 0)
	}
	return call
}

// generateFieldAddr resolves the struct layout of instr's base operand
// and GEPs to the named field's slot.
func (g *Generator) generateFieldAddr(llB *ir.Block, instr *oir.Instr) value.Value {
	st := structTypeOf(instr.Args[0].Type())
	layout := g.structLayoutOf(st)
	idx := fieldIndex(layout.fields, instr.Field)

	base := g.valAs(llB, instr.Args[0], types.NewPointer(layout.llType))
	return llB.NewGetElementPtr(layout.llType, base, zero32, constant.NewInt(types.I32, int64(idx)))
}

func structTypeOf(t otypes.Type) *otypes.StructType {
	if st, ok := otypes.InnerType(t).(*otypes.StructType); ok {
		return st
	}
	panic("codegen: field access on non-struct type")
}

func fieldIndex(fields []otypes.StructField, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	panic("codegen: unknown field " + name)
}

// generateGCAlloc calls the runtime allocator with a size codegen derives
// from the result's own struct layout, ignoring the lowerer's placeholder
// size argument.
func (g *Generator) generateGCAlloc(llB *ir.Block, instr *oir.Instr) value.Value {
	numFields := 1
	if st, ok := otypes.InnerType(instr.Result.Typ).(*otypes.StructType); ok {
		numFields = len(g.structLayoutOf(st).fields)
		if numFields == 0 {
			numFields = 1
		}
	}
	size := constant.NewInt(types.I64, int64(numFields*8))
	fn := g.getGCAllocFn()
	return llB.NewCall(fn, size)
}

// enumFieldAddr GEPs into et's {tag, payload} layout at the given array
// index (structIdx 0 selects the tag word itself; payloadIdx >= 0 selects a
// payload array slot instead).
func (g *Generator) enumFieldAddr(llB *ir.Block, base oir.Value, structIdx, payloadIdx int, want types.Type) value.Value {
	et := enumTypeOf(base.Type())
	layout := g.enumLayoutOf(et)

	basePtr := g.valAs(llB, base, types.NewPointer(layout.llType))
	var slot value.Value
	if payloadIdx < 0 {
		slot = llB.NewGetElementPtr(layout.llType, basePtr, zero32, constant.NewInt(types.I32, int64(structIdx)))
	} else {
		slot = llB.NewGetElementPtr(layout.llType, basePtr, zero32, constant.NewInt(types.I32, 1), constant.NewInt(types.I32, int64(payloadIdx)))
	}
	if !slot.Type().Equal(types.NewPointer(want)) {
		return llB.NewBitCast(slot, types.NewPointer(want))
	}
	return slot
}

func enumTypeOf(t otypes.Type) *otypes.EnumType {
	if et, ok := otypes.InnerType(t).(*otypes.EnumType); ok {
		return et
	}
	panic("codegen: enum op on non-enum type")
}

func (g *Generator) generateEnumPayloadAddr(llB *ir.Block, instr *oir.Instr) value.Value {
	et := enumTypeOf(instr.Args[0].Type())
	variant := et.Variants[instr.Index]
	fieldTy := g.convType(variant.Payload[instr.PayloadIdx])
	return g.enumFieldAddr(llB, instr.Args[0], 1, instr.PayloadIdx, fieldTy)
}

// generateMakeClosure builds the two-word closure struct. Both operands
// go through insertvalue instructions rather than an all-constant fold:
// MakeClosure only ever runs inside a function body, where there is no
// benefit to a compile-time-constant closure value.
func (g *Generator) generateMakeClosure(llB *ir.Block, instr *oir.Instr) value.Value {
	fn := g.valAs(llB, instr.Args[0], types.I8Ptr)
	env := g.valAs(llB, instr.Args[1], envParamType)

	withFn := llB.NewInsertValue(constant.NewUndef(closureType), fn, 0)
	return llB.NewInsertValue(withFn, env, 1)
}

// generateToString boxes v as a (tag, 64-bit payload) pair for the
// runtime's single polymorphic stringifier, tag identifying which union
// member the payload bits should be read back as.
func (g *Generator) generateToString(llB *ir.Block, instr *oir.Instr) value.Value {
	v := instr.Args[0]
	prim, _ := otypes.InnerType(v.Type()).(otypes.Primitive)

	var tag int64
	var bits value.Value
	llv := g.val(v)
	switch {
	case prim == otypes.PrimInt:
		tag, bits = 0, llv
	case prim == otypes.PrimFloat:
		tag, bits = 1, llB.NewBitCast(llv, types.I64)
	case prim == otypes.PrimBool:
		tag, bits = 2, llB.NewZExt(llv, types.I64)
	case prim == otypes.PrimString:
		tag, bits = 3, llB.NewPtrToInt(llv, types.I64)
	default:
		tag, bits = 4, g.coerce(llB, llv, types.I64)
	}

	fn := g.getToStringFn()
	return llB.NewCall(fn, constant.NewInt(types.I32, tag), bits)
}

func (g *Generator) getGCAllocFn() *ir.Func {
	if g.gcAllocFn == nil {
		g.gcAllocFn = g.mod.NewFunc("otter_gc_alloc", types.I8Ptr, ir.NewParam("size", types.I64))
		g.gcAllocFn.Linkage = enum.LinkageExternal
	}
	return g.gcAllocFn
}

func (g *Generator) getStringConcatFn() *ir.Func {
	if g.stringConcatFn == nil {
		g.stringConcatFn = g.mod.NewFunc("otter_string_concat", types.I8Ptr,
			ir.NewParam("a", types.I8Ptr), ir.NewParam("b", types.I8Ptr))
		g.stringConcatFn.Linkage = enum.LinkageExternal
	}
	return g.stringConcatFn
}

func (g *Generator) getToStringFn() *ir.Func {
	if g.toStringFn == nil {
		g.toStringFn = g.mod.NewFunc("otter_to_string", types.I8Ptr,
			ir.NewParam("tag", types.I32), ir.NewParam("bits", types.I64))
		g.toStringFn.Linkage = enum.LinkageExternal
	}
	return g.toStringFn
}

// generateTerminator closes llB. A nil term (package lower never
// terminates __otter_init's last block itself) gets an implicit return
// matching llFunc's own return type, mirroring
// bootstrap/codegen/generator.go's generateBodyPredicate.
func (g *Generator) generateTerminator(llFunc *ir.Func, llB *ir.Block, term oir.Terminator, blocks map[string]*ir.Block) {
	switch t := term.(type) {
	case *oir.Br:
		llB.NewBr(blocks[t.Target.Name])
	case *oir.CondBr:
		cond := g.valAs(llB, t.Cond, types.I1)
		llB.NewCondBr(cond, blocks[t.True.Name], blocks[t.False.Name])
	case *oir.Ret:
		g.emitRet(llFunc, llB, t.Value)
	case *oir.Unreachable:
		llB.NewUnreachable()
	case nil:
		g.emitRet(llFunc, llB, nil)
	default:
		panic(fmt.Sprintf("codegen: unhandled terminator %T", term))
	}
}

func (g *Generator) emitRet(llFunc *ir.Func, llB *ir.Block, v oir.Value) {
	if llFunc.Sig.RetType.Equal(types.Void) {
		llB.NewRet(nil)
		return
	}
	if v == nil {
		llB.NewRet(nullOf(llFunc.Sig.RetType))
		return
	}
	llB.NewRet(g.valAs(llB, v, llFunc.Sig.RetType))
}

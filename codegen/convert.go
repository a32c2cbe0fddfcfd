package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	oir "github.com/otterlang/otterc/ir"
)

// val converts v to its natural LLVM value: the representation convType
// would assign its own declared type, with no regard for where it is
// about to be plugged in. Reg lookups assume the register's defining
// instruction has already run (package lower only ever produces values
// in def-before-use order within a block, and blocks are generated in
// their declared order).
func (g *Generator) val(v oir.Value) value.Value {
	switch x := v.(type) {
	case *oir.Const:
		return g.constVal(x)
	case *oir.Reg:
		if lv, ok := g.regs[x]; ok {
			return lv
		}
		return nullOf(g.convType(x.Typ))
	case *oir.GlobalRef:
		return g.globals[x.Name]
	case *oir.FuncRef:
		fn := g.funcRef(x.Name)
		return constant.NewBitCast(fn, types.I8Ptr)
	default:
		return nullOf(types.I8Ptr)
	}
}

// constVal converts a compile-time-constant operand to its LLVM constant.
// Package lower only ever puts a *oir.Const in a position requiring a
// genuine constant (a global's literal initializer); anything else falls
// back to a null of its own converted type rather than panicking on a
// value codegen cannot fold.
func (g *Generator) constVal(v oir.Value) constant.Constant {
	c, ok := v.(*oir.Const)
	if !ok {
		return nullOf(g.convType(v.Type()))
	}
	switch c.Kind {
	case oir.ConstKindInt:
		return constant.NewInt(types.I64, c.I)
	case oir.ConstKindFloat:
		return constant.NewFloat(types.Double, c.F)
	case oir.ConstKindBool:
		return constant.NewInt(types.I1, c.I)
	case oir.ConstKindString:
		return g.strConst(c.S)
	case oir.ConstKindUnit:
		return constant.NewInt(types.I1, 0)
	case oir.ConstKindNull:
		return nullOf(g.convType(c.Typ))
	default:
		return nullOf(types.I8Ptr)
	}
}

func (g *Generator) funcRef(name string) constant.Constant {
	if fn, ok := g.funcs[name]; ok {
		return fn
	}
	if fn, ok := g.externs[name]; ok {
		return fn
	}
	return constant.NewNull(types.I8Ptr)
}

// nullOf is the null or zero value of an LLVM type: constant.NewNull for
// pointers, a zero scalar for ints/floats, and a zero-initializer for
// anything aggregate (the closure struct).
func nullOf(t types.Type) constant.Constant {
	switch v := t.(type) {
	case *types.PointerType:
		return constant.NewNull(v)
	case *types.IntType:
		return constant.NewInt(v, 0)
	case *types.FloatType:
		return constant.NewFloat(v, 0)
	default:
		return constant.NewZeroInitializer(t)
	}
}

// valAs converts v for use in a slot whose LLVM type is want, bridging a
// mismatch (an opaque handle flowing into a pointer slot, a narrower int
// feeding a wider one) with the instructions LLVM requires to reinterpret
// between them. A ConstNull operand always becomes the null/zero of want
// directly: its whole purpose is to stand in for "nothing" in whatever
// shape the slot needs, not to carry a type of its own.
func (g *Generator) valAs(llB *ir.Block, v oir.Value, want types.Type) value.Value {
	if c, ok := v.(*oir.Const); ok && c.Kind == oir.ConstKindNull {
		return nullOf(want)
	}
	return g.coerce(llB, g.val(v), want)
}

// coerce bridges a value already materialized in its natural LLVM type
// over to want, mirroring generatePrimTypeCast's exhaustive cast grid but
// over this target's much smaller type lattice: pointers, i1, i64,
// double.
func (g *Generator) coerce(llB *ir.Block, v value.Value, want types.Type) value.Value {
	if v.Type().Equal(want) {
		return v
	}

	_, srcPtr := v.Type().(*types.PointerType)
	_, wantPtr := want.(*types.PointerType)

	switch {
	case srcPtr && wantPtr:
		return llB.NewBitCast(v, want)
	case srcPtr && !wantPtr:
		return llB.NewPtrToInt(v, want)
	case !srcPtr && wantPtr:
		return llB.NewIntToPtr(g.coerce(llB, v, types.I64), want)
	}

	srcInt, srcIsInt := v.Type().(*types.IntType)
	wantInt, wantIsInt := want.(*types.IntType)
	if srcIsInt && wantIsInt {
		if srcInt.BitSize < wantInt.BitSize {
			return llB.NewZExt(v, want)
		}
		return llB.NewTrunc(v, want)
	}

	if srcIsInt && want.Equal(types.Double) {
		return llB.NewSIToFP(v, types.Double)
	}
	if _, srcIsFloat := v.Type().(*types.FloatType); srcIsFloat && wantIsInt {
		return llB.NewFPToSI(v, want)
	}

	// Struct-to-struct (the closure type is the only aggregate this
	// target ever coerces between) and any other same-kind mismatch:
	// bitcast is the closest available reinterpretation.
	return llB.NewBitCast(v, want)
}

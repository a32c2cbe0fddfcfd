// Package codegen lowers a fully-built ir.Module into an LLVM module via
// github.com/llir/llvm, the library bootstrap/codegen/generate_def.go
// reaches for to build functions, structs and linkage. This IR already
// flattened control flow into basic blocks and expressions into
// three-address instructions during lowering (package lower), so codegen
// here walks blocks and instructions directly rather than recursing over
// an AST the way bootstrap/codegen/generate_expr.go does.
//
// Every OtterLang function gets a synthesized, unused leading parameter
// at the LLVM level carrying its captured environment (named __otter_env
// in the printed IR): a plain top-level function ignores it, a lowered
// lambda body (package lower's lowerLambdaBody) already declared it as
// its own Params[0]. This makes a direct call and a call through
// CallClosure share one calling convention, so a closure's function
// pointer can point at either kind of function interchangeably.
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

// envParamType is the LLVM type of every function's synthesized leading
// environment parameter, and of a closure's own env slot.
var envParamType = types.I8Ptr

// closureType is the uniform two-word representation of a function value:
// a code pointer (itself already of the "env-first" calling convention)
// paired with the env pointer to invoke it with.
var closureType = types.NewStruct(types.I8Ptr, envParamType)

// Generator holds the state threaded through one module's translation
// into LLVM IR: the llir module under construction, lookup tables from
// this IR's own names to the llir values that represent them, and the
// struct/enum layout cache every FieldAddr/EnumPayloadAddr/GCAlloc
// consults.
type Generator struct {
	omod *oir.Module
	mod  *ir.Module

	funcs   map[string]*ir.Func
	externs map[string]*ir.Func
	globals map[string]*ir.Global

	// gcAllocFn/stringConcatFn/toStringFn are runtime helpers synthesized
	// directly by codegen (rather than declared by package lower as an
	// ir.Extern) to realize OpGCAlloc/OpStringConcat/OpToString, the
	// three ops whose lowering doesn't go through a named extern call.
	gcAllocFn      *ir.Func
	stringConcatFn *ir.Func
	toStringFn     *ir.Func

	// structLayouts/enumLayouts memoize one llir struct type per
	// declaration (keyed by StructType.Decl()/EnumType.Decl(), not by
	// instantiation: every generic instantiation of a declaration shares
	// field order, and this target erases generic arguments to a single
	// opaque-pointer representation, so one layout per declaration
	// suffices).
	structLayouts map[any]*layout
	enumLayouts   map[any]*enumLayout

	strConsts map[string]*ir.Global

	regs map[*oir.Reg]value.Value

	nextStr int
}

// layout is the LLVM realization of one struct declaration: its literal
// field types in declared order, for GEP indexing by name.
type layout struct {
	llType *types.StructType
	fields []otypes.StructField
}

// enumLayout is the LLVM realization of one enum declaration: a leading
// i64 tag word followed by a payload region wide enough for the widest
// variant's fields, each stored as an i64-sized, bit-reinterpreted slot.
type enumLayout struct {
	llType   *types.StructType
	variants []otypes.EnumVariant
	slots    int
}

// Generate translates mod into a complete LLVM module: externs, globals,
// then every function signature (so forward calls resolve), then every
// function body.
func Generate(mod *oir.Module) *ir.Module {
	g := &Generator{
		omod:          mod,
		mod:           ir.NewModule(),
		funcs:         map[string]*ir.Func{},
		externs:       map[string]*ir.Func{},
		globals:       map[string]*ir.Global{},
		structLayouts: map[any]*layout{},
		enumLayouts:   map[any]*enumLayout{},
		strConsts:     map[string]*ir.Global{},
	}
	g.mod.SourceFilename = mod.Name

	for _, e := range mod.Externs {
		g.declareExtern(e)
	}
	for _, gl := range mod.Globals {
		g.declareGlobal(gl)
	}
	for _, f := range mod.Funcs {
		g.declareFunc(f)
	}
	for _, f := range mod.Funcs {
		g.generateFuncBody(f)
	}

	return g.mod
}

// -----------------------------------------------------------------------------

// convType converts an OtterLang type to its LLVM representation in a
// value (non-return) position.
func (g *Generator) convType(t otypes.Type) types.Type {
	switch v := otypes.InnerType(t).(type) {
	case otypes.Primitive:
		return g.convPrimType(v, false)
	case *otypes.FuncType:
		return closureType
	case *otypes.StructType:
		return types.I8Ptr
	case *otypes.EnumType:
		return types.I8Ptr
	case *otypes.ListType, *otypes.DictType, *otypes.TaskType, *otypes.TupleType:
		return types.I8Ptr
	default:
		// otypes.AnyType and any other opaque/unresolved type: every
		// dynamically-typed value in this target is represented as a
		// tagged heap pointer.
		return types.I8Ptr
	}
}

// convReturnType is convType, except a unit return becomes LLVM void
// rather than i1, mirroring convPrimType's own isReturnType distinction.
func (g *Generator) convReturnType(t otypes.Type) types.Type {
	if p, ok := otypes.InnerType(t).(otypes.Primitive); ok {
		return g.convPrimType(p, true)
	}
	return g.convType(t)
}

func (g *Generator) convPrimType(p otypes.Primitive, isReturnType bool) types.Type {
	switch p {
	case otypes.PrimBool:
		return types.I1
	case otypes.PrimInt:
		return types.I64
	case otypes.PrimFloat:
		return types.Double
	case otypes.PrimString:
		return types.I8Ptr
	case otypes.PrimUnit:
		if isReturnType {
			return types.Void
		}
		return types.I1
	default:
		return types.I8Ptr
	}
}

// structLayoutOf returns (building and memoizing on first use) the LLVM
// struct type backing st, keyed by its declaration so every instantiation
// of a generic struct shares one layout.
func (g *Generator) structLayoutOf(st *otypes.StructType) *layout {
	key := any(st.Decl())
	if key == nil {
		// Declaration-less struct type (a closure's synthesized capture
		// env): key on field identity instead, one layout per literal
		// field list.
		key = fmt.Sprintf("%p", st)
	}
	if l, ok := g.structLayouts[key]; ok {
		return l
	}
	fieldTypes := make([]types.Type, len(st.Fields))
	for i, f := range st.Fields {
		fieldTypes[i] = g.convType(f.Type)
	}
	l := &layout{llType: types.NewStruct(fieldTypes...), fields: st.Fields}
	g.structLayouts[key] = l
	return l
}

// enumLayoutOf returns the LLVM realization of et: {i64 tag, [n x i64]},
// n the widest variant's field count. Every payload slot is stored as a
// bit-reinterpreted i64 regardless of its logical type, since different
// variants of the same enum can disagree on a slot's type.
func (g *Generator) enumLayoutOf(et *otypes.EnumType) *enumLayout {
	key := any(et.Decl())
	if key == nil {
		key = fmt.Sprintf("%p", et)
	}
	if l, ok := g.enumLayouts[key]; ok {
		return l
	}
	slots := 0
	for _, v := range et.Variants {
		if len(v.Payload) > slots {
			slots = len(v.Payload)
		}
	}
	llType := types.NewStruct(types.I64, types.NewArray(uint64(slots), types.I64))
	l := &enumLayout{llType: llType, variants: et.Variants, slots: slots}
	g.enumLayouts[key] = l
	return l
}

// -----------------------------------------------------------------------------

// strConst returns (building and memoizing on first use) a pointer to a
// NUL-terminated global byte array holding s, the same getelementptr
// trick most LLVM frontends use for a C-string constant.
func (g *Generator) strConst(s string) constant.Constant {
	if c, ok := g.strConsts[s]; ok {
		return constant.NewGetElementPtr(c.ContentType, c, zero64, zero64)
	}
	data := constant.NewCharArrayFromString(s + "\x00")
	name := fmt.Sprintf("__otter_str.%d", g.nextStr)
	g.nextStr++
	gv := g.mod.NewGlobalDef(name, data)
	gv.Immutable = true
	gv.Linkage = enum.LinkageInternal
	g.strConsts[s] = gv
	return constant.NewGetElementPtr(gv.ContentType, gv, zero64, zero64)
}

var zero64 = constant.NewInt(types.I64, 0)

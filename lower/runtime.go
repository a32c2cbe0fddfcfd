package lower

import (
	"github.com/otterlang/otterc/ir"
	"github.com/otterlang/otterc/types"
)

// ptrType is the untyped-pointer placeholder used for runtime handles
// (gc_alloc results, list/dict/task handles) that carry no element-type
// information at the IR level. It is the int primitive, so codegen maps
// it onto i64 like any other int.
var ptrType types.Type = types.Primitive(types.PrimInt)

var stringType = types.Primitive(types.PrimString)
var intType = types.Primitive(types.PrimInt)
var floatType = types.Primitive(types.PrimFloat)
var boolType = types.Primitive(types.PrimBool)
var unitType = types.Primitive(types.PrimUnit)

// extern memoizes and declares one runtime/FFI external symbol, per
// spec.md §6's `otter_`-prefixed intrinsic ABI.
func (l *Lowerer) extern(name string, params []types.Type, ret types.Type) *ir.Extern {
	if e, ok := l.externs[name]; ok {
		return e
	}
	e := l.mod.Extern(name, params, ret)
	l.externs[name] = e
	return e
}

func (l *Lowerer) callExtern(name string, params []types.Type, ret types.Type, args ...ir.Value) *ir.Reg {
	e := l.extern(name, params, ret)
	return l.b.Call(e.Name, ret, args...)
}

func (l *Lowerer) stringNew(ptr, length ir.Value) *ir.Reg {
	return l.callExtern("otter_string_new", []types.Type{ptrType, intType}, stringType, ptr, length)
}

// stringConcat and toString go through ir's own OpStringConcat/OpToString
// rather than a named extern call: both represent a fixed runtime
// intrinsic (otter_string_concat, otter_to_string) closely enough
// tied to the IR's own string representation that codegen, not the
// lowerer, picks the concrete symbol.
func (l *Lowerer) stringConcat(a, b ir.Value) *ir.Reg {
	return l.b.StringConcat(a, b)
}

func (l *Lowerer) toString(v ir.Value, t types.Type) *ir.Reg {
	return l.b.ToString(v)
}

func (l *Lowerer) listNew() *ir.Reg {
	return l.callExtern("otter_list_new", nil, ptrType)
}

func (l *Lowerer) listPush(list, v ir.Value) *ir.Reg {
	return l.callExtern("otter_list_push", []types.Type{ptrType, types.AnyType}, unitType, list, v)
}

func (l *Lowerer) listGet(list, idx ir.Value, elem types.Type) *ir.Reg {
	return l.callExtern("otter_list_get", []types.Type{ptrType, intType}, elem, list, idx)
}

func (l *Lowerer) listLen(list ir.Value) *ir.Reg {
	return l.callExtern("otter_list_len", []types.Type{ptrType}, intType, list)
}

func (l *Lowerer) dictNew() *ir.Reg {
	return l.callExtern("otter_dict_new", nil, ptrType)
}

func (l *Lowerer) dictSet(dict, k, v ir.Value) *ir.Reg {
	return l.callExtern("otter_dict_set", []types.Type{ptrType, types.AnyType, types.AnyType}, unitType, dict, k, v)
}

func (l *Lowerer) dictGet(dict, k ir.Value, valT types.Type) *ir.Reg {
	return l.callExtern("otter_dict_get", []types.Type{ptrType, types.AnyType}, valT, dict, k)
}

func (l *Lowerer) gcAlloc(size ir.Value, t types.Type) *ir.Reg {
	return l.b.GCAlloc(size, t)
}

func (l *Lowerer) gcAddRoot(ptr ir.Value) *ir.Reg {
	return l.callExtern("otter_gc_add_root", []types.Type{ptrType}, unitType, ptr)
}

func (l *Lowerer) gcRemoveRoot(ptr ir.Value) *ir.Reg {
	return l.callExtern("otter_gc_remove_root", []types.Type{ptrType}, unitType, ptr)
}

func (l *Lowerer) raise(err ir.Value) *ir.Reg {
	return l.callExtern("otter_raise", []types.Type{ptrType}, types.AnyType, err)
}

// taskSpawn schedules closure (a MakeClosure value, already bundling its
// function pointer and captured env) onto the runtime's task scheduler.
func (l *Lowerer) taskSpawn(closure ir.Value, resultT types.Type) *ir.Reg {
	return l.callExtern("otter_task_spawn", []types.Type{ptrType}, &types.TaskType{Result: resultT}, closure)
}

func (l *Lowerer) taskAwait(task ir.Value, resultT types.Type) *ir.Reg {
	return l.callExtern("otter_task_await", []types.Type{&types.TaskType{Result: resultT}}, resultT, task)
}

func (l *Lowerer) listIteratorLen(list ir.Value, elemT types.Type) *ir.Reg {
	return l.listLen(list)
}

// enumNew allocates a tagged-union value of type t (an instantiated
// *types.EnumType) carrying tag and zeroed payload slots, mirroring
// gcAlloc's "size is advisory, codegen derives the real layout from t"
// convention for struct literals.
func (l *Lowerer) enumNew(tag int, t types.Type) *ir.Reg {
	return l.callExtern("otter_enum_new", []types.Type{intType}, t, ir.ConstInt(int64(tag)))
}

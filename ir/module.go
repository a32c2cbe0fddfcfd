package ir

import "github.com/otterlang/otterc/types"

// Extern declares a symbol defined outside this module: a runtime
// intrinsic (spec.md §6's `otter_*` ABI) or an FFI import resolved
// through the Oracle.
type Extern struct {
	Name   string
	Params []types.Type
	Ret    types.Type

	// CallConv names a non-default calling convention an FFI symbol
	// requires; empty for the default C convention every runtime
	// intrinsic and Rust `extern "C"` symbol uses.
	CallConv string
}

// Global is a module-scope `let` binding, emitted as an LLVM global with
// Init as its initializer.
type Global struct {
	Name   string
	Typ    types.Type
	Init   Value
	Public bool
}

// Module is the lowerer's complete output for one source module: its
// externs, its globals, and its function definitions. codegen walks this
// into an `github.com/llir/llvm` ir.Module.
type Module struct {
	Name    string
	Externs []*Extern
	Globals []*Global
	Funcs   []*Func
}

func NewModule(name string) *Module {
	return &Module{Name: name}
}

// Extern registers an extern once per name, returning the existing entry
// if a prior lowering step already declared it (eg. two calls to the
// same runtime intrinsic within a function).
func (m *Module) Extern(name string, params []types.Type, ret types.Type) *Extern {
	for _, e := range m.Externs {
		if e.Name == name {
			return e
		}
	}
	e := &Extern{Name: name, Params: params, Ret: ret}
	m.Externs = append(m.Externs, e)
	return e
}

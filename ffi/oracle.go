// Package ffi implements the symbol-import oracle spec.md §6 delegates
// `use rust:<crate>` resolution to: a query interface answering "what is
// this external symbol's name, parameter types, return type, and calling
// convention". The compiler only trusts the oracle's answers; this
// package's StaticOracle is a stand-in seeded from the project manifest's
// declared FFI dependencies (config.Project.FfiDeps), not a real crate
// metadata reader. Grounded on bootstrap/resolve/imports.go's
// map-lookup-plus-miss-error shape for Lookup itself.
package ffi

import (
	"fmt"
	"strings"

	"github.com/otterlang/otterc/config"
	"github.com/otterlang/otterc/types"
)

// Signature is one externally-declared symbol's call ABI.
type Signature struct {
	Name     string
	Params   []types.Type
	Ret      types.Type
	CallConv string
}

// Oracle answers FFI symbol lookups for `rust:<crate>` use paths.
type Oracle interface {
	Lookup(path string) (Signature, error)
}

// StaticOracle is an in-memory Oracle seeded from a project manifest's
// ffi-deps table.
type StaticOracle struct {
	symbols map[string]Signature
}

// NewStaticOracle builds a StaticOracle from a manifest's declared FFI
// dependencies. A dep with an unrecognized type name is still registered,
// with AnyType in place of each unrecognized param/return type, and an
// error describing it is
// appended to errs rather than aborting the whole load, mirroring depm's
// record-and-continue convention.
func NewStaticOracle(deps []config.FfiDep) (*StaticOracle, []error) {
	o := &StaticOracle{symbols: map[string]Signature{}}
	var errs []error
	for _, d := range deps {
		ret, ok := typeByName(d.ReturnType)
		if !ok {
			errs = append(errs, fmt.Errorf("ffi dep %q: unknown return type %q", d.Symbol, d.ReturnType))
			ret = types.AnyType
		}
		params := make([]types.Type, len(d.ParamTypes))
		for i, pn := range d.ParamTypes {
			pt, ok := typeByName(pn)
			if !ok {
				errs = append(errs, fmt.Errorf("ffi dep %q: unknown parameter type %q", d.Symbol, pn))
				pt = types.AnyType
			}
			params[i] = pt
		}
		o.symbols[d.Symbol] = Signature{Name: d.Symbol, Params: params, Ret: ret, CallConv: "rust"}
	}
	return o, errs
}

// Lookup resolves a `crate/symbol` (or bare `symbol`) path's trailing
// segment against the registry. The crate segment, if present, is
// accepted verbatim and not itself validated: a real oracle would consult
// the crate's own published metadata rather than this compiler's
// manifest.
func (o *StaticOracle) Lookup(path string) (Signature, error) {
	name := path
	if i := strings.LastIndexAny(path, "/:"); i >= 0 {
		name = path[i+1:]
	}
	sig, ok := o.symbols[name]
	if !ok {
		return Signature{}, fmt.Errorf("no FFI symbol %q declared in manifest", name)
	}
	return sig, nil
}

func typeByName(name string) (types.Type, bool) {
	switch name {
	case "int":
		return types.Primitive(types.PrimInt), true
	case "float":
		return types.Primitive(types.PrimFloat), true
	case "bool":
		return types.Primitive(types.PrimBool), true
	case "string":
		return types.Primitive(types.PrimString), true
	case "unit", "":
		return types.Primitive(types.PrimUnit), true
	default:
		return nil, false
	}
}

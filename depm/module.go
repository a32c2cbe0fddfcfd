// Package depm loads an OtterLang module graph: resolving `use` paths to
// source directories, parsing every file in a module in parallel, and
// detecting import cycles. Grounded on bootstrap/depm/{load_mod,source,
// infinite}.go.
package depm

import (
	"github.com/otterlang/otterc/ast"
)

// State is a module's position in the loader's visit lifecycle, used for
// cycle detection the same way bootstrap/depm/infinite.go colors named
// types White/Grey/Black during its infinite-type search.
type State int

const (
	StateUnvisited State = iota
	StateLoading
	StateReady
	StateFailed
)

// File is one parsed source file belonging to a Module.
type File struct {
	Path   string
	Module *Module
	AST    *ast.Module
}

// Module is a single directory of OtterLang source, resolved from a `use`
// path. Fields below PkgPath are populated as loading progresses.
type Module struct {
	PkgPath string // the `use` path this module was resolved under
	AbsPath string // absolute filesystem directory

	State State
	Files []*File

	// Imports records the set of module paths this module's files `use`,
	// collected during parsing, consulted by the loader's cycle search.
	Imports map[string]struct{}

	// PubExports records `pub use` re-export targets: local alias -> the
	// slash-joined path it re-exports (spec.md §4.C, single-level visibility).
	PubExports map[string]string
}

func newModule(pkgPath, absPath string) *Module {
	return &Module{
		PkgPath:    pkgPath,
		AbsPath:    absPath,
		Imports:    map[string]struct{}{},
		PubExports: map[string]string{},
	}
}

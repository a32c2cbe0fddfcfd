package depm

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/otterlang/otterc/ast"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/syntax"
)

// SourceExt is the file extension the loader globs for within a module
// directory.
const SourceExt = ".otter"

// Loader resolves `use` paths to module directories and parses them,
// detecting import cycles with the same three-color DFS shape
// bootstrap/depm/infinite.go uses for named-type cycles.
type Loader struct {
	root string
	sink *report.Sink

	modules map[string]*Module // keyed by absolute directory path

	// stack is the current DFS path of module absolute paths, used to
	// report the cycle's full chain when one is detected.
	stack []string
}

// NewLoader creates a loader rooted at a module's top-level directory.
func NewLoader(root string, sink *report.Sink) *Loader {
	return &Loader{root: root, sink: sink, modules: map[string]*Module{}}
}

// Modules returns every module loaded so far, ordered by absolute path for
// deterministic iteration in later passes.
func (l *Loader) Modules() []*Module {
	paths := make([]string, 0, len(l.modules))
	for p := range l.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]*Module, len(paths))
	for i, p := range paths {
		out[i] = l.modules[p]
	}
	return out
}

// Load resolves and loads the module at pkgPath (as produced by
// syntax.parseUsePath: an optional "." anchor, then any ".." steps and the
// path segments). An anchored path resolves against fromDir, the importing
// module's directory; an unanchored one resolves against the loader's root
// directory and ignores fromDir.
func (l *Loader) Load(pkgPath []string, fromDir string) (*Module, error) {
	absPath, err := l.resolve(pkgPath, fromDir)
	if err != nil {
		return nil, err
	}

	if mod, ok := l.modules[absPath]; ok {
		switch mod.State {
		case StateLoading:
			return nil, l.cycleError(absPath)
		case StateFailed:
			return nil, fmt.Errorf("module at %s failed to load", absPath)
		default:
			return mod, nil
		}
	}

	mod := newModule(strings.Join(pkgPath, "/"), absPath)
	mod.State = StateLoading
	l.modules[absPath] = mod
	l.stack = append(l.stack, absPath)

	if err := l.loadFiles(mod); err != nil {
		mod.State = StateFailed
		l.stack = l.stack[:len(l.stack)-1]
		return nil, err
	}

	for imp := range mod.Imports {
		segs := strings.Split(imp, "/")
		if _, err := l.Load(segs, mod.AbsPath); err != nil {
			mod.State = StateFailed
			l.stack = l.stack[:len(l.stack)-1]
			return nil, err
		}
	}

	mod.State = StateReady
	l.stack = l.stack[:len(l.stack)-1]
	return mod, nil
}

// ResolveModule looks up an already-loaded module by `use` path, without
// triggering a fresh load. Used by the resolver, which runs over the
// module graph only after the loader has fully loaded it.
func (l *Loader) ResolveModule(pkgPath []string, fromDir string) (*Module, error) {
	absPath, err := l.resolve(pkgPath, fromDir)
	if err != nil {
		return nil, err
	}
	mod, ok := l.modules[absPath]
	if !ok {
		return nil, fmt.Errorf("module at %s was never loaded", absPath)
	}
	return mod, nil
}

func (l *Loader) cycleError(reentered string) error {
	var chain []string
	for _, p := range l.stack {
		chain = append(chain, filepath.Base(p))
	}
	chain = append(chain, filepath.Base(reentered))
	msg := fmt.Sprintf("import cycle detected: %s", strings.Join(chain, " -> "))
	l.sink.Add(report.Errorf(report.CodeImportCycle, report.ZeroSpan, msg))
	return fmt.Errorf(msg)
}

// resolve turns a `use` path's anchor+segments into an absolute directory.
// A leading "." is relative to fromDir; an unanchored path is relative to
// the loader's root module directory (spec.md §4.C).
func (l *Loader) resolve(pkgPath []string, fromDir string) (string, error) {
	if len(pkgPath) == 0 {
		return "", fmt.Errorf("empty module path")
	}

	base := l.root
	segs := pkgPath
	if pkgPath[0] == "." {
		base = fromDir
		segs = pkgPath[1:]
	}

	abs := filepath.Join(append([]string{base}, segs...)...)
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		msg := fmt.Sprintf("no module found at path %q (resolved to %s)", strings.Join(pkgPath, "/"), abs)
		l.sink.Add(report.Errorf(report.CodeUnresolvedName, report.ZeroSpan, msg))
		return "", fmt.Errorf(msg)
	}
	return abs, nil
}

// loadFiles globs the module directory for source files and parses them
// concurrently, one errgroup goroutine per file with no limit on their
// number and no mutex (each goroutine writes only its own Files slot),
// collecting the first parse failure.
func (l *Loader) loadFiles(mod *Module) error {
	matches, err := filepath.Glob(filepath.Join(mod.AbsPath, "*"+SourceExt))
	if err != nil {
		return err
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return fmt.Errorf("module directory %s contains no %s files", mod.AbsPath, SourceExt)
	}

	mod.Files = make([]*File, len(matches))

	var g errgroup.Group
	for i, path := range matches {
		i, path := i, path
		g.Go(func() error {
			f, err := l.parseFile(mod, path)
			if err != nil {
				return err
			}
			mod.Files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range mod.Files {
		collectImports(mod, f.AST)
	}
	return nil
}

func (l *Loader) parseFile(mod *Module, path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer osf.Close()

	lx := syntax.NewLexer(path, bufio.NewReader(osf), l.sink)
	p := syntax.NewParser(path, lx, l.sink)
	module := p.ParseModule()

	return &File{Path: path, Module: mod, AST: module}, nil
}

// collectImports records every `use`/`pub use` path a file declares onto
// its owning module, and records `pub use` re-export aliases.
func collectImports(mod *Module, m *ast.Module) {
	for _, item := range m.Items {
		switch it := item.(type) {
		case *ast.UseItem:
			recordImport(mod, it.Path)
		case *ast.PubUseItem:
			recordImport(mod, it.Path)
			alias := it.Alias
			if alias == "" {
				alias = it.Path[len(it.Path)-1]
			}
			mod.PubExports[alias] = strings.Join(it.Path, "/")
		}
	}
}

func recordImport(mod *Module, path []string) {
	if len(path) == 0 || IsFfiPath(path) {
		return
	}
	mod.Imports[strings.Join(path, "/")] = struct{}{}
}

// IsFfiPath reports whether a `use` path is a `rust:<crate>` reference,
// delegated verbatim to the FFI oracle rather than resolved as a module
// directory (spec.md §4.C).
func IsFfiPath(path []string) bool {
	return len(path) > 0 && path[0] == "rust"
}

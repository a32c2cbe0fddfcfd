package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otterlang/otterc/check"
	"github.com/otterlang/otterc/codegen"
	"github.com/otterlang/otterc/config"
	"github.com/otterlang/otterc/depm"
	"github.com/otterlang/otterc/ffi"
	"github.com/otterlang/otterc/lower"
	"github.com/otterlang/otterc/report"
	"github.com/otterlang/otterc/resolve"
)

// Exit codes, per the error handling design: 0 success, 1 a compile error
// was reported through the normal diagnostic sink, 2 an internal error
// (a manifest/config problem, or a panic recovered below) prevented the
// pipeline from even running to completion.
const (
	ExitOK            = 0
	ExitCompileError  = 1
	ExitInternalError = 2
)

// RunCompiler parses the command line, loads the module's manifest, and
// runs otterc's phase pipeline end to end. It is the sole entry point a
// `main` package needs to call. Grounded on bootstrap/cmd/driver.go's
// RunCompiler, generalized from chai's LLC+linker backend to the leaner
// scope this compiler core actually owns: emitting an ir.Module and,
// optionally, its LLVM IR text.
func RunCompiler() (code int) {
	c := NewCompilerFromArgs()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal compiler error: %v\n", r)
			code = ExitInternalError
		}
	}()

	proj, err := config.Load(c.rootPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		return ExitInternalError
	}

	profile, err := proj.SelectProfile(c.profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		return ExitInternalError
	}
	if c.outputPath == filepath.Join(c.rootPath, "out.ll") && profile.OutputPath != "" {
		c.outputPath = filepath.Join(c.rootPath, profile.OutputPath)
	}

	oracle, ffiErrs := ffi.NewStaticOracle(proj.FfiDeps)
	sink := report.NewSink()
	for _, e := range ffiErrs {
		sink.Add(report.Errorf(report.CodeFfiLookupFailed, report.ZeroSpan, "%s", e))
	}

	loader := depm.NewLoader(c.rootPath, sink)

	p := report.BeginPhase("Parsing", c.quiet)
	_, loadErr := loader.Load([]string{"."}, c.rootPath)
	ok := loadErr == nil && !sink.HasErrors()
	p.End(ok)
	if !ok {
		if loadErr != nil {
			sink.Add(report.Errorf(report.CodeImportCycle, report.ZeroSpan, "%s", loadErr))
		}
		return finish(sink)
	}
	modules := loader.Modules()

	p = report.BeginPhase("Resolving", c.quiet)
	resolver := resolve.NewResolver(sink, loader)
	resolved := resolver.Resolve(modules)
	p.End(!sink.HasErrors())
	if sink.HasErrors() {
		return finish(sink)
	}

	p = report.BeginPhase("Type checking", c.quiet)
	checker := check.NewChecker(sink, loader, resolved, oracle)
	checked := checker.Check(modules)
	p.End(!sink.HasErrors())
	if sink.HasErrors() {
		return finish(sink)
	}

	if c.cmd == CmdCheck {
		return finish(sink)
	}
	if c.cmd == CmdFmt {
		fmt.Fprintln(os.Stderr, "otterc fmt: source formatting is not implemented by this compiler core")
		return ExitInternalError
	}

	p = report.BeginPhase("Lowering", c.quiet)
	lowerer := lower.New(resolved, checked, oracle, proj.Name)
	oirMod := lowerer.Lower(modules)
	p.End(!sink.HasErrors())
	if sink.HasErrors() {
		return finish(sink)
	}

	p = report.BeginPhase("Code generation", c.quiet)
	llMod := codegen.Generate(oirMod)
	writeErr := os.WriteFile(c.outputPath, []byte(llMod.String()), 0o644)
	p.End(writeErr == nil)
	if writeErr != nil {
		sink.Add(report.Errorf(report.CodeInternalError, report.ZeroSpan, "unable to write %s: %s", c.outputPath, writeErr))
		return finish(sink)
	}

	if c.cmd == CmdRun {
		fmt.Fprintln(os.Stderr, "otterc run: linking and execution are not provided by this compiler core; wrote "+c.outputPath)
	}

	return finish(sink)
}

func finish(sink *report.Sink) int {
	report.PrintAll(sink)
	report.Summary(sink)
	if sink.HasErrors() {
		return ExitCompileError
	}
	return ExitOK
}

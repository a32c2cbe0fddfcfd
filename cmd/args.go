// Package cmd is the top-level driver for the otterc compiler: command-line
// argument parsing, phase sequencing, and progress/diagnostic rendering.
// Grounded on bootstrap/cmd/{driver,args,compiler}.go.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const usage = `Usage: otterc <command> [flags] <path to module root>

Commands:
----------
build   Compile the module to LLVM IR text.
run     Compile and note that linking/execution is not provided by this core.
check   Type-check only; no lowering or codegen.
fmt     Stubbed; source formatting is out of scope for this compiler core.

Flags:
------
-h, --help      Display this usage text and exit.
-d, --debug     Accepted; has no effect on the output.
-q, --quiet     Suppress phase spinners (plain diagnostics only).
-o, --outpath   Output path for generated LLVM IR (defaults to the selected
                profile's output path).
-p, --profile   Named build profile from otter.toml to use (defaults to the
                manifest's default profile, or its only profile if it
                declares exactly one).
`

// Subcommand enumerates the commands otterc recognizes.
type Subcommand int

const (
	CmdBuild Subcommand = iota
	CmdRun
	CmdCheck
	CmdFmt
)

// Compiler holds the parsed command line and carries state through a single
// invocation's phases.
type Compiler struct {
	cmd        Subcommand
	rootPath   string
	outputPath string
	profile    string
	debug      bool
	quiet      bool
}

func printUsage(exitCode int) {
	fmt.Print(usage)
	os.Exit(exitCode)
}

func argumentError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "argument error: %s\n\n", fmt.Sprintf(format, args...))
	printUsage(1)
}

// NewCompilerFromArgs parses os.Args[1:] into a Compiler, exiting the
// process on a malformed command line or a request for --help, the same
// way bootstrap/cmd/args.go's NewCompilerFromArgs does.
func NewCompilerFromArgs() *Compiler {
	args := os.Args[1:]
	if len(args) == 0 {
		argumentError("a command is required")
	}

	c := &Compiler{}
	switch args[0] {
	case "build":
		c.cmd = CmdBuild
	case "run":
		c.cmd = CmdRun
	case "check":
		c.cmd = CmdCheck
	case "fmt":
		c.cmd = CmdFmt
	case "-h", "--help":
		printUsage(0)
	default:
		argumentError("unknown command %q", args[0])
	}
	args = args[1:]

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printUsage(0)
		case arg == "-d" || arg == "--debug":
			c.debug = true
		case arg == "-q" || arg == "--quiet":
			c.quiet = true
		case arg == "-o" || arg == "--outpath":
			i++
			if i >= len(args) {
				argumentError("%s requires a value", arg)
			}
			c.outputPath = args[i]
		case arg == "-p" || arg == "--profile":
			i++
			if i >= len(args) {
				argumentError("%s requires a value", arg)
			}
			c.profile = args[i]
		case strings.HasPrefix(arg, "-"):
			argumentError("unknown flag %q", arg)
		default:
			if c.rootPath != "" {
				argumentError("module root specified more than once")
			}
			abs, err := filepath.Abs(arg)
			if err != nil {
				argumentError("invalid module root %q: %s", arg, err)
			}
			c.rootPath = abs
		}
	}

	if c.rootPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			argumentError("unable to determine current directory: %s", err)
		}
		c.rootPath = cwd
	}
	if c.outputPath == "" {
		c.outputPath = filepath.Join(c.rootPath, "out.ll")
	}

	return c
}

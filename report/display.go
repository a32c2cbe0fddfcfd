package report

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

var (
	errorStyle = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	warnStyle  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	noteStyle  = pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack)

	errorFG = pterm.FgRed
	warnFG  = pterm.FgYellow
	infoFG  = pterm.FgLightGreen
)

var codeLabel = map[Code]string{
	CodeLexError:          "Lex",
	CodeLayoutError:       "Layout",
	CodeParseError:        "Parse",
	CodeImportCycle:       "Import",
	CodeUnresolvedName:    "Name",
	CodeRedefinition:      "Name",
	CodeVisibilityViol:    "Visibility",
	CodeTypeMismatch:      "Type",
	CodeOccursCheck:       "Type",
	CodeArityMismatch:     "Arity",
	CodeMissingField:      "Field",
	CodeUnknownField:      "Field",
	CodeNonExhaustive:     "Match",
	CodeUnreachableArm:    "Match",
	CodeIllegalTopLevel:   "Syntax",
	CodeDefaultParamOrder: "Syntax",
	CodeReturnOutsideFunc: "Control",
	CodeAwaitOutsideAsync: "Control",
	CodeFfiLookupFailed:   "FFI",
	CodeConfigError:       "Config",
	CodeProfileNotFound:   "Config",
	CodeInternalError:     "Internal",
}

// Print renders a single diagnostic to stdout in the teacher's banner +
// caret-underline style: a one-line summary followed by a source excerpt
// with caret-underlines for the primary (and any secondary) spans.
func Print(d *Diagnostic) {
	printBanner(d)
	fmt.Println(d.Message)

	if d.Span.File != "" {
		printExcerpt(d.Span)
	}

	for _, lbl := range d.Labels {
		fmt.Println("  " + lbl.Message)
		if lbl.Span.File != "" {
			printExcerpt(lbl.Span)
		}
	}

	fmt.Println()
}

func printBanner(d *Diagnostic) {
	label := codeLabel[d.Code]
	if label == "" {
		label = string(d.Code)
	}

	fmt.Print("-- ")
	switch d.Severity {
	case SeverityError:
		errorStyle.Print(label + " Error")
	case SeverityWarning:
		warnStyle.Print(label + " Warning")
	default:
		noteStyle.Print(label + " Note")
	}
	fmt.Print(" ")

	if d.Span.File != "" {
		infoFG.Print(d.Span.File)
		fmt.Printf(":%d:%d", d.Span.StartLine+1, d.Span.StartCol+1)
	}
	fmt.Println()
}

// printExcerpt prints the source lines covered by span with caret
// underlines, matching src/logging/display.go's displayCodeSelection.
func printExcerpt(span Span) {
	f, err := os.Open(span.File)
	if err != nil {
		return
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}
	if len(lines) == 0 {
		return
	}

	minIndent := -1
	for _, line := range lines {
		indent := 0
		for _, c := range line {
			if c != ' ' {
				break
			}
			indent++
		}
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent < 0 {
		minIndent = 0
	}

	gutterW := len(strconv.Itoa(span.EndLine + 1))
	fmtStr := "%-" + strconv.Itoa(gutterW) + "v | "

	for i, line := range lines {
		fmt.Printf(fmtStr, i+span.StartLine+1)
		trimmed := line
		if minIndent <= len(line) {
			trimmed = line[minIndent:]
		}
		fmt.Println(trimmed)

		fmt.Print(strings.Repeat(" ", gutterW), " | ")

		var prefix int
		if i == 0 {
			prefix = span.StartCol - minIndent
		}
		if prefix < 0 {
			prefix = 0
		}

		var caretCount int
		if i == len(lines)-1 {
			caretCount = span.EndCol - prefix - minIndent
		} else {
			caretCount = len(line) - minIndent - prefix
		}
		if caretCount < 1 {
			caretCount = 1
		}

		fmt.Print(strings.Repeat(" ", prefix))
		errorFG.Println(strings.Repeat("^", caretCount))
	}
}

// PrintAll renders every diagnostic in a sink, in insertion order.
func PrintAll(sink *Sink) {
	for _, d := range sink.All() {
		Print(d)
	}
}

// Summary prints the final error/warning tally, matching
// src/logging/display.go's displayCompilationFinished.
func Summary(sink *Sink) {
	errors, warnings := sink.Count()

	fmt.Print("\n")
	if errors == 0 {
		infoFG.Print("All done! ")
	} else {
		errorFG.Print("Build failed. ")
	}

	fmt.Print("(")
	if errors == 0 {
		infoFG.Print(0)
	} else {
		errorFG.Print(errors)
	}
	if errors == 1 {
		fmt.Print(" error, ")
	} else {
		fmt.Print(" errors, ")
	}

	if warnings == 0 {
		infoFG.Print(0)
	} else {
		warnFG.Print(warnings)
	}
	if warnings == 1 {
		fmt.Println(" warning)")
	} else {
		fmt.Println(" warnings)")
	}
}

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

const maxPhaseNameLen = len("Type checking")

// Phase wraps a single compilation phase with a pterm spinner, matching
// src/logging/display.go's displayBeginPhase/displayEndPhase pair.
type Phase struct {
	name      string
	spinner   *pterm.SpinnerPrinter
	start     time.Time
	quiet     bool
}

// BeginPhase starts a new phase spinner. If quiet is true (the driver's
// -q/--quiet flag) it degrades to a no-op.
func BeginPhase(name string, quiet bool) *Phase {
	p := &Phase{name: name, start: time.Now(), quiet: quiet}
	if quiet {
		return p
	}

	pad := strings.Repeat(" ", maxPhaseNameLen-len(name)+2)
	p.spinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(infoFG))
	p.spinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack), Text: "Done"},
	}
	p.spinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: errorStyle, Text: "Fail"},
	}
	p.spinner.Start(name + "..." + pad)
	return p
}

// End stops the spinner, reporting success or failure and the phase's
// elapsed time.
func (p *Phase) End(success bool) {
	if p.quiet || p.spinner == nil {
		return
	}

	pad := strings.Repeat(" ", maxPhaseNameLen-len(p.name)+2)
	if success {
		p.spinner.Success(p.name+pad, fmt.Sprintf("(%.3fs)", time.Since(p.start).Seconds()))
	} else {
		p.spinner.Fail(p.name + pad)
	}
}

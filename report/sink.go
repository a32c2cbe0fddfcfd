package report

import "sync"

// Sink accumulates diagnostics across a single compilation. Passes continue
// after recoverable errors by substituting poisoned nodes/types; the driver
// consults HasErrors to decide whether to abort before codegen.
type Sink struct {
	mu    sync.Mutex
	diags []*Diagnostic
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add records a diagnostic. Safe to call from multiple goroutines, since
// module parsing (spec.md §5) may run per-file in parallel.
func (s *Sink) Add(d *Diagnostic) {
	if d == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
}

// All returns every diagnostic recorded so far, in insertion order.
func (s *Sink) All() []*Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// HasErrors returns whether any error-severity diagnostic has been recorded.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of errors and warnings recorded.
func (s *Sink) Count() (errors, warnings int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.diags {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}

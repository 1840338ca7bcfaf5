package graph

import "fmt"

// Category labels a diagnostic's severity.
type Category string

const (
	CategoryError   Category = "error"
	CategoryWarning Category = "warning"
	CategoryInfo    Category = "info"
)

// Diagnostic is a non-fatal finding attached to an otherwise successful
// emission: a check failure, an unresolved dependency, a suspicious
// construct. Diagnostics are data, never errors.
type Diagnostic struct {
	Specifier string   `json:"specifier,omitempty"`
	Line      int      `json:"line,omitempty"`
	Message   string   `json:"message"`
	Category  Category `json:"category"`
}

func (d Diagnostic) String() string {
	if d.Specifier == "" {
		return fmt.Sprintf("%s: %s", d.Category, d.Message)
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %s", d.Category, d.Specifier, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Category, d.Specifier, d.Message)
}

// Diagnostics is an ordered sequence; ordering is part of the result
// contract and must never be re-sorted.
type Diagnostics []Diagnostic

// ExtendGraphErrors appends graph-level errors after the existing
// diagnostics. Graph errors always trail emission diagnostics.
func (d Diagnostics) ExtendGraphErrors(errs []error) Diagnostics {
	out := d
	for _, err := range errs {
		if err == nil {
			continue
		}
		out = append(out, Diagnostic{
			Message:  err.Error(),
			Category: CategoryError,
		})
	}
	return out
}

// Stats collects opaque counters and millisecond timings for one
// compilation, keyed by human-readable metric names.
type Stats map[string]int64

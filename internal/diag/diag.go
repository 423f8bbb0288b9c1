// Package diag provides shared diagnostics for annotation scanning.
package diag

import "fmt"

// Kind classifies a diagnostic message.
type Kind string

const (
	KindNonCallable Kind = "non_callable" // previous line is not a declaration
	KindNoStruct    Kind = "no_struct"    // method form without declaring struct
	KindNoIndirect  Kind = "no_indirect"  // dynamic form without gaddrof marker
	KindNoForm      Kind = "no_form"      // marker present, no known call-form
	KindDuplicate   Kind = "duplicate"    // address already emitted in namespace
)

// Skip reports whether the kind drops the annotation.
func (k Kind) Skip() bool { return k != KindDuplicate }

// Promotes reports whether strict mode turns the kind into an error.
// Unknown forms stay informational: plugin:: also prefixes helpers that
// are not calls at all.
func (k Kind) Promotes() bool {
	switch k {
	case KindNonCallable, KindNoStruct, KindNoIndirect:
		return true
	}
	return false
}

// Diag records a non-fatal issue encountered during scanning.
type Diag struct {
	Line int    `json:"line"`
	Kind Kind   `json:"kind"`
	Msg  string `json:"msg"`
}

func (d Diag) String() string {
	return fmt.Sprintf("[%s] line %d: %s", d.Kind, d.Line, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(line int, kind Kind, msg string) {
	d.items = append(d.items, Diag{Line: line, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(line int, kind Kind, format string, args ...any) {
	d.items = append(d.items, Diag{Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// Merge appends all diagnostics from other.
func (d *Diags) Merge(other *Diags) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }

// Count returns the number of diagnostics of the given kind.
func (d *Diags) Count(kind Kind) int {
	n := 0
	for _, it := range d.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Mode controls error handling behavior.
type Mode int

const (
	ModeBestEffort Mode = iota // skip offending annotations, accumulate diags
	ModeStrict                 // first skip returns an error
)

func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "best-effort"
}

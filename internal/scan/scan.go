// Package scan extracts call annotations from annotated header source and
// encodes them as ir.CallRecord values.
//
// A pass runs classify → resolve over the input lines with an explicit
// State; scope headers (plugin_xx\game\file.h:) set the lookup scope for
// gaddrof() references and feed the table of contents.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cpp2cleo/internal/diag"
	"cpp2cleo/internal/ir"
)

// Markers are the tokens that identify annotations in the corpus.
type Markers struct {
	Call     string // prefix of every call-form annotation
	Scope    string // prefix of a scope header path
	Indirect string // indirection reference resolved via the address table
}

// DefaultMarkers matches plugin-sdk headers.
var DefaultMarkers = Markers{
	Call:     "plugin::",
	Scope:    "plugin_",
	Indirect: "gaddrof",
}

// Policy decides what happens when a dynamic form lacks its indirection
// reference.
type Policy string

const (
	PolicyFatal   Policy = "fatal"   // every dynamic form aborts
	PolicyLenient Policy = "lenient" // CallMethodDynGlobal and CallAndReturnDynGlobal skip
)

// Options controls scanning behavior.
type Options struct {
	Markers Markers
	Exclude []string // namespaces whose annotations are ignored
	Dynamic Policy
	Mode    diag.Mode
	Workers int // ScanParallel concurrency; 0 = GOMAXPROCS
	Logger  *zerolog.Logger
}

// DefaultExclude lists namespaces skipped unless configured otherwise.
var DefaultExclude = []string{"plugin_II"}

func (o *Options) markers() Markers {
	m := DefaultMarkers
	if o == nil {
		return m
	}
	if o.Markers.Call != "" {
		m.Call = o.Markers.Call
	}
	if o.Markers.Scope != "" {
		m.Scope = o.Markers.Scope
	}
	if o.Markers.Indirect != "" {
		m.Indirect = o.Markers.Indirect
	}
	return m
}

func (o *Options) excluded(namespace string) bool {
	list := DefaultExclude
	if o != nil && o.Exclude != nil {
		list = o.Exclude
	}
	for _, ex := range list {
		if ex == namespace {
			return true
		}
	}
	return false
}

func (o *Options) lenient(f ir.Form) bool {
	if o == nil || o.Dynamic != PolicyLenient {
		return false
	}
	return f == ir.FormCallMethodDynGlobal || f == ir.FormCallAndReturnDynGlobal
}

func (o *Options) mode() diag.Mode {
	if o == nil {
		return diag.ModeBestEffort
	}
	return o.Mode
}

func (o *Options) logger() *zerolog.Logger {
	if o == nil || o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

// Result is the output of a scanning pass.
type Result struct {
	Records []ir.CallRecord
	TOC     ir.TOC
	Diags   diag.Diags
}

// Sections groups the records by scope header.
func (r *Result) Sections() []ir.Section { return ir.BuildSections(r.TOC.Paths, r.Records) }

// ReadLines splits r into lines, dropping a trailing carriage return.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: read: %w", err)
	}
	return lines, nil
}

// Scan runs a single sequential pass over lines.
func Scan(lines []string, table Lookup, opts *Options) (*Result, error) {
	res := &Result{}
	var st State
	for i, line := range lines {
		kind, err := st.Classify(line, i+1, opts)
		if err != nil {
			return nil, err
		}
		if kind != CallAnnotation {
			continue
		}
		if err := resolveInto(res, window(lines, i), st.Scope, table, opts); err != nil {
			return nil, err
		}
	}
	res.TOC = st.TOC
	markDuplicates(res, opts)
	return res, nil
}

func window(lines []string, i int) Window {
	w := Window{Line: lines[i], LineNo: i + 1}
	if i > 0 {
		w.Prev = lines[i-1]
	}
	return w
}

func resolveInto(res *Result, w Window, scope string, table Lookup, opts *Options) error {
	out, err := ResolveCall(w, scope, table, opts)
	if err != nil {
		return err
	}
	if out.Skip != nil {
		d := *out.Skip
		if opts.mode() == diag.ModeStrict && d.Kind.Promotes() {
			return lineErr(w.LineNo, w.Line, fmt.Errorf("%w: %s", ErrStrict, d.Msg))
		}
		opts.logger().Warn().Int("line", d.Line).Str("kind", string(d.Kind)).Msg(d.Msg)
		res.Diags.Add(d.Line, d.Kind, d.Msg)
		return nil
	}
	if err := out.Record.Validate(); err != nil {
		return lineErr(w.LineNo, w.Line, err)
	}
	res.Records = append(res.Records, *out.Record)
	return nil
}

// markDuplicates reports addresses emitted more than once within a
// top-level namespace. Records are kept.
func markDuplicates(res *Result, opts *Options) {
	dups := newDupTracker()
	for _, r := range res.Records {
		ns := namespaceOf(r.Scope)
		first, dup := dups.observe(ns, r.Address, r.Line)
		if !dup {
			continue
		}
		opts.logger().Debug().Int("line", r.Line).Str("address", r.Address).Str("namespace", ns).
			Msg("duplicate address")
		res.Diags.Addf(r.Line, diag.KindDuplicate, "%s at %s already emitted on line %d in %s",
			r.QualifiedName, r.Address, first, ns)
	}
}

// section is a scope-delimited run of lines.
type section struct {
	scope string
	calls []int // indexes of annotation lines
}

// ScanParallel resolves scope sections concurrently. Sections only share
// the read-only table, so the result equals Scan's. The error of the
// earliest failing line is returned: a malformed scope header only wins
// when no annotation before it failed.
func ScanParallel(ctx context.Context, lines []string, table Lookup, opts *Options) (*Result, error) {
	var st State
	var headerErr error
	secs := []section{{}}
	for i, line := range lines {
		kind, err := st.Classify(line, i+1, opts)
		if err != nil {
			headerErr = err
			break
		}
		switch kind {
		case ScopeHeader:
			secs = append(secs, section{scope: st.Scope})
		case CallAnnotation:
			cur := &secs[len(secs)-1]
			cur.calls = append(cur.calls, i)
		}
	}

	parts := make([]Result, len(secs))
	errs := make([]error, len(secs))
	var g errgroup.Group
	workers := runtime.GOMAXPROCS(0)
	if opts != nil && opts.Workers > 0 {
		workers = opts.Workers
	}
	g.SetLimit(workers)
	for si := range secs {
		if len(secs[si].calls) == 0 {
			continue
		}
		// Sections never cancel each other so the reported error does not
		// depend on scheduling.
		g.Go(func() error {
			sec := secs[si]
			for _, i := range sec.calls {
				if err := ctx.Err(); err != nil {
					errs[si] = err
					return err
				}
				if err := resolveInto(&parts[si], window(lines, i), sec.scope, table, opts); err != nil {
					errs[si] = err
					return err
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if headerErr != nil {
		return nil, headerErr
	}

	res := &Result{TOC: st.TOC}
	for i := range parts {
		res.Records = append(res.Records, parts[i].Records...)
		res.Diags.Merge(&parts[i].Diags)
	}
	markDuplicates(res, opts)
	return res, nil
}

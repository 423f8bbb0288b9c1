package scan

import (
	"fmt"
	"strings"

	"cpp2cleo/internal/ir"
)

// LineKind classifies one input line.
type LineKind int

const (
	Ignored LineKind = iota
	ScopeHeader
	CallAnnotation
)

func (k LineKind) String() string {
	switch k {
	case ScopeHeader:
		return "scope"
	case CallAnnotation:
		return "call"
	default:
		return "ignored"
	}
}

// Scope is a parsed scope header: namespace\group\...\file.
type Scope struct {
	Path      string
	Namespace string
	Group     string
	File      string
}

// ParseScope splits a scope path. At least three components are required.
func ParseScope(path string) (Scope, error) {
	parts := strings.Split(path, `\`)
	if len(parts) < 3 {
		return Scope{}, fmt.Errorf("%w: %q", ErrMalformedScope, path)
	}
	return Scope{
		Path:      path,
		Namespace: parts[0],
		Group:     parts[1],
		File:      parts[len(parts)-1],
	}, nil
}

// State is the cursor carried across lines by a single scanning pass.
type State struct {
	Scope string // last seen scope path, "" before the first header
	Skip  bool   // active scope is excluded
	TOC   ir.TOC
}

// Classify inspects line and updates st for scope headers.
func (st *State) Classify(line string, lineNo int, opts *Options) (LineKind, error) {
	m := opts.markers()
	if strings.Contains(line, m.Call) {
		if st.Skip {
			return Ignored, nil
		}
		return CallAnnotation, nil
	}
	idx := strings.Index(line, m.Scope)
	if idx < 0 {
		return Ignored, nil
	}

	path := strings.TrimSpace(line[idx:])
	path = strings.TrimSuffix(path, ":")
	sc, err := ParseScope(path)
	if err != nil {
		return Ignored, lineErr(lineNo, line, err)
	}
	st.Scope = sc.Path
	st.Skip = opts.excluded(sc.Namespace)
	if !st.Skip {
		st.TOC.Add(sc.Path, sc.Namespace, sc.Group, sc.File)
	}
	return ScopeHeader, nil
}

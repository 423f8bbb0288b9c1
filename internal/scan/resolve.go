package scan

import (
	"fmt"
	"strings"

	"cpp2cleo/internal/diag"
	"cpp2cleo/internal/ir"
)

// Window is the two-line view the resolver works on: the annotation line
// and the declaration line right above it.
type Window struct {
	Prev   string
	Line   string
	LineNo int // 1-based number of Line
}

// DeclName derives the callable name from a declaration line.
//
//	void CPed::SetModelIndex(unsigned int modelIndex)  -> CPed::SetModelIndex, CPed
//	float FindGroundZForCoord(float x, float y)        -> FindGroundZForCoord, ""
//
// ok is false when the line declares nothing callable.
func DeclName(prev string) (name, structName string, ok bool) {
	head, _, hasParen := strings.Cut(prev, "(")
	tok := lastField(head)
	if strings.Contains(tok, "::") {
		i := strings.LastIndex(tok, "::")
		owner, method := tok[:i], strings.TrimSpace(tok[i+2:])
		if j := strings.LastIndex(owner, "::"); j >= 0 {
			owner = owner[j+2:]
		}
		if owner == "" || method == "" {
			return "", "", false
		}
		return owner + "::" + method, owner, true
	}
	if !hasParen || tok == "" {
		return "", "", false
	}
	return tok, "", true
}

// lastField returns the last whitespace-delimited token of s with pointer
// and reference declarators stripped.
func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimLeft(fields[len(fields)-1], "*&")
}

// Outcome is the result of resolving one annotation: exactly one of Record
// or Skip is set.
type Outcome struct {
	Record *ir.CallRecord
	Skip   *diag.Diag
}

func skip(lineNo int, kind diag.Kind, format string, args ...any) Outcome {
	return Outcome{Skip: &diag.Diag{Line: lineNo, Kind: kind, Msg: fmt.Sprintf(format, args...)}}
}

// ResolveCall turns an annotation window into a call record. Fatal
// problems are returned as *LineError; recoverable ones as Outcome.Skip.
func ResolveCall(w Window, scope string, table Lookup, opts *Options) (Outcome, error) {
	m := opts.markers()
	match, ok := MatchForm(w.Line, m.Call)
	if !ok {
		return skip(w.LineNo, diag.KindNoForm, "no known call form in %q", strings.TrimSpace(w.Line)), nil
	}
	spec := match.spec
	src := strings.TrimSpace(w.Line[match.Pos:])

	name, structName, ok := DeclName(w.Prev)
	if !ok {
		return skip(w.LineNo, diag.KindNonCallable, "non callable declaration %q", strings.TrimSpace(w.Prev)), nil
	}

	generics, params, err := splitAnnotation(src)
	if err != nil {
		return Outcome{}, lineErr(w.LineNo, w.Line, err)
	}

	var ret *string
	if spec.form.Returns() {
		if len(generics) < 1 {
			return Outcome{}, lineErr(w.LineNo, w.Line, fmt.Errorf("%w: return type of %s", ErrMissingGeneric, spec.form))
		}
		r := generics[0]
		ret = &r
	}

	var addr string
	if !spec.form.IsDynamic() {
		if len(generics) <= spec.addrArg {
			return Outcome{}, lineErr(w.LineNo, w.Line, fmt.Errorf("%w: address of %s", ErrMissingGeneric, spec.form))
		}
		addr, err = Resolve(generics[spec.addrArg], scope, table, m.Indirect)
		if err != nil {
			return Outcome{}, lineErr(w.LineNo, w.Line, err)
		}
	} else {
		ref := ""
		if len(params) > 0 {
			ref = params[0]
		}
		if !strings.HasPrefix(ref, m.Indirect) {
			if opts.lenient(spec.form) {
				return skip(w.LineNo, diag.KindNoIndirect, "%s without %s: %q", spec.form, m.Indirect, ref), nil
			}
			return Outcome{}, lineErr(w.LineNo, w.Line, fmt.Errorf("%w: %s got %q", ErrNoIndirect, spec.form, ref))
		}
		addr, err = Resolve(ref, scope, table, m.Indirect)
		if err != nil {
			return Outcome{}, lineErr(w.LineNo, w.Line, err)
		}
	}

	var owner *string
	if spec.form.IsMethod() {
		if structName == "" {
			return skip(w.LineNo, diag.KindNoStruct, "%s needs a declaring struct, got %q", spec.form, name), nil
		}
		s := structName
		owner = &s
	}

	args := dropParams(params, spec.drop)
	pop := 0
	if spec.convention == ir.Cdecl {
		pop = len(args)
	}

	rec := &ir.CallRecord{
		QualifiedName:   name,
		Address:         addr,
		Convention:      spec.convention,
		PopCount:        pop,
		Params:          args,
		ReturnType:      ret,
		DeclaringStruct: owner,
		Form:            spec.form,
		Scope:           scope,
		Line:            w.LineNo,
		Source:          src,
	}
	return Outcome{Record: rec}, nil
}

// splitAnnotation returns the generic arguments and the call parameters of
// an annotation starting at the call marker.
func splitAnnotation(src string) (generics, params []string, err error) {
	rest := src
	paren := strings.IndexByte(src, '(')
	if angle := strings.IndexByte(src, '<'); angle >= 0 && (paren < 0 || angle < paren) {
		inner, end, ok := ExtractBalanced(src, '<', '>')
		if !ok {
			return nil, nil, fmt.Errorf("%w: generic list in %q", ErrUnbalanced, src)
		}
		generics = splitGenerics(inner)
		rest = src[end:]
	}
	inner, _, ok := ExtractBalanced(rest, '(', ')')
	if !ok {
		return nil, nil, fmt.Errorf("%w: parameter list in %q", ErrUnbalanced, src)
	}
	return generics, SplitTopLevel(inner), nil
}

func dropParams(params []string, n int) []ir.ParamSpec {
	if n > len(params) {
		n = len(params)
	}
	out := make([]ir.ParamSpec, 0, len(params)-n)
	for _, p := range params[n:] {
		out = append(out, ir.ParamSpec{Text: p})
	}
	return out
}

package scan

import (
	"strings"

	"cpp2cleo/internal/ir"
)

// formSpec describes how one annotation shape maps onto a call record.
type formSpec struct {
	form       ir.Form
	convention ir.Convention
	drop       int // leading params that are not call arguments
	addrArg    int // generic index of the literal address; unused when dynamic
}

// formOrder lists forms most specific first. Returning forms carry the
// return type in generic arg 0. A line resolves to the first
// entry whose exact token appears in it.
var formOrder = []formSpec{
	{form: ir.FormCallMethodAndReturnDynGlobal, convention: ir.Thiscall, drop: 2},
	{form: ir.FormCallMethodDynGlobal, convention: ir.Thiscall, drop: 2},
	{form: ir.FormCallAndReturnDynGlobal, convention: ir.Cdecl, drop: 1},
	{form: ir.FormCallStdAndReturn, convention: ir.Stdcall, addrArg: 1},
	{form: ir.FormCallAndReturn, convention: ir.Cdecl, addrArg: 1},
	{form: ir.FormCallMethodAndReturn, convention: ir.Thiscall, drop: 1, addrArg: 1},
	{form: ir.FormCallMethod, convention: ir.Thiscall, drop: 1, addrArg: 0},
	{form: ir.FormCallStd, convention: ir.Stdcall, addrArg: 0},
	{form: ir.FormCall, convention: ir.Cdecl, addrArg: 0},
}

// Match is a recognized call-form occurrence within a line.
type Match struct {
	spec formSpec
	Form ir.Form
	Pos  int // byte offset of the marker in the line
}

// MatchForm finds the call-form used by line. Direct and method forms
// must be followed by their '<' generic list; the DynGlobal forms may
// also be followed by '(' or whitespace. CallMethod never matches
// CallMethodAndReturn, and a bare mention in prose matches nothing.
func MatchForm(line, callMarker string) (Match, bool) {
	for _, spec := range formOrder {
		tok := callMarker + string(spec.form)
		if pos := indexToken(line, tok, spec.form.IsDynamic()); pos >= 0 {
			return Match{spec: spec, Form: spec.form, Pos: pos}, true
		}
	}
	return Match{}, false
}

func indexToken(line, tok string, loose bool) int {
	off := 0
	for {
		i := strings.Index(line[off:], tok)
		if i < 0 {
			return -1
		}
		pos := off + i
		end := pos + len(tok)
		if end < len(line) {
			switch c := line[end]; {
			case c == '<':
				return pos
			case loose && (c == '(' || c == ' ' || c == '\t'):
				return pos
			}
		}
		off = end
	}
}

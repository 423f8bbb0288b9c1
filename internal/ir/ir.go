// Package ir defines the canonical call records produced by the scanner
// and consumed by the renderers.
package ir

import (
	"errors"
	"fmt"
)

// Convention is a native calling convention.
type Convention string

const (
	Cdecl    Convention = "cdecl"
	Stdcall  Convention = "stdcall"
	Thiscall Convention = "thiscall"
)

// Form identifies the annotation shape a record was decoded from.
type Form string

const (
	FormCall                         Form = "Call"
	FormCallStd                      Form = "CallStd"
	FormCallAndReturn                Form = "CallAndReturn"
	FormCallStdAndReturn             Form = "CallStdAndReturn"
	FormCallMethod                   Form = "CallMethod"
	FormCallMethodAndReturn          Form = "CallMethodAndReturn"
	FormCallAndReturnDynGlobal       Form = "CallAndReturnDynGlobal"
	FormCallMethodDynGlobal          Form = "CallMethodDynGlobal"
	FormCallMethodAndReturnDynGlobal Form = "CallMethodAndReturnDynGlobal"
)

// IsMethod reports whether the form binds an implicit receiver.
func (f Form) IsMethod() bool {
	switch f {
	case FormCallMethod, FormCallMethodAndReturn, FormCallMethodDynGlobal, FormCallMethodAndReturnDynGlobal:
		return true
	}
	return false
}

// IsDynamic reports whether the address comes from the address table.
func (f Form) IsDynamic() bool {
	switch f {
	case FormCallAndReturnDynGlobal, FormCallMethodDynGlobal, FormCallMethodAndReturnDynGlobal:
		return true
	}
	return false
}

// Returns reports whether the form declares a return type.
func (f Form) Returns() bool {
	switch f {
	case FormCallAndReturn, FormCallStdAndReturn, FormCallMethodAndReturn,
		FormCallAndReturnDynGlobal, FormCallMethodAndReturnDynGlobal:
		return true
	}
	return false
}

// Opcode mnemonics of the CLEO call family.
const (
	OpCallFunction       = "0AA5"
	OpCallMethod         = "0AA6"
	OpCallFunctionReturn = "0AA7"
	OpCallMethodReturn   = "0AA8"
)

// ParamSpec is one raw, trimmed parameter declaration.
type ParamSpec struct {
	Text string `json:"text"`
}

// CallRecord is the normalized description of one callable.
type CallRecord struct {
	QualifiedName   string      `json:"name"`
	Address         string      `json:"address"`
	Convention      Convention  `json:"convention"`
	PopCount        int         `json:"pop"`
	Params          []ParamSpec `json:"params"`
	ReturnType      *string     `json:"return_type,omitempty"`
	DeclaringStruct *string     `json:"struct,omitempty"`
	Form            Form        `json:"form"`
	Scope           string      `json:"scope"`
	Line            int         `json:"line"`
	Source          string      `json:"source"`
}

// Opcode returns the CLEO opcode that performs this call.
func (r *CallRecord) Opcode() string {
	switch {
	case r.DeclaringStruct != nil && r.ReturnType != nil:
		return OpCallMethodReturn
	case r.DeclaringStruct != nil:
		return OpCallMethod
	case r.ReturnType != nil:
		return OpCallFunctionReturn
	default:
		return OpCallFunction
	}
}

// Mnemonic returns the opcode's command name.
func (r *CallRecord) Mnemonic() string {
	switch r.Opcode() {
	case OpCallMethodReturn:
		return "call_method_return"
	case OpCallMethod:
		return "call_method"
	case OpCallFunctionReturn:
		return "call_function_return"
	default:
		return "call_function"
	}
}

// ParamTexts returns the parameter texts in declaration order.
func (r *CallRecord) ParamTexts() []string {
	out := make([]string, len(r.Params))
	for i, p := range r.Params {
		out[i] = p.Text
	}
	return out
}

var ErrInvariant = errors.New("ir: record invariant violated")

// Validate checks the calling-convention and receiver invariants.
func (r *CallRecord) Validate() error {
	switch r.Convention {
	case Stdcall, Thiscall:
		if r.PopCount != 0 {
			return fmt.Errorf("%w: %s pop %d under %s", ErrInvariant, r.QualifiedName, r.PopCount, r.Convention)
		}
	case Cdecl:
		if r.PopCount != len(r.Params) {
			return fmt.Errorf("%w: %s pop %d with %d params", ErrInvariant, r.QualifiedName, r.PopCount, len(r.Params))
		}
	default:
		return fmt.Errorf("%w: %s unknown convention %q", ErrInvariant, r.QualifiedName, r.Convention)
	}
	if r.Form.IsMethod() != (r.DeclaringStruct != nil) {
		return fmt.Errorf("%w: %s struct presence does not match form %s", ErrInvariant, r.QualifiedName, r.Form)
	}
	if r.Form.IsMethod() && r.Convention != Thiscall {
		return fmt.Errorf("%w: %s method form under %s", ErrInvariant, r.QualifiedName, r.Convention)
	}
	return nil
}

// Section is the run of records that follow one scope header.
type Section struct {
	Scope   string       `json:"scope"`
	Records []CallRecord `json:"records"`
}

// BuildSections groups records under their scope headers. Every path
// gets a section, even without records, in header order. Records that
// precede the first header form a leading section with an empty scope.
func BuildSections(paths []string, records []CallRecord) []Section {
	out := make([]Section, 0, len(paths)+1)
	idx := make(map[string]int, len(paths))
	for _, p := range paths {
		if _, ok := idx[p]; ok {
			continue
		}
		idx[p] = len(out)
		out = append(out, Section{Scope: p})
	}
	var lead []Section
	for _, r := range records {
		if i, ok := idx[r.Scope]; ok {
			out[i].Records = append(out[i].Records, r)
			continue
		}
		i := len(lead)
		for j := range lead {
			if lead[j].Scope == r.Scope {
				i = j
				break
			}
		}
		if i == len(lead) {
			lead = append(lead, Section{Scope: r.Scope})
		}
		lead[i].Records = append(lead[i].Records, r)
	}
	return append(lead, out...)
}

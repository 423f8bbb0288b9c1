// Package render produces CLEO scripts, Markdown, HTML and Graphviz DOT
// from scanned call records.
package render

import (
	"fmt"
	"strings"

	"cpp2cleo/internal/ir"
)

// Anchor derives the fragment id for a scope heading: lowercase with every
// non-word character removed, so plugin_sa\game_sa\CPed.h becomes
// plugin_sagame_sacpedh.
func Anchor(scope string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(scope) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Instruction formats the CLEO opcode line for a record. Parameters are
// listed last-to-first, the order the opcode pushes them.
func Instruction(r *ir.CallRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", r.Opcode(), r.Mnemonic(), r.Address)
	if r.DeclaringStruct != nil {
		fmt.Fprintf(&b, " struct [%s]", *r.DeclaringStruct)
	}
	fmt.Fprintf(&b, " num_params %d pop %d", len(r.Params), r.PopCount)
	params := r.ParamTexts()
	for i := len(params) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, " [%s]", params[i])
	}
	if r.ReturnType != nil {
		fmt.Fprintf(&b, " func_ret [%s]", *r.ReturnType)
	}
	return b.String()
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

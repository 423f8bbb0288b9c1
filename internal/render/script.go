package render

import (
	"bufio"
	"fmt"
	"io"

	"cpp2cleo/internal/ir"
)

// WriteScript writes the flat opcode listing: each scope header followed
// by its calls as a name comment, the source annotation, and the opcode.
//
//	plugin_sa\game_sa\CPed.h:
//		// CPed::SetModelIndex
//		// plugin::CallMethod<0x5E4880, CPed *, unsigned int>(this, modelIndex);
//		0AA6: call_method 0x5E4880 struct [CPed] num_params 1 pop 0 [modelIndex]
func WriteScript(w io.Writer, sections []ir.Section) error {
	bw := bufio.NewWriter(w)
	for _, sec := range sections {
		if len(sec.Records) == 0 {
			continue
		}
		if sec.Scope != "" {
			fmt.Fprintf(bw, "%s:\n", sec.Scope)
		}
		for i := range sec.Records {
			r := &sec.Records[i]
			fmt.Fprintf(bw, "\t// %s\n", r.QualifiedName)
			fmt.Fprintf(bw, "\t// %s\n", r.Source)
			fmt.Fprintf(bw, "\t%s\n", Instruction(r))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

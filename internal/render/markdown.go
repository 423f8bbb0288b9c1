package render

import (
	"fmt"
	"strings"

	"cpp2cleo/internal/ir"
)

// Markdown renders the table of contents followed by one heading per
// scope and one code block per call.
func Markdown(sections []ir.Section, toc ir.TOC) string {
	var b strings.Builder

	for _, ns := range toc.Namespaces {
		fmt.Fprintf(&b, "* %s\n", ns.Name)
		for _, g := range ns.Groups {
			fmt.Fprintf(&b, "  * %s\n", g.Name)
			for _, f := range g.Files {
				fmt.Fprintf(&b, "    * [%s](#%s)\n", f.Name, Anchor(f.Path))
			}
		}
	}

	for _, sec := range sections {
		if sec.Scope != "" {
			fmt.Fprintf(&b, "\n<a id=\"%s\"></a>\n\n### %s\n", Anchor(sec.Scope), escapeInline(sec.Scope))
		}
		for i := range sec.Records {
			r := &sec.Records[i]
			fmt.Fprintf(&b, "\n#### %s\n\n", escapeInline(r.QualifiedName))
			b.WriteString("```\n")
			b.WriteString(r.Source)
			b.WriteByte('\n')
			b.WriteString(Instruction(r))
			b.WriteString("\n```\n")
		}
	}
	return b.String()
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"<", `\<`,
	">", `\>`,
	"[", `\[`,
	"]", `\]`,
	"`", "\\`",
)

// escapeInline keeps scope paths and C++ names literal in headings.
func escapeInline(s string) string { return inlineEscaper.Replace(s) }

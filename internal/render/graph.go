package render

import (
	"strings"

	"github.com/zboralski/lattice"
	lrender "github.com/zboralski/lattice/render"

	"cpp2cleo/internal/ir"
)

// ScopeGraph builds a graph of the scanned corpus: namespace -> group ->
// file, and file -> declaring struct for every method record.
func ScopeGraph(sections []ir.Section) *lattice.Graph {
	g := &lattice.Graph{}
	for _, sec := range sections {
		if sec.Scope == "" {
			continue
		}
		parts := strings.Split(sec.Scope, `\`)
		if len(parts) < 3 {
			continue
		}
		ns, group := parts[0], parts[0]+`\`+parts[1]
		g.Nodes = append(g.Nodes, ns, group, sec.Scope)
		g.Edges = append(g.Edges,
			lattice.Edge{Caller: ns, Callee: group},
			lattice.Edge{Caller: group, Callee: sec.Scope},
		)
		for _, r := range sec.Records {
			if r.DeclaringStruct == nil {
				continue
			}
			g.Nodes = append(g.Nodes, *r.DeclaringStruct)
			g.Edges = append(g.Edges, lattice.Edge{Caller: sec.Scope, Callee: *r.DeclaringStruct})
		}
	}
	g.Nodes = uniq(g.Nodes)
	g.Dedup()
	return g
}

// ScopeDOT renders ScopeGraph as Graphviz DOT.
func ScopeDOT(sections []ir.Section, title string) string {
	return lrender.DOT(ScopeGraph(sections), title)
}

func uniq(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := ss[:0]
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

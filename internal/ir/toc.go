package ir

// TOC is the table of contents built from scope headers:
// namespace → subgroup → files, all in first-seen order. Paths keeps
// every scope path in input order.
type TOC struct {
	Namespaces []TOCNamespace `json:"namespaces"`
	Paths      []string       `json:"paths"`
}

type TOCNamespace struct {
	Name   string     `json:"name"`
	Groups []TOCGroup `json:"groups"`
}

type TOCGroup struct {
	Name  string    `json:"name"`
	Files []TOCFile `json:"files"`
}

// TOCFile is one scope header; Path is the full scope it came from.
type TOCFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Add appends file under (namespace, group), creating entries as needed.
// A path seen before is not listed again.
func (t *TOC) Add(path, namespace, group, file string) {
	for _, p := range t.Paths {
		if p == path {
			return
		}
	}
	t.Paths = append(t.Paths, path)

	ni := -1
	for i := range t.Namespaces {
		if t.Namespaces[i].Name == namespace {
			ni = i
			break
		}
	}
	if ni < 0 {
		t.Namespaces = append(t.Namespaces, TOCNamespace{Name: namespace})
		ni = len(t.Namespaces) - 1
	}
	ns := &t.Namespaces[ni]
	entry := TOCFile{Name: file, Path: path}
	for i := range ns.Groups {
		if ns.Groups[i].Name == group {
			ns.Groups[i].Files = append(ns.Groups[i].Files, entry)
			return
		}
	}
	ns.Groups = append(ns.Groups, TOCGroup{Name: group, Files: []TOCFile{entry}})
}

// Files returns the total number of files listed.
func (t *TOC) Files() int {
	n := 0
	for _, ns := range t.Namespaces {
		for _, g := range ns.Groups {
			n += len(g.Files)
		}
	}
	return n
}

// Package addrtab loads the scope → symbol → address listing used to
// resolve gaddrof() references.
//
// The listing alternates scope lines and symbol lines:
//
//	plugin_sa\game_sa\CPed.h
//	ms_pedTypes: 0xC0E3F8
//	ms_fHeadTrackingYaw: 0x8D2E38
package addrtab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

var (
	ErrNoScope     = errors.New("addrtab: symbol line before any scope")
	ErrBadEntry    = errors.New("addrtab: malformed symbol line")
	ErrEmptySymbol = errors.New("addrtab: empty symbol name")
)

// Table is an immutable scope → symbol → address mapping.
type Table struct {
	scopes map[string]map[string]string
}

// Lookup returns the address of symbol in scope.
func (t *Table) Lookup(scope, symbol string) (string, bool) {
	if t == nil {
		return "", false
	}
	syms, ok := t.scopes[scope]
	if !ok {
		return "", false
	}
	addr, ok := syms[symbol]
	return addr, ok
}

// Scopes returns all scopes in sorted order.
func (t *Table) Scopes() []string {
	out := make([]string, 0, len(t.scopes))
	for s := range t.scopes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Symbols returns a copy of the symbols declared in scope.
func (t *Table) Symbols(scope string) map[string]string {
	out := make(map[string]string, len(t.scopes[scope]))
	for k, v := range t.scopes[scope] {
		out[k] = v
	}
	return out
}

// Len returns the total number of symbols across all scopes.
func (t *Table) Len() int {
	n := 0
	for _, syms := range t.scopes {
		n += len(syms)
	}
	return n
}

// Parse reads a listing from r.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{scopes: make(map[string]map[string]string)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur map[string]string
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.Contains(line, ":") {
			// Repeated scope lines extend the existing entry.
			if _, ok := t.scopes[line]; !ok {
				t.scopes[line] = make(map[string]string)
			}
			cur = t.scopes[line]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrNoScope, lineNo, line)
		}
		name, addr, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadEntry, lineNo, line)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: line %d", ErrEmptySymbol, lineNo)
		}
		cur[name] = strings.TrimSpace(addr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("addrtab: read: %w", err)
	}
	return t, nil
}

// Load parses the listing at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("addrtab: open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// FromMap builds a table from an in-memory mapping. The input is copied.
func FromMap(m map[string]map[string]string) *Table {
	t := &Table{scopes: make(map[string]map[string]string, len(m))}
	for scope, syms := range m {
		cp := make(map[string]string, len(syms))
		for k, v := range syms {
			cp[k] = v
		}
		t.scopes[scope] = cp
	}
	return t
}

package scan

import (
	"fmt"
	"strings"
)

// Lookup resolves a symbol declared in a scope. *addrtab.Table implements it.
type Lookup interface {
	Lookup(scope, symbol string) (string, bool)
}

// ValidateAddress checks that s is 0x followed by hex digits.
func ValidateAddress(s string) error {
	if !strings.HasPrefix(s, "0x") || len(s) == 2 {
		return fmt.Errorf("%w, got %q", ErrBadAddress, s)
	}
	for _, c := range s[2:] {
		if !isHex(c) {
			return fmt.Errorf("%w, got %q", ErrBadAddress, s)
		}
	}
	return nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// IndirectSymbol extracts the symbol named by an indirection reference:
// the first argument of marker(...). ok is false when ref does not start
// with marker.
func IndirectSymbol(ref, marker string) (symbol string, ok bool, err error) {
	if !strings.HasPrefix(ref, marker) {
		return "", false, nil
	}
	inner, _, found := ExtractBalanced(ref, '(', ')')
	if !found {
		return "", true, fmt.Errorf("%w in %q", ErrUnbalanced, ref)
	}
	args := SplitTopLevel(inner)
	if len(args) == 0 {
		return "", true, fmt.Errorf("%w: empty %s()", ErrUndefinedSymbol, marker)
	}
	return args[0], true, nil
}

// Resolve returns the address for ref, which is either a literal or an
// indirection reference looked up under scope.
func Resolve(ref, scope string, table Lookup, marker string) (string, error) {
	sym, indirect, err := IndirectSymbol(ref, marker)
	if err != nil {
		return "", err
	}
	if !indirect {
		if err := ValidateAddress(ref); err != nil {
			return "", err
		}
		return ref, nil
	}
	var addr string
	var found bool
	if table != nil {
		addr, found = table.Lookup(scope, sym)
	}
	if !found {
		return "", fmt.Errorf("%w: %s is not defined in %s", ErrUndefinedSymbol, sym, scope)
	}
	if err := ValidateAddress(addr); err != nil {
		return "", fmt.Errorf("%s in %s: %w", sym, scope, err)
	}
	return addr, nil
}

// dupTracker remembers addresses per top-level namespace.
type dupTracker struct {
	seen map[string]map[string]int
}

func newDupTracker() *dupTracker {
	return &dupTracker{seen: make(map[string]map[string]int)}
}

// observe records addr under namespace. It returns the line the address
// was first seen on and whether this is a repeat.
func (d *dupTracker) observe(namespace, addr string, line int) (int, bool) {
	addrs, ok := d.seen[namespace]
	if !ok {
		addrs = make(map[string]int)
		d.seen[namespace] = addrs
	}
	key := strings.ToLower(addr)
	if first, ok := addrs[key]; ok {
		return first, true
	}
	addrs[key] = line
	return line, false
}

func namespaceOf(scope string) string {
	ns, _, _ := strings.Cut(scope, `\`)
	return ns
}

package scan

import "strings"

// ExtractBalanced returns the text strictly between the first open and the
// close that brings nesting depth back to zero. end is the index just past
// that close. ok is false when text has no open or the group never closes.
func ExtractBalanced(text string, open, close byte) (inner string, end int, ok bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", -1, false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start+1 : i], i + 1, true
			}
		}
	}
	return "", -1, false
}

// SplitTopLevel splits on commas outside any parenthesized group. Items
// are trimmed and empty items dropped.
func SplitTopLevel(text string) []string {
	return splitDepth(text, "(", ")")
}

// splitGenerics splits a template argument list. Nested template
// arguments and function types keep their commas.
func splitGenerics(text string) []string {
	return splitDepth(text, "(<", ")>")
}

func splitDepth(text, opens, closes string) []string {
	var out []string
	depth := 0
	cur := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case strings.IndexByte(opens, c) >= 0:
			depth++
		case strings.IndexByte(closes, c) >= 0:
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			out = appendItem(out, text[cur:i])
			cur = i + 1
		}
	}
	return appendItem(out, text[cur:])
}

func appendItem(out []string, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return out
	}
	return append(out, item)
}

package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		text        string
		open, close byte
		want        string
		end         int
		ok          bool
	}{
		{"f(a(b,c),d)", '(', ')', "a(b,c),d", 11, true},
		{"Call<int, 0x1>(x)", '<', '>', "int, 0x1", 14, true},
		{"Call<std::pair<int, int>, 0x1>()", '<', '>', "std::pair<int, int>, 0x1", 30, true},
		{"f()", '(', ')', "", 3, true},
		{"no group", '(', ')', "", -1, false},
		{"f(a(b)", '(', ')', "", -1, false},
	}
	for _, tt := range tests {
		got, end, ok := ExtractBalanced(tt.text, tt.open, tt.close)
		if ok != tt.ok || got != tt.want || end != tt.end {
			t.Errorf("ExtractBalanced(%q) = %q, %d, %v; want %q, %d, %v",
				tt.text, got, end, ok, tt.want, tt.end, tt.ok)
		}
	}
}

func TestExtractBalancedIdempotent(t *testing.T) {
	once, _, _ := ExtractBalanced("g(f(a(b,c),d))", '(', ')')
	twice, _, _ := ExtractBalanced(once, '(', ')')
	assert.Equal(t, "f(a(b,c),d)", once)
	assert.Equal(t, "a(b,c),d", twice)
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"a(b,c)", "d"}, SplitTopLevel("a(b,c),d"))
	assert.Equal(t, []string{"gaddrof(CPed, SetModelIndex)", "this", "modelIndex"},
		SplitTopLevel(" gaddrof(CPed, SetModelIndex), this,  modelIndex "))
	assert.Empty(t, SplitTopLevel(""))
	assert.Empty(t, SplitTopLevel("   "))
	assert.Equal(t, []string{"a", "b"}, SplitTopLevel("a,,b,"))
}

func TestSplitGenerics(t *testing.T) {
	assert.Equal(t, []string{"std::pair<int, int>", "0x1"}, splitGenerics("std::pair<int, int>, 0x1"))
	assert.Equal(t, []string{"void (*)(int, int)", "0x2"}, splitGenerics("void (*)(int, int), 0x2"))
}

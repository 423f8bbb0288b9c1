// Package probe checks that resolved call addresses land on plausible
// 32-bit x86 function entries.
package probe

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"cpp2cleo/internal/ir"
)

// Kind classifies the instructions at a call address.
type Kind string

const (
	KindClassic        Kind = "classic"          // push ebp; mov ebp, esp
	KindNoFramePointer Kind = "no-frame-pointer" // sub esp, imm
	KindPushOnly       Kind = "push-only"        // push reg
	KindSEH            Kind = "seh"              // push -1 / mov eax, fs:[0]
	KindOther          Kind = "other"
	KindInvalid        Kind = "invalid"
)

// Plausible reports whether the kind looks like a function entry.
func (k Kind) Plausible() bool { return k != KindInvalid }

// Image is the executable being probed.
type Image interface {
	ReadBytesAtVA(va uint32, n int) ([]byte, error)
	Executable(va uint32) bool
}

// Result is the probe outcome for one record.
type Result struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Kind    Kind   `json:"kind"`
	Text    string `json:"text,omitempty"`
	Err     string `json:"error,omitempty"`
}

// maxInstLen bounds one x86 instruction.
const maxInstLen = 15

// ParseAddress parses a 0x-prefixed 32-bit address.
func ParseAddress(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(strings.ToLower(s), "0x")
	if !ok {
		return 0, fmt.Errorf("probe: address %q lacks 0x prefix", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("probe: address %q: %w", s, err)
	}
	return uint32(v), nil
}

// Classify decodes up to n instructions from code and names the entry
// pattern. The returned text is the decoded instructions in Intel syntax.
func Classify(code []byte, pc uint32, n int) (Kind, string) {
	if n <= 0 {
		n = 3
	}
	if len(code) == 0 {
		return KindInvalid, ""
	}
	if code[0] == 0xcc {
		return KindInvalid, "int3"
	}
	if len(code) >= 4 && code[0] == 0 && code[1] == 0 && code[2] == 0 && code[3] == 0 {
		return KindInvalid, "zero padding"
	}

	var insts []x86asm.Inst
	var text []string
	off := 0
	for len(insts) < n && off < len(code) {
		inst, err := x86asm.Decode(code[off:], 32)
		if err != nil {
			break
		}
		insts = append(insts, inst)
		text = append(text, x86asm.IntelSyntax(inst, uint64(pc)+uint64(off), nil))
		off += inst.Len
	}
	if len(insts) == 0 {
		return KindInvalid, "undecodable"
	}
	joined := strings.Join(text, "; ")

	first := insts[0]
	switch {
	case len(insts) > 1 && first.Op == x86asm.PUSH && first.Args[0] == x86asm.EBP &&
		insts[1].Op == x86asm.MOV && insts[1].Args[0] == x86asm.EBP && insts[1].Args[1] == x86asm.ESP:
		return KindClassic, joined
	case first.Op == x86asm.SUB && first.Args[0] == x86asm.ESP:
		if imm, ok := first.Args[1].(x86asm.Imm); ok && imm > 0 {
			return KindNoFramePointer, joined
		}
	case first.Op == x86asm.PUSH:
		if _, ok := first.Args[0].(x86asm.Imm); ok {
			return KindSEH, joined
		}
		if _, ok := first.Args[0].(x86asm.Reg); ok {
			return KindPushOnly, joined
		}
	}
	for _, inst := range insts {
		if inst.Op != x86asm.MOV {
			continue
		}
		if m, ok := inst.Args[1].(x86asm.Mem); ok && m.Segment == x86asm.FS {
			return KindSEH, joined
		}
	}
	return KindOther, joined
}

// Check probes the first n instructions at each record's address.
func Check(img Image, records []ir.CallRecord, n int) []Result {
	if n <= 0 {
		n = 3
	}
	out := make([]Result, 0, len(records))
	for _, r := range records {
		res := Result{Name: r.QualifiedName, Address: r.Address, Kind: KindInvalid}
		va, err := ParseAddress(r.Address)
		if err != nil {
			res.Err = err.Error()
			out = append(out, res)
			continue
		}
		if !img.Executable(va) {
			res.Err = "not in an executable section"
			out = append(out, res)
			continue
		}
		code, err := img.ReadBytesAtVA(va, n*maxInstLen)
		if err != nil {
			res.Err = err.Error()
			out = append(out, res)
			continue
		}
		res.Kind, res.Text = Classify(code, va, n)
		out = append(out, res)
	}
	return out
}

// Count tallies results by kind.
func Count(results []Result) map[Kind]int {
	m := make(map[Kind]int)
	for _, r := range results {
		m[r.Kind]++
	}
	return m
}

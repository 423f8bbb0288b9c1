package probe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpp2cleo/internal/ir"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want Kind
	}{
		// push ebp; mov ebp, esp
		{"classic", []byte{0x55, 0x8b, 0xec, 0x83, 0xec, 0x10}, KindClassic},
		// sub esp, 0x10
		{"no frame pointer", []byte{0x83, 0xec, 0x10, 0x56}, KindNoFramePointer},
		// push esi; mov esi, ecx
		{"push only", []byte{0x56, 0x8b, 0xf1}, KindPushOnly},
		// push -1; push 0x84a1b0
		{"seh push", []byte{0x6a, 0xff, 0x68, 0xb0, 0xa1, 0x84, 0x00}, KindSEH},
		// mov eax, fs:[0]
		{"seh fs", []byte{0x64, 0xa1, 0x00, 0x00, 0x00, 0x00}, KindSEH},
		// mov eax, [esp+4]
		{"other", []byte{0x8b, 0x44, 0x24, 0x04, 0xc3}, KindOther},
		{"int3", []byte{0xcc, 0xcc}, KindInvalid},
		{"zero", []byte{0, 0, 0, 0, 0}, KindInvalid},
		{"empty", nil, KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, text := Classify(tt.code, 0x401000, 3)
			assert.Equal(t, tt.want, got, "text: %s", text)
		})
	}
}

func TestClassifyText(t *testing.T) {
	k, text := Classify([]byte{0x55, 0x8b, 0xec}, 0x401000, 2)
	require.Equal(t, KindClassic, k)
	assert.Equal(t, "push ebp; mov ebp, esp", text)
}

func TestParseAddress(t *testing.T) {
	v, err := ParseAddress("0x5E4880")
	require.NoError(t, err)
	assert.EqualValues(t, 0x5E4880, v)

	_, err = ParseAddress("5E4880")
	assert.Error(t, err)
	_, err = ParseAddress("0x1FFFFFFFF")
	assert.Error(t, err)
}

type fakeImage struct {
	base uint32
	code []byte
}

func (f fakeImage) Executable(va uint32) bool {
	return va >= f.base && va < f.base+uint32(len(f.code))
}

func (f fakeImage) ReadBytesAtVA(va uint32, n int) ([]byte, error) {
	if !f.Executable(va) {
		return nil, fmt.Errorf("unmapped 0x%x", va)
	}
	off := int(va - f.base)
	end := min(off+n, len(f.code))
	return f.code[off:end], nil
}

func TestCheck(t *testing.T) {
	img := fakeImage{
		base: 0x5E4880,
		// 0x5E4880: push ebp; mov ebp, esp
		// 0x5E4883: int3
		code: []byte{0x55, 0x8b, 0xec, 0xcc},
	}
	recs := []ir.CallRecord{
		{QualifiedName: "CPed::SetModelIndex", Address: "0x5E4880"},
		{QualifiedName: "Pad", Address: "0x5E4883"},
		{QualifiedName: "Far", Address: "0x401000"},
		{QualifiedName: "Bad", Address: "5E4880"},
	}

	res := Check(img, recs, 2)
	require.Len(t, res, 4)
	assert.Equal(t, KindClassic, res[0].Kind)
	assert.Empty(t, res[0].Err)
	assert.Equal(t, KindInvalid, res[1].Kind)
	assert.Equal(t, "int3", res[1].Text)
	assert.Equal(t, KindInvalid, res[2].Kind)
	assert.NotEmpty(t, res[2].Err)
	assert.Equal(t, KindInvalid, res[3].Kind)
	assert.Contains(t, res[3].Err, "0x prefix")

	counts := Count(res)
	assert.Equal(t, 1, counts[KindClassic])
	assert.Equal(t, 3, counts[KindInvalid])
	assert.False(t, KindInvalid.Plausible())
	assert.True(t, KindOther.Plausible())
}

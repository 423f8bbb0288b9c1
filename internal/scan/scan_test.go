package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpp2cleo/internal/addrtab"
	"cpp2cleo/internal/diag"
)

const corpus = `plugin_sa\game_sa\CPed.h:
class CPed {
void CPed::SetModelIndex(unsigned int modelIndex)
    plugin::CallMethod<0x5E4880, CPed *, unsigned int>(this, modelIndex);
bool CPed::IsPlayer()
    return plugin::CallMethodAndReturnDynGlobal<bool, CPed *>(gaddrof(IsPlayer), this);
};
plugin_II\game_III\CPed.h:
void CPed::SetModelIndex(unsigned int modelIndex)
    plugin::CallMethod<0x4C7340, CPed *, unsigned int>(this, modelIndex);
plugin_sa\game_sa\CWorld.h:
float FindGroundZForCoord(float x, float y)
    return plugin::CallAndReturn<float, 0x569660, float, float>(x, y);
void Remove(CEntity *entity)
    plugin::Call<0x563280, CEntity *>(entity);
// a comment
    plugin::Call<0x563280>();
void Add(CEntity *entity)
    plugin::Call<0x563280, CEntity *>(entity);
`

var corpusTable = addrtab.FromMap(map[string]map[string]string{
	`plugin_sa\game_sa\CPed.h`: {"IsPlayer": "0x5DF8F0"},
})

func corpusLines() []string { return strings.Split(corpus, "\n") }

func TestScanCorpus(t *testing.T) {
	res, err := Scan(corpusLines(), corpusTable, nil)
	require.NoError(t, err)

	names := make([]string, len(res.Records))
	for i, r := range res.Records {
		names[i] = r.QualifiedName
		require.NoError(t, r.Validate())
	}
	assert.Equal(t, []string{
		"CPed::SetModelIndex", "CPed::IsPlayer",
		"FindGroundZForCoord", "Remove", "Add",
	}, names)

	assert.Equal(t, "0x5DF8F0", res.Records[1].Address)
	assert.Equal(t, `plugin_sa\game_sa\CWorld.h`, res.Records[2].Scope)

	// Excluded namespace stays out of the TOC.
	require.Len(t, res.TOC.Namespaces, 1)
	assert.Equal(t, "plugin_sa", res.TOC.Namespaces[0].Name)
	files := res.TOC.Namespaces[0].Groups[0].Files
	require.Len(t, files, 2)
	assert.Equal(t, "CPed.h", files[0].Name)
	assert.Equal(t, `plugin_sa\game_sa\CWorld.h`, files[1].Path)

	assert.Equal(t, 1, res.Diags.Count(diag.KindNonCallable))
	assert.Equal(t, 1, res.Diags.Count(diag.KindDuplicate))

	secs := res.Sections()
	require.Len(t, secs, 2)
	assert.Len(t, secs[1].Records, 3)
}

func TestScanFormMentionsAreNotCalls(t *testing.T) {
	lines := []string{
		`plugin_sa\game_sa\CPed.h:`,
		"void CPed::SetModelIndex(unsigned int modelIndex)",
		"    // wraps plugin::CallMethod for the ctor",
		"void Foo(int a)",
		"    plugin::Call(a);",
		"void Remove(CEntity *entity)",
		"    plugin::Call<0x563280, CEntity *>(entity);",
	}
	for _, opts := range []*Options{nil, {Mode: diag.ModeStrict}} {
		res, err := Scan(lines, nil, opts)
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "Remove", res.Records[0].QualifiedName)
		assert.Equal(t, 2, res.Diags.Count(diag.KindNoForm))

		par, err := ScanParallel(context.Background(), lines, nil, opts)
		require.NoError(t, err)
		assert.Equal(t, res.Records, par.Records)
	}
}

func TestDuplicatesAreScopedToNamespace(t *testing.T) {
	lines := []string{
		`plugin_sa\game_sa\CWorld.h:`,
		"void Remove(CEntity *entity)",
		"    plugin::Call<0x563280, CEntity *>(entity);",
		`plugin_vc\game_vc\CWorld.h:`,
		"void Remove(CEntity *entity)",
		"    plugin::Call<0x563280, CEntity *>(entity);",
	}
	res, err := Scan(lines, nil, nil)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Zero(t, res.Diags.Count(diag.KindDuplicate))

	// Same address again inside plugin_vc is reported.
	lines = append(lines, "void Add(CEntity *entity)", "    plugin::Call<0x563280, CEntity *>(entity);")
	res, err = Scan(lines, nil, nil)
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
	require.Equal(t, 1, res.Diags.Count(diag.KindDuplicate))
	assert.Contains(t, res.Diags.Items()[0].Msg, "plugin_vc")
}

func TestRepeatedScopeHeaderMerges(t *testing.T) {
	lines := []string{
		`plugin_sa\game_sa\CPed.h:`,
		"void A()",
		"    plugin::Call<0x401000>();",
		`plugin_sa\game_sa\CWorld.h:`,
		"void B()",
		"    plugin::Call<0x401010>();",
		`plugin_sa\game_sa\CPed.h:`,
		"void C()",
		"    plugin::Call<0x401020>();",
	}
	res, err := Scan(lines, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TOC.Files())
	secs := res.Sections()
	require.Len(t, secs, 2)
	assert.Equal(t, `plugin_sa\game_sa\CPed.h`, secs[0].Scope)
	require.Len(t, secs[0].Records, 2)
	assert.Equal(t, "C", secs[0].Records[1].QualifiedName)
}

func TestExcludedNamespaceProducesNothing(t *testing.T) {
	lines := []string{
		`plugin_X\GameA\module1.txt`,
		`plugin_II\GameB\module2.txt`,
		"void Foo::Bar(int a)",
		"plugin::CallMethod<0x401000, Foo *, int>(this, a)",
		"void Baz()",
		"plugin::Call<0x401010>()",
	}
	res, err := Scan(lines, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.TOC.Files())
}

func TestCustomExclusion(t *testing.T) {
	lines := []string{
		`plugin_II\game_III\CPed.h`,
		"void Baz()",
		"plugin::Call<0x401010>()",
	}
	res, err := Scan(lines, nil, &Options{Exclude: []string{}})
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestMalformedScopeIsFatal(t *testing.T) {
	_, err := Scan([]string{"ok", `plugin_sa\CPed.h:`}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedScope))
	var le *LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 2, le.Line)
}

func TestClassify(t *testing.T) {
	var st State
	kind, err := st.Classify(`// plugin_sa\game_sa\CPed.h:`, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, ScopeHeader, kind)
	assert.Equal(t, `plugin_sa\game_sa\CPed.h`, st.Scope)
	assert.False(t, st.Skip)

	kind, _ = st.Classify("plugin::Call<0x1>()", 2, nil)
	assert.Equal(t, CallAnnotation, kind)

	kind, _ = st.Classify("int x;", 3, nil)
	assert.Equal(t, Ignored, kind)

	_, _ = st.Classify(`plugin_II\game_III\CPed.h`, 4, nil)
	assert.True(t, st.Skip)
	kind, _ = st.Classify("plugin::Call<0x1>()", 5, nil)
	assert.Equal(t, Ignored, kind)
}

func TestStrictMode(t *testing.T) {
	_, err := Scan(corpusLines(), corpusTable, &Options{Mode: diag.ModeStrict})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStrict)
	var le *LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 17, le.Line)
}

func TestUndefinedSymbolAborts(t *testing.T) {
	_, err := Scan(corpusLines(), addrtab.FromMap(nil), nil)
	assert.ErrorIs(t, err, ErrUndefinedSymbol)
}

func TestSkipsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	_, err := Scan(corpusLines(), corpusTable, &Options{Logger: &logger})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"kind":"non_callable"`)
	assert.Contains(t, buf.String(), `"level":"debug"`)
}

func TestScanParallelMatchesScan(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "plugin_sa\\game_sa\\File%d.h:\n", i)
		for j := 0; j < 5; j++ {
			fmt.Fprintf(&b, "int F%d_%d(int a, int b)\n", i, j)
			fmt.Fprintf(&b, "    return plugin::CallAndReturn<int, 0x%X>(a, b);\n", 0x400000+(i*5+j)%97)
		}
		b.WriteString("int Orphan\n    plugin::Call<0x1>();\n")
	}
	lines := strings.Split(b.String(), "\n")

	seq, err := Scan(lines, nil, nil)
	require.NoError(t, err)
	par, err := ScanParallel(context.Background(), lines, nil, &Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, seq.Records, par.Records)
	assert.Equal(t, seq.TOC, par.TOC)
	assert.Equal(t, seq.Diags.Items(), par.Diags.Items())
}

func TestScanParallelError(t *testing.T) {
	lines := []string{
		`plugin_sa\game_sa\A.h`,
		"void A()",
		"plugin::Call<0x1>()",
		`plugin_sa\game_sa\B.h`,
		"void B()",
		"plugin::Call<bad>()",
		`plugin_sa\game_sa\C.h`,
		"void C()",
		"plugin::Call<worse>()",
	}
	_, err := ScanParallel(context.Background(), lines, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadAddress)
	var le *LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 6, le.Line)
}

func TestScanParallelErrorOrder(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  error
		line  int
	}{
		{
			name: "annotation before bad header",
			lines: []string{
				`plugin_sa\game_sa\A.h`,
				"void A()",
				"plugin::Call<bad>()",
				`plugin_sa\broken`,
			},
			want: ErrBadAddress,
			line: 3,
		},
		{
			name: "bad header before annotation",
			lines: []string{
				`plugin_sa\broken`,
				"void A()",
				"plugin::Call<bad>()",
			},
			want: ErrMalformedScope,
			line: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, seqErr := Scan(tt.lines, nil, nil)
			_, parErr := ScanParallel(context.Background(), tt.lines, nil, nil)
			for _, err := range []error{seqErr, parErr} {
				require.ErrorIs(t, err, tt.want)
				var le *LineError
				require.True(t, errors.As(err, &le))
				assert.Equal(t, tt.line, le.Line)
			}
		})
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a\r\nb\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}

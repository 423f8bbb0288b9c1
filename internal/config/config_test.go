package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpp2cleo/internal/diag"
	"cpp2cleo/internal/scan"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cpp2cleo.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plugin::", cfg.Markers.Call)
	assert.Equal(t, []string{"plugin_II"}, cfg.Exclude)
	assert.Equal(t, "fatal", cfg.Dynamic)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	p := writeConfig(t, `
exclude: [plugin_II, plugin_III]
dynamic_marker_policy: lenient
strict: true
render:
  formats: [script, dot]
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"plugin_II", "plugin_III"}, cfg.Exclude)
	assert.Equal(t, []string{FormatScript, FormatDOT}, cfg.Render.Formats)
	// Untouched keys keep their defaults.
	assert.Equal(t, "gaddrof", cfg.Markers.Indirect)

	opts := cfg.ScanOptions()
	assert.Equal(t, scan.PolicyLenient, opts.Dynamic)
	assert.Equal(t, diag.ModeStrict, opts.Mode)
}

func TestLoadFromEnv(t *testing.T) {
	p := writeConfig(t, "workers: 3\n")
	t.Setenv(EnvConfig, p)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadInvalid(t *testing.T) {
	for _, body := range []string{
		"dynamic_marker_policy: maybe\n",
		"render:\n  formats: [pdf]\n",
		"workers: -1\n",
	} {
		_, err := Load(writeConfig(t, body))
		assert.ErrorIs(t, err, ErrInvalid, body)
	}

	_, err := Load(writeConfig(t, "exclude: {"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	assert.Equal(t, []string{"script", "html"}, ParseFormats(" script, ,html "))
	assert.Empty(t, ParseFormats(""))
}

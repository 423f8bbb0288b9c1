// Package config loads cpp2cleo settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cpp2cleo/internal/diag"
	"cpp2cleo/internal/scan"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "CPP2CLEO_CONFIG"

// Known render formats.
const (
	FormatScript   = "script"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatDOT      = "dot"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the file-level configuration.
type Config struct {
	Markers  MarkersConfig `yaml:"markers"`
	Exclude  []string      `yaml:"exclude"`
	Dynamic  string        `yaml:"dynamic_marker_policy"`
	Strict   bool          `yaml:"strict"`
	Parallel bool          `yaml:"parallel"`
	Workers  int           `yaml:"workers"`
	Render   RenderConfig  `yaml:"render"`
	Log      LogConfig     `yaml:"log"`
}

type MarkersConfig struct {
	Call     string `yaml:"call"`
	Scope    string `yaml:"scope"`
	Indirect string `yaml:"indirect"`
}

type RenderConfig struct {
	Formats []string `yaml:"formats"`
	Title   string   `yaml:"title"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Markers: MarkersConfig{
			Call:     scan.DefaultMarkers.Call,
			Scope:    scan.DefaultMarkers.Scope,
			Indirect: scan.DefaultMarkers.Indirect,
		},
		Exclude: append([]string(nil), scan.DefaultExclude...),
		Dynamic: string(scan.PolicyFatal),
		Render: RenderConfig{
			Formats: []string{FormatScript, FormatMarkdown, FormatHTML},
			Title:   "CLEO call reference",
		},
		Log: LogConfig{Level: "info", Pretty: true},
	}
}

// Load reads path over the defaults. An empty path falls back to
// $CPP2CLEO_CONFIG; with neither set the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return cfg, nil
	}
	//nolint:gosec // G304: path comes from the command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown policies and formats.
func (c *Config) Validate() error {
	switch scan.Policy(c.Dynamic) {
	case scan.PolicyFatal, scan.PolicyLenient:
	default:
		return fmt.Errorf("%w: dynamic_marker_policy %q (want fatal or lenient)", ErrInvalid, c.Dynamic)
	}
	for _, f := range c.Render.Formats {
		switch f {
		case FormatScript, FormatMarkdown, FormatHTML, FormatDOT:
		default:
			return fmt.Errorf("%w: render format %q", ErrInvalid, f)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ScanOptions converts the configuration into scanner options.
func (c *Config) ScanOptions() scan.Options {
	mode := diag.ModeBestEffort
	if c.Strict {
		mode = diag.ModeStrict
	}
	return scan.Options{
		Markers: scan.Markers{
			Call:     c.Markers.Call,
			Scope:    c.Markers.Scope,
			Indirect: c.Markers.Indirect,
		},
		Exclude: c.Exclude,
		Dynamic: scan.Policy(c.Dynamic),
		Mode:    mode,
		Workers: c.Workers,
	}
}

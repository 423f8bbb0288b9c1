package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cpp2cleo/internal/config"
	"cpp2cleo/internal/ir"
	"cpp2cleo/internal/output"
	"cpp2cleo/internal/render"
)

// Rendered file names, one per format.
var formatFiles = map[string]string{
	config.FormatScript:   "calls.txt",
	config.FormatMarkdown: "calls.md",
	config.FormatHTML:     "calls.html",
	config.FormatDOT:      "scopes.dot",
}

// renderFlags are shared by render and convert.
type renderFlags struct {
	formats string
	title   string
}

func (f *renderFlags) register(fl *pflag.FlagSet) {
	fl.StringVar(&f.formats, "formats", "", "comma-separated formats: script, md, html, dot")
	fl.StringVar(&f.title, "title", "", "document title for HTML and DOT")
}

func (f *renderFlags) apply(cmd *cobra.Command, a *app) error {
	if cmd.Flags().Changed("formats") {
		a.cfg.Render.Formats = config.ParseFormats(f.formats)
	}
	if cmd.Flags().Changed("title") {
		a.cfg.Render.Title = f.title
	}
	return a.cfg.Validate()
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		f      renderFlags
		inDir  string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render scan output as CLEO script, Markdown, HTML or DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, a); err != nil {
				return err
			}
			b, m, err := output.Read(inDir)
			if err != nil {
				return err
			}
			a.log.Info().Str("dir", inDir).Int("records", len(b.Records)).Str("run_id", m.RunID).Msg("scan output loaded")
			if outDir == "" {
				outDir = inDir
			}
			written, err := a.render(outDir, b)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), m, outDir, written)
			return nil
		},
	}
	cmd.Flags().StringVar(&inDir, "in", "", "scan output directory")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "render directory (default --in)")
	_ = cmd.MarkFlagRequired("in")
	f.register(cmd.Flags())
	return cmd
}

// render writes every configured format into dir and returns the paths.
func (a *app) render(dir string, b output.Bundle) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	sections := ir.BuildSections(b.TOC.Paths, b.Records)
	title := a.cfg.Render.Title

	var written []string
	for _, format := range a.cfg.Render.Formats {
		path := filepath.Join(dir, formatFiles[format])
		err := writeFile(path, func(w *bufio.Writer) error {
			switch format {
			case config.FormatScript:
				return render.WriteScript(w, sections)
			case config.FormatMarkdown:
				_, err := w.WriteString(render.Markdown(sections, b.TOC))
				return err
			case config.FormatHTML:
				return render.WriteHTML(w, title, sections, b.TOC, render.NASA)
			case config.FormatDOT:
				_, err := w.WriteString(render.ScopeDOT(sections, title))
				return err
			}
			return fmt.Errorf("unknown format %q", format)
		})
		if err != nil {
			return written, err
		}
		a.log.Debug().Str("format", format).Str("path", path).Msg("rendered")
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

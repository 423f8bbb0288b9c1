package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cpp2cleo/internal/ir"
	"cpp2cleo/internal/output"
	"cpp2cleo/internal/render"
)

func newViewCmd(a *app) *cobra.Command {
	var (
		inDir   string
		mdPath  string
		width   int
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the call reference in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			var md string
			switch {
			case mdPath != "":
				data, err := os.ReadFile(mdPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", mdPath, err)
				}
				md = string(data)
			case inDir != "":
				b, _, err := output.Read(inDir)
				if err != nil {
					return err
				}
				md = render.Markdown(ir.BuildSections(b.TOC.Paths, b.Records), b.TOC)
			default:
				return fmt.Errorf("--in or --file is required")
			}

			out, err := render.ViewMarkdown(md, width, noColor || os.Getenv("NO_COLOR") != "")
			if err != nil {
				return err
			}
			a.log.Debug().Int("bytes", len(md)).Msg("rendered for terminal")
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&inDir, "in", "", "scan output directory")
	cmd.Flags().StringVar(&mdPath, "file", "", "Markdown file to show instead of --in")
	cmd.Flags().IntVar(&width, "width", 100, "word wrap width")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "plain output")
	return cmd
}

package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// ViewMarkdown renders Markdown for a terminal. noColor selects the
// plain style for pipes and dumb terminals.
func ViewMarkdown(md string, width int, noColor bool) (string, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStylePath("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("render: terminal: %w", err)
	}
	return r.Render(md)
}

package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"cpp2cleo/internal/ir"
)

// WriteHTML writes a standalone HTML page: the Markdown rendering of
// sections and toc converted with goldmark and styled with theme.
func WriteHTML(w io.Writer, title string, sections []ir.Section, toc ir.TOC, theme Theme) error {
	md := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(sections, toc)), &body); err != nil {
		return fmt.Errorf("render: markdown: %w", err)
	}

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; font-size: 14px; color: %s; background: %s; margin: 2em; max-width: 1100px; }
h3 { font-size: 16px; font-weight: 600; margin-top: 2em; border-bottom: 1px solid %s; padding-bottom: 4px; }
h4 { font-size: 14px; font-weight: 600; margin: 1.2em 0 0.3em; }
pre { background: %s; border: 1px solid %s; color: %s; padding: 6px 10px; overflow-x: auto; font-family: "Courier New", monospace; font-size: 12px; }
body > ul:first-of-type { background: %s; padding: 1em 2em; }
a { color: %s; }
</style>
</head>
<body>
`, htmlEscape(title), theme.TextColor, theme.Background, theme.Rule,
		theme.CodeFill, theme.CodeBorder, theme.CodeText, theme.TOCFill, theme.Link)

	fmt.Fprintf(w, "<h1>%s</h1>\n", htmlEscape(title))
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "</body></html>")
	return err
}

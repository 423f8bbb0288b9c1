package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"cpp2cleo/internal/output"
	"cpp2cleo/internal/probe"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

func printSummary(w io.Writer, m output.Manifest, dir string, written []string) {
	fmt.Fprintln(w, titleStyle.Render("cpp2cleo "+dir))
	row := func(label string, v any, style *lipgloss.Style) {
		val := fmt.Sprint(v)
		if style != nil {
			val = style.Render(val)
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", label)), val)
	}
	if m.RunID != "" {
		row("run", m.RunID, nil)
	}
	if m.Mode != "" {
		row("mode", m.Mode, nil)
	}
	row("records", m.Records, nil)
	row("scopes", m.Scopes, nil)
	var skipStyle, dupStyle *lipgloss.Style
	if m.Skipped > 0 {
		skipStyle = &warnStyle
	}
	if m.Duplicates > 0 {
		dupStyle = &warnStyle
	}
	row("skipped", m.Skipped, skipStyle)
	row("duplicates", m.Duplicates, dupStyle)
	for _, p := range written {
		row("wrote", p, nil)
	}
}

func printProbe(w io.Writer, r probe.Result) {
	kind := string(r.Kind)
	if !r.Kind.Plausible() {
		kind = errorStyle.Render(kind)
	}
	detail := r.Text
	if r.Err != "" {
		detail = r.Err
	}
	fmt.Fprintf(w, "%-10s %-8s %s  %s\n", r.Address, kind, r.Name, labelStyle.Render(detail))
}

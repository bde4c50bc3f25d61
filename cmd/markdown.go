package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/riskfolio/report"
	"github.com/google/subcommands"
)

// printMarkdown renders md for the terminal, or prints it as is when it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// Output formats of the report commands.
const (
	formatTerm     = "term"
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatJSON     = "json"
	formatText     = "text"
)

var formats = []string{formatTerm, formatMarkdown, formatHTML, formatJSON, formatText}

// printReport writes r in format. data is the JSON value and text the one
// line summary of r.
func printReport(r *report.Report, format string, data any, text string) subcommands.ExitStatus {
	switch format {
	case formatTerm:
		printMarkdown(report.Markdown(r))
	case formatMarkdown:
		fmt.Print(report.Markdown(r))
	case formatHTML:
		html, err := report.HTML(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Print(html)
	case formatJSON:
		return printJSON(data)
	case formatText:
		fmt.Println(text)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q, want one of %v\n", format, formats)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

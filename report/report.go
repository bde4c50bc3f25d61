// Package report renders risk profiles and allocations as markdown or HTML.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/riskfolio"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates = mustSub(templatesFS, "templates")

// mustSub is like fs.Sub but panics on error.
func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("cannot open embedded %q directory: %v", dir, err))
	}
	return sub
}

// Report gathers everything known about a user's investment profile.
type Report struct {
	Breakdown  riskfolio.Breakdown
	Tier       riskfolio.Tier
	Amount     riskfolio.Money
	Allocation *riskfolio.Allocation     // optional
	Funds      *riskfolio.Recommendation // optional
}

// New scores p and returns a Report without allocation.
func New(s riskfolio.Scorer, p riskfolio.Profile) (*Report, error) {
	b := s.Breakdown(p)
	tier, err := riskfolio.Bucket(b.Score)
	if err != nil {
		return nil, err
	}
	return &Report{Breakdown: b, Tier: tier}, nil
}

// Markdown renders r to a markdown string.
func Markdown(r *Report) string {
	partials := map[string]string{
		"report_title":      "report_title.md",
		"report_breakdown":  "report_breakdown.md",
		"report_allocation": "report_allocation.md",
		"report_funds":      "report_funds.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// HTML renders r to an HTML fragment.
func HTML(r *Report) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var b bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &b); err != nil {
		return "", fmt.Errorf("cannot convert report to HTML: %w", err)
	}
	return b.String(), nil
}

var funcs = template.FuncMap{
	"f2":         func(x float64) string { return fmt.Sprintf("%.2f", x) },
	"categories": riskfolio.Categories,
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// FundList renders the funds of category c to a markdown string.
func FundList(c riskfolio.Category, funds []riskfolio.Fund) string {
	data := struct {
		Category riskfolio.Category
		Funds    []riskfolio.Fund
	}{c, funds}
	return renderTemplate("fund_list", "fund_list.md", nil, data)
}

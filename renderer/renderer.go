package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templateFS embed.FS

// templates is the templates directory content.
var templates, _ = fs.Sub(templateFS, "templates")

// RenderWinnings renders the Winnings struct to a markdown string.
func RenderWinnings(w *Winnings) string {
	partials := map[string]string{
		"winnings_summary":     "winnings_summary.md",
		"winnings_instruments": "winnings_instruments.md",
		"data_integrity":       "data_integrity.md",
	}
	return renderTemplate("winnings", "winnings.md", partials, w)
}

// RenderAttribution renders a sell attribution to a markdown string.
func RenderAttribution(a *Attribution) string {
	partials := map[string]string{
		"attribution_summary": "attribution_summary.md",
		"attribution_legs":    "attribution_legs.md",
	}
	return renderTemplate("attribution", "attribution.md", partials, a)
}

// RenderHoldings renders the open positions of a user to a markdown string.
func RenderHoldings(h *Holdings) string {
	partials := map[string]string{
		"holdings_table": "holdings_table.md",
		"data_integrity": "data_integrity.md",
	}
	return renderTemplate("holdings", "holdings.md", partials, h)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
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

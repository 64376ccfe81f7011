package api

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		// Gradients are built from validated hex colours only.
		"safeCSS": func(s string) template.CSS {
			return template.CSS(s)
		},
		"join": strings.Join,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Package assets holds the embedded report templates.
package assets

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const statisticsTemplateName = "statistics.md.go.tmpl"

//go:embed templates/statistics.md.go.tmpl
var fallbackStatisticsTemplate string

var funcMap = template.FuncMap{
	"join": strings.Join,
	"percent": func(ratio float64) string {
		return fmt.Sprintf("%.1f%%", ratio*100)
	},
}

// ParseStatisticsTemplate parses the template at templatePath, or the
// embedded one when the path is empty, missing or unparsable.
func ParseStatisticsTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, statisticsTemplateName, fallbackStatisticsTemplate)
}

func parseTemplateWithFallback(templatePath, fallbackName, fallbackTemplate string) (*template.Template, error) {
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			fileName := filepath.Base(templatePath)
			tmpl, err := template.New(fileName).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

package handlers

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	util "github.com/CodeAndHammer/parludo/internal/util"
)

func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"hasPrefix":   strings.HasPrefix,
		"formatClock": util.FormatClock,
	}
}

// LoadTemplates parses the root pages and partials under dir.
func LoadTemplates(dir string) (*template.Template, error) {
	rootPattern := filepath.ToSlash(filepath.Join(dir, "*.html"))
	partialsPattern := filepath.ToSlash(filepath.Join(dir, "partials", "*.html"))

	master := template.New("").Funcs(TemplateFuncs())
	if _, err := master.ParseGlob(rootPattern); err != nil {
		return nil, fmt.Errorf("parse root templates: %w", err)
	}
	if _, err := master.ParseGlob(partialsPattern); err != nil {
		return nil, fmt.Errorf("parse partial templates: %w", err)
	}
	return master, nil
}

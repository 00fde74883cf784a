// Package rendering renders the SQL templates of dashboard and training queries
package rendering

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// ErrEmptyTemplate is returned when a template renders to nothing
var ErrEmptyTemplate = errors.New("template rendered an empty statement")

// Databases names the warehouse databases templates may reference
type Databases struct {
	Silver    string
	Analytics string
}

// TemplateEngine provides template rendering with Sprig functions
type TemplateEngine struct {
	funcMap   template.FuncMap
	databases Databases
}

// NewTemplateEngine creates a new template engine for rendering queries
func NewTemplateEngine(databases Databases) *TemplateEngine {
	return &TemplateEngine{
		funcMap:   sprig.TxtFuncMap(),
		databases: databases,
	}
}

// Render renders a named SQL template. Templates see {{ .silver }} and
// {{ .analytics }} plus any extra variables.
func (t *TemplateEngine) Render(name, text string, extra map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Funcs(t.funcMap).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, t.variables(extra)); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyTemplate, name)
	}

	return buf.String(), nil
}

func (t *TemplateEngine) variables(extra map[string]interface{}) map[string]interface{} {
	variables := map[string]interface{}{
		"silver":    t.databases.Silver,
		"analytics": t.databases.Analytics,
	}

	for k, v := range extra {
		variables[k] = v
	}

	return variables
}

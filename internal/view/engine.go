// Package view renders the staff screens from embedded html/template files.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var files embed.FS

const baseTemplate = "base"

// Engine holds one parsed template set per page. Every set shares the
// layout and partials, so pages can define the same block names.
type Engine struct {
	pages map[string]*template.Template
}

func New(funcs template.FuncMap) (*Engine, error) {
	shared, err := template.New(baseTemplate).Funcs(funcs).ParseFS(files,
		"templates/layout/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	e := &Engine{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := shared.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(files, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		e.pages[name] = t
	}
	return e, nil
}

func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}

func (e *Engine) Render(w io.Writer, name string, data any) error {
	t, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}
	return t.ExecuteTemplate(w, baseTemplate, data)
}

// Instance makes Engine a gin HTMLRender, so handlers use c.HTML.
func (e *Engine) Instance(name string, data any) render.Render {
	t, ok := e.pages[name]
	if !ok {
		t = template.Must(template.New(baseTemplate).Parse(`view "{{.}}" not found`))
		data = name
	}
	return render.HTML{Template: t, Name: baseTemplate, Data: data}
}

// Package view renders console pages from typed page models.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PageSignIn       = "sign_in"
	PageSignUp       = "sign_up"
	PageDashboard    = "dashboard"
	PageMerchants    = "merchants"
	PageTransactions = "transactions"
	PageProgramRules = "program_rules"
	PageError        = "error"
)

// BlockRows is the table-body block every list page defines.
const BlockRows = "rows"

var pageNames = []string{PageSignIn, PageSignUp, PageDashboard, PageMerchants, PageTransactions, PageProgramRules, PageError}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Page renders a full page wrapped in the layout.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data any) error {
	return r.execute(w, status, name, "layout", data)
}

// Fragment renders one named block of a page, e.g. BlockRows, without the layout.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, name, block string, data any) error {
	return r.execute(w, status, name, block, data)
}

func (r *Renderer) execute(w http.ResponseWriter, status int, name, block string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	// Render into a buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
		return fmt.Errorf("view: render %s/%s: %w", name, block, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

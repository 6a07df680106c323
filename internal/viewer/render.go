// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package viewer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrUnknownLayout is returned when a page names a layout without a template.
var ErrUnknownLayout = errors.New("unknown layout")

// Renderer executes the embedded layouts.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the page using the template named by p.Layout. Output is
// buffered so a template failure never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, p Page) error {
	t := r.tmpl.Lookup(p.Layout)
	if t == nil {
		return fmt.Errorf("%w: %q", ErrUnknownLayout, p.Layout)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		return fmt.Errorf("render %s: %w", p.Layout, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

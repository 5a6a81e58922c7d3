// Package template owns the structural document contract: the registry of
// named templates and the enforcer that splices sanitized body text into a
// template exactly once.
package template

import (
	"fmt"
	"strings"

	"github.com/docly-ai/texforge/internal/domain"
)

// Structural markers owned exclusively by templates. The generator is never
// allowed to contribute its own copy of these to the final output.
const (
	// DocDeclaration begins a complete, self-contained document.
	DocDeclaration = `\documentclass`
	// BodyBegin opens the content region the generator may produce.
	BodyBegin = `\begin{document}`
	// BodyEnd closes the content region.
	BodyEnd = `\end{document}`
)

// Template is an immutable named pair of preamble and postamble text.
type Template struct {
	name      string
	preamble  string
	postamble string
}

// New creates a template. Preamble and postamble surround the body markers in
// the assembled output.
func New(name, preamble, postamble string) Template {
	return Template{
		name:      name,
		preamble:  strings.TrimRight(preamble, " \t\n"),
		postamble: strings.TrimLeft(postamble, " \t\n"),
	}
}

// Name returns the template name.
func (t Template) Name() string { return t.name }

// Preamble returns the preamble text.
func (t Template) Preamble() string { return t.preamble }

// Postamble returns the postamble text.
func (t Template) Postamble() string { return t.postamble }

// Registry is the immutable template lookup table, populated once at process
// start.
type Registry struct {
	templates map[string]Template
}

// builtins are the default templates available without configuration.
func builtins() map[string]Template {
	return map[string]Template{
		"article_minimal": New("article_minimal",
			`\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage{lipsum}`,
			`\end{document}`),
		"assignment": New("assignment",
			`\documentclass[12pt]{article}
\usepackage[utf8]{inputenc}
\usepackage[a4paper,margin=1in]{geometry}
\usepackage{amsmath,amssymb}
\newcommand{\studentname}{\textbf{<STUDENT_NAME>}}`,
			`\end{document}`),
	}
}

// NewRegistry builds the registry from built-ins plus config-supplied
// templates. Config entries override built-ins with the same name.
func NewRegistry(extra map[string]Template) *Registry {
	templates := builtins()
	for name, t := range extra {
		templates[name] = t
	}
	return &Registry{templates: templates}
}

// Get looks up a template by name. Unknown names are a hard error, never a
// silent default.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}
	return t, nil
}

// Names returns the registered template names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

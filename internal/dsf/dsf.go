// Package dsf defines the document-structure-form: a small structured
// description of the requested document that is translated into a
// natural-language instruction block for the prompt builder.
package dsf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Form describes the requested document structure.
type Form struct {
	DocumentType string    `json:"document_type" yaml:"document_type"`
	Title        string    `json:"title,omitempty" yaml:"title,omitempty"`
	Author       string    `json:"author,omitempty" yaml:"author,omitempty"`
	Sections     []Section `json:"sections" yaml:"sections"`
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Section is one ordered section of the requested document.
type Section struct {
	Title        string `json:"title" yaml:"title"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// Load reads and parses a DSF JSON file.
func Load(path string) (Form, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Form{}, fmt.Errorf("read dsf %s: %w", path, err)
	}
	var f Form
	if err := json.Unmarshal(data, &f); err != nil {
		return Form{}, fmt.Errorf("parse dsf: %w", err)
	}
	return f, nil
}

// ToPrompt translates the form into the generation instruction block.
func (f Form) ToPrompt() string {
	var lines []string

	docType := f.DocumentType
	if docType == "" {
		docType = "document"
	}
	lines = append(lines, "Document type: "+docType)
	if f.Title != "" {
		lines = append(lines, "Title: "+f.Title)
	}
	if f.Author != "" {
		lines = append(lines, "Author: "+f.Author)
	}
	lines = append(lines, "Sections:")
	for i, s := range f.Sections {
		lines = append(lines, fmt.Sprintf("  - Section %d: %s", i+1, s.Title))
		if s.Instructions != "" {
			lines = append(lines, "    Instructions: "+s.Instructions)
		}
	}
	if f.Notes != "" {
		lines = append(lines, "Notes:", f.Notes)
	}
	lines = append(lines, "", "Produce only LaTeX matching this structure.")

	return strings.Join(lines, "\n")
}

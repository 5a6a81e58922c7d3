package domain

import "strings"

// Record is a single authored document in the corpus. Records are created at
// corpus-build time and read-only afterwards. DocType is stored lower-cased
// and Keywords lower-cased and trimmed so query-time matching never has to
// normalize twice.
type Record struct {
	ID          string   `json:"id"`
	DocType     string   `json:"doc_type"`
	Keywords    []string `json:"keywords"`
	UserPrompt  string   `json:"user_prompt"`
	LatexOutput string   `json:"latex_output"`
	Structure   string   `json:"structure,omitempty"`
	Elements    string   `json:"content_elements,omitempty"`
}

// NewRecord normalizes metadata fields and builds a Record.
func NewRecord(id, docType string, keywords []string, userPrompt, latexOutput, structure, elements string) Record {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}
	return Record{
		ID:          id,
		DocType:     strings.ToLower(strings.TrimSpace(docType)),
		Keywords:    normalized,
		UserPrompt:  userPrompt,
		LatexOutput: latexOutput,
		Structure:   structure,
		Elements:    elements,
	}
}

// EmbedText returns the text block that is embedded for this record. The
// block concatenates the fields that carry retrieval signal, one labelled
// line per field.
func (r Record) EmbedText() string {
	return strings.Join([]string{
		"DOC_ID: " + r.ID,
		"DOC_TYPE: " + r.DocType,
		"PROMPT: " + r.UserPrompt,
		"KEYWORDS: " + strings.Join(r.Keywords, ", "),
		"STRUCTURE: " + r.Structure,
		"ELEMENTS: " + r.Elements,
	}, "\n---\n")
}

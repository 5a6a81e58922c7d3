// Package prompt builds the few-shot generation prompt from the user request
// and the retrieved examples.
package prompt

import (
	"strings"

	"github.com/docly-ai/texforge/internal/domain/retrieval/result"
)

// exampleSeparator visually delimits few-shot example blocks.
const exampleSeparator = "------------------------------"

// Build assembles the generation prompt. When templateProvided is true the
// model is instructed to produce only body content; the template supplies the
// preamble and document markers itself.
func Build(userRequest string, examples []result.Result, templateProvided bool) string {
	parts := []string{
		"You are a STRICT LaTeX generator.",
		"Output ONLY valid LaTeX source.",
		"NEVER use markdown, NEVER use ``` fences.",
		"Do NOT explain anything, do not add commentary.",
		"",
	}

	if templateProvided {
		parts = append(parts,
			"IMPORTANT: A template will wrap your output. YOU MUST ONLY GENERATE",
			"the LaTeX BODY, the content that goes inside the document environment.",
			"DO NOT output any of the following anywhere in your response:",
			"- \\documentclass{...}",
			"- \\usepackage{...}",
			"- \\begin{document}",
			"- \\end{document}",
			"- Any preamble-level macros (e.g. \\newcommand, \\title, \\author).",
			"Output should start with content elements like \\section{...} or plain paragraphs.",
			"",
		)
	} else {
		parts = append(parts,
			"If no template is provided, you may generate a full LaTeX document,",
			"including \\documentclass and preamble as needed.",
			"",
		)
	}

	parts = append(parts, "EXAMPLES (for format guidance):")
	for _, ex := range examples {
		rec := ex.Record()
		parts = append(parts,
			"EXAMPLE_PROMPT:",
			rec.UserPrompt,
			"EXAMPLE_LATEX:",
			rec.LatexOutput,
			exampleSeparator,
		)
	}

	parts = append(parts,
		"USER_REQUEST:",
		userRequest,
		"Respond ONLY with LaTeX source (respect the body-only rule above if a template is supplied).",
	)

	return strings.Join(parts, "\n")
}

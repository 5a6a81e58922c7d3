// Package sanitize normalizes raw generated text into LaTeX body content.
//
// The pipeline is a fixed ordered chain of pure text transforms. Order is
// load-bearing: later stages assume earlier normalization already happened.
// No stage returns an error; generated text is inherently unpredictable, so
// every transform degrades gracefully instead of validating.
package sanitize

// Stage is one named transform in the pipeline.
type Stage struct {
	Name string
	Fn   func(string) string
}

// Stages returns the canonical stage chain in execution order.
func Stages() []Stage {
	return []Stage{
		{"strip_generation_trace", StripGenerationTrace},
		{"remove_fences", RemoveFences},
		{"truncate_after_document_end", TruncateAfterDocumentEnd},
		{"dedupe_backslashes", DedupeBackslashes},
		{"convert_newline_literals", ConvertNewlineLiterals},
		{"strip_forbidden_macros", StripForbiddenMacros},
		{"fix_escaped_comment", FixEscapedComment},
		{"convert_markdown", ConvertMarkdown},
		{"remove_dangling_fragments", RemoveDanglingFragments},
		{"escape_underscores", EscapeUnderscoresOutsideMath},
		{"balance_braces", BalanceBraces},
		{"anchor_body_start", AnchorBodyStart},
	}
}

// Clean runs the full stage chain over raw generated text.
func Clean(raw string) string {
	t := raw
	for _, s := range Stages() {
		t = s.Fn(t)
	}
	return t
}

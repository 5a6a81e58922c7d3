package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripGenerationTrace(t *testing.T) {
	in := `\section{A} content' done=True done_reason='stop' eval_count=42`
	out := StripGenerationTrace(in)
	assert.Equal(t, `\section{A} content`, out)
}

func TestStripGenerationTrace_KeepsMetadataWordsInProse(t *testing.T) {
	// Telemetry key names inside document prose are not a client dump.
	in := `\section{Results} The run was done=5 minutes early, and the context=local setup held.`
	assert.Equal(t, in, StripGenerationTrace(in))
}

func TestStripGenerationTrace_WrapperFieldsGreedy(t *testing.T) {
	in := "\\section{A} body' thinking=first the model considered\nseveral approaches done_reason='stop'"
	assert.Equal(t, `\section{A} body`, StripGenerationTrace(in))

	in = `\section{B} body context=[1, 2, 3]`
	assert.Equal(t, `\section{B} body`, StripGenerationTrace(in))
}

func TestStripGenerationTrace_EnclosingQuotes(t *testing.T) {
	assert.Equal(t, `\textbf{x}`, StripGenerationTrace(`'\textbf{x}'`))
	assert.Equal(t, `\textbf{x}`, StripGenerationTrace(`"\textbf{x}"`))
	// Mismatched quotes stay.
	assert.Equal(t, `'\textbf{x}"`, StripGenerationTrace(`'\textbf{x}"`))
}

func TestRemoveFences(t *testing.T) {
	in := "```latex\n\\section{A}\n```"
	assert.Equal(t, "latex\n\\section{A}\n", RemoveFences(in))
}

func TestTruncateAfterDocumentEnd(t *testing.T) {
	in := `\begin{document}Hello\end{document}trailing=5`
	assert.Equal(t, `\begin{document}Hello\end{document}`, TruncateAfterDocumentEnd(in))

	// No marker: unchanged.
	assert.Equal(t, `\section{A}`, TruncateAfterDocumentEnd(`\section{A}`))
}

func TestTruncateAfterDocumentEnd_KeepsLast(t *testing.T) {
	in := `\end{document} middle \end{document} tail`
	out := TruncateAfterDocumentEnd(in)
	assert.Equal(t, `\end{document} middle \end{document}`, out)
}

func TestDedupeBackslashes(t *testing.T) {
	assert.Equal(t, `\section{A}`, DedupeBackslashes(`\\section{A}`))
	assert.Equal(t, `\textbf{b} \item`, DedupeBackslashes(`\\textbf{b} \\item`))
	// Unknown commands are handled by the generic pattern.
	assert.Equal(t, `\emph{x}`, DedupeBackslashes(`\\emph{x}`))
	// A double backslash not followed by a letter is a LaTeX line break.
	assert.Equal(t, `row \\ break`, DedupeBackslashes(`row \\ break`))
}

func TestConvertNewlineLiterals(t *testing.T) {
	assert.Equal(t, "a\n\nb\nc", ConvertNewlineLiterals(`a\n\nb\nc`))
}

func TestStripForbiddenMacros(t *testing.T) {
	in := `\title{My Doc}\author{Me}\date{\today}\maketitle\section{A}`
	assert.Equal(t, `\section{A}`, StripForbiddenMacros(in))
}

func TestStripForbiddenMacros_MultilineArgument(t *testing.T) {
	in := "\\title{line one\nline two}body"
	assert.Equal(t, "body", StripForbiddenMacros(in))
}

func TestFixEscapedComment(t *testing.T) {
	assert.Equal(t, `% note`, FixEscapedComment(`\% note`))
}

func TestConvertMarkdown_Bold(t *testing.T) {
	assert.Equal(t, `\textbf{bold} text`, ConvertMarkdown(`**bold** text`))
}

func TestConvertMarkdown_ItemsWrapped(t *testing.T) {
	out := ConvertMarkdown("- item1\n- item2")
	assert.Equal(t, "\\begin{itemize}\n\\item item1\n\\item item2\n\\end{itemize}", out)
}

func TestConvertMarkdown_NoRewrapInsideList(t *testing.T) {
	in := "\\begin{itemize}\n\\item a\n\\end{itemize}"
	assert.Equal(t, in, ConvertMarkdown(in))
}

func TestRemoveDanglingFragments_LeadingClosers(t *testing.T) {
	assert.Equal(t, `\section{A}`, RemoveDanglingFragments(`}}] \section{A}`))
}

func TestRemoveDanglingFragments_Frames(t *testing.T) {
	in := `\begin{frame}[fragile]content\end{frame}`
	assert.Equal(t, `content`, RemoveDanglingFragments(in))
}

func TestRemoveDanglingFragments_UnmatchedClosers(t *testing.T) {
	in := "text\\end{itemize}\n\\begin{itemize}\\item a\\end{itemize}"
	out := RemoveDanglingFragments(in)
	assert.Equal(t, "text\n\\begin{itemize}\\item a\\end{itemize}", out)
}

func TestEscapeUnderscoresOutsideMath(t *testing.T) {
	assert.Equal(t, `var\_name`, EscapeUnderscoresOutsideMath(`var_name`))
	// Already escaped: untouched.
	assert.Equal(t, `var\_name`, EscapeUnderscoresOutsideMath(`var\_name`))
	// Inside inline math: untouched.
	assert.Equal(t, `$x_1$ and y\_2`, EscapeUnderscoresOutsideMath(`$x_1$ and y_2`))
	assert.Equal(t, `\(a_b\)`, EscapeUnderscoresOutsideMath(`\(a_b\)`))
}

func TestBalanceBraces(t *testing.T) {
	assert.Equal(t, `\section{A}`, BalanceBraces(`\section{A`))
	assert.Equal(t, `{{}}`, BalanceBraces(`{{`))
	// Surplus closers are left alone.
	assert.Equal(t, `a}}`, BalanceBraces(`a}}`))
}

func TestAnchorBodyStart(t *testing.T) {
	assert.Equal(t, `\section{A} x`, AnchorBodyStart(`preamble leak \section{A} x`))
	assert.Equal(t, "\\section{Output}\nplain prose", AnchorBodyStart("plain prose"))
	assert.Equal(t, `\begin{itemize}\item a\end{itemize}`, AnchorBodyStart(`junk \begin{itemize}\item a\end{itemize}`))
}

func TestStages_OrderIsFixed(t *testing.T) {
	names := make([]string, 0, 12)
	for _, s := range Stages() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{
		"strip_generation_trace",
		"remove_fences",
		"truncate_after_document_end",
		"dedupe_backslashes",
		"convert_newline_literals",
		"strip_forbidden_macros",
		"fix_escaped_comment",
		"convert_markdown",
		"remove_dangling_fragments",
		"escape_underscores",
		"balance_braces",
		"anchor_body_start",
	}, names)
}

func TestClean_TrailingMetadataAfterDocument(t *testing.T) {
	raw := `\documentclass{x}\begin{document}Hello\end{document} done=True total_duration=123`
	out := Clean(raw)
	assert.NotContains(t, out, "done=True")
	assert.NotContains(t, out, "total_duration")
	assert.Contains(t, out, "Hello")
}

func TestClean_MarkdownList(t *testing.T) {
	out := Clean("- item1\n- item2")
	assert.Equal(t, 2, strings.Count(out, `\item`))
	assert.Equal(t, 1, strings.Count(out, `\begin{itemize}`))
	assert.Equal(t, 1, strings.Count(out, `\end{itemize}`))
}

func TestClean_UnbalancedBrace(t *testing.T) {
	assert.Equal(t, `\section{A}`, Clean(`\section{A`))
}

func TestClean_FencedResponse(t *testing.T) {
	raw := "```latex\n\\section{Intro}\nSome **bold** prose with var_name.\n```"
	out := Clean(raw)
	assert.Contains(t, out, `\section{Intro}`)
	assert.Contains(t, out, `\textbf{bold}`)
	assert.Contains(t, out, `var\_name`)
	assert.NotContains(t, out, "```")
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"\\section{Results}\nThe mean\\_value was stable.",
		"\\begin{itemize}\n\\item first\n\\item second\n\\end{itemize}",
		Clean("```\n\\section{A} **b** - not an item\n```"),
		Clean("- item1\n- item2"),
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input: %q", in)
	}
}

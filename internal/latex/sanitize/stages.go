package sanitize

import (
	"regexp"
	"strings"
)

// traceDumpRe matches raw-response wrapper fields whose values span the
// rest of the dump (thinking text, logprob arrays, context token lists);
// everything from the key onward is discarded.
var traceDumpRe = regexp.MustCompile(`(?s)'?\s*\b(?:thinking=|logprobs=|context=\[).*$`)

// traceValue is one dumped value: quoted string, bracketed list, or a bare
// token.
const traceValue = `(?:'[^']*'|"[^"]*"|\[[^\]]*\]|\S+)`

// traceTailRe matches trailing timing/token-count/completion-reason
// fragments. Unlike the wrapper fields above, these keys only start a strip
// when the remainder of the text is nothing but key=value tokens, so the
// same words inside document prose survive.
var traceTailRe = regexp.MustCompile(`'?\s*\b(?:total_duration|load_duration|prompt_eval_count|prompt_eval_duration|eval_count|eval_duration|done_reason|done|created_at)=` + traceValue + `(?:\s+\w+=` + traceValue + `)*\s*$`)

// StripGenerationTrace removes trailing key=value metadata fragments left by
// a client dump, then strips enclosing quote characters from a string-repr
// round trip.
func StripGenerationTrace(t string) string {
	t = traceDumpRe.ReplaceAllString(t, "")
	t = traceTailRe.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)
	if len(t) >= 2 {
		first, last := t[0], t[len(t)-1]
		if first == last && (first == '\'' || first == '"') {
			t = t[1 : len(t)-1]
		}
	}
	return strings.TrimSpace(t)
}

var fenceRe = regexp.MustCompile("```+")

// RemoveFences deletes markdown code-fence markers.
func RemoveFences(t string) string {
	return fenceRe.ReplaceAllString(t, "")
}

const documentEnd = `\end{document}`

// TruncateAfterDocumentEnd discards everything after the last
// \end{document}, defending against hallucinated trailing content.
func TruncateAfterDocumentEnd(t string) string {
	if idx := strings.LastIndex(t, documentEnd); idx != -1 {
		return t[:idx+len(documentEnd)]
	}
	return t
}

// knownCommands are de-duplicated explicitly before the generic pass so the
// common cases survive even if the generic pattern ever changes.
var knownCommands = []string{
	"section", "subsection", "subsubsection", "paragraph",
	"textbf", "textit", "item", "begin", "end",
	"documentclass", "usepackage", "maketitle", "title", "author", "date",
}

var doubledEscapeRe = regexp.MustCompile(`\\\\([A-Za-z])`)

// DedupeBackslashes collapses doubled escape sequences (artifacts of a round
// trip through a string serialization layer) back to single escapes.
func DedupeBackslashes(t string) string {
	for _, cmd := range knownCommands {
		t = strings.ReplaceAll(t, `\\`+cmd, `\`+cmd)
	}
	return doubledEscapeRe.ReplaceAllString(t, `\$1`)
}

// ConvertNewlineLiterals converts two-character escaped-newline sequences
// into real line breaks, paragraph breaks first.
func ConvertNewlineLiterals(t string) string {
	t = strings.ReplaceAll(t, `\n\n`, "\n\n")
	return strings.ReplaceAll(t, `\n`, "\n")
}

// forbiddenMacroRes match macros the template owns exclusively. Non-greedy
// argument capture keeps multi-line arguments from over-matching.
var forbiddenMacroRes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\\title\{.*?\}`),
	regexp.MustCompile(`(?s)\\author\{.*?\}`),
	regexp.MustCompile(`(?s)\\date\{.*?\}`),
	regexp.MustCompile(`\\maketitle`),
}

// StripForbiddenMacros removes structural macros the generator must never
// emit because the template owns them.
func StripForbiddenMacros(t string) string {
	for _, re := range forbiddenMacroRes {
		t = re.ReplaceAllString(t, "")
	}
	return t
}

// FixEscapedComment removes an escape character immediately preceding a
// comment marker.
func FixEscapedComment(t string) string {
	return strings.ReplaceAll(t, `\%`, "%")
}

var (
	boldRe     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	dashItemRe = regexp.MustCompile(`(?m)^- `)
)

// ConvertMarkdown rewrites markdown artifacts into LaTeX: bold markers become
// \textbf and dash-space list lines become \item. If item markers are present
// and no list environment is open yet, the whole text is wrapped in one
// itemize environment. Known limitation: the wrap covers non-list prose too
// when even a single item marker appears.
func ConvertMarkdown(t string) string {
	t = boldRe.ReplaceAllString(t, `\textbf{$1}`)
	t = dashItemRe.ReplaceAllString(t, `\item `)

	if strings.Contains(t, `\item`) &&
		!strings.Contains(t, `\begin{itemize}`) && !strings.Contains(t, `\begin{enumerate}`) {
		t = "\\begin{itemize}\n" + t + "\n\\end{itemize}"
	}
	return t
}

var (
	leadingClosersRe = regexp.MustCompile(`^\s*[}\]]+\s*`)
	frameBeginRe     = regexp.MustCompile(`\\begin\{frame\}(\[[^\]]*\])?`)
	frameEndRe       = regexp.MustCompile(`\\end\{frame\}`)
	envMarkerRe      = regexp.MustCompile(`\\(begin|end)\{([A-Za-z*]+)\}`)
)

// RemoveDanglingFragments strips a leading run of stray closing braces and
// brackets, removes the disallowed frame environment entirely, and removes
// every closing-environment marker that has no matching opener before it.
// No nesting correctness is validated, only opener/closer pairing.
func RemoveDanglingFragments(t string) string {
	t = leadingClosersRe.ReplaceAllString(t, "")
	t = frameBeginRe.ReplaceAllString(t, "")
	t = frameEndRe.ReplaceAllString(t, "")
	return removeUnmatchedClosers(t)
}

func removeUnmatchedClosers(t string) string {
	matches := envMarkerRe.FindAllStringSubmatchIndex(t, -1)
	if len(matches) == 0 {
		return t
	}

	depth := make(map[string]int)
	var drop [][2]int
	for _, m := range matches {
		kind := t[m[2]:m[3]]
		name := t[m[4]:m[5]]
		if kind == "begin" {
			depth[name]++
			continue
		}
		if depth[name] > 0 {
			depth[name]--
		} else {
			drop = append(drop, [2]int{m[0], m[1]})
		}
	}
	if len(drop) == 0 {
		return t
	}

	var b strings.Builder
	b.Grow(len(t))
	prev := 0
	for _, span := range drop {
		b.WriteString(t[prev:span[0]])
		prev = span[1]
	}
	b.WriteString(t[prev:])
	return b.String()
}

var mathRegionRe = regexp.MustCompile(`(?s)\$.*?\$|\\\(.*?\\\)`)

// EscapeUnderscoresOutsideMath escapes underscores that are not already
// escaped, skipping paired math-delimiter regions.
func EscapeUnderscoresOutsideMath(t string) string {
	regions := mathRegionRe.FindAllStringIndex(t, -1)

	var b strings.Builder
	b.Grow(len(t) + 8)
	prev := 0
	for _, r := range regions {
		b.WriteString(escapeUnderscores(t[prev:r[0]]))
		b.WriteString(t[r[0]:r[1]])
		prev = r[1]
	}
	b.WriteString(escapeUnderscores(t[prev:]))
	return b.String()
}

func escapeUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '_' && (i == 0 || s[i-1] != '\\') {
			b.WriteString(`\_`)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// BalanceBraces appends the open/close brace deficit as trailing closing
// braces. Overall count only; nesting is not validated.
func BalanceBraces(t string) string {
	open := strings.Count(t, "{")
	closed := strings.Count(t, "}")
	if closed < open {
		t += strings.Repeat("}", open-closed)
	}
	return t
}

var bodyStartRe = regexp.MustCompile(`\\section|\\subsection|\\paragraph|\\begin\{`)

// AnchorBodyStart discards everything before the earliest recognized
// body-start marker. When no marker exists anywhere, a minimal section
// heading is synthesized so output is never structurally empty.
func AnchorBodyStart(t string) string {
	if loc := bodyStartRe.FindStringIndex(t); loc != nil {
		return t[loc[0]:]
	}
	return "\\section{Output}\n" + t
}

package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docly-ai/texforge/internal/domain"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry(nil)

	tmpl, err := r.Get("article_minimal")
	require.NoError(t, err)
	assert.Equal(t, "article_minimal", tmpl.Name())
	assert.Contains(t, tmpl.Preamble(), DocDeclaration)

	_, err = r.Get("assignment")
	require.NoError(t, err)
}

func TestRegistry_UnknownName(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Get("no_such_template")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTemplateNotFound))
}

func TestRegistry_ExtraOverridesBuiltin(t *testing.T) {
	extra := map[string]Template{
		"article_minimal": New("article_minimal", `\documentclass{report}`, `\end{document}`),
	}
	r := NewRegistry(extra)

	tmpl, err := r.Get("article_minimal")
	require.NoError(t, err)
	assert.Contains(t, tmpl.Preamble(), "report")
}

func TestNew_TrimsEdges(t *testing.T) {
	tmpl := New("t", "\\documentclass{article}\n\n", "\n\\end{document}")
	assert.Equal(t, `\documentclass{article}`, tmpl.Preamble())
	assert.Equal(t, `\end{document}`, tmpl.Postamble())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ModeWrap, Classify(`\section{A} body text`))
	assert.Equal(t, ModeMerge, Classify(`\documentclass{article}\section{A}`))
}

func testTemplate() Template {
	return New("t",
		"\\documentclass{article}\n\\usepackage{amsmath}",
		`\end{document}`)
}

func TestEnforce_Wrap(t *testing.T) {
	out := testTemplate().Enforce(`\section{A} body`)

	assert.Equal(t, 1, strings.Count(out, BodyBegin))
	assert.Equal(t, 1, strings.Count(out, BodyEnd))
	assert.Equal(t, 1, CountDeclarations(out))
	assert.Contains(t, out, `\section{A} body`)
	assert.True(t, strings.HasPrefix(out, `\documentclass{article}`))
}

func TestEnforce_Wrap_EchoedMarkers(t *testing.T) {
	// The generator echoed both markers; wrap must still emit exactly one of each.
	body := `\begin{document}Hello\end{document}`
	out := testTemplate().Enforce(body)

	assert.Equal(t, 1, strings.Count(out, BodyBegin))
	assert.Equal(t, 1, strings.Count(out, BodyEnd))
	assert.Equal(t, 1, CountDeclarations(out))
	assert.Contains(t, out, "Hello")
}

func TestEnforce_Wrap_ManyEndMarkers(t *testing.T) {
	body := "first\\end{document}\nsecond\\end{document}"
	out := testTemplate().Enforce(body)

	assert.Equal(t, 1, strings.Count(out, BodyEnd))
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
}

func TestEnforce_Merge_PrependsMissingPreambleLines(t *testing.T) {
	body := "\\documentclass{article}\n\\begin{document}\nHello\n\\end{document}"
	out := testTemplate().Enforce(body)

	// amsmath is missing from the leaked preamble and gets prepended.
	assert.Contains(t, out, `\usepackage{amsmath}`)
	// The declaration line is already present and must not be duplicated.
	assert.Equal(t, 1, CountDeclarations(out))
	assert.Contains(t, out, "Hello")
	// Tail after the body marker is untouched.
	assert.True(t, strings.HasSuffix(out, "\\end{document}"))
}

func TestEnforce_Merge_NoBodyMarker(t *testing.T) {
	body := `\documentclass{book} orphan content`
	out := testTemplate().Enforce(body)

	// Both preamble lines differ from the leaked declaration, so both land
	// in front and the leaked one stays: a known strict-mode failure.
	assert.Equal(t, 2, CountDeclarations(out))
	assert.Contains(t, out, "orphan content")
}

func TestValidateStrict(t *testing.T) {
	one := `\documentclass{article}\begin{document}x\end{document}`
	two := one + `\documentclass{book}`

	assert.NoError(t, ValidateStrict(one, true))
	assert.NoError(t, ValidateStrict("fragment", false))
	assert.NoError(t, ValidateStrict(one, false))

	err := ValidateStrict("fragment", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStrictValidation))

	err = ValidateStrict(two, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStrictValidation))

	err = ValidateStrict(two, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStrictValidation))
}

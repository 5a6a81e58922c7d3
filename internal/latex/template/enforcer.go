package template

import (
	"fmt"
	"strings"

	"github.com/docly-ai/texforge/internal/domain"
)

// Mode is the structural classification of a sanitized body.
type Mode string

const (
	// ModeWrap treats the body as pure content to be spliced between the
	// template's body markers.
	ModeWrap Mode = "wrap"
	// ModeMerge keeps a leaked document declaration and merges the missing
	// preamble lines around it instead of discarding generator structure.
	ModeMerge Mode = "merge"
)

// Classify selects the enforcement mode from a single structural signal: the
// presence of a top-level document declaration in the sanitized body.
func Classify(body string) Mode {
	if strings.Contains(body, DocDeclaration) {
		return ModeMerge
	}
	return ModeWrap
}

// Enforce splices sanitized body text into the template according to its
// structural classification.
func (t Template) Enforce(body string) string {
	switch Classify(body) {
	case ModeMerge:
		return t.merge(body)
	default:
		return t.wrap(body)
	}
}

// wrap assembles preamble + body-begin + body + body-end + postamble. Any
// body-begin echoed by the generator is split away and every body-end inside
// the remainder is stripped, so the final output carries exactly one of each
// marker.
func (t Template) wrap(body string) string {
	cleaned := body
	if idx := strings.Index(cleaned, BodyBegin); idx != -1 {
		cleaned = cleaned[idx+len(BodyBegin):]
	}
	cleaned = strings.ReplaceAll(cleaned, BodyEnd, "")
	cleaned = strings.TrimSpace(cleaned)

	return t.preamble + "\n" + BodyBegin + "\n" + cleaned + "\n" + t.postamble
}

// merge handles a leaked document declaration: the generator's structure is
// kept, and each non-blank preamble line not already present verbatim in the
// head is prepended. This can yield more than one declaration when the
// template preamble declares one too; strict validation catches that case
// rather than tolerating it silently.
func (t Template) merge(body string) string {
	head, tail, split := strings.Cut(body, BodyBegin)

	var missing []string
	for _, line := range strings.Split(t.preamble, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(head, line) {
			missing = append(missing, line)
		}
	}
	if len(missing) > 0 {
		head = strings.Join(missing, "\n") + "\n" + head
	}

	if !split {
		return head
	}
	return head + BodyBegin + tail
}

// CountDeclarations counts document-declaration markers in assembled output.
func CountDeclarations(text string) int {
	return strings.Count(text, DocDeclaration)
}

// ValidateStrict enforces the strict-mode structural contract on the final
// assembled output: with a template supplied the declaration count must be
// exactly one; without one, more than one declaration is still fatal.
func ValidateStrict(final string, templateProvided bool) error {
	count := CountDeclarations(final)
	if templateProvided {
		if count != 1 {
			return fmt.Errorf("%w: expected exactly 1 document declaration, found %d",
				domain.ErrStrictValidation, count)
		}
		return nil
	}
	if count > 1 {
		return fmt.Errorf("%w: multiple document declarations found (%d)",
			domain.ErrStrictValidation, count)
	}
	return nil
}

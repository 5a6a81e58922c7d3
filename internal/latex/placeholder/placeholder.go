// Package placeholder performs the final literal-token substitution pass.
package placeholder

import "strings"

// Fill replaces every exact <NAME> occurrence with its configured value.
// Unconfigured tokens stay verbatim and unused values are ignored; this pass
// never fails. It runs strictly after template assembly so placeholders in
// the template's own preamble are resolved too.
func Fill(text string, values map[string]string) string {
	for key, val := range values {
		text = strings.ReplaceAll(text, "<"+key+">", val)
	}
	return text
}

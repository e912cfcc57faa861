package filter

import "strings"

// EscapeText escapes drawtext special characters so user-supplied strings
// cannot corrupt the filter grammar. Backslash must be first or later
// replacements would double-escape it.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `'`, `'\''`)
	text = strings.ReplaceAll(text, `:`, `\:`)
	text = strings.ReplaceAll(text, `[`, `\[`)
	text = strings.ReplaceAll(text, `]`, `\]`)
	text = strings.ReplaceAll(text, `;`, `\;`)
	text = strings.ReplaceAll(text, `,`, `\,`)
	return text
}

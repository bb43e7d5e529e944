package markdown

import "strings"

// specialChars is the exact set of delimiter characters the parser
// recognizes in literal text.
const specialChars = "*_~`[]>"

// escapable is the superset of characters a backslash may neutralize in
// source text. It additionally covers the link URL parentheses, so
// rendered link targets can always be reparsed.
const escapable = "\\*_~`[]>()"

// Escape backslash-escapes the markdown delimiter characters in s so the
// parser treats them as literal text. Backslashes are escaped as well;
// without that, escaping "\*" a second time would yield "\\*", whose
// trailing asterisk is a live delimiter again. Escaping twice therefore
// parses to the same visible text as escaping once, plus literal
// backslashes.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\\' || (r < 0x80 && strings.ContainsRune(specialChars, r)) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEscapable(c byte) bool {
	return strings.IndexByte(escapable, c) >= 0
}

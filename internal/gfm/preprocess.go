package gfm

import (
	"regexp"
	"strings"
)

// codeRegionRe matches fenced code blocks and inline code spans, which
// must be skipped when expanding spoiler bars.
var codeRegionRe = regexp.MustCompile("(```[\\s\\S]*?```|`[^`\\n]+`)")

// expandSpoilers rewrites ||text|| outside code regions into
// <tg-spoiler>text</tg-spoiler> tags, which survive goldmark parsing as
// RawHTML nodes the walker turns into spoiler entities.
func expandSpoilers(source string) string {
	if !strings.Contains(source, "||") {
		return source
	}

	regions := codeRegionRe.FindAllStringIndex(source, -1)
	var b strings.Builder
	b.Grow(len(source))
	pos := 0
	for _, r := range regions {
		b.WriteString(replaceSpoilerBars(source[pos:r[0]]))
		b.WriteString(source[r[0]:r[1]])
		pos = r[1]
	}
	b.WriteString(replaceSpoilerBars(source[pos:]))
	return b.String()
}

func replaceSpoilerBars(s string) string {
	var b strings.Builder
	open := false
	openAt := -1
	i := 0
	for i < len(s) {
		// A backslash escapes the bar pair.
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == '|' && s[i+2] == '|' {
			b.WriteString("||")
			i += 3
			continue
		}
		if i+1 < len(s) && s[i] == '|' && s[i+1] == '|' {
			if open {
				b.WriteString("</tg-spoiler>")
			} else {
				openAt = b.Len()
				b.WriteString("<tg-spoiler>")
			}
			open = !open
			i += 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	out := b.String()
	if open {
		// Unbalanced bars stay literal; undo the dangling open tag.
		out = out[:openAt] + "||" + out[openAt+len("<tg-spoiler>"):]
	}
	return out
}

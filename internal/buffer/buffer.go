// Package buffer provides a plain-text accumulator that tracks the UTF-16
// code-unit offset of its write position, so entity spans can be recorded
// while output is being assembled.
package buffer

import "github.com/tgmarkup/tgmarkup-go/internal/codeunit"

// TextBuffer accumulates plain text and tracks the current UTF-16 offset.
type TextBuffer struct {
	parts  []string
	offset int
}

// New creates an empty TextBuffer.
func New() *TextBuffer {
	return &TextBuffer{}
}

// Write appends text to the buffer and advances the code-unit offset.
func (tb *TextBuffer) Write(text string) {
	if text == "" {
		return
	}
	tb.parts = append(tb.parts, text)
	tb.offset += codeunit.Len(text)
}

// UTF16Offset returns the current UTF-16 code-unit offset.
func (tb *TextBuffer) UTF16Offset() int {
	return tb.offset
}

// ByteOffset returns the current byte offset.
func (tb *TextBuffer) ByteOffset() int {
	total := 0
	for _, p := range tb.parts {
		total += len(p)
	}
	return total
}

// TrailingNewlineCount counts newline characters at the end of the buffer.
func (tb *TextBuffer) TrailingNewlineCount() int {
	count := 0
	for i := len(tb.parts) - 1; i >= 0; i-- {
		part := tb.parts[i]
		for j := len(part) - 1; j >= 0; j-- {
			if part[j] != '\n' {
				return count
			}
			count++
		}
	}
	return count
}

// PopLast removes and returns the most recent write. Used to replace a
// just-written prefix, e.g. a list bullet superseded by a task marker.
func (tb *TextBuffer) PopLast() string {
	if len(tb.parts) == 0 {
		return ""
	}
	last := tb.parts[len(tb.parts)-1]
	tb.parts = tb.parts[:len(tb.parts)-1]
	tb.offset -= codeunit.Len(last)
	return last
}

// String returns the accumulated text.
func (tb *TextBuffer) String() string {
	total := 0
	for _, p := range tb.parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range tb.parts {
		out = append(out, p...)
	}
	return string(out)
}

// Reset clears the buffer.
func (tb *TextBuffer) Reset() {
	tb.parts = tb.parts[:0]
	tb.offset = 0
}

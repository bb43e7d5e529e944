// Package codeunit maps between byte, rune and UTF-16 code-unit positions
// of a Go string. Entity offsets are addressed in UTF-16 code units, so
// every component that slices text or records positions goes through this
// package instead of re-deriving offsets.
package codeunit

// Len returns the length of text measured in UTF-16 code units.
//
// Characters outside the BMP (codepoint > 0xFFFF) take 2 code units (a
// surrogate pair); all others take 1. Invalid bytes decode to U+FFFD and
// count as 1, which keeps the function total.
func Len(text string) int {
	count := 0
	for _, r := range text {
		if r > 0xFFFF {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// OffsetTable builds a cumulative code-unit offset table for text. The
// result has len(text)+1 entries; table[i] is the code-unit offset at byte
// position i for every i on a rune boundary.
func OffsetTable(text string) []int {
	table := make([]int, len(text)+1)
	cum := 0
	for i, r := range text {
		table[i] = cum
		if r > 0xFFFF {
			cum += 2
		} else {
			cum++
		}
	}
	table[len(text)] = cum
	return table
}

// ByteIndex returns the byte index in text corresponding to code-unit
// offset u. Offsets past the end of text map to len(text). An offset that
// lands inside a surrogate pair maps to the start of that rune.
func ByteIndex(text string, u int) int {
	if u <= 0 {
		return 0
	}
	cum := 0
	for i, r := range text {
		if cum+Width(r) > u {
			return i
		}
		cum += Width(r)
	}
	return len(text)
}

// Slice returns the substring of text between the code-unit offsets from
// and to. Out-of-range offsets are clamped.
func Slice(text string, from, to int) string {
	if to <= from {
		return ""
	}
	return text[ByteIndex(text, from):ByteIndex(text, to)]
}

// RuneRange converts a rune-index range [fromRune, toRune) into the
// equivalent code-unit range. Rune indices past the end clamp to the end
// of text.
func RuneRange(text string, fromRune, toRune int) (from, to int) {
	cum := 0
	idx := 0
	for _, r := range text {
		if idx == fromRune {
			from = cum
		}
		if idx == toRune {
			to = cum
			return from, to
		}
		if r > 0xFFFF {
			cum += 2
		} else {
			cum++
		}
		idx++
	}
	if fromRune >= idx {
		from = cum
	}
	return from, cum
}

// Width returns the code-unit width of a single rune.
func Width(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

package tgmarkup

import (
	"strings"
	"unicode/utf8"

	"github.com/tgmarkup/tgmarkup-go/internal/codeunit"
	"github.com/tgmarkup/tgmarkup-go/internal/markdown"
	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

// Entity is a single formatting span over a plain-text buffer, addressed
// in UTF-16 code units.
type Entity = types.Entity

// FormattedText pairs a plain-text buffer with the entities spanning it.
type FormattedText = types.FormattedText

// Entity kinds.
const (
	Bold                 = types.KindBold
	Italic               = types.KindItalic
	Underline            = types.KindUnderline
	Strikethrough        = types.KindStrikethrough
	Code                 = types.KindCode
	Pre                  = types.KindPre
	TextLink             = types.KindTextLink
	TextMention          = types.KindMention
	Spoiler              = types.KindSpoiler
	CustomEmoji          = types.KindCustomEmoji
	Blockquote           = types.KindBlockquote
	ExpandableBlockquote = types.KindExpandableBlockquote
)

// UTF16Len returns the length of text in UTF-16 code units. Characters
// outside the Basic Multilingual Plane count as two units.
func UTF16Len(text string) int {
	return codeunit.Len(text)
}

// Canonicalize sorts entities in place into canonical order: offset
// ascending, length descending, then type and payload for full ties.
func Canonicalize(entities []Entity) {
	markdown.Canonicalize(entities)
}

// SplitEntities splits (text, entities) into chunks of at most max
// UTF-16 code units, preferring newline boundaries. Entities spanning a
// boundary are clipped into both sides.
func SplitEntities(text string, entities []Entity, max int) []FormattedText {
	if codeunit.Len(text) <= max {
		return []FormattedText{{Text: text, Entities: entities}}
	}

	offsets := codeunit.OffsetTable(text)

	// Byte positions just after each newline, the preferred cut points.
	var cuts []int
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			cuts = append(cuts, i+1)
		}
	}

	var ranges [][2]int
	start := 0
	for start < len(text) {
		budget := offsets[start] + max
		if offsets[len(text)] <= budget {
			ranges = append(ranges, [2]int{start, len(text)})
			break
		}

		best := -1
		for _, c := range cuts {
			if c <= start {
				continue
			}
			if offsets[c] > budget {
				break
			}
			best = c
		}
		if best < 0 {
			// No newline fits; hard cut at the last rune boundary that
			// stays inside the budget.
			best = codeunit.ByteIndex(text[start:], max) + start
			if best == start {
				_, w := utf8.DecodeRuneInString(text[start:])
				best = start + w
			}
		}
		ranges = append(ranges, [2]int{start, best})
		start = best
	}

	chunks := make([]FormattedText, 0, len(ranges))
	for _, r := range ranges {
		from, to := offsets[r[0]], offsets[r[1]]
		chunks = append(chunks, FormattedText{
			Text:     text[r[0]:r[1]],
			Entities: clipEntities(entities, from, to),
		})
	}
	return chunks
}

// clipEntities keeps the portions of entities overlapping [from, to),
// rebased to offset zero at from.
func clipEntities(entities []Entity, from, to int) []Entity {
	var out []Entity
	for _, e := range entities {
		lo, hi := e.Offset, e.End()
		if hi <= from || lo >= to {
			continue
		}
		lo = max(lo, from)
		hi = min(hi, to)
		clipped := e
		clipped.Offset = lo - from
		clipped.Length = hi - lo
		out = append(out, clipped)
	}
	return out
}

// TrimSpace removes leading and trailing whitespace from text, shifting
// and clipping entities to match.
func TrimSpace(text string, entities []Entity) (string, []Entity) {
	trimmed := strings.TrimSpace(text)
	if trimmed == text {
		return text, entities
	}
	if trimmed == "" {
		return "", nil
	}
	lead := strings.Index(text, trimmed)
	from := codeunit.Len(text[:lead])
	return trimmed, clipEntities(entities, from, from+codeunit.Len(trimmed))
}

// stripNewlines removes leading and trailing newline characters,
// shifting and clipping entities to match. Interior newlines stay.
func stripNewlines(text string, entities []Entity) (string, []Entity) {
	stripped := strings.Trim(text, "\n")
	if stripped == text {
		return text, entities
	}
	if stripped == "" {
		return "", nil
	}
	lead := 0
	for lead < len(text) && text[lead] == '\n' {
		lead++
	}
	return stripped, clipEntities(entities, lead, lead+codeunit.Len(stripped))
}

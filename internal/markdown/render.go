package markdown

import (
	"fmt"
	"strings"

	"github.com/tgmarkup/tgmarkup-go/internal/codeunit"
	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

// MalformedEntitySetError reports an entity set that cannot be rendered:
// a span out of the text's bounds, or two spans that overlap without one
// containing the other (a laminar-set violation). Such input is reported
// rather than silently dropped, since dropping would corrupt visible
// formatting without warning.
type MalformedEntitySetError struct {
	Reason string
	First  types.Entity
	Second types.Entity
}

func (e *MalformedEntitySetError) Error() string {
	if e.Second.Type == "" {
		return fmt.Sprintf("malformed entity set: %s: %s[%d,%d)",
			e.Reason, e.First.Type, e.First.Offset, e.First.End())
	}
	return fmt.Sprintf("malformed entity set: %s: %s[%d,%d) vs %s[%d,%d)",
		e.Reason, e.First.Type, e.First.Offset, e.First.End(),
		e.Second.Type, e.Second.Offset, e.Second.End())
}

// Validate checks that every entity lies within the text and that the
// set is laminar: any two spans are disjoint or one contains the other.
func Validate(ft types.FormattedText) error {
	total := codeunit.Len(ft.Text)
	ents := append([]types.Entity(nil), ft.Entities...)
	Canonicalize(ents)

	var ends []int // ends of currently open spans, innermost last
	for _, e := range ents {
		if e.Offset < 0 || e.Length < 0 || e.End() > total {
			return &MalformedEntitySetError{Reason: "span out of bounds", First: e}
		}
		for len(ends) > 0 && ends[len(ends)-1] <= e.Offset {
			ends = ends[:len(ends)-1]
		}
		if len(ends) > 0 && e.End() > ends[len(ends)-1] {
			return &MalformedEntitySetError{
				Reason: "partial overlap",
				First:  e,
				Second: types.Entity{Type: "span", Offset: e.Offset, Length: ends[len(ends)-1] - e.Offset},
			}
		}
		ends = append(ends, e.End())
	}
	return nil
}

// Render serializes a FormattedText back to dialect source. Entities are
// processed outermost-first; literal text is escaped so the output
// reparses to the same value: parse(render(ft)) == ft for any ft in
// canonical form produced by Parse.
func Render(ft types.FormattedText) (string, error) {
	if err := Validate(ft); err != nil {
		return "", err
	}
	ents := append([]types.Entity(nil), ft.Entities...)
	Canonicalize(ents)
	tbl := byteForTable(ft.Text)

	var b strings.Builder
	renderRange(&b, ft.Text, tbl, ents, 0, codeunit.Len(ft.Text))
	return b.String(), nil
}

// byteForTable maps each UTF-16 code-unit offset to the byte index of the
// rune containing it. Offsets inside a surrogate pair map to the rune
// start.
func byteForTable(text string) []int {
	total := codeunit.Len(text)
	tbl := make([]int, total+1)
	cu := 0
	for i, r := range text {
		tbl[cu] = i
		if r > 0xFFFF {
			tbl[cu+1] = i
			cu += 2
		} else {
			cu++
		}
	}
	tbl[total] = len(text)
	return tbl
}

// renderRange writes the code-unit range [from, to) of text, wrapping the
// given entities (all contained in the range, in canonical order) around
// their slices. Gaps between entities are escaped literal text.
func renderRange(b *strings.Builder, text string, tbl []int, ents []types.Entity, from, to int) {
	cursor := from
	i := 0
	for i < len(ents) {
		e := ents[i]
		if e.Offset > cursor {
			b.WriteString(Escape(text[tbl[cursor]:tbl[e.Offset]]))
		}
		// Laminar set in canonical order: every following entity starting
		// before this one ends is contained in it.
		j := i + 1
		for j < len(ents) && ents[j].Offset < e.End() {
			j++
		}
		writeEntity(b, text, tbl, e, ents[i+1:j])
		cursor = e.End()
		i = j
	}
	if to > cursor {
		b.WriteString(Escape(text[tbl[cursor]:tbl[to]]))
	}
}

func writeEntity(b *strings.Builder, text string, tbl []int, e types.Entity, children []types.Entity) {
	raw := func() string { return text[tbl[e.Offset]:tbl[e.End()]] }
	inner := func(w *strings.Builder) { renderRange(w, text, tbl, children, e.Offset, e.End()) }
	wrap := func(delim string) {
		b.WriteString(delim)
		inner(b)
		b.WriteString(delim)
	}
	link := func(target string) {
		b.WriteString("[")
		inner(b)
		b.WriteString("](")
		b.WriteString(target)
		b.WriteString(")")
	}

	switch e.Type {
	case types.KindBold:
		wrap("**")
	case types.KindItalic:
		wrap("*")
	case types.KindUnderline:
		wrap("__")
	case types.KindStrikethrough:
		wrap("~~")
	case types.KindCode:
		// Contents are never re-scanned, so they go out verbatim.
		b.WriteString("`")
		b.WriteString(raw())
		b.WriteString("`")
	case types.KindPre:
		b.WriteString("```")
		b.WriteString(e.Language)
		b.WriteString("\n")
		b.WriteString(raw())
		b.WriteString("\n```")
	case types.KindTextLink:
		link(encodeLinkTarget(e.URL))
	case types.KindSpoiler:
		link(spoilerURL)
	case types.KindCustomEmoji:
		link(emojiURLPrefix + e.CustomEmojiID)
	case types.KindMention:
		link(mentionPrefix + e.UserID)
	case types.KindBlockquote, types.KindExpandableBlockquote:
		var qb strings.Builder
		inner(&qb)
		b.WriteString("> ")
		b.WriteString(strings.ReplaceAll(qb.String(), "\n", "\n> "))
	default:
		// Unknown kinds render their contents unwrapped.
		inner(b)
	}
}

// encodeLinkTarget hides parentheses from the link scanner. The parser
// decodes them back when it reads the URL.
func encodeLinkTarget(url string) string {
	url = strings.ReplaceAll(url, "(", "%28")
	return strings.ReplaceAll(url, ")", "%29")
}

// decodeLinkTarget is the inverse of encodeLinkTarget.
func decodeLinkTarget(url string) string {
	url = strings.ReplaceAll(url, "%28", "(")
	return strings.ReplaceAll(url, "%29", ")")
}

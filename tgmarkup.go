// Package tgmarkup converts between a markdown dialect and plain text
// plus formatting entities, the message model used by the Telegram Bot
// API and similar chat platforms.
//
// The core model is FormattedText: a plain-text buffer with a list of
// Entity spans addressed in UTF-16 code units. Three surfaces work over
// it:
//
//   - Parse turns dialect markup into a FormattedText. Parsing is total:
//     markup that cannot be resolved degrades to literal text.
//   - Render is the inverse, producing markup that parses back to the
//     same FormattedText.
//   - ImportGFM imports full GitHub Flavored Markdown documents one-way,
//     rendering block structure that entities cannot express (headings,
//     lists, tables) as decorated text.
//
// A small template language (CompileTemplate, RenderMessage) produces
// markup from data contexts, and BuildMessages splits a FormattedText
// into send-ready chunks.
//
// Example:
//
//	ft := tgmarkup.Parse("Hello **world**")
//	msgs := tgmarkup.BuildMessages(ft, 4096)
//	for _, m := range msgs {
//	    // m.Text, m.Entities ready for the wire
//	}
package tgmarkup

import (
	"github.com/tgmarkup/tgmarkup-go/internal/gfm"
	"github.com/tgmarkup/tgmarkup-go/internal/markdown"
)

// MalformedEntitySetError reports an entity set that Render cannot
// express: out-of-bounds spans or partial overlaps.
type MalformedEntitySetError = markdown.MalformedEntitySetError

// Parse converts dialect markup into plain text plus entities. It never
// fails; unresolvable markup stays literal. The returned entity set is
// canonical and laminar.
func Parse(source string, opts ...Option) FormattedText {
	return markdown.Parse(source, applyOptions(opts...).dialect())
}

// Render produces dialect markup that parses back to ft. It returns a
// MalformedEntitySetError when the entity set is out of bounds or not
// laminar.
func Render(ft FormattedText) (string, error) {
	return markdown.Render(ft)
}

// ValidateEntities checks that the entity set of ft is renderable:
// every span within bounds and no partial overlaps.
func ValidateEntities(ft FormattedText) error {
	return markdown.Validate(ft)
}

// ImportGFM converts a GitHub Flavored Markdown document into a
// FormattedText. Unlike Parse this is one-way; see Render for the
// dialect that round-trips.
func ImportGFM(source string, opts ...Option) FormattedText {
	return gfm.Import(source, applyOptions(opts...).Render)
}

// EscapeMarkdown escapes dialect delimiter characters in s so it can be
// embedded in markup as literal text.
func EscapeMarkdown(s string) string {
	return markdown.Escape(s)
}

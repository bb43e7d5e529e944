package markdown

import (
	"sort"

	"github.com/tgmarkup/tgmarkup-go/internal/buffer"
	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

type scope struct {
	open  event
	start int // UTF-16 offset at open time
}

// Parse scans dialect source and produces the stripped plain text plus
// its entities in canonical order. Parse never fails: markup that cannot
// be resolved is kept as literal text.
func Parse(source string, cfg Config) types.FormattedText {
	cfg = cfg.normalized()
	events := resolve(tokenize(source), cfg)

	buf := buffer.New()
	var scopes []scope
	var entities []types.Entity

	for _, ev := range events {
		switch ev.kind {
		case evText:
			buf.Write(ev.text)

		case evCode:
			start := buf.UTF16Offset()
			buf.Write(ev.text)
			if length := buf.UTF16Offset() - start; length > 0 {
				entities = append(entities, types.Entity{
					Type:   types.KindCode,
					Offset: start,
					Length: length,
				})
			}

		case evPre:
			start := buf.UTF16Offset()
			buf.Write(ev.text)
			if length := buf.UTF16Offset() - start; length > 0 {
				entities = append(entities, types.Entity{
					Type:     types.KindPre,
					Offset:   start,
					Length:   length,
					Language: ev.lang,
				})
			}

		case evOpen:
			scopes = append(scopes, scope{open: ev, start: buf.UTF16Offset()})

		case evClose:
			// Pairing is laminar by construction, so the closing event
			// always matches the innermost scope.
			s := scopes[len(scopes)-1]
			scopes = scopes[:len(scopes)-1]
			if length := buf.UTF16Offset() - s.start; length > 0 {
				entities = append(entities, types.Entity{
					Type:          s.open.entity,
					Offset:        s.start,
					Length:        length,
					URL:           s.open.url,
					UserID:        s.open.userID,
					CustomEmojiID: s.open.emojiID,
				})
			}
		}
	}

	Canonicalize(entities)
	return types.FormattedText{Text: buf.String(), Entities: entities}
}

// Canonicalize sorts entities into canonical order: offset ascending,
// length descending (outer spans before the spans they contain), then
// type and payload ascending for full ties. Two FormattedText values with
// the same entity set canonicalize identically regardless of input order.
func Canonicalize(entities []types.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Payload() < b.Payload()
	})
}

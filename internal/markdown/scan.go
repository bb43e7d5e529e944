package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

// The scanner runs in two stages. tokenize produces a flat token stream:
// literal runs, delimiter candidates with their flanking properties, and
// pre-resolved code/pre/blockquote regions (code is masked first and never
// re-scanned). resolve then pairs delimiters with a stack, demoting
// anything unmatched to literal text, and yields an event stream the
// emitter can walk left to right with no further backtracking.

type tokenKind int

const (
	tokText tokenKind = iota
	tokDelim
	tokCode
	tokPre
	tokLinkOpen
	tokLinkClose
	tokQuoteOpen
	tokQuoteClose
)

type token struct {
	kind tokenKind
	text string // literal text, delimiter string, or code/pre content
	lang string // tokPre language tag
	url  string // tokLinkClose target

	// Flanking properties of delimiter candidates: a delimiter may only
	// open when followed by non-whitespace and only close when preceded
	// by non-whitespace.
	canOpen  bool
	canClose bool
}

type eventKind int

const (
	evText eventKind = iota
	evCode
	evPre
	evOpen
	evClose
)

type event struct {
	kind    eventKind
	text    string // literal text or code/pre content
	lang    string
	entity  string // entity kind for evOpen, set when the pair resolves
	url     string
	userID  string
	emojiID string
}

// tokenize splits source into tokens. Fenced code blocks and line-initial
// blockquote markers are handled here because they are line-oriented;
// everything else is inline.
func tokenize(source string) []token {
	var toks []token
	lines := strings.Split(source, "\n")
	inQuote := false

	i := 0
	for i < len(lines) {
		line := lines[i]
		hasNL := i < len(lines)-1

		// Fenced code block. An unterminated fence degrades to literal text.
		if strings.HasPrefix(line, "```") {
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) != "```" {
				j++
			}
			if j < len(lines) {
				if inQuote {
					toks = append(toks, token{kind: tokQuoteClose})
					inQuote = false
				}
				lang := strings.TrimSpace(strings.TrimPrefix(line, "```"))
				content := strings.Join(lines[i+1:j], "\n")
				toks = append(toks, token{kind: tokPre, text: content, lang: lang})
				if j < len(lines)-1 {
					toks = append(toks, token{kind: tokText, text: "\n"})
				}
				i = j + 1
				continue
			}
		}

		// Blockquote line. Contiguous quoted lines share one entity.
		if strings.HasPrefix(line, ">") {
			content := strings.TrimPrefix(strings.TrimPrefix(line, ">"), " ")
			if !inQuote {
				toks = append(toks, token{kind: tokQuoteOpen})
				inQuote = true
			}
			toks = append(toks, tokenizeInline(content)...)
			nextIsQuote := hasNL && i+1 < len(lines) && strings.HasPrefix(lines[i+1], ">")
			if nextIsQuote {
				// Separator newline stays inside the quote span.
				toks = append(toks, token{kind: tokText, text: "\n"})
			} else {
				toks = append(toks, token{kind: tokQuoteClose})
				inQuote = false
				if hasNL {
					toks = append(toks, token{kind: tokText, text: "\n"})
				}
			}
			i++
			continue
		}

		toks = append(toks, tokenizeInline(line)...)
		if hasNL {
			toks = append(toks, token{kind: tokText, text: "\n"})
		}
		i++
	}
	return toks
}

// tokenizeInline scans a single line (or quoted line body) for inline
// delimiters, inline code and link syntax.
func tokenizeInline(s string) []token {
	var toks []token
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			toks = append(toks, token{kind: tokText, text: string(lit)})
			lit = nil
		}
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '\\':
			if i+1 < len(s) && isEscapable(s[i+1]) {
				lit = append(lit, s[i+1])
				i += 2
				continue
			}
			lit = append(lit, c)
			i++

		case '`':
			// Inline code: closed on the same line, contents masked from
			// all further scanning.
			rest := s[i+1:]
			if j := strings.IndexByte(rest, '`'); j > 0 {
				flush()
				toks = append(toks, token{kind: tokCode, text: rest[:j]})
				i += j + 2
			} else {
				lit = append(lit, c)
				i++
			}

		case '*', '_', '~':
			j := i
			for j < len(s) && s[j] == c {
				j++
			}
			canClose := false
			if prev, size := utf8.DecodeLastRuneInString(s[:i]); size > 0 {
				canClose = !unicode.IsSpace(prev)
			}
			canOpen := false
			if next, size := utf8.DecodeRuneInString(s[j:]); size > 0 {
				canOpen = !unicode.IsSpace(next)
			}
			flush()
			n := j - i
			if c == '~' {
				for n >= 2 {
					toks = append(toks, token{kind: tokDelim, text: "~~", canOpen: canOpen, canClose: canClose})
					n -= 2
				}
				if n == 1 {
					lit = append(lit, '~')
				}
			} else {
				double := strings.Repeat(string(c), 2)
				single := token{kind: tokDelim, text: string(c), canOpen: canOpen, canClose: canClose}
				// A run that can only close pairs innermost-first, so the
				// odd single goes out before the doubles (***x*** nests
				// italic inside bold).
				if n%2 == 1 && canClose && !canOpen {
					toks = append(toks, single)
					n--
				}
				for n >= 2 {
					toks = append(toks, token{kind: tokDelim, text: double, canOpen: canOpen, canClose: canClose})
					n -= 2
				}
				if n == 1 {
					toks = append(toks, single)
				}
			}
			i = j

		case '[':
			flush()
			toks = append(toks, token{kind: tokLinkOpen})
			i++

		case ']':
			if i+1 < len(s) && s[i+1] == '(' {
				if j := strings.IndexByte(s[i+2:], ')'); j >= 0 {
					flush()
					toks = append(toks, token{kind: tokLinkClose, url: s[i+2 : i+2+j]})
					i += j + 3
					continue
				}
			}
			lit = append(lit, c)
			i++

		default:
			lit = append(lit, c)
			i++
		}
	}
	flush()
	return toks
}

type openRec struct {
	evIndex int
	delim   string // "**", "__", "~~", "*", "_", "[" or ">"
}

func literalFor(delim string) string {
	if delim == ">" {
		return ""
	}
	return delim
}

func entityForDelim(delim string) string {
	switch delim {
	case "**":
		return types.KindBold
	case "__":
		return types.KindUnderline
	case "~~":
		return types.KindStrikethrough
	case "*", "_":
		return types.KindItalic
	}
	return ""
}

// resolve pairs delimiter tokens into open/close events. The stack keeps
// open candidates; a closing delimiter binds to the most recently opened
// matching candidate, demoting anything opened after it to literal text.
// This realizes the earliest-opened, earliest-closed tie-break and keeps
// the resulting entity set laminar by construction.
func resolve(toks []token, cfg Config) []event {
	var events []event
	var stack []openRec

	// demoteAbove rewrites every stack entry above index m into literal
	// text and truncates the stack down to m+1 entries.
	demoteAbove := func(m int) {
		for k := len(stack) - 1; k > m; k-- {
			rec := stack[k]
			events[rec.evIndex] = event{kind: evText, text: literalFor(rec.delim)}
		}
		stack = stack[:m+1]
	}
	// findOpen returns the index of the topmost open candidate for delim.
	// Inline candidates never match across a blockquote boundary, so the
	// search stops at ">" entries unless that is what is being sought.
	findOpen := func(delim string) int {
		for k := len(stack) - 1; k >= 0; k-- {
			if stack[k].delim == delim {
				return k
			}
			if stack[k].delim == ">" {
				break
			}
		}
		return -1
	}

	for _, t := range toks {
		switch t.kind {
		case tokText:
			events = append(events, event{kind: evText, text: t.text})

		case tokCode:
			events = append(events, event{kind: evCode, text: t.text})

		case tokPre:
			events = append(events, event{kind: evPre, text: t.text, lang: t.lang})

		case tokQuoteOpen:
			stack = append(stack, openRec{evIndex: len(events), delim: ">"})
			events = append(events, event{kind: evOpen, entity: types.KindBlockquote})

		case tokQuoteClose:
			// Inline delimiters never span out of a quote.
			if m := findOpen(">"); m >= 0 {
				demoteAbove(m)
				stack = stack[:m]
				events = append(events, event{kind: evClose})
			}

		case tokDelim:
			m := findOpen(t.text)
			switch {
			case m >= 0 && t.canClose:
				demoteAbove(m)
				rec := stack[m]
				stack = stack[:m]
				events[rec.evIndex] = event{kind: evOpen, entity: entityForDelim(t.text)}
				events = append(events, event{kind: evClose})
			case t.canOpen && len(stack) < cfg.MaxNestingDepth:
				stack = append(stack, openRec{evIndex: len(events), delim: t.text})
				events = append(events, event{kind: evText, text: t.text}) // placeholder until closed
			default:
				events = append(events, event{kind: evText, text: t.text})
			}

		case tokLinkOpen:
			if len(stack) < cfg.MaxNestingDepth {
				stack = append(stack, openRec{evIndex: len(events), delim: "["})
				events = append(events, event{kind: evText, text: "["}) // placeholder until closed
			} else {
				events = append(events, event{kind: evText, text: "["})
			}

		case tokLinkClose:
			m := findOpen("[")
			if m < 0 {
				events = append(events, event{kind: evText, text: "](" + t.url + ")"})
				continue
			}
			open := resolveLink(t.url, cfg)
			if open.entity == "" {
				// Not a usable link target; both halves stay literal.
				demoteAbove(m)
				stack = stack[:m]
				events = append(events, event{kind: evText, text: "](" + t.url + ")"})
				continue
			}
			demoteAbove(m)
			rec := stack[m]
			stack = stack[:m]
			events[rec.evIndex] = open
			events = append(events, event{kind: evClose})
		}
	}

	// Anything still open at end of input degrades to literal text.
	for k := len(stack) - 1; k >= 0; k-- {
		rec := stack[k]
		events[rec.evIndex] = event{kind: evText, text: literalFor(rec.delim)}
	}

	return events
}

// resolveLink classifies a link target into its entity kind, applying the
// spoiler, custom emoji and mention special forms when active.
func resolveLink(url string, cfg Config) event {
	if url == "" {
		return event{}
	}
	if cfg.SpoilerLinks && url == spoilerURL {
		return event{kind: evOpen, entity: types.KindSpoiler}
	}
	if cfg.CustomEmojiLinks {
		if id := EmojiDocumentID(url); id != "" {
			return event{kind: evOpen, entity: types.KindCustomEmoji, emojiID: id}
		}
	}
	if cfg.MentionLinks {
		if id := MentionUserID(url); id != "" {
			return event{kind: evOpen, entity: types.KindMention, userID: id}
		}
	}
	return event{kind: evOpen, entity: types.KindTextLink, url: decodeLinkTarget(url)}
}

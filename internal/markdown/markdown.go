// Package markdown implements the entity markup dialect: a markdown
// flavored syntax that parses into plain text plus UTF-16-addressed
// formatting entities, and renders back from them.
//
// Parse is total: markup that cannot be resolved degrades to literal text
// instead of failing. Render is the inverse and satisfies the round-trip
// law parse(render(ft)) == ft for canonical parser output.
package markdown

import "strings"

// Config selects which entity mappings are active and bounds nesting.
// It is passed per call; there is no package-level dialect state.
type Config struct {
	// MaxNestingDepth caps the open-delimiter stack. Delimiters opened
	// beyond the cap are treated as literal text. Zero means the default
	// of 32.
	MaxNestingDepth int

	// SpoilerLinks maps [text](spoiler) to a spoiler entity.
	SpoilerLinks bool
	// CustomEmojiLinks maps [text](emoji/<digits>) and
	// [text](tg://emoji?id=<digits>) to a custom_emoji entity.
	CustomEmojiLinks bool
	// MentionLinks maps [text](tg://user?id=<digits>) to a text_mention
	// entity.
	MentionLinks bool
}

// DefaultMaxNestingDepth bounds delimiter nesting unless overridden.
const DefaultMaxNestingDepth = 32

// DefaultConfig returns the dialect configuration with all special link
// forms active.
func DefaultConfig() Config {
	return Config{
		MaxNestingDepth:  DefaultMaxNestingDepth,
		SpoilerLinks:     true,
		CustomEmojiLinks: true,
		MentionLinks:     true,
	}
}

func (c Config) normalized() Config {
	if c.MaxNestingDepth <= 0 {
		c.MaxNestingDepth = DefaultMaxNestingDepth
	}
	return c
}

const (
	spoilerURL     = "spoiler"
	emojiURLPrefix = "emoji/"
	// Deep-link targets Telegram itself uses for emoji and users.
	// Accepted alongside the short forms.
	tgEmojiPrefix   = "tg://emoji?id="
	mentionPrefix   = "tg://user?id="
	tgEmojiIDLength = 19
)

// EmojiDocumentID extracts the custom emoji document id from a link URL,
// or returns "" when the URL is not an emoji link.
func EmojiDocumentID(url string) string {
	if id, ok := strings.CutPrefix(url, emojiURLPrefix); ok && isDigits(id) {
		return id
	}
	if id, ok := strings.CutPrefix(url, tgEmojiPrefix); ok && len(id) == tgEmojiIDLength && isDigits(id) {
		return id
	}
	return ""
}

// MentionUserID extracts the user id from a mention deep link, or
// returns "" when the URL is not a mention.
func MentionUserID(url string) string {
	if id, ok := strings.CutPrefix(url, mentionPrefix); ok && isDigits(id) {
		return id
	}
	return ""
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(s) > 0
}

package types

// Entity kinds. Values match the Telegram Bot API entity type names so a
// FormattedText can be serialized for the wire without translation.
const (
	KindBold                 = "bold"
	KindItalic               = "italic"
	KindUnderline            = "underline"
	KindStrikethrough        = "strikethrough"
	KindCode                 = "code"
	KindPre                  = "pre"
	KindTextLink             = "text_link"
	KindMention              = "text_mention"
	KindSpoiler              = "spoiler"
	KindCustomEmoji          = "custom_emoji"
	KindBlockquote           = "blockquote"
	KindExpandableBlockquote = "expandable_blockquote"
)

// Entity is a single formatting span over a plain-text buffer.
//
// Offset and Length are measured in UTF-16 code units, not bytes or runes.
// Characters outside the Basic Multilingual Plane occupy two code units.
type Entity struct {
	Type          string `json:"type"`
	Offset        int    `json:"offset"`
	Length        int    `json:"length"`
	URL           string `json:"url,omitempty"`
	Language      string `json:"language,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	CustomEmojiID string `json:"custom_emoji_id,omitempty"`
}

// End returns the exclusive end offset of the entity.
func (e Entity) End() int {
	return e.Offset + e.Length
}

// Payload returns the data carried by the entity, if any. Only pre,
// text_link, text_mention and custom_emoji entities carry a payload.
func (e Entity) Payload() string {
	switch e.Type {
	case KindPre:
		return e.Language
	case KindTextLink:
		return e.URL
	case KindMention:
		return e.UserID
	case KindCustomEmoji:
		return e.CustomEmojiID
	}
	return ""
}

// ToDict converts the entity to a generic map, omitting empty payload
// fields. Useful for callers that serialize entities by hand.
func (e Entity) ToDict() map[string]interface{} {
	result := map[string]interface{}{
		"type":   e.Type,
		"offset": e.Offset,
		"length": e.Length,
	}
	if e.URL != "" {
		result["url"] = e.URL
	}
	if e.Language != "" {
		result["language"] = e.Language
	}
	if e.UserID != "" {
		result["user_id"] = e.UserID
	}
	if e.CustomEmojiID != "" {
		result["custom_emoji_id"] = e.CustomEmojiID
	}
	return result
}

// FormattedText pairs a plain-text buffer with the entities spanning it.
// In canonical form the entities are sorted by offset ascending, then
// length descending, then type and payload for full ties.
type FormattedText struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// Symbol defines the display glyphs used by the GFM importer for elements
// that have no entity representation of their own.
type Symbol struct {
	HeadingLevel1   string
	HeadingLevel2   string
	HeadingLevel3   string
	HeadingLevel4   string
	HeadingLevel5   string
	HeadingLevel6   string
	Image           string
	TaskCompleted   string
	TaskUncompleted string
}

// DefaultSymbol returns the default glyph set.
func DefaultSymbol() *Symbol {
	return &Symbol{
		HeadingLevel1:   "📌",
		HeadingLevel2:   "📝",
		HeadingLevel3:   "📋",
		HeadingLevel4:   "📄",
		HeadingLevel5:   "📃",
		HeadingLevel6:   "🔖",
		Image:           "🖼",
		TaskCompleted:   "✅",
		TaskUncompleted: "☑️",
	}
}

// RenderConfig controls the GFM importer.
type RenderConfig struct {
	MarkdownSymbol *Symbol
	// CiteExpandable upgrades blockquotes longer than 200 code units to
	// expandable_blockquote entities.
	CiteExpandable bool
}

// DefaultRenderConfig returns the default GFM importer configuration.
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		MarkdownSymbol: DefaultSymbol(),
		CiteExpandable: true,
	}
}

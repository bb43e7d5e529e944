package tgmarkup

// DefaultMaxMessageLength is the chunk size BuildMessages uses when the
// caller passes a non-positive maximum. It matches the Telegram text
// message limit, but nothing in the engine depends on that.
const DefaultMaxMessageLength = 4096

// Message is a send-ready chunk of a FormattedText.
type Message struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities,omitempty"`
}

// BuildMessages splits ft into messages of at most max UTF-16 code
// units, preferring newline boundaries. Each chunk is trimmed of
// leading and trailing newlines with its entities adjusted, and chunks
// left empty by trimming are dropped.
func BuildMessages(ft FormattedText, max int) []Message {
	if max <= 0 {
		max = DefaultMaxMessageLength
	}

	var msgs []Message
	for _, chunk := range SplitEntities(ft.Text, ft.Entities, max) {
		text, entities := stripNewlines(chunk.Text, chunk.Entities)
		if text == "" {
			continue
		}
		Canonicalize(entities)
		msgs = append(msgs, Message{Text: text, Entities: entities})
	}
	return msgs
}

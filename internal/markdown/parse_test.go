package markdown

import (
	"testing"

	"github.com/tgmarkup/tgmarkup-go/internal/codeunit"
	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

// findEntity returns the first entity of the given type.
func findEntity(entities []types.Entity, etype string) *types.Entity {
	for i := range entities {
		if entities[i].Type == etype {
			return &entities[i]
		}
	}
	return nil
}

// entityText extracts the substring an entity spans.
func entityText(text string, e *types.Entity) string {
	return codeunit.Slice(text, e.Offset, e.End())
}

func TestParse_Bold(t *testing.T) {
	ft := Parse("**hello**", DefaultConfig())
	if ft.Text != "hello" {
		t.Fatalf("text = %q, want %q", ft.Text, "hello")
	}
	bold := findEntity(ft.Entities, types.KindBold)
	if bold == nil {
		t.Fatal("missing bold entity")
	}
	if bold.Offset != 0 || bold.Length != 5 {
		t.Errorf("bold span = (%d,%d), want (0,5)", bold.Offset, bold.Length)
	}
}

func TestParse_Italic(t *testing.T) {
	for _, src := range []string{"*hello*", "_hello_"} {
		ft := Parse(src, DefaultConfig())
		if ft.Text != "hello" {
			t.Errorf("Parse(%q) text = %q, want %q", src, ft.Text, "hello")
		}
		if findEntity(ft.Entities, types.KindItalic) == nil {
			t.Errorf("Parse(%q): missing italic entity", src)
		}
	}
}

func TestParse_Underline(t *testing.T) {
	ft := Parse("__hello__", DefaultConfig())
	u := findEntity(ft.Entities, types.KindUnderline)
	if u == nil {
		t.Fatal("missing underline entity")
	}
	if entityText(ft.Text, u) != "hello" {
		t.Errorf("underline text = %q, want %q", entityText(ft.Text, u), "hello")
	}
}

func TestParse_Strikethrough(t *testing.T) {
	ft := Parse("~~gone~~", DefaultConfig())
	if findEntity(ft.Entities, types.KindStrikethrough) == nil {
		t.Fatal("missing strikethrough entity")
	}
	if ft.Text != "gone" {
		t.Errorf("text = %q, want %q", ft.Text, "gone")
	}
}

func TestParse_BoldUnderlineNesting(t *testing.T) {
	ft := Parse("**__bold underline__**", DefaultConfig())
	if ft.Text != "bold underline" {
		t.Fatalf("text = %q, want %q", ft.Text, "bold underline")
	}
	if len(ft.Entities) != 2 {
		t.Fatalf("entity count = %d, want 2", len(ft.Entities))
	}
	// Canonical order puts bold before underline on a full span tie.
	if ft.Entities[0].Type != types.KindBold || ft.Entities[1].Type != types.KindUnderline {
		t.Errorf("order = [%s, %s], want [bold, underline]", ft.Entities[0].Type, ft.Entities[1].Type)
	}
	for _, e := range ft.Entities {
		if e.Offset != 0 || e.Length != 14 {
			t.Errorf("%s span = (%d,%d), want (0,14)", e.Type, e.Offset, e.Length)
		}
	}
}

func TestParse_TripleStarNesting(t *testing.T) {
	ft := Parse("***x***", DefaultConfig())
	if ft.Text != "x" {
		t.Fatalf("text = %q, want %q", ft.Text, "x")
	}
	if findEntity(ft.Entities, types.KindBold) == nil || findEntity(ft.Entities, types.KindItalic) == nil {
		t.Fatalf("entities = %v, want bold and italic", ft.Entities)
	}
}

func TestParse_CodeMasking(t *testing.T) {
	ft := Parse("`**not bold**`", DefaultConfig())
	if ft.Text != "**not bold**" {
		t.Fatalf("text = %q, want %q", ft.Text, "**not bold**")
	}
	if len(ft.Entities) != 1 || ft.Entities[0].Type != types.KindCode {
		t.Fatalf("entities = %v, want a single code entity", ft.Entities)
	}
	if ft.Entities[0].Offset != 0 || ft.Entities[0].Length != 12 {
		t.Errorf("code span = (%d,%d), want (0,12)", ft.Entities[0].Offset, ft.Entities[0].Length)
	}
}

func TestParse_Pre(t *testing.T) {
	ft := Parse("```go\nfmt.Println()\n```", DefaultConfig())
	if ft.Text != "fmt.Println()" {
		t.Fatalf("text = %q", ft.Text)
	}
	pre := findEntity(ft.Entities, types.KindPre)
	if pre == nil {
		t.Fatal("missing pre entity")
	}
	if pre.Language != "go" {
		t.Errorf("language = %q, want %q", pre.Language, "go")
	}
}

func TestParse_PreNoLanguage(t *testing.T) {
	ft := Parse("```\nraw\n```", DefaultConfig())
	pre := findEntity(ft.Entities, types.KindPre)
	if pre == nil {
		t.Fatal("missing pre entity")
	}
	if pre.Language != "" {
		t.Errorf("language = %q, want empty", pre.Language)
	}
}

func TestParse_UnterminatedFence(t *testing.T) {
	ft := Parse("```go\ncode", DefaultConfig())
	if ft.Text != "```go\ncode" {
		t.Fatalf("text = %q, want the literal source", ft.Text)
	}
	if len(ft.Entities) != 0 {
		t.Errorf("entities = %v, want none", ft.Entities)
	}
}

func TestParse_EmojiOffset(t *testing.T) {
	// The pushpin is outside the BMP and counts as 2 code units.
	ft := Parse("📌 **bold**", DefaultConfig())
	bold := findEntity(ft.Entities, types.KindBold)
	if bold == nil {
		t.Fatal("missing bold entity")
	}
	if bold.Offset != 3 {
		t.Errorf("bold offset = %d, want 3", bold.Offset)
	}
	if entityText(ft.Text, bold) != "bold" {
		t.Errorf("bold text = %q, want %q", entityText(ft.Text, bold), "bold")
	}
}

func TestParse_ItalicWhitespaceAdjacency(t *testing.T) {
	for _, src := range []string{"* item", "a * b * c"} {
		ft := Parse(src, DefaultConfig())
		if ft.Text != src {
			t.Errorf("Parse(%q) text = %q, want unchanged", src, ft.Text)
		}
		if len(ft.Entities) != 0 {
			t.Errorf("Parse(%q) entities = %v, want none", src, ft.Entities)
		}
	}
}

func TestParse_OverlapTieBreak(t *testing.T) {
	// The earliest-opened, earliest-closed pairing wins; the orphaned
	// single star stays literal.
	ft := Parse("**a*b**c*", DefaultConfig())
	if ft.Text != "a*bc*" {
		t.Fatalf("text = %q, want %q", ft.Text, "a*bc*")
	}
	if len(ft.Entities) != 1 || ft.Entities[0].Type != types.KindBold {
		t.Fatalf("entities = %v, want a single bold", ft.Entities)
	}
	if entityText(ft.Text, &ft.Entities[0]) != "a*b" {
		t.Errorf("bold text = %q, want %q", entityText(ft.Text, &ft.Entities[0]), "a*b")
	}
}

func TestParse_UnmatchedDelimiterLiteral(t *testing.T) {
	ft := Parse("**a", DefaultConfig())
	if ft.Text != "**a" || len(ft.Entities) != 0 {
		t.Errorf("got (%q, %v), want literal text and no entities", ft.Text, ft.Entities)
	}
}

func TestParse_AdjacentSameKindStaySeparate(t *testing.T) {
	ft := Parse("**a****b**", DefaultConfig())
	if ft.Text != "ab" {
		t.Fatalf("text = %q, want %q", ft.Text, "ab")
	}
	if len(ft.Entities) != 2 {
		t.Fatalf("entity count = %d, want 2 separate bold spans", len(ft.Entities))
	}
	if ft.Entities[0].Length != 1 || ft.Entities[1].Length != 1 {
		t.Errorf("entities = %v, want two length-1 spans", ft.Entities)
	}
}

func TestParse_SpoilerLink(t *testing.T) {
	ft := Parse("[text](spoiler)", DefaultConfig())
	sp := findEntity(ft.Entities, types.KindSpoiler)
	if sp == nil {
		t.Fatal("missing spoiler entity")
	}
	if ft.Text != "text" || sp.Offset != 0 || sp.Length != 4 {
		t.Errorf("got (%q, %v)", ft.Text, sp)
	}
}

func TestParse_SpoilerLinkDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpoilerLinks = false
	ft := Parse("[text](spoiler)", cfg)
	link := findEntity(ft.Entities, types.KindTextLink)
	if link == nil {
		t.Fatal("missing text_link entity")
	}
	if link.URL != "spoiler" {
		t.Errorf("url = %q, want %q", link.URL, "spoiler")
	}
}

func TestParse_CustomEmojiLink(t *testing.T) {
	ft := Parse("[😀](emoji/123)", DefaultConfig())
	em := findEntity(ft.Entities, types.KindCustomEmoji)
	if em == nil {
		t.Fatal("missing custom_emoji entity")
	}
	if em.CustomEmojiID != "123" {
		t.Errorf("document id = %q, want %q", em.CustomEmojiID, "123")
	}
	if em.Offset != 0 || em.Length != 2 {
		t.Errorf("span = (%d,%d), want (0,2)", em.Offset, em.Length)
	}
}

func TestParse_TelegramEmojiDeepLink(t *testing.T) {
	ft := Parse("[😀](tg://emoji?id=5368324170671202286)", DefaultConfig())
	em := findEntity(ft.Entities, types.KindCustomEmoji)
	if em == nil {
		t.Fatal("missing custom_emoji entity")
	}
	if em.CustomEmojiID != "5368324170671202286" {
		t.Errorf("document id = %q", em.CustomEmojiID)
	}
}

func TestParse_MentionLink(t *testing.T) {
	ft := Parse("[Ann](tg://user?id=42)", DefaultConfig())
	m := findEntity(ft.Entities, types.KindMention)
	if m == nil {
		t.Fatal("missing text_mention entity")
	}
	if m.UserID != "42" {
		t.Errorf("user id = %q, want %q", m.UserID, "42")
	}
	if ft.Text != "Ann" {
		t.Errorf("text = %q, want %q", ft.Text, "Ann")
	}
}

func TestParse_TextLink(t *testing.T) {
	ft := Parse("[site](https://example.com)", DefaultConfig())
	link := findEntity(ft.Entities, types.KindTextLink)
	if link == nil {
		t.Fatal("missing text_link entity")
	}
	if link.URL != "https://example.com" {
		t.Errorf("url = %q", link.URL)
	}
}

func TestParse_LinkTargetParenDecoding(t *testing.T) {
	ft := Parse("[x](https://e.com/a%28b%29)", DefaultConfig())
	link := findEntity(ft.Entities, types.KindTextLink)
	if link == nil {
		t.Fatal("missing text_link entity")
	}
	if link.URL != "https://e.com/a(b)" {
		t.Errorf("url = %q, want decoded parens", link.URL)
	}
}

func TestParse_Blockquote(t *testing.T) {
	ft := Parse("> one\n> two\nplain", DefaultConfig())
	if ft.Text != "one\ntwo\nplain" {
		t.Fatalf("text = %q", ft.Text)
	}
	q := findEntity(ft.Entities, types.KindBlockquote)
	if q == nil {
		t.Fatal("missing blockquote entity")
	}
	if q.Offset != 0 || q.Length != 7 {
		t.Errorf("quote span = (%d,%d), want (0,7)", q.Offset, q.Length)
	}
}

func TestParse_QuoteBoundsInlineSpans(t *testing.T) {
	// A delimiter opened inside a quote cannot close outside it.
	ft := Parse("> **a\nb**", DefaultConfig())
	if findEntity(ft.Entities, types.KindBold) != nil {
		t.Fatal("bold must not span out of the blockquote")
	}
	q := findEntity(ft.Entities, types.KindBlockquote)
	if q == nil {
		t.Fatal("missing blockquote entity")
	}
	if entityText(ft.Text, q) != "**a" {
		t.Errorf("quote text = %q, want %q", entityText(ft.Text, q), "**a")
	}
}

func TestParse_BackslashEscapes(t *testing.T) {
	ft := Parse(`\*not italic\*`, DefaultConfig())
	if ft.Text != "*not italic*" {
		t.Fatalf("text = %q, want %q", ft.Text, "*not italic*")
	}
	if len(ft.Entities) != 0 {
		t.Errorf("entities = %v, want none", ft.Entities)
	}
}

func TestParse_MaxNestingDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNestingDepth = 1
	ft := Parse("**a *b* c**", cfg)
	if findEntity(ft.Entities, types.KindItalic) != nil {
		t.Fatal("italic beyond the depth cap should stay literal")
	}
	bold := findEntity(ft.Entities, types.KindBold)
	if bold == nil {
		t.Fatal("missing bold entity")
	}
	if entityText(ft.Text, bold) != "a *b* c" {
		t.Errorf("bold text = %q", entityText(ft.Text, bold))
	}
}

func TestParse_OffsetsWithinBounds(t *testing.T) {
	sources := []string{
		"**b** 📌 *i* `c` [l](https://e.com)",
		"> 😀 quoted **bold**\nplain ~~s~~",
		"```py\nprint(1)\n```\ntail __u__",
	}
	for _, src := range sources {
		ft := Parse(src, DefaultConfig())
		total := codeunit.Len(ft.Text)
		for _, e := range ft.Entities {
			if e.Offset < 0 || e.End() > total {
				t.Errorf("Parse(%q): entity %v out of bounds (total %d)", src, e, total)
			}
		}
	}
}

func TestParse_LaminarInvariant(t *testing.T) {
	sources := []string{
		"**a __b__ c** and *d*",
		"**a*b**c*",
		"> **q** line\n> more",
		"***x*** `y` ~~z~~",
	}
	for _, src := range sources {
		ft := Parse(src, DefaultConfig())
		for i, a := range ft.Entities {
			for _, b := range ft.Entities[i+1:] {
				disjoint := a.End() <= b.Offset || b.End() <= a.Offset
				aInB := b.Offset <= a.Offset && a.End() <= b.End()
				bInA := a.Offset <= b.Offset && b.End() <= a.End()
				if !disjoint && !aInB && !bInA {
					t.Errorf("Parse(%q): partial overlap between %v and %v", src, a, b)
				}
			}
		}
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	a := []types.Entity{
		{Type: types.KindUnderline, Offset: 0, Length: 14},
		{Type: types.KindBold, Offset: 0, Length: 14},
		{Type: types.KindItalic, Offset: 2, Length: 3},
	}
	b := []types.Entity{a[2], a[0], a[1]}
	Canonicalize(a)
	Canonicalize(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("canonical order differs: %v vs %v", a, b)
		}
	}
	if a[0].Type != types.KindBold || a[1].Type != types.KindUnderline {
		t.Errorf("tie order = [%s, %s], want [bold, underline]", a[0].Type, a[1].Type)
	}
}

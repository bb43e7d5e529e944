package gfm

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/tgmarkup/tgmarkup-go/internal/buffer"
	"github.com/tgmarkup/tgmarkup-go/internal/markdown"
	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

// expandableThreshold is the blockquote length, in code units, past which
// CiteExpandable upgrades the entity to expandable_blockquote.
const expandableThreshold = 200

// scope is an entity whose start offset is known but whose end is not yet.
type scope struct {
	kind    string
	start   int
	url     string
	userID  string
	emojiID string
}

// walker turns a goldmark AST traversal into a text buffer and a flat
// entity list. Inline formatting becomes entities; block structure with
// no entity equivalent becomes glyph-decorated text.
type walker struct {
	buf      *buffer.TextBuffer
	source   []byte
	stack    []scope
	entities []types.Entity
	config   *types.RenderConfig

	blockCount int
	listStack  []*int // nil entry = unordered, otherwise next ordinal
	itemIndent string

	quoteScopes []scope

	inTableCell bool
	cellParts   []string
	currentRow  []string
	tableRows   [][]string

	headingKinds []string
}

func newWalker(source []byte, config *types.RenderConfig) *walker {
	return &walker{
		buf:    buffer.New(),
		source: source,
		config: config,
	}
}

func (w *walker) result() types.FormattedText {
	return types.FormattedText{Text: w.buf.String(), Entities: w.entities}
}

func (w *walker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Document:
		if !entering && w.config.CiteExpandable {
			for i := range w.entities {
				if w.entities[i].Type == types.KindBlockquote && w.entities[i].Length > expandableThreshold {
					w.entities[i].Type = types.KindExpandableBlockquote
				}
			}
		}

	case *ast.Text:
		if entering {
			w.onText(n.Segment, n.SoftLineBreak() || n.HardLineBreak())
		}

	case *ast.String:
		if entering {
			w.writeInline(string(n.Value))
		}

	case *ast.CodeSpan:
		if entering {
			w.onCodeSpan(n)
			return ast.WalkSkipChildren, nil
		}

	case *ast.Emphasis:
		kind := types.KindItalic
		if n.Level == 2 {
			kind = types.KindBold
		}
		if entering {
			w.push(scope{kind: kind})
		} else {
			w.pop(kind)
		}

	case *east.Strikethrough:
		if entering {
			w.push(scope{kind: types.KindStrikethrough})
		} else {
			w.pop(types.KindStrikethrough)
		}

	case *ast.Link:
		if entering {
			w.onLinkStart(string(n.Destination))
		} else {
			w.popAny()
		}

	case *ast.Image:
		if entering {
			w.onImageStart(string(n.Destination))
		} else {
			w.popAny()
		}

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(w.source))
			start := w.buf.UTF16Offset()
			w.buf.Write(url)
			w.emit(scope{kind: types.KindTextLink, start: start, url: url})
			return ast.WalkSkipChildren, nil
		}

	case *ast.Paragraph:
		if entering {
			if len(w.listStack) == 0 {
				w.blockSpacing()
			}
		} else if len(w.listStack) == 0 {
			w.blockCount++
		} else if w.buf.TrailingNewlineCount() == 0 {
			// Loose list item paragraphs each end on their own line.
			w.buf.Write("\n")
		}

	case *ast.Heading:
		if entering {
			w.onHeadingStart(n.Level)
		} else {
			w.onHeadingEnd()
		}

	case *ast.Blockquote:
		if entering {
			w.blockSpacing()
			w.quoteScopes = append(w.quoteScopes, scope{kind: types.KindBlockquote, start: w.buf.UTF16Offset()})
		} else {
			last := len(w.quoteScopes) - 1
			w.emit(w.quoteScopes[last])
			w.quoteScopes = w.quoteScopes[:last]
			w.blockCount++
		}

	case *ast.List:
		if entering {
			if len(w.listStack) == 0 {
				w.blockSpacing()
			}
			if n.IsOrdered() {
				next := n.Start
				w.listStack = append(w.listStack, &next)
			} else {
				w.listStack = append(w.listStack, nil)
			}
		} else {
			w.listStack = w.listStack[:len(w.listStack)-1]
			if len(w.listStack) == 0 {
				w.blockCount++
			}
		}

	case *ast.ListItem:
		if entering {
			w.onItemStart()
		} else if w.buf.TrailingNewlineCount() == 0 {
			w.buf.Write("\n")
		}

	case *east.TaskCheckBox:
		if entering {
			w.onTaskBox(n.IsChecked)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			w.onCodeBlock(node)
			return ast.WalkSkipChildren, nil
		}

	case *ast.ThematicBreak:
		if entering {
			w.blockSpacing()
			w.buf.Write("————————")
			w.blockCount++
		}

	case *ast.HTMLBlock:
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			w.onRawHTML(n)
		}

	case *east.Table:
		if entering {
			w.blockSpacing()
			w.tableRows = nil
		} else {
			w.onTableEnd()
		}

	case *east.TableHeader, *east.TableRow:
		if entering {
			w.currentRow = nil
		} else {
			w.tableRows = append(w.tableRows, w.currentRow)
			w.currentRow = nil
		}

	case *east.TableCell:
		if entering {
			w.cellParts = nil
			w.inTableCell = true
		} else {
			w.currentRow = append(w.currentRow, strings.Join(w.cellParts, ""))
			w.cellParts = nil
			w.inTableCell = false
		}
	}

	return ast.WalkContinue, nil
}

func (w *walker) onText(seg text.Segment, lineBreak bool) {
	content := string(seg.Value(w.source))
	if w.inTableCell {
		w.cellParts = append(w.cellParts, content)
		if lineBreak {
			w.cellParts = append(w.cellParts, " ")
		}
		return
	}
	if lineBreak {
		content += "\n"
	}
	w.buf.Write(content)
}

func (w *walker) writeInline(content string) {
	if w.inTableCell {
		w.cellParts = append(w.cellParts, content)
		return
	}
	w.buf.Write(content)
}

func (w *walker) onCodeSpan(n *ast.CodeSpan) {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(w.source))
		}
	}
	code := b.String()
	if w.inTableCell {
		w.cellParts = append(w.cellParts, code)
		return
	}
	start := w.buf.UTF16Offset()
	w.buf.Write(code)
	w.emit(scope{kind: types.KindCode, start: start})
}

func (w *walker) onRawHTML(n *ast.RawHTML) {
	tag := strings.TrimSpace(strings.ToLower(string(n.Segments.Value(w.source))))
	switch tag {
	case "<tg-spoiler>":
		w.push(scope{kind: types.KindSpoiler})
	case "</tg-spoiler>":
		w.pop(types.KindSpoiler)
	}
	// Any other inline HTML is dropped.
}

var headingKindsByLevel = map[int][]string{
	1: {types.KindBold, types.KindUnderline},
	2: {types.KindBold, types.KindUnderline},
	3: {types.KindBold},
	4: {types.KindBold},
	5: {types.KindItalic},
	6: {types.KindItalic},
}

func (w *walker) onHeadingStart(level int) {
	w.blockSpacing()

	sym := w.config.MarkdownSymbol
	glyphs := []string{
		sym.HeadingLevel1, sym.HeadingLevel2, sym.HeadingLevel3,
		sym.HeadingLevel4, sym.HeadingLevel5, sym.HeadingLevel6,
	}
	glyph := glyphs[level-1]
	if glyph != "" {
		w.buf.Write(glyph + " ")
	}

	w.headingKinds = headingKindsByLevel[level]
	if w.headingKinds == nil {
		w.headingKinds = []string{types.KindBold}
	}
	for _, kind := range w.headingKinds {
		w.push(scope{kind: kind})
	}
}

func (w *walker) onHeadingEnd() {
	for i := len(w.headingKinds) - 1; i >= 0; i-- {
		w.pop(w.headingKinds[i])
	}
	w.headingKinds = nil
	w.blockCount++
}

func (w *walker) onCodeBlock(node ast.Node) {
	lang := ""
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		lang = string(fenced.Language(w.source))
	}
	lang = strings.TrimSpace(strings.Split(lang, ",")[0])

	var parts []string
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, string(seg.Value(w.source)))
	}
	raw := strings.TrimSuffix(strings.Join(parts, ""), "\n")

	w.blockSpacing()
	start := w.buf.UTF16Offset()
	w.buf.Write(raw)
	if length := w.buf.UTF16Offset() - start; length > 0 {
		w.entities = append(w.entities, types.Entity{
			Type:     types.KindPre,
			Offset:   start,
			Length:   length,
			Language: lang,
		})
	}
	w.blockCount++
}

func (w *walker) onLinkStart(dest string) {
	if id := markdown.EmojiDocumentID(dest); id != "" {
		w.push(scope{kind: types.KindCustomEmoji, emojiID: id})
		return
	}
	if id := markdown.MentionUserID(dest); id != "" {
		w.push(scope{kind: types.KindMention, userID: id})
		return
	}
	if dest == "" {
		// Link with no destination renders as plain text.
		w.push(scope{kind: ""})
		return
	}
	w.push(scope{kind: types.KindTextLink, url: dest})
}

func (w *walker) onImageStart(dest string) {
	if id := markdown.EmojiDocumentID(dest); id != "" {
		w.push(scope{kind: types.KindCustomEmoji, emojiID: id})
		return
	}
	w.buf.Write(w.config.MarkdownSymbol.Image)
	w.push(scope{kind: types.KindTextLink, url: dest})
}

func (w *walker) onItemStart() {
	depth := len(w.listStack)
	indent := strings.Repeat("  ", depth-1)
	if w.buf.ByteOffset() > 0 && w.buf.TrailingNewlineCount() == 0 {
		w.buf.Write("\n")
	}
	w.itemIndent = indent

	counter := w.listStack[depth-1]
	if counter != nil {
		w.buf.Write(fmt.Sprintf("%s%d. ", indent, *counter))
		*counter++
	} else {
		w.buf.Write(indent + "⦁ ")
	}
}

// onTaskBox replaces the bullet just written by onItemStart with a task
// marker glyph.
func (w *walker) onTaskBox(checked bool) {
	w.buf.PopLast()
	glyph := w.config.MarkdownSymbol.TaskUncompleted
	if checked {
		glyph = w.config.MarkdownSymbol.TaskCompleted
	}
	w.buf.Write(w.itemIndent + glyph + " ")
}

// onTableEnd renders the collected rows as a monospace grid under a
// single pre entity.
func (w *walker) onTableEnd() {
	grid := formatTable(w.tableRows)
	start := w.buf.UTF16Offset()
	w.buf.Write(grid)
	w.emit(scope{kind: types.KindPre, start: start})
	w.tableRows = nil
	w.blockCount++
}

func formatTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var lines []string
	for rowIdx, row := range rows {
		cells := make([]string, cols)
		for i := range cells {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}
		lines = append(lines, strings.Join(cells, " | "))
		if rowIdx == 0 && len(rows) > 1 {
			seps := make([]string, cols)
			for i := range seps {
				seps[i] = strings.Repeat("-", widths[i])
			}
			lines = append(lines, strings.Join(seps, "-+-"))
		}
	}
	return strings.Join(lines, "\n")
}

// --- scope helpers ---

func (w *walker) push(s scope) {
	s.start = w.buf.UTF16Offset()
	w.stack = append(w.stack, s)
}

func (w *walker) pop(kind string) {
	for i := len(w.stack) - 1; i >= 0; i-- {
		if w.stack[i].kind == kind {
			s := w.stack[i]
			w.stack = append(w.stack[:i], w.stack[i+1:]...)
			w.emit(s)
			return
		}
	}
}

func (w *walker) popAny() {
	if len(w.stack) == 0 {
		return
	}
	s := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.emit(s)
}

func (w *walker) emit(s scope) {
	length := w.buf.UTF16Offset() - s.start
	if length <= 0 || s.kind == "" {
		return
	}
	w.entities = append(w.entities, types.Entity{
		Type:          s.kind,
		Offset:        s.start,
		Length:        length,
		URL:           s.url,
		UserID:        s.userID,
		CustomEmojiID: s.emojiID,
	})
}

func (w *walker) blockSpacing() {
	if w.blockCount == 0 {
		return
	}
	if need := 2 - w.buf.TrailingNewlineCount(); need > 0 {
		w.buf.Write(strings.Repeat("\n", need))
	}
}

// Package gfm imports GitHub Flavored Markdown documents into the entity
// model. Unlike the dialect parser, which round-trips its own syntax, the
// importer is one-way: block structure that entities cannot express
// (headings, lists, tables) is rendered as decorated plain text.
package gfm

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/tgmarkup/tgmarkup-go/internal/markdown"
	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

var standardOptions = []goldmark.Option{
	goldmark.WithExtensions(
		extension.GFM,
		extension.DefinitionList,
		extension.Footnote,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
}

// Import converts a GFM document into plain text plus entities. The
// returned entity set is canonical and laminar.
func Import(source string, config *types.RenderConfig) types.FormattedText {
	if config == nil {
		config = types.DefaultRenderConfig()
	}

	src := []byte(expandSpoilers(source))
	md := goldmark.New(standardOptions...)
	root := md.Parser().Parse(text.NewReader(src))

	w := newWalker(src, config)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		return w.walk(n, entering)
	})

	ft := w.result()
	markdown.Canonicalize(ft.Entities)
	return ft
}

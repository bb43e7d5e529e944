package tgmarkup

import (
	"github.com/tgmarkup/tgmarkup-go/internal/template"
)

// TemplateSyntaxError reports a malformed template: an unterminated
// block, a mismatched close tag, a malformed filter list, or nesting
// beyond the depth cap.
type TemplateSyntaxError = template.SyntaxError

// Filter is a named text transform applicable in template tags as
// {path|name} or {path|name:arg}.
type Filter = template.Filter

// Template is a compiled template. Compilation validates block
// structure; rendering is total and never fails. A Template is safe for
// concurrent use once filter registration is done.
type Template struct {
	nodes []template.Node
	reg   *template.Registry
}

// CompileTemplate parses template source. It returns a
// TemplateSyntaxError when the block structure is malformed.
func CompileTemplate(source string, opts ...Option) (*Template, error) {
	o := applyOptions(opts...)
	nodes, err := template.Compile(source, o.MaxNestingDepth)
	if err != nil {
		return nil, err
	}
	return &Template{
		nodes: nodes,
		reg:   template.NewRegistry(Logger),
	}, nil
}

// RegisterFilter adds or replaces a filter on this template. Not safe
// to call concurrently with Render.
func (t *Template) RegisterFilter(name string, f Filter) {
	t.reg.Register(name, f)
}

// Render evaluates the template against ctx. Evaluation is total:
// missing paths produce empty text, unknown filters are identity, loops
// over non-list values produce nothing.
func (t *Template) Render(ctx map[string]any) string {
	return template.Evaluate(t.nodes, ctx, t.reg)
}

// RenderMessage compiles and evaluates a template, then parses the
// result as dialect markup, yielding a send-ready FormattedText.
func RenderMessage(source string, ctx map[string]any, opts ...Option) (FormattedText, error) {
	t, err := CompileTemplate(source, opts...)
	if err != nil {
		return FormattedText{}, err
	}
	return Parse(t.Render(ctx), opts...), nil
}

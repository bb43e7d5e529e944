package template

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds conditional/loop nesting unless overridden.
const DefaultMaxDepth = 32

// SyntaxError reports a malformed template: an unterminated block, a
// close tag that does not match its nearest open block, a malformed
// filter list, or nesting beyond the depth cap. These are author
// mistakes, so they surface to the caller instead of degrading.
type SyntaxError struct {
	Pos int    // byte offset of the offending tag
	Tag string // tag content without braces
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d: %s in {%s}", e.Pos, e.Msg, e.Tag)
}

// Compile parses template source into a node tree. The grammar is LL(1)
// at the tag level: {path}, {path|filter:arg}, {?path}...{/path},
// {?!path}...{/path} and {#path}...{/path}. Text that does not form a
// valid tag stays literal.
func Compile(source string, maxDepth int) ([]Node, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{src: source, maxDepth: maxDepth}
	nodes, err := p.parseNodes("", 0, 0)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

type parser struct {
	src      string
	pos      int
	maxDepth int
}

// parseNodes parses until the close tag for openTag, or end of input at
// the top level. openPos is the offset of the open tag, for error
// reporting.
func (p *parser) parseNodes(openTag string, openPos, depth int) ([]Node, error) {
	var nodes []Node
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, &Literal{Text: lit.String()})
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		if p.src[p.pos] != '{' {
			lit.WriteByte(p.src[p.pos])
			p.pos++
			continue
		}

		rel := strings.IndexAny(p.src[p.pos+1:], "{}")
		if rel < 0 || p.src[p.pos+1+rel] == '{' {
			lit.WriteByte('{')
			p.pos++
			continue
		}
		content := p.src[p.pos+1 : p.pos+1+rel]
		tagPos := p.pos
		tagEnd := p.pos + rel + 2

		if content == "" {
			lit.WriteString("{}")
			p.pos = tagEnd
			continue
		}

		switch content[0] {
		case '/':
			name := content[1:]
			if openTag == "" {
				return nil, &SyntaxError{Pos: tagPos, Tag: content, Msg: "close tag without open block"}
			}
			if name != openTag {
				return nil, &SyntaxError{
					Pos: tagPos, Tag: content,
					Msg: fmt.Sprintf("close tag does not match open block %q", openTag),
				}
			}
			flush()
			p.pos = tagEnd
			return nodes, nil

		case '?':
			name, negated := strings.CutPrefix(content[1:], "!")
			if !validPath(name) {
				lit.WriteString("{" + content + "}")
				p.pos = tagEnd
				continue
			}
			if depth+1 > p.maxDepth {
				return nil, &SyntaxError{Pos: tagPos, Tag: content, Msg: "block nesting too deep"}
			}
			p.pos = tagEnd
			body, err := p.parseNodes(name, tagPos, depth+1)
			if err != nil {
				return nil, err
			}
			flush()
			nodes = append(nodes, &Conditional{Path: name, Negated: negated, Body: body})

		case '#':
			name := content[1:]
			if !validPath(name) {
				lit.WriteString("{" + content + "}")
				p.pos = tagEnd
				continue
			}
			if depth+1 > p.maxDepth {
				return nil, &SyntaxError{Pos: tagPos, Tag: content, Msg: "block nesting too deep"}
			}
			p.pos = tagEnd
			body, err := p.parseNodes(name, tagPos, depth+1)
			if err != nil {
				return nil, err
			}
			flush()
			nodes = append(nodes, &Loop{Path: name, Body: body})

		default:
			node, err := parseVariable(content, tagPos)
			if err != nil {
				return nil, err
			}
			if node == nil {
				lit.WriteString("{" + content + "}")
			} else {
				flush()
				nodes = append(nodes, node)
			}
			p.pos = tagEnd
		}
	}

	if openTag != "" {
		return nil, &SyntaxError{Pos: openPos, Tag: openTag, Msg: "block is never closed"}
	}
	flush()
	return nodes, nil
}

// parseVariable parses a {path|filter:arg|...} tag body. It returns
// (nil, nil) when the content is not a variable tag at all, and a
// SyntaxError when the path is valid but the filter list is malformed.
func parseVariable(content string, pos int) (Node, error) {
	parts := strings.Split(content, "|")
	path := strings.TrimSpace(parts[0])
	if !validPath(path) {
		return nil, nil
	}

	var filters []FilterCall
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &SyntaxError{Pos: pos, Tag: content, Msg: "empty filter name"}
		}
		name, arg, hasArg := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &SyntaxError{Pos: pos, Tag: content, Msg: "empty filter name"}
		}
		if hasArg {
			arg = strings.TrimSpace(arg)
			if arg == "" {
				return nil, &SyntaxError{Pos: pos, Tag: content, Msg: "empty filter argument"}
			}
			if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
				arg = arg[1 : len(arg)-1]
			}
		}
		filters = append(filters, FilterCall{Name: name, Arg: arg})
	}
	return &Variable{Path: path, Filters: filters}, nil
}

// validPath accepts the self token or dotted chains of identifier
// segments.
func validPath(path string) bool {
	if path == SelfToken {
		return true
	}
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9':
			case r == '_' || r == '-':
			default:
				return false
			}
		}
	}
	return true
}

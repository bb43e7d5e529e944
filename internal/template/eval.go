package template

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Evaluate walks a compiled node tree against a data context and returns
// the produced text. Evaluation is total: missing paths substitute empty
// text, unknown filters are identity, and loops over non-list values
// produce nothing. The tree is never mutated, so a compiled template may
// be evaluated concurrently.
func Evaluate(nodes []Node, ctx map[string]any, reg *Registry) string {
	var b strings.Builder
	evalNodes(&b, nodes, ctx, reg)
	return b.String()
}

func evalNodes(b *strings.Builder, nodes []Node, ctx map[string]any, reg *Registry) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Literal:
			b.WriteString(n.Text)

		case *Variable:
			s := Stringify(Resolve(ctx, n.Path))
			for _, f := range n.Filters {
				s = reg.Apply(f.Name, s, f.Arg)
			}
			b.WriteString(s)

		case *Conditional:
			if Truthy(Resolve(ctx, n.Path)) != n.Negated {
				evalNodes(b, n.Body, ctx, reg)
			}

		case *Loop:
			items := toList(Resolve(ctx, n.Path))
			for i, item := range items {
				child := childContext(ctx, item, i, len(items))
				evalNodes(b, n.Body, child, reg)
			}
		}
	}
}

// Resolve follows a dotted path through nested string-keyed maps. A
// missing or non-traversable segment yields nil.
func Resolve(ctx map[string]any, path string) any {
	if ctx == nil {
		return nil
	}
	if path == SelfToken {
		return ctx[SelfToken]
	}
	var cur any = ctx
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Stringify produces the canonical string form of a context value.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Truthy implements the template truth rules: absent values, false,
// empty text and empty lists are falsy; everything else, including
// numeric zero, is truthy.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			return rv.Len() > 0
		}
		return true
	}
}

// toList normalizes a value into a slice of items, or nil when the value
// is not a list.
func toList(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// childContext builds the per-iteration context: the parent shadowed by
// the loop item. Mapping items expose their fields directly; the self
// token always refers to the item. Position helpers index/first/last are
// available to the body; they shadow parent keys of the same name, and
// item fields in turn shadow the helpers.
func childContext(parent map[string]any, item any, i, n int) map[string]any {
	child := make(map[string]any, len(parent)+4)
	for k, v := range parent {
		child[k] = v
	}
	child[SelfToken] = item
	child["index"] = i
	child["first"] = i == 0
	child["last"] = i == n-1
	if m, ok := item.(map[string]any); ok {
		for k, v := range m {
			child[k] = v
		}
	}
	return child
}

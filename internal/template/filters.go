package template

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"github.com/tgmarkup/tgmarkup-go/internal/markdown"
)

// Filter is a pure text transform. arg carries the portion after ':' in
// the template tag, or "" when none was given.
type Filter func(value, arg string) string

// Registry maps filter names to transforms. The built-in set is
// installed by NewRegistry; callers may add their own. A Registry must
// not be mutated while evaluations that use it are in flight.
type Registry struct {
	logger  *slog.Logger
	filters map[string]Filter
}

// NewRegistry returns a registry with the built-in filters installed.
// Degraded filter applications (bad argument, unparseable date) are
// logged through logger at warn level; a nil logger discards them.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{
		logger:  logger,
		filters: make(map[string]Filter),
	}
	r.filters["upper"] = func(v, _ string) string { return strings.ToUpper(v) }
	r.filters["lower"] = func(v, _ string) string { return strings.ToLower(v) }
	r.filters["title"] = func(v, _ string) string { return titleCase(v) }
	r.filters["capitalize"] = func(v, _ string) string { return capitalize(v) }
	r.filters["strip"] = func(v, _ string) string { return strings.TrimSpace(v) }
	r.filters["truncate"] = r.truncate
	r.filters["date"] = r.date
	r.filters["default"] = func(v, arg string) string {
		if v == "" {
			return arg
		}
		return v
	}
	r.filters["escape_md"] = func(v, _ string) string { return markdown.Escape(v) }
	r.filters["comma"] = comma
	r.filters["size"] = size
	return r
}

// Register adds or replaces a filter.
func (r *Registry) Register(name string, f Filter) {
	r.filters[name] = f
}

// Apply runs the named filter over value. An unknown filter name is the
// identity transform, keeping evaluation total.
func (r *Registry) Apply(name, value, arg string) string {
	f, ok := r.filters[name]
	if !ok {
		return value
	}
	return f(value, arg)
}

const (
	defaultTruncateLength = 50
	ellipsis              = "..."
)

// truncate cuts the value to at most N Unicode scalar values, appending
// an ellipsis marker only when something was actually cut.
func (r *Registry) truncate(v, arg string) string {
	limit := defaultTruncateLength
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			r.logger.Warn("truncate filter: invalid length, using default", "arg", arg)
		} else {
			limit = n
		}
	}
	count := 0
	for i := range v {
		if count == limit {
			return v[:i] + ellipsis
		}
		count++
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// date formats an ISO-8601-ish value with a strftime format string
// (default %Y-%m-%d). A value that does not parse passes through
// unchanged.
func (r *Registry) date(v, arg string) string {
	if v == "" {
		return ""
	}
	format := arg
	if format == "" {
		format = "%Y-%m-%d"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return strftime.Format(format, t)
		}
	}
	r.logger.Warn("date filter: value is not a date", "value", v)
	return v
}

// comma groups the digits of a numeric value (1234567 -> 1,234,567).
func comma(v, _ string) string {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return humanize.Comma(n)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return humanize.Commaf(f)
	}
	return v
}

// size renders a byte count in human units (1048576 -> "1.0 MB").
func size(v, _ string) string {
	if n, err := strconv.ParseUint(v, 10, 64); err == nil {
		return humanize.Bytes(n)
	}
	return v
}

// titleCase uppercases the first letter of every word and lowercases the
// rest, treating any non-letter as a word boundary.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// capitalize uppercases the first letter and lowercases everything else.
func capitalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, r := range s {
		if first {
			b.WriteRune(unicode.ToUpper(r))
			first = false
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

package tgmarkup

import "github.com/tgmarkup/tgmarkup-go/internal/markdown"

// Options collects the per-call knobs of Parse, ImportGFM and the
// template entry points.
type Options struct {
	// MaxNestingDepth caps delimiter and template block nesting. Zero
	// means the default of 32.
	MaxNestingDepth int

	// SpoilerLinks, CustomEmojiLinks and MentionLinks toggle the special
	// link target forms of the dialect.
	SpoilerLinks     bool
	CustomEmojiLinks bool
	MentionLinks     bool

	// Render configures the GFM importer.
	Render *RenderConfig
}

// Option configures Options.
type Option func(*Options)

// WithMaxNestingDepth caps delimiter and template block nesting.
func WithMaxNestingDepth(n int) Option {
	return func(o *Options) { o.MaxNestingDepth = n }
}

// WithSpoilerLinks toggles the [text](spoiler) special form.
func WithSpoilerLinks(enable bool) Option {
	return func(o *Options) { o.SpoilerLinks = enable }
}

// WithCustomEmojiLinks toggles the [text](emoji/<id>) special form.
func WithCustomEmojiLinks(enable bool) Option {
	return func(o *Options) { o.CustomEmojiLinks = enable }
}

// WithMentionLinks toggles the [text](tg://user?id=<id>) special form.
func WithMentionLinks(enable bool) Option {
	return func(o *Options) { o.MentionLinks = enable }
}

// WithRenderConfig sets the GFM importer configuration.
func WithRenderConfig(config *RenderConfig) Option {
	return func(o *Options) { o.Render = config }
}

func defaultOptions() *Options {
	return &Options{
		MaxNestingDepth:  markdown.DefaultMaxNestingDepth,
		SpoilerLinks:     true,
		CustomEmojiLinks: true,
		MentionLinks:     true,
		Render:           DefaultRenderConfig(),
	}
}

func applyOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) dialect() markdown.Config {
	return markdown.Config{
		MaxNestingDepth:  o.MaxNestingDepth,
		SpoilerLinks:     o.SpoilerLinks,
		CustomEmojiLinks: o.CustomEmojiLinks,
		MentionLinks:     o.MentionLinks,
	}
}

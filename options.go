package enriched

import (
	"log"
)

// Option is a function that configures a conversion.
type Option func(*Config)

// WithSpanFactory sets the factory that builds host span objects.
func WithSpanFactory(f SpanFactory) Option {
	return func(c *Config) {
		c.SpanFactory = f
	}
}

// WithStyle sets the opaque style context passed to the span factory.
func WithStyle(style any) Option {
	return func(c *Config) {
		c.Style = style
	}
}

// WithImageResolver sets the lookup used for images without width or height.
func WithImageResolver(r ImageResolver) Option {
	return func(c *Config) {
		c.ImageResolver = r
	}
}

// WithSeparatorMode selects compact or legacy block separation when parsing.
func WithSeparatorMode(m SeparatorMode) Option {
	return func(c *Config) {
		c.Separator = m
	}
}

// WithCheckboxLists sets whether <ul data-type="checkbox"> produces checkbox items.
func WithCheckboxLists(enable bool) Option {
	return func(c *Config) {
		c.CheckboxLists = enable
	}
}

// WithCSSColors sets whether <span style> and <font color> produce color
// spans, and whether text-align / align on p, div, li and headings produce
// alignment spans.
func WithCSSColors(enable bool) Option {
	return func(c *Config) {
		c.CSSColors = enable
	}
}

// WithParagraphMode selects how plain lines are grouped when serializing.
func WithParagraphMode(m ParagraphMode) Option {
	return func(c *Config) {
		c.ParagraphMode = m
	}
}

// WithLogger overrides the package Logger for one call.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// applyOptions copies the default config and applies opts to the copy.
func applyOptions(opts ...Option) *Config {
	cfg := *DefaultConfig()
	cfg.Logger = Logger
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

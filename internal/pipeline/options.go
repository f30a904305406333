package pipeline

import (
	"git.home.luguber.info/inful/vaultmark/internal/callout"
	"git.home.luguber.info/inful/vaultmark/internal/embed"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
	"git.home.luguber.info/inful/vaultmark/internal/slug"
	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// Attributes groups the per-category attribute bags attached to generated
// nodes.
type Attributes struct {
	Links    wikilink.Attributes
	Callouts callout.Attributes
}

// Options configure a Transformer.
type Options struct {
	WikiLinks bool
	// Embeds requires WikiLinks; it is ignored without it.
	Embeds        bool
	Callouts      bool
	MaxEmbedDepth int
	URLPrefix     string
	Slugify       slug.Func
	Attributes    Attributes
	// Icons override or extend the default callout icon table.
	Icons    map[string]string
	Markdown markdown.Options
}

// DefaultOptions enables every feature with the default depth bound.
func DefaultOptions() Options {
	return Options{
		WikiLinks:     true,
		Embeds:        true,
		Callouts:      true,
		MaxEmbedDepth: embed.DefaultMaxDepth,
		Slugify:       slug.Slugify,
		Markdown:      markdown.Options{Extensions: []string{"gfm"}},
	}
}

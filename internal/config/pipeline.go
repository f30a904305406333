package config

import (
	"git.home.luguber.info/inful/vaultmark/internal/callout"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
	"git.home.luguber.info/inful/vaultmark/internal/pipeline"
	"git.home.luguber.info/inful/vaultmark/internal/slug"
	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// PipelineOptions translates the configuration into transformer options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		WikiLinks:     c.Features.WikiLinks,
		Embeds:        c.Features.Embeds,
		Callouts:      c.Features.Callouts,
		MaxEmbedDepth: c.Features.MaxEmbedDepth,
		URLPrefix:     c.Vault.URLPrefix,
		Slugify:       slug.Slugify,
		Attributes: pipeline.Attributes{
			Links: wikilink.Attributes{
				BrokenLinks: c.Attributes.BrokenLinks,
				Links:       c.Attributes.Links,
				ImageLinks:  c.Attributes.ImageLinks,
				ImageEmbeds: c.Attributes.ImageEmbeds,
			},
			Callouts: callout.Attributes{
				Container: c.Attributes.Callouts.Container,
				Icon:      c.Attributes.Callouts.Icon,
				Title:     c.Attributes.Callouts.Title,
				Collapse:  c.Attributes.Callouts.Collapse,
			},
		},
		Icons: c.Callouts.Icons,
		Markdown: markdown.Options{
			Extensions: c.Markdown.Extensions,
			UnsafeHTML: c.Markdown.UnsafeHTML,
			HardWraps:  c.Markdown.HardWraps,
			Highlight:  c.Markdown.Highlight,
		},
	}
}

// Package pipeline runs the per-note transform: reference resolution, embed
// expansion and callout rewriting, then HTML rendering. A Transformer is
// shared by every note of a run and transforms notes in parallel.
package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/vaultmark/internal/callout"
	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/embed"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
	"git.home.luguber.info/inful/vaultmark/internal/metrics"
	"git.home.luguber.info/inful/vaultmark/internal/slug"
	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// Transformer is safe for concurrent use once built. The index it resolves
// against must not change while transforms run.
type Transformer struct {
	opts     Options
	parser   *markdown.Parser
	resolver *wikilink.Resolver
	expander *embed.Expander
	rewriter *callout.Rewriter
	sink     diagnostics.Sink
	recorder metrics.Recorder
	logger   *slog.Logger
	workers  int
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(t *Transformer) {
		if r != nil {
			t.recorder = r
		}
	}
}

// WithSink sets where diagnostics go.
func WithSink(s diagnostics.Sink) Option {
	return func(t *Transformer) {
		if s != nil {
			t.sink = s
		}
	}
}

// WithWorkers bounds TransformAll parallelism.
func WithWorkers(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.workers = n
		}
	}
}

// New builds a Transformer resolving references against index and loading
// embedded notes through loader.
func New(index wikilink.Index, loader embed.Loader, opts Options, options ...Option) (*Transformer, error) {
	if opts.Slugify == nil {
		opts.Slugify = slug.Slugify
	}
	if !opts.WikiLinks {
		opts.Embeds = false
	}
	if opts.MaxEmbedDepth <= 0 {
		opts.MaxEmbedDepth = embed.DefaultMaxDepth
	}

	t := &Transformer{
		opts:     opts,
		sink:     diagnostics.Discard,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		workers:  4,
	}
	for _, o := range options {
		o(t)
	}

	mdOpts := opts.Markdown
	mdOpts.Slugify = opts.Slugify
	mdOpts.Extenders = append([]goldmark.Extender(nil), mdOpts.Extenders...)
	if opts.WikiLinks {
		mdOpts.Extenders = append(mdOpts.Extenders, wikilink.NewExtension())
	}
	if opts.Callouts {
		mdOpts.Extenders = append(mdOpts.Extenders, callout.NewExtension())
	}
	parser, err := markdown.NewParser(mdOpts)
	if err != nil {
		return nil, err
	}
	t.parser = parser
	t.resolver = wikilink.NewResolver(index, opts.Slugify, opts.URLPrefix)
	t.rewriter = callout.NewRewriter(callout.MergeIcons(opts.Icons), opts.Attributes.Callouts)
	t.rewriter.Observe = t.recorder.IncCallout
	t.expander = &embed.Expander{
		Loader:         loader,
		Parser:         parser,
		Stage:          t,
		MaxDepth:       opts.MaxEmbedDepth,
		LinkAttributes: opts.Attributes.Links.Links,
		Sink:           t.sink,
		Logger:         t.logger,
	}
	return t, nil
}

// Options returns the effective options.
func (t *Transformer) Options() Options { return t.opts }

// Resolver returns the reference resolver, which also builds note URLs.
func (t *Transformer) Resolver() *wikilink.Resolver { return t.resolver }

// Parse parses a note without transforming it.
func (t *Transformer) Parse(path string, src []byte) (*markdown.Document, error) {
	return t.parser.Parse(path, src)
}

// Transform rewrites a root note in place. Authoring mistakes never fail a
// transform; they end up as diagnostics.
func (t *Transformer) Transform(ctx context.Context, doc *markdown.Document) {
	t.TransformAt(ctx, doc, 0)
	markdown.UniqueHeadingIDs(doc.Root)
}

// TransformAt runs the stages over a note at embed depth.
func (t *Transformer) TransformAt(ctx context.Context, doc *markdown.Document, depth int) {
	if t.opts.WikiLinks {
		counts := wikilink.ResolveTree(ctx, doc, t.resolver, wikilink.TreeOptions{
			Attributes: t.opts.Attributes.Links,
			Embeds:     t.opts.Embeds,
			Sink:       t.sink,
			Depth:      depth,
		})
		for kind, n := range counts {
			for range n {
				t.recorder.IncOutcome(kind.String())
			}
			t.logger.Debug("References resolved", logfields.Stage("references"),
				logfields.Document(doc.Path), logfields.Outcome(kind.String()), logfields.Count(n))
		}
	}
	if t.opts.Embeds {
		t.recordEmbeds(t.expander.Expand(ctx, doc, depth))
	}
	if t.opts.Callouts {
		if n := t.rewriter.Rewrite(doc); n > 0 {
			t.logger.Debug("Callouts rewritten", logfields.Stage("callouts"),
				logfields.Document(doc.Path), logfields.Count(n), logfields.Depth(depth))
		}
	}
}

func (t *Transformer) recordEmbeds(s embed.Stats) {
	record := func(label metrics.EmbedLabel, n int) {
		for range n {
			t.recorder.IncEmbed(label)
		}
	}
	record(metrics.EmbedExpanded, s.Expanded)
	record(metrics.EmbedFailed, s.Failed)
	record(metrics.EmbedCutoff, s.CutOff)
	record(metrics.EmbedInline, s.Degraded)
}

// Render writes doc as HTML.
func (t *Transformer) Render(doc *markdown.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.parser.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Convert parses, transforms and renders one note.
func (t *Transformer) Convert(ctx context.Context, path string, src []byte) ([]byte, *markdown.Document, error) {
	start := time.Now()
	doc, err := t.Parse(path, src)
	if err != nil {
		t.recorder.IncDocumentResult(metrics.ResultFailed)
		return nil, nil, err
	}
	t.Transform(ctx, doc)
	html, err := t.Render(doc)
	t.recorder.ObserveDocumentDuration(time.Since(start))
	if err != nil {
		t.recorder.IncDocumentResult(metrics.ResultFailed)
		return nil, doc, err
	}
	t.recorder.IncDocumentResult(metrics.ResultSuccess)
	return html, doc, nil
}

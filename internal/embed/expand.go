package embed

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// DefaultMaxDepth bounds nested expansion.
const DefaultMaxDepth = 4

// Parser turns note content into a Document.
type Parser interface {
	Parse(path string, content []byte) (*markdown.Document, error)
}

// Stage runs the whole transform pipeline over an embedded note.
type Stage interface {
	TransformAt(ctx context.Context, doc *markdown.Document, depth int)
}

// StageFunc adapts a function to Stage.
type StageFunc func(ctx context.Context, doc *markdown.Document, depth int)

func (f StageFunc) TransformAt(ctx context.Context, doc *markdown.Document, depth int) {
	f(ctx, doc, depth)
}

// Stats counts what one Expand call did with the placeholders it found.
type Stats struct {
	Expanded int
	Failed   int
	CutOff   int
	// Degraded counts embeds that sat inside other inline content and were
	// replaced by a link.
	Degraded int
}

// Expander flattens embed placeholders.
type Expander struct {
	Loader   Loader
	Parser   Parser
	Stage    Stage
	MaxDepth int
	// LinkAttributes are applied to links that replace cut-off embeds.
	LinkAttributes map[string]string
	Sink           diagnostics.Sink
	Logger         *slog.Logger
}

// Expand replaces every Placeholder in doc, which sits at depth (the root
// note is depth 0). Placeholders in a document at MaxDepth or deeper become
// links. Load and parse failures drop the embed and are reported to Sink.
// After Expand the tree holds no Placeholder.
func (e *Expander) Expand(ctx context.Context, doc *markdown.Document, depth int) Stats {
	var stats Stats
	handled := map[*markdown.Placeholder]bool{}

	for _, ph := range markdown.Placeholders(doc.Root) {
		if handled[ph] {
			continue
		}
		parent := ph.Parent()
		if parent == nil {
			continue
		}

		if isEmbedBlock(parent, doc.Source) {
			var nodes []ast.Node
			for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
				p, ok := c.(*markdown.Placeholder)
				if !ok {
					continue
				}
				handled[p] = true
				res := e.embed(ctx, doc, p, depth, &stats)
				if res.ok {
					stats.Expanded++
				}
				if res.link != nil {
					para := ast.NewParagraph()
					para.AppendChild(para, res.link)
					nodes = append(nodes, para)
					continue
				}
				nodes = append(nodes, res.blocks...)
			}
			replaceBlock(parent, nodes)
			continue
		}

		handled[ph] = true
		res := e.embed(ctx, doc, ph, depth, &stats)
		switch {
		case res.link != nil:
			parent.ReplaceChild(parent, ph, res.link)
		case !res.ok:
			parent.RemoveChild(parent, ph)
		case len(res.blocks) == 0:
			stats.Expanded++
			parent.RemoveChild(parent, ph)
		case len(res.blocks) == 1 && res.blocks[0].Kind() == ast.KindParagraph:
			stats.Expanded++
			para := res.blocks[0]
			for c := para.FirstChild(); c != nil; {
				next := c.NextSibling()
				parent.InsertBefore(parent, ph, c)
				c = next
			}
			parent.RemoveChild(parent, ph)
		default:
			// block content cannot nest inside inline content
			stats.Degraded++
			parent.ReplaceChild(parent, ph, e.link(ph))
		}
	}
	return stats
}

type result struct {
	blocks []ast.Node
	link   *ast.Link
	ok     bool
}

func (e *Expander) embed(ctx context.Context, doc *markdown.Document, ph *markdown.Placeholder, depth int, stats *Stats) result {
	report := func(kind diagnostics.Kind, err error) {
		e.sink().Report(ctx, diagnostics.Diagnostic{
			Kind: kind, Document: doc.Path, Target: ph.Path, Depth: depth, Err: err,
		})
	}

	if depth >= e.maxDepth() {
		stats.CutOff++
		report(diagnostics.KindEmbedDepthExceeded, nil)
		return result{link: e.link(ph)}
	}

	content, err := e.Loader.Load(ctx, ph.Path)
	if err != nil {
		stats.Failed++
		report(diagnostics.KindEmbedLoadFailed, err)
		return result{}
	}
	sub, err := e.Parser.Parse(ph.Path, content)
	if err != nil {
		stats.Failed++
		report(diagnostics.KindEmbedParseFailed, err)
		return result{}
	}

	if e.Stage != nil {
		e.Stage.TransformAt(ctx, sub, depth+1)
	}
	markdown.Adopt(doc, sub)

	var blocks []ast.Node
	for c := sub.Root.FirstChild(); c != nil; {
		next := c.NextSibling()
		sub.Root.RemoveChild(sub.Root, c)
		blocks = append(blocks, c)
		c = next
	}
	e.logger().Debug("Embedded note expanded",
		logfields.Document(doc.Path), logfields.Target(ph.Path), logfields.Depth(depth+1))
	return result{blocks: blocks, ok: true}
}

func (e *Expander) link(ph *markdown.Placeholder) *ast.Link {
	return wikilink.NewLink(ph.URL, ph.Label, e.LinkAttributes)
}

func (e *Expander) maxDepth() int {
	if e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return e.MaxDepth
}

func (e *Expander) sink() diagnostics.Sink {
	if e.Sink == nil {
		return diagnostics.Discard
	}
	return e.Sink
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// isEmbedBlock reports whether parent is a paragraph made only of
// placeholders and blank text, so its embeds can replace it outright.
func isEmbedBlock(parent ast.Node, source []byte) bool {
	if parent.Kind() != ast.KindParagraph && parent.Kind() != ast.KindTextBlock {
		return false
	}
	if parent.Parent() == nil {
		return false
	}
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *markdown.Placeholder:
		case *ast.Text:
			if len(bytes.TrimSpace(v.Segment.Value(source))) != 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func replaceBlock(block ast.Node, nodes []ast.Node) {
	parent := block.Parent()
	for _, n := range nodes {
		parent.InsertBefore(parent, block, n)
	}
	parent.RemoveChild(parent, block)
}

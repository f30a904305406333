package wikilink

import (
	"context"
	"maps"
	"slices"
	"strconv"

	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
)

// Attributes are extra HTML attributes attached to generated nodes, one bag
// per outcome category.
type Attributes struct {
	BrokenLinks map[string]string
	// Links applies to heading and document links.
	Links       map[string]string
	ImageLinks  map[string]string
	ImageEmbeds map[string]string
}

// TreeOptions configure ResolveTree.
type TreeOptions struct {
	Attributes Attributes
	// Embeds turns document embeds into Placeholders. When false they are
	// emitted as document links.
	Embeds bool
	Sink   diagnostics.Sink
	Depth  int
}

// Counts tallies resolved references by outcome.
type Counts map[OutcomeKind]int

// ResolveTree replaces every RefNode in doc with the node for its outcome.
func ResolveTree(ctx context.Context, doc *markdown.Document, r *Resolver, opts TreeOptions) Counts {
	sink := opts.Sink
	if sink == nil {
		sink = diagnostics.Discard
	}

	var refs []*RefNode
	_ = ast.Walk(doc.Root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if ref, ok := n.(*RefNode); ok && entering {
			refs = append(refs, ref)
		}
		return ast.WalkContinue, nil
	})

	counts := Counts{}
	for _, rn := range refs {
		out := r.Resolve(rn.Ref)
		if out.Kind == DocumentEmbed && !opts.Embeds {
			out.Kind = DocumentLink
		}
		counts[out.Kind]++
		if out.Kind == BrokenLink {
			sink.Report(ctx, diagnostics.Diagnostic{
				Kind:     diagnostics.KindBrokenLink,
				Document: doc.Path,
				Target:   rn.Ref.RawTarget,
				Depth:    opts.Depth,
			})
		}
		parent := rn.Parent()
		parent.ReplaceChild(parent, rn, Node(out, opts.Attributes))
	}
	return counts
}

// Node builds the replacement node for an outcome.
func Node(out Outcome, attrs Attributes) ast.Node {
	switch out.Kind {
	case ImageEmbed:
		link := ast.NewLink()
		link.Destination = []byte(out.URL)
		img := ast.NewImage(link)
		img.AppendChild(img, ast.NewString([]byte(out.Alt)))
		if out.Width > 0 && out.Height > 0 {
			img.SetAttributeString("width", []byte(strconv.Itoa(out.Width)))
			img.SetAttributeString("height", []byte(strconv.Itoa(out.Height)))
		}
		if out.Style != "" {
			img.SetAttributeString("style", []byte(out.Style))
		}
		SetAttributes(img, attrs.ImageEmbeds)
		return img
	case DocumentEmbed:
		return markdown.NewPlaceholder(out.Path, out.Ref.Anchor, out.Label, out.URL)
	case BrokenLink:
		return NewLink(out.URL, out.Label, attrs.BrokenLinks)
	case ImageLink:
		return NewLink(out.URL, out.Label, attrs.ImageLinks)
	default:
		return NewLink(out.URL, out.Label, attrs.Links)
	}
}

// NewLink returns a link node with a plain text label.
func NewLink(url, label string, attrs map[string]string) *ast.Link {
	link := ast.NewLink()
	link.Destination = []byte(url)
	link.AppendChild(link, ast.NewString([]byte(label)))
	SetAttributes(link, attrs)
	return link
}

// SetAttributes copies attrs onto n. Values are stored as []byte, the form
// goldmark's HTML renderer expects.
func SetAttributes(n ast.Node, attrs map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		n.SetAttributeString(k, []byte(attrs[k]))
	}
}

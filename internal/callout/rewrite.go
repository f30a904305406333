package callout

import (
	"maps"
	"slices"

	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/vaultmark/internal/markdown"
)

// Attributes are extra HTML attributes for each part of a callout. A "class"
// entry replaces the default class of that part.
type Attributes struct {
	Container map[string]string
	Icon      map[string]string
	Title     map[string]string
	Collapse  map[string]string
}

// Rewriter turns qualifying blockquotes into Callout nodes.
type Rewriter struct {
	Icons      Icons
	Attributes Attributes
	// Observe, when set, is called with the type of every rewritten callout.
	Observe func(calloutType string)
}

// NewRewriter returns a Rewriter using icons, or the default table when nil.
func NewRewriter(icons Icons, attrs Attributes) *Rewriter {
	if icons == nil {
		icons = MergeIcons(nil)
	}
	return &Rewriter{Icons: icons, Attributes: attrs}
}

// Rewrite transforms every callout blockquote in doc, nested ones included,
// and returns how many it rewrote. Blockquotes that do not start with a
// header are left alone, so running Rewrite twice changes nothing.
func (r *Rewriter) Rewrite(doc *markdown.Document) int {
	var quotes []*ast.Blockquote
	_ = ast.Walk(doc.Root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if bq, ok := n.(*ast.Blockquote); ok && entering {
			quotes = append(quotes, bq)
		}
		return ast.WalkContinue, nil
	})

	count := 0
	for _, bq := range quotes {
		if r.rewrite(bq, doc.Source) {
			count++
		}
	}
	return count
}

func (r *Rewriter) rewrite(bq *ast.Blockquote, source []byte) bool {
	para, ok := bq.FirstChild().(*ast.Paragraph)
	if !ok {
		return false
	}
	markdown.CoalesceText(para)
	text, ok := para.FirstChild().(*ast.Text)
	if !ok {
		return false
	}
	header, ok := ParseHeader(string(text.Segment.Value(source)))
	if !ok {
		return false
	}

	// The header always spans the whole first text node; its line break
	// goes with it.
	para.RemoveChild(para, text)
	if !para.HasChildren() {
		bq.RemoveChild(bq, para)
	}

	callout := &Callout{Header: header}
	setAttributes(callout, "callout", r.Attributes.Container)
	callout.SetAttributeString("data-callout", []byte(header.Type))

	title := &Title{Collapsible: header.Collapsible()}
	setAttributes(title, "callout-title", r.Attributes.Title)
	icon := &Icon{Markup: r.Icons.For(header.Type)}
	setAttributes(icon, "callout-icon", r.Attributes.Icon)
	title.AppendChild(title, icon)
	title.AppendChild(title, ast.NewString([]byte(header.Title)))
	if header.Collapsible() {
		collapse := &Collapse{Markup: arrowRightIcon}
		setAttributes(collapse, "callout-collapse-icon", r.Attributes.Collapse)
		title.AppendChild(title, collapse)
	}

	callout.AppendChild(callout, title)
	for c := bq.FirstChild(); c != nil; {
		next := c.NextSibling()
		callout.AppendChild(callout, c)
		c = next
	}

	parent := bq.Parent()
	parent.ReplaceChild(parent, bq, callout)
	if r.Observe != nil {
		r.Observe(header.Type)
	}
	return true
}

func setAttributes(n ast.Node, class string, extra map[string]string) {
	if v, ok := extra["class"]; ok {
		class = v
	}
	n.SetAttributeString("class", []byte(class))
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if k == "class" {
			continue
		}
		n.SetAttributeString(k, []byte(extra[k]))
	}
}

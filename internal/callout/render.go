package callout

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type nodeRenderer struct{}

func (r nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCallout, r.renderCallout)
	reg.Register(KindTitle, r.renderTitle)
	reg.Register(KindIcon, r.renderMarkup)
	reg.Register(KindCollapse, r.renderMarkup)
}

func (nodeRenderer) renderCallout(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Callout)
	tag := "div"
	if n.Header.Collapsible() {
		tag = "details"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag)
	html.RenderAttributes(w, n, nil)
	if n.Header.Collapsible() && n.Header.Open() {
		_, _ = w.WriteString(" open")
	}
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (nodeRenderer) renderTitle(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Title)
	tag := "div"
	if n.Collapsible {
		tag = "summary"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag)
	html.RenderAttributes(w, n, nil)
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func (nodeRenderer) renderMarkup(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var markup string
	switch n := node.(type) {
	case *Icon:
		markup = n.Markup
	case *Collapse:
		markup = n.Markup
	}
	_, _ = w.WriteString("<div")
	html.RenderAttributes(w, node, nil)
	_ = w.WriteByte('>')
	_, _ = w.WriteString(markup)
	_, _ = w.WriteString("</div>")
	return ast.WalkSkipChildren, nil
}

// Extension registers the HTML renderers for callout nodes.
type Extension struct{}

// NewExtension returns the callout goldmark extension.
func NewExtension() goldmark.Extender { return Extension{} }

func (Extension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(nodeRenderer{}, 500)))
}

package wikilink

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindRef is the NodeKind of RefNode.
var KindRef = ast.NewNodeKind("WikiRef")

// RefNode is an unresolved reference found by the inline parser.
type RefNode struct {
	ast.BaseInline
	Ref Reference
}

func (n *RefNode) Kind() ast.NodeKind { return KindRef }

func (n *RefNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Raw": n.Ref.Raw}, nil)
}

var (
	openBrackets  = []byte("[[")
	closeBrackets = []byte("]]")
)

type inlineParser struct{}

func (inlineParser) Trigger() []byte { return []byte{'!', '['} }

func (inlineParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	start, embed := 0, false
	if len(line) > 0 && line[0] == '!' {
		start, embed = 1, true
	}
	if !bytes.HasPrefix(line[start:], openBrackets) {
		return nil
	}
	body := line[start+len(openBrackets):]
	end := bytes.Index(body, closeBrackets)
	if end < 0 {
		return nil
	}
	ref, ok := ParseToken(string(body[:end]), embed)
	if !ok {
		return nil
	}
	block.Advance(start + len(openBrackets) + end + len(closeBrackets))
	return &RefNode{Ref: ref}
}

// refRenderer writes a reference that was never resolved back as its
// original text.
type refRenderer struct{}

func (refRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindRef, func(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			_, _ = w.Write(util.EscapeHTML([]byte(n.(*RefNode).Ref.Raw)))
		}
		return ast.WalkSkipChildren, nil
	})
}

// Extension installs the reference inline parser ahead of goldmark's link
// parser. Code spans and code blocks are never inline-parsed, so tokens in
// them stay verbatim.
type Extension struct{}

// NewExtension returns the wiki-link goldmark extension.
func NewExtension() goldmark.Extender { return Extension{} }

func (Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(inlineParser{}, 199)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(refRenderer{}, 500)))
}

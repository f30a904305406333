package markdown

import (
	"errors"
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// ErrPlaceholderLeak is returned when a document still contains an unexpanded
// embed Placeholder at render time.
var ErrPlaceholderLeak = errors.New("unexpanded embed placeholder in document")

// KindPlaceholder is the NodeKind of Placeholder.
var KindPlaceholder = ast.NewNodeKind("EmbedPlaceholder")

// Placeholder marks a document embed that still has to be expanded. It is an
// inline node and must be spliced away before rendering.
type Placeholder struct {
	ast.BaseInline

	// Path is the index path of the embedded note.
	Path string
	// Anchor is the optional heading anchor of the reference.
	Anchor string
	// Label and URL describe the link the embed degrades to when it cannot
	// be expanded.
	Label string
	URL   string
}

// NewPlaceholder returns a Placeholder for the note at path.
func NewPlaceholder(path, anchor, label, url string) *Placeholder {
	return &Placeholder{Path: path, Anchor: anchor, Label: label, URL: url}
}

func (n *Placeholder) Kind() ast.NodeKind { return KindPlaceholder }

func (n *Placeholder) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Path":   n.Path,
		"Anchor": n.Anchor,
	}, nil)
}

// Placeholders returns every Placeholder under root in document order.
func Placeholders(root ast.Node) []*Placeholder {
	var out []*Placeholder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if p, ok := n.(*Placeholder); ok && entering {
			out = append(out, p)
		}
		return ast.WalkContinue, nil
	})
	return out
}

type placeholderRenderer struct{}

func (placeholderRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindPlaceholder, func(_ util.BufWriter, _ []byte, n ast.Node, _ bool) (ast.WalkStatus, error) {
		return ast.WalkStop, fmt.Errorf("%w: %s", ErrPlaceholderLeak, n.(*Placeholder).Path)
	})
}

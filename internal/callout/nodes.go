package callout

import (
	"github.com/yuin/goldmark/ast"
)

var (
	KindCallout  = ast.NewNodeKind("Callout")
	KindTitle    = ast.NewNodeKind("CalloutTitle")
	KindIcon     = ast.NewNodeKind("CalloutIcon")
	KindCollapse = ast.NewNodeKind("CalloutCollapse")
)

// Callout is the container that replaces a callout blockquote. Its first
// child is a Title; the remaining children are the body.
type Callout struct {
	ast.BaseBlock
	Header Header
}

func (n *Callout) Kind() ast.NodeKind { return KindCallout }

func (n *Callout) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Type": n.Header.Type}, nil)
}

// Title is the title row: icon, title text and, when collapsible, the
// collapse marker.
type Title struct {
	ast.BaseBlock
	Collapsible bool
}

func (n *Title) Kind() ast.NodeKind { return KindTitle }

func (n *Title) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Icon carries raw icon markup.
type Icon struct {
	ast.BaseInline
	Markup string
}

func (n *Icon) Kind() ast.NodeKind { return KindIcon }

func (n *Icon) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Collapse is the collapse indicator of a collapsible callout.
type Collapse struct {
	ast.BaseInline
	Markup string
}

func (n *Collapse) Kind() ast.NodeKind { return KindCollapse }

func (n *Collapse) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

package markdown

import (
	"slices"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Adopt appends sub's source to host's and rebases every segment in sub's
// tree so the tree can be spliced into host. After Adopt both documents share
// the combined source; sub.Root must no longer be rendered on its own source.
func Adopt(host, sub *Document) {
	offset := len(host.Source)
	combined := slices.Concat(host.Source, sub.Source)

	var autolinks []*ast.AutoLink
	_ = ast.Walk(sub.Root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			v.Segment = shift(v.Segment, offset)
		case *ast.RawHTML:
			shiftAll(v.Segments, offset)
		case *ast.AutoLink:
			autolinks = append(autolinks, v)
		case *ast.FencedCodeBlock:
			if v.Info != nil {
				v.Info.Segment = shift(v.Info.Segment, offset)
			}
		case *ast.HTMLBlock:
			if v.HasClosure() {
				v.ClosureLine = shift(v.ClosureLine, offset)
			}
		}
		if n.Type() == ast.TypeBlock {
			shiftAll(n.Lines(), offset)
		}
		return ast.WalkContinue, nil
	})

	// AutoLink keeps its segment private; it is rebuilt as a plain link.
	for _, al := range autolinks {
		link := ast.NewLink()
		link.Destination = al.URL(sub.Source)
		link.AppendChild(link, ast.NewString(al.Label(sub.Source)))
		if parent := al.Parent(); parent != nil {
			parent.ReplaceChild(parent, al, link)
		}
	}

	host.Source = combined
	sub.Source = combined
}

func shift(s text.Segment, offset int) text.Segment {
	s.Start += offset
	s.Stop += offset
	return s
}

func shiftAll(segs *text.Segments, offset int) {
	if segs == nil {
		return
	}
	for i := 0; i < segs.Len(); i++ {
		segs.Set(i, shift(segs.At(i), offset))
	}
}

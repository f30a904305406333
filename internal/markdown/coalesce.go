package markdown

import (
	"github.com/yuin/goldmark/ast"
)

// CoalesceText merges runs of adjacent Text children of parent whose segments
// are contiguous in source and that sit on the same line. goldmark splits text
// at every inline trigger character, so "[!info] Title" arrives as several
// nodes; after coalescing it is one.
func CoalesceText(parent ast.Node) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		cur, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		for {
			next, ok := cur.NextSibling().(*ast.Text)
			if !ok || !mergeable(cur, next) {
				break
			}
			cur.Segment = cur.Segment.WithStop(next.Segment.Stop)
			cur.SetSoftLineBreak(next.SoftLineBreak())
			cur.SetHardLineBreak(next.HardLineBreak())
			parent.RemoveChild(parent, next)
		}
	}
}

func mergeable(a, b *ast.Text) bool {
	return !a.SoftLineBreak() && !a.HardLineBreak() &&
		a.IsRaw() == b.IsRaw() &&
		a.Segment.Stop == b.Segment.Start &&
		b.Segment.Padding == 0
}

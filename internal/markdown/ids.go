package markdown

import (
	"strconv"

	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/vaultmark/internal/slug"
)

// headingIDs generates heading IDs with the configured slugify so that
// `[[#Heading]]` references and rendered anchors agree.
type headingIDs struct {
	slugify slug.Func
	used    map[string]struct{}
}

func newHeadingIDs(slugify slug.Func) *headingIDs {
	return &headingIDs{slugify: slugify, used: map[string]struct{}{}}
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := h.slugify(string(value))
	if base == "" {
		if kind == ast.KindHeading {
			base = "heading"
		} else {
			base = "id"
		}
	}
	return []byte(h.claim(base))
}

func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = struct{}{}
}

func (h *headingIDs) claim(base string) string {
	id := base
	for i := 1; ; i++ {
		if _, taken := h.used[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(i)
	}
	h.used[id] = struct{}{}
	return id
}

// UniqueHeadingIDs renames duplicate heading IDs in root, keeping the first
// occurrence. Embedded notes bring their own IDs, so a host can end up with
// collisions after splicing.
func UniqueHeadingIDs(root ast.Node) {
	ids := newHeadingIDs(nil)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		raw, ok := n.AttributeString("id")
		if !ok {
			return ast.WalkContinue, nil
		}
		var id string
		switch v := raw.(type) {
		case []byte:
			id = string(v)
		case string:
			id = v
		default:
			return ast.WalkContinue, nil
		}
		if unique := ids.claim(id); unique != id {
			n.SetAttributeString("id", []byte(unique))
		}
		return ast.WalkContinue, nil
	})
}

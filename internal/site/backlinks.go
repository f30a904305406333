package site

import (
	"cmp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// source is a note's raw body as read from the vault.
type source struct {
	path  string
	title string
	body  []byte
}

// backlinks maps every note path to the notes referencing it, skipping
// self-references and unresolved targets. Each list is sorted by title.
func backlinks(r *wikilink.Resolver, sources []source) map[string][]Backlink {
	seen := map[[2]string]struct{}{}
	out := map[string][]Backlink{}
	for _, src := range sources {
		for _, occ := range wikilink.ExtractReferences(src.body) {
			res := r.Resolve(occ.Reference)
			if res.Path == "" || res.Path == src.path {
				continue
			}
			if res.Kind != wikilink.DocumentLink && res.Kind != wikilink.DocumentEmbed {
				continue
			}
			key := [2]string{res.Path, src.path}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out[res.Path] = append(out[res.Path], Backlink{
				Title: src.title,
				URL:   r.DocumentURL(src.path, ""),
			})
		}
	}
	for _, list := range out {
		slices.SortFunc(list, func(a, b Backlink) int {
			return cmp.Or(strings.Compare(a.Title, b.Title), strings.Compare(a.URL, b.URL))
		})
	}
	return out
}

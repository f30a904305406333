// Package vault builds the content index: the case-insensitive mapping from a
// document or image name to its location and, for images, pixel dimensions.
package vault

import (
	"maps"
	"slices"
	"strings"
)

// Kind distinguishes indexed documents from images.
type Kind int

const (
	KindDocument Kind = iota + 1
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Descriptor is one index entry. Path is the vault-relative logical path with
// a leading slash, e.g. "/notes/My Page.md" or "/assets/pic.png".
type Descriptor struct {
	Kind   Kind
	Path   string
	Width  int
	Height int
}

// IsImage reports whether the descriptor points at an image asset.
func (d Descriptor) IsImage() bool { return d.Kind == KindImage }

// Index is an immutable content index. It is safe for concurrent reads.
type Index struct {
	entries   map[string]Descriptor
	documents []Descriptor
	images    []Descriptor
}

// NewIndex builds an index from pre-computed entries. Keys are lowercased.
func NewIndex(entries map[string]Descriptor) *Index {
	ix := &Index{entries: make(map[string]Descriptor, len(entries))}
	seen := make(map[string]struct{}, len(entries))
	for k, d := range entries {
		ix.entries[strings.ToLower(k)] = d
		if _, dup := seen[d.Path]; dup {
			continue
		}
		seen[d.Path] = struct{}{}
		if d.IsImage() {
			ix.images = append(ix.images, d)
		} else {
			ix.documents = append(ix.documents, d)
		}
	}
	byPath := func(a, b Descriptor) int { return strings.Compare(a.Path, b.Path) }
	slices.SortFunc(ix.documents, byPath)
	slices.SortFunc(ix.images, byPath)
	return ix
}

// Lookup finds a descriptor by name. The name is lowercased before lookup.
func (ix *Index) Lookup(name string) (Descriptor, bool) {
	if ix == nil {
		return Descriptor{}, false
	}
	d, ok := ix.entries[strings.ToLower(name)]
	return d, ok
}

// Len returns the number of lookup keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Keys returns the lookup keys in sorted order.
func (ix *Index) Keys() []string {
	if ix == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(ix.entries))
}

// Documents returns every distinct indexed document sorted by path.
func (ix *Index) Documents() []Descriptor {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.documents)
}

// Images returns every distinct indexed image sorted by path.
func (ix *Index) Images() []Descriptor {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.images)
}

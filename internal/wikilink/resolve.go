package wikilink

import (
	pathpkg "path"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/slug"
	"git.home.luguber.info/inful/vaultmark/internal/vault"
)

// OutcomeKind enumerates the ways a reference can resolve.
type OutcomeKind int

const (
	HeadingLink OutcomeKind = iota + 1
	BrokenLink
	ImageEmbed
	ImageLink
	DocumentEmbed
	DocumentLink
)

func (k OutcomeKind) String() string {
	switch k {
	case HeadingLink:
		return "heading_link"
	case BrokenLink:
		return "broken_link"
	case ImageEmbed:
		return "image_embed"
	case ImageLink:
		return "image_link"
	case DocumentEmbed:
		return "document_embed"
	case DocumentLink:
		return "document_link"
	default:
		return "unknown"
	}
}

// Outcome is the resolution of one reference.
type Outcome struct {
	Kind  OutcomeKind
	Ref   Reference
	Label string
	// URL is the link target. For DocumentEmbed it is the link the embed
	// degrades to.
	URL string
	// Path is the index path of an image or embedded document.
	Path string
	// Alt, Style, Width and Height describe an ImageEmbed.
	Alt    string
	Style  string
	Width  int
	Height int
}

// Index is the lookup side of the content index.
type Index interface {
	Lookup(name string) (vault.Descriptor, bool)
}

// Resolver maps references to outcomes. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	index     Index
	slugify   slug.Func
	urlPrefix string
}

// NewResolver returns a Resolver. A nil slugify selects slug.Slugify.
func NewResolver(index Index, slugify slug.Func, urlPrefix string) *Resolver {
	if slugify == nil {
		slugify = slug.Slugify
	}
	return &Resolver{index: index, slugify: slugify, urlPrefix: urlPrefix}
}

// Resolve decides the outcome for ref. The checks run in a fixed order and
// the first match wins.
func (r *Resolver) Resolve(ref Reference) Outcome {
	out := Outcome{Ref: ref, Label: ref.Label()}

	if ref.HasAnchor() && ref.Target == "" {
		out.Kind = HeadingLink
		out.URL = "#" + r.slugify(ref.Anchor)
		return out
	}

	desc, ok := r.index.Lookup(strings.ToLower(ref.Target))
	if !ok {
		out.Kind = BrokenLink
		out.URL = "#"
		return out
	}

	out.Path = desc.Path
	switch {
	case desc.IsImage() && ref.Embed:
		out.Kind = ImageEmbed
		out.URL = desc.Path
		out.Width, out.Height = desc.Width, desc.Height
		out.Alt = out.Label
		if isNumeric(ref.Alias) {
			out.Alt = ref.Target
			out.Style = "width:" + ref.Alias + "px;"
		}
	case desc.IsImage():
		out.Kind = ImageLink
		out.URL = desc.Path
	case ref.Embed:
		out.Kind = DocumentEmbed
		out.URL = r.DocumentURL(desc.Path, ref.Anchor)
	default:
		out.Kind = DocumentLink
		out.URL = r.DocumentURL(desc.Path, ref.Anchor)
	}
	return out
}

// DocumentURL builds the site URL of a note: the extension is dropped, every
// path segment slugified and the prefix prepended.
func (r *Resolver) DocumentURL(path, anchor string) string {
	if ext := pathpkg.Ext(path); strings.EqualFold(ext, ".md") || strings.EqualFold(ext, ".mdx") {
		path = strings.TrimSuffix(path, ext)
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = r.slugify(p)
	}
	u := strings.Join(parts, "/")
	if r.urlPrefix != "" {
		u = strings.TrimSuffix(r.urlPrefix, "/") + "/" + strings.TrimPrefix(u, "/")
	}
	if anchor != "" {
		u += "#" + r.slugify(anchor)
	}
	return u
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Package markdown wraps the goldmark engine: it parses notes into Documents,
// renders them to HTML and provides the tree helpers the transform stages
// share (text coalescing, source adoption for embedded notes, heading IDs).
package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/frontmatter"
	"git.home.luguber.info/inful/vaultmark/internal/slug"
)

// Options configures a Parser.
type Options struct {
	// Extensions names goldmark extensions to enable, e.g. "gfm", "footnote".
	Extensions []string
	UnsafeHTML bool
	HardWraps  bool
	// Highlight names a chroma style for fenced code blocks; empty leaves
	// them plain.
	Highlight string
	// Slugify generates heading IDs. Defaults to slug.Slugify.
	Slugify slug.Func
	// Extenders are installed after the named extensions.
	Extenders []goldmark.Extender
}

// Document is a parsed note. Source is the Markdown body without front
// matter; every segment in Root points into it.
type Document struct {
	Path        string
	Source      []byte
	Root        ast.Node
	Frontmatter frontmatter.Matter
}

// Parser parses and renders notes. It is safe for concurrent use.
type Parser struct {
	md      goldmark.Markdown
	slugify slug.Func
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// KnownExtension reports whether name is a recognized extension name.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// NewParser builds a Parser. Unknown extension names are rejected.
func NewParser(opts Options) (*Parser, error) {
	exts, err := collectExtensions(opts.Extensions)
	if err != nil {
		return nil, err
	}
	exts = append(exts, opts.Extenders...)

	slugify := opts.Slugify
	if slugify == nil {
		slugify = slug.Slugify
	}

	rendererOptions := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(placeholderRenderer{}, 100)),
	}
	if opts.Highlight != "" {
		if !KnownStyle(opts.Highlight) {
			return nil, errors.ValidationError(fmt.Sprintf("unknown highlight style %q", opts.Highlight)).
				WithContext("style", opts.Highlight).Build()
		}
		rendererOptions = append(rendererOptions,
			renderer.WithNodeRenderers(util.Prioritized(newCodeRenderer(opts.Highlight), 100)))
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.UnsafeHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Parser{md: md, slugify: slugify}, nil
}

func collectExtensions(names []string) ([]goldmark.Extender, error) {
	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, errors.ValidationError(fmt.Sprintf("unknown markdown extension %q", name)).
				WithContext("extension", name).Build()
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders, nil
}

// Parse splits front matter off content and parses the body.
func (p *Parser) Parse(path string, content []byte) (*Document, error) {
	matter, body, err := frontmatter.Parse(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "invalid front matter").
			WithContext("document", path).Build()
	}
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs(p.slugify)))
	root := p.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
	return &Document{Path: path, Source: body, Root: root, Frontmatter: matter}, nil
}

// Render writes doc as HTML. A Placeholder left in the tree fails the render
// with ErrPlaceholderLeak.
func (p *Parser) Render(w io.Writer, doc *Document) error {
	if err := p.md.Renderer().Render(w, doc.Source, doc.Root); err != nil {
		return errors.WrapError(err, errors.CategoryRender, "render failed").
			WithContext("document", doc.Path).Build()
	}
	return nil
}

// Slugify returns the function used for heading IDs.
func (p *Parser) Slugify() slug.Func { return p.slugify }

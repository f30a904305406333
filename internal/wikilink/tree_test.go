package wikilink

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/markdown"
)

func newParser(t *testing.T) *markdown.Parser {
	t.Helper()
	p, err := markdown.NewParser(markdown.Options{Extenders: []goldmark.Extender{NewExtension()}})
	require.NoError(t, err)
	return p
}

func convert(t *testing.T, src string, opts TreeOptions) (string, Counts) {
	t.Helper()
	p := newParser(t)
	doc, err := p.Parse("/host.md", []byte(src))
	require.NoError(t, err)
	counts := ResolveTree(context.Background(), doc, NewResolver(testIndex(), nil, ""), opts)
	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, doc))
	return buf.String(), counts
}

func TestResolveTree_Links(t *testing.T) {
	out, counts := convert(t, "[[My Page]] [[My Page#Some Section|see]] [[#Intro]] [[pic.png]]\n", TreeOptions{})
	assert.Equal(t, `<p><a href="/notes/my-page">My Page</a> `+
		`<a href="/notes/my-page#some-section">see</a> `+
		`<a href="#intro">#Intro</a> `+
		`<a href="/assets/pic.png">pic.png</a></p>`+"\n", out)
	assert.Equal(t, Counts{DocumentLink: 2, HeadingLink: 1, ImageLink: 1}, counts)
}

func TestResolveTree_ImageEmbeds(t *testing.T) {
	out, counts := convert(t, "![[pic.png|300]]\n\n![[pic.png|My Caption]]\n", TreeOptions{
		Attributes: Attributes{ImageEmbeds: map[string]string{"loading": "lazy"}},
	})
	assert.Contains(t, out, `<img src="/assets/pic.png" alt="pic.png" width="640" height="480" style="width:300px;" loading="lazy">`)
	assert.Contains(t, out, `<img src="/assets/pic.png" alt="My Caption" width="640" height="480" loading="lazy">`)
	assert.Equal(t, 2, counts[ImageEmbed])
}

func TestResolveTree_BrokenLinkReported(t *testing.T) {
	sink := diagnostics.NewCollector()
	out, counts := convert(t, "See [[Missing Page]].\n", TreeOptions{
		Attributes: Attributes{BrokenLinks: map[string]string{"class": "broken"}},
		Sink:       sink,
		Depth:      2,
	})
	assert.Equal(t, `<p>See <a href="#" class="broken">Missing Page</a>.</p>`+"\n", out)
	assert.Equal(t, 1, counts[BrokenLink])
	require.Equal(t, 1, sink.Len())
	d := sink.All()[0]
	assert.Equal(t, diagnostics.KindBrokenLink, d.Kind)
	assert.Equal(t, "/host.md", d.Document)
	assert.Equal(t, "Missing Page", d.Target)
	assert.Equal(t, 2, d.Depth)
}

func TestResolveTree_VerbatimZones(t *testing.T) {
	src := "Inline `[[My Page]]` code.\n\n```\n[[My Page]]\n![[pic.png]]\n```\n\n    [[My Page]]\n"
	out, counts := convert(t, src, TreeOptions{})
	assert.Contains(t, out, "<code>[[My Page]]</code>")
	assert.Contains(t, out, "<pre><code>[[My Page]]\n![[pic.png]]\n</code></pre>")
	assert.Contains(t, out, "<pre><code>[[My Page]]\n</code></pre>")
	assert.Empty(t, counts)
}

func TestResolveTree_DegenerateTokensStayLiteral(t *testing.T) {
	out, counts := convert(t, "empty [[]] blank [[  ]] open [[x\n", TreeOptions{})
	assert.Equal(t, "<p>empty [[]] blank [[  ]] open [[x</p>\n", out)
	assert.Empty(t, counts)
}

func TestResolveTree_DocumentEmbeds(t *testing.T) {
	p := newParser(t)
	doc, err := p.Parse("/host.md", []byte("![[My Page#Part]]\n"))
	require.NoError(t, err)
	r := NewResolver(testIndex(), nil, "/wiki")

	counts := ResolveTree(context.Background(), doc, r, TreeOptions{Embeds: true})
	assert.Equal(t, 1, counts[DocumentEmbed])
	ph := markdown.Placeholders(doc.Root)
	require.Len(t, ph, 1)
	assert.Equal(t, "/notes/My Page.md", ph[0].Path)
	assert.Equal(t, "Part", ph[0].Anchor)
	assert.Equal(t, "/wiki/notes/my-page#part", ph[0].URL)
	assert.Equal(t, "My Page#Part", ph[0].Label)

	doc, err = p.Parse("/host.md", []byte("![[My Page]]\n"))
	require.NoError(t, err)
	counts = ResolveTree(context.Background(), doc, r, TreeOptions{Embeds: false})
	assert.Equal(t, Counts{DocumentLink: 1}, counts)
	assert.Empty(t, markdown.Placeholders(doc.Root))
	link, ok := doc.Root.FirstChild().FirstChild().(*ast.Link)
	require.True(t, ok)
	assert.Equal(t, "/wiki/notes/my-page", string(link.Destination))
}

func TestUnresolvedRefRendersRaw(t *testing.T) {
	p := newParser(t)
	doc, err := p.Parse("/x.md", []byte("a [[b<c]] d\n"))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, doc))
	assert.Equal(t, "<p>a [[b&lt;c]] d</p>\n", buf.String())
}

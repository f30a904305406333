package callout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/vaultmark/internal/markdown"
)

func convert(t *testing.T, r *Rewriter, src string) (string, int) {
	t.Helper()
	p, err := markdown.NewParser(markdown.Options{Extenders: []goldmark.Extender{NewExtension()}})
	require.NoError(t, err)
	doc, err := p.Parse("/c.md", []byte(src))
	require.NoError(t, err)
	n := r.Rewrite(doc)
	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, doc))
	return buf.String(), n
}

func testRewriter() *Rewriter {
	return NewRewriter(Icons{"note": "<svg>n</svg>", "info": "<svg>i</svg>"}, Attributes{})
}

func TestRewrite_Basic(t *testing.T) {
	out, n := convert(t, testRewriter(), "> [!info] Hello\n> Body\n")
	assert.Equal(t, 1, n)
	assert.Equal(t, `<div class="callout" data-callout="info">`+"\n"+
		`<div class="callout-title"><div class="callout-icon"><svg>i</svg></div>Hello</div>`+"\n"+
		"<p>Body</p>\n"+
		"</div>\n", out)
}

func TestRewrite_CollapsedWithoutBody(t *testing.T) {
	out, n := convert(t, testRewriter(), "> [!warning]- \n")
	assert.Equal(t, 1, n)
	assert.Equal(t, `<details class="callout" data-callout="warning">`+"\n"+
		`<summary class="callout-title"><div class="callout-icon"><svg>n</svg></div>Warning`+
		`<div class="callout-collapse-icon">`+arrowRightIcon+`</div></summary>`+"\n"+
		"</details>\n", out)
}

func TestRewrite_OpenCollapsible(t *testing.T) {
	out, _ := convert(t, testRewriter(), "> [!FAQ]+ Why?\n> Because.\n")
	assert.True(t, strings.HasPrefix(out, `<details class="callout" data-callout="faq" open>`), out)
	assert.Contains(t, out, "Why?")
	assert.Contains(t, out, "<p>Because.</p>")
}

func TestRewrite_RichContentAfterTitleIsBody(t *testing.T) {
	out, _ := convert(t, testRewriter(), "> [!note] Plain **bold** rest\n> more\n")
	assert.Contains(t, out, `</div>Plain</div>`)
	assert.Contains(t, out, "<p><strong>bold</strong> rest\nmore</p>")
}

func TestRewrite_NestedCallouts(t *testing.T) {
	src := "> [!note] Outer\n> text\n>\n> > [!info] Inner\n> > inner text\n"
	out, n := convert(t, testRewriter(), src)
	assert.Equal(t, 2, n)
	assert.Contains(t, out, `data-callout="note"`)
	assert.Contains(t, out, `data-callout="info"`)
	assert.NotContains(t, out, "<blockquote>")
	assert.Less(t, strings.Index(out, "Outer"), strings.Index(out, "Inner"))
}

func TestRewrite_NonCalloutsUntouched(t *testing.T) {
	for _, src := range []string{
		"> plain quote\n",
		"> **[!note]** bold first\n",
		"> # [!note] heading first\n",
		"> [!note]x\n",
		"> - [!note] list first\n",
	} {
		out, n := convert(t, testRewriter(), src)
		assert.Zero(t, n, src)
		assert.Contains(t, out, "<blockquote>", src)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	p, err := markdown.NewParser(markdown.Options{Extenders: []goldmark.Extender{NewExtension()}})
	require.NoError(t, err)
	doc, err := p.Parse("/c.md", []byte("> [!tip] T\n> b\n"))
	require.NoError(t, err)

	r := testRewriter()
	require.Equal(t, 1, r.Rewrite(doc))
	var first bytes.Buffer
	require.NoError(t, p.Render(&first, doc))

	assert.Zero(t, r.Rewrite(doc))
	var second bytes.Buffer
	require.NoError(t, p.Render(&second, doc))
	assert.Equal(t, first.String(), second.String())

	c, ok := doc.Root.FirstChild().(*Callout)
	require.True(t, ok)
	assert.Equal(t, "tip", c.Header.Type)
	_, ok = c.FirstChild().(*Title)
	assert.True(t, ok)
	assert.Equal(t, ast.KindParagraph, c.LastChild().Kind())
}

func TestRewrite_CustomAttributes(t *testing.T) {
	r := NewRewriter(nil, Attributes{
		Container: map[string]string{"class": "box", "data-x": "1"},
		Icon:      map[string]string{"aria-hidden": "true"},
		Title:     map[string]string{"role": "heading"},
		Collapse:  map[string]string{"class": "chevron"},
	})
	out, _ := convert(t, r, "> [!bug]- Broken\n> details\n")
	assert.Contains(t, out, `<details class="box" data-x="1" data-callout="bug">`)
	assert.Contains(t, out, `<summary class="callout-title" role="heading">`)
	assert.Contains(t, out, `<div class="callout-icon" aria-hidden="true">`+bugIcon+`</div>`)
	assert.Contains(t, out, `<div class="chevron">`)
}

func TestRewrite_Observe(t *testing.T) {
	var seen []string
	r := testRewriter()
	r.Observe = func(calloutType string) { seen = append(seen, calloutType) }
	convert(t, r, "> [!warning] W\n> x\n\n> plain quote\n\n> [!note]\n> > [!tip] inner\n")
	assert.ElementsMatch(t, []string{"warning", "note", "tip"}, seen)
}

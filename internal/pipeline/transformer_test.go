package pipeline

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/embed"
	"git.home.luguber.info/inful/vaultmark/internal/metrics"
	"git.home.luguber.info/inful/vaultmark/internal/vault"
)

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes map[string]int
	embeds   map[metrics.EmbedLabel]int
	callouts map[string]int
	results  map[metrics.ResultLabel]int
	batches  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		outcomes: map[string]int{},
		embeds:   map[metrics.EmbedLabel]int{},
		callouts: map[string]int{},
		results:  map[metrics.ResultLabel]int{},
	}
}

func (r *countingRecorder) IncOutcome(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[kind]++
}

func (r *countingRecorder) IncEmbed(l metrics.EmbedLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeds[l]++
}

func (r *countingRecorder) IncCallout(t string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callouts[t]++
}

func (r *countingRecorder) IncDocumentResult(l metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[l]++
}

func (r *countingRecorder) ObserveBatchDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
}

func testVault() fstest.MapFS {
	return fstest.MapFS{
		"home.md":          {Data: []byte("# Home\n\n![[My Page]]\n")},
		"notes/My Page.md": {Data: []byte("Hello **there**\n")},
		"notes/intro.md":   {Data: []byte("# Intro\n\ntext\n")},
		"callouts.md":      {Data: []byte("> [!tip] Remember\n> see [[home]]\n")},
	}
}

func newTransformer(t *testing.T, opts Options, options ...Option) (*Transformer, fstest.MapFS) {
	t.Helper()
	fsys := testVault()
	ix, err := vault.NewBuilder(fsys).Build(context.Background())
	require.NoError(t, err)
	tr, err := New(ix, embed.NewFSLoader(fsys), opts, options...)
	require.NoError(t, err)
	return tr, fsys
}

func convert(t *testing.T, tr *Transformer, src string) string {
	t.Helper()
	html, _, err := tr.Convert(context.Background(), "/test.md", []byte(src))
	require.NoError(t, err)
	return string(html)
}

func TestConvert_Links(t *testing.T) {
	sink := diagnostics.NewCollector()
	tr, _ := newTransformer(t, DefaultOptions(), WithSink(sink))

	out := convert(t, tr, "See [[My Page]], [[home|start]] and [[missing]].\n")
	assert.Equal(t, `<p>See <a href="/notes/my-page">My Page</a>, <a href="/home">start</a> and <a href="#">missing</a>.</p>`+"\n", out)

	all := sink.All()
	require.Len(t, all, 1)
	assert.Equal(t, diagnostics.KindBrokenLink, all[0].Kind)
	assert.Equal(t, "missing", all[0].Target)
	assert.Equal(t, "/test.md", all[0].Document)
}

func TestConvert_URLPrefix(t *testing.T) {
	opts := DefaultOptions()
	opts.URLPrefix = "/docs/"
	tr, _ := newTransformer(t, opts)
	out := convert(t, tr, "[[My Page#Some Part]]\n")
	assert.Equal(t, `<p><a href="/docs/notes/my-page#some-part">My Page#Some Part</a></p>`+"\n", out)
}

func TestConvert_BlockEmbed(t *testing.T) {
	tr, fsys := newTransformer(t, DefaultOptions())
	html, _, err := tr.Convert(context.Background(), "/home.md", fsys["home.md"].Data)
	require.NoError(t, err)
	assert.Equal(t, "<h1 id=\"home\">Home</h1>\n<p>Hello <strong>there</strong></p>\n", string(html))
}

func TestConvert_EmbedsDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Embeds = false
	tr, _ := newTransformer(t, opts)
	out := convert(t, tr, "![[My Page]]\n")
	assert.Equal(t, `<p><a href="/notes/my-page">My Page</a></p>`+"\n", out)
}

func TestConvert_WikiLinksDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.WikiLinks = false
	tr, _ := newTransformer(t, opts)
	assert.False(t, tr.Options().Embeds)
	out := convert(t, tr, "[[My Page]]\n")
	assert.Equal(t, "<p>[[My Page]]</p>\n", out)
}

func TestConvert_Callouts(t *testing.T) {
	rec := newCountingRecorder()
	tr, fsys := newTransformer(t, DefaultOptions(), WithRecorder(rec))
	html, _, err := tr.Convert(context.Background(), "/callouts.md", fsys["callouts.md"].Data)
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, `<div class="callout" data-callout="tip">`)
	assert.Contains(t, out, `Remember</div>`)
	assert.Contains(t, out, `<p>see <a href="/home">home</a></p>`)
	assert.Equal(t, 1, rec.callouts["tip"])
	assert.Equal(t, 1, rec.outcomes["document_link"])
}

func TestConvert_CalloutsDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Callouts = false
	tr, _ := newTransformer(t, opts)
	out := convert(t, tr, "> [!note] Title\n> body\n")
	assert.Contains(t, out, "<blockquote>")
	assert.NotContains(t, out, "callout")
}

func TestConvert_CalloutInsideEmbed(t *testing.T) {
	fsys := fstest.MapFS{
		"host.md": {Data: []byte("![[box]]\n")},
		"box.md":  {Data: []byte("> [!warning]\n> careful\n")},
	}
	ix, err := vault.NewBuilder(fsys).Build(context.Background())
	require.NoError(t, err)
	rec := newCountingRecorder()
	tr, err := New(ix, embed.NewFSLoader(fsys), DefaultOptions(), WithRecorder(rec))
	require.NoError(t, err)

	html, _, err := tr.Convert(context.Background(), "/host.md", fsys["host.md"].Data)
	require.NoError(t, err)
	assert.Contains(t, string(html), `data-callout="warning"`)
	assert.Contains(t, string(html), "Warning</div>")
	assert.Equal(t, 1, rec.callouts["warning"])
	assert.Equal(t, 1, rec.embeds[metrics.EmbedExpanded])
}

func TestConvert_DuplicateHeadingsAcrossEmbeds(t *testing.T) {
	tr, _ := newTransformer(t, DefaultOptions())
	out := convert(t, tr, "# Intro\n\n![[intro]]\n")
	assert.Contains(t, out, `<h1 id="intro">Intro</h1>`)
	assert.Contains(t, out, `<h1 id="intro-1">Intro</h1>`)
}

func TestConvert_Attributes(t *testing.T) {
	opts := DefaultOptions()
	opts.Attributes.Links.Links = map[string]string{"class": "internal"}
	opts.Attributes.Links.BrokenLinks = map[string]string{"class": "broken"}
	tr, _ := newTransformer(t, opts)
	out := convert(t, tr, "[[home]] [[nope]]\n")
	assert.Contains(t, out, `<a href="/home" class="internal">home</a>`)
	assert.Contains(t, out, `<a href="#" class="broken">nope</a>`)
}

func TestNew_UnknownExtension(t *testing.T) {
	opts := DefaultOptions()
	opts.Markdown.Extensions = []string{"mermaid"}
	_, err := New(vault.NewIndex(nil), embed.NewFSLoader(fstest.MapFS{}), opts)
	require.Error(t, err)
}

func TestConvert_InvalidFrontMatter(t *testing.T) {
	rec := newCountingRecorder()
	tr, _ := newTransformer(t, DefaultOptions(), WithRecorder(rec))
	_, _, err := tr.Convert(context.Background(), "/bad.md", []byte("---\ntitle: x\n"))
	require.Error(t, err)
	assert.Equal(t, 1, rec.results[metrics.ResultFailed])
}

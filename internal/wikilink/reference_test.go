package wikilink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	cases := []struct {
		content string
		embed   bool
		want    Reference
	}{
		{"Page", false, Reference{Raw: "[[Page]]", RawTarget: "Page", Target: "Page"}},
		{"Page|Alias", false, Reference{Raw: "[[Page|Alias]]", RawTarget: "Page", Target: "Page", Alias: "Alias"}},
		{" Page # Sec | Shown ", false, Reference{Raw: "[[ Page # Sec | Shown ]]", RawTarget: "Page # Sec", Target: "Page", Anchor: "Sec", Alias: "Shown"}},
		{"#Heading", false, Reference{Raw: "[[#Heading]]", RawTarget: "#Heading", Anchor: "Heading"}},
		{`folder\Page`, false, Reference{Raw: `[[folder\Page]]`, RawTarget: "folder/Page", Target: "folder/Page"}},
		{`Page\|Alias`, false, Reference{Raw: `[[Page\|Alias]]`, RawTarget: "Page", Target: "Page", Alias: "Alias"}},
		{"a|b|c", false, Reference{Raw: "[[a|b|c]]", RawTarget: "a", Target: "a", Alias: "b|c"}},
		{"Page#One#Two", false, Reference{Raw: "[[Page#One#Two]]", RawTarget: "Page#One#Two", Target: "Page", Anchor: "One"}},
		{"pic.png|300", true, Reference{Raw: "![[pic.png|300]]", RawTarget: "pic.png", Target: "pic.png", Alias: "300", Embed: true}},
	}
	for _, tc := range cases {
		t.Run(tc.content, func(t *testing.T) {
			got, ok := ParseToken(tc.content, tc.embed)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseToken_Degenerate(t *testing.T) {
	for _, content := range []string{"", "   ", "|alias", " \t|x"} {
		_, ok := ParseToken(content, false)
		assert.False(t, ok, "%q", content)
	}
}

func TestReference_Label(t *testing.T) {
	for _, content := range []string{"Page", "Page#Sec", "#Sec", "dir/Page#Sec"} {
		ref, ok := ParseToken(content, false)
		require.True(t, ok)
		assert.Equal(t, content, ref.Label(), "label without alias is the raw target")
	}
	for _, content := range []string{"Page|Alias", "#Sec|Alias", "x#y|Alias"} {
		ref, ok := ParseToken(content, true)
		require.True(t, ok)
		assert.Equal(t, "Alias", ref.Label(), "alias always wins")
	}
}

func TestScan(t *testing.T) {
	text := "see [[A]] and ![[b.png|200]], skip [[ ]] then [[C#x]] tail [[open"
	var refs []string
	var spans []Span
	for ref, span := range Scan(text) {
		refs = append(refs, ref.Raw)
		spans = append(spans, span)
	}
	assert.Equal(t, []string{"[[A]]", "![[b.png|200]]", "[[C#x]]"}, refs)
	for i, s := range spans {
		assert.Equal(t, refs[i], text[s.Start:s.End])
	}

	seen := 0
	for range Scan(text) {
		seen++
		break
	}
	assert.Equal(t, 1, seen, "iteration stops early")
}

func TestExtractReferences(t *testing.T) {
	body := []byte("# T\n\nLink [[One]] and `[[Code]]`.\n\n```\n[[Fenced]]\n```\n\n![[Two|cap]]\n")
	occ := ExtractReferences(body)
	require.Len(t, occ, 2)
	assert.Equal(t, "One", occ[0].Target)
	assert.Equal(t, 3, occ[0].Line)
	assert.Equal(t, 6, occ[0].Column)
	assert.Equal(t, "Two", occ[1].Target)
	assert.True(t, occ[1].Embed)
	assert.Equal(t, 9, occ[1].Line)
	assert.Equal(t, 1, occ[1].Column)
}

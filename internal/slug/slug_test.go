package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World!", "hello-world"},
		{"crème brûlée", "creme-brulee"},
		{"myCamelCaseString", "my-camel-case-string"},
		{"  --Already--Slugged--  ", "already-slugged"},
		{"Section 2.1: Overview", "section-2-1-overview"},
		{"Ünïcödé Headings", "unicode-headings"},
		{"My Page", "my-page"},
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
		{"ABC", "abc"},
		{"fooBAR", "foo-bar"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, in := range []string{"Hello World", "crème brûlée", "a--b", "Über/Path"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), in)
		if once != "" {
			assert.True(t, IsSlug(once), once)
		}
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("a-b-c"))
	assert.True(t, IsSlug("v2"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug("-a"))
	assert.False(t, IsSlug("a--b"))
	assert.False(t, IsSlug("A"))
	assert.False(t, IsSlug("a_b"))
}

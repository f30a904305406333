package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		raw     string
		body    string
		present bool
	}{
		{"no front matter", "# Title\n\nHello\n", "", "# Title\n\nHello\n", false},
		{"yaml block", "---\nkey: value\n---\n# Title\n", "key: value\n", "# Title\n", true},
		{"crlf", "---\r\nkey: value\r\n---\r\n# Title\r\n", "key: value\r\n", "# Title\r\n", true},
		{"empty block", "---\n---\n# Title\n", "", "# Title\n", true},
		{"closing at eof", "---\nkey: value\n---", "key: value\n", "", true},
		{"dashes inside value", "---\nkey: ---x\nother: 1\n---\nbody", "key: ---x\nother: 1\n", "body", true},
		{"thematic break later", "text\n---\nmore", "", "text\n---\nmore", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Split([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.present, b.Present)
			assert.Equal(t, tc.raw, string(b.Raw))
			assert.Equal(t, tc.body, string(b.Body))
		})
	}
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingClosingDelimiter))

	_, err = Split([]byte("---\nkey: value\n----\n"))
	assert.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestParse(t *testing.T) {
	m, body, err := Parse([]byte("---\ntitle: My Note\ntags: [\"#one\", two]\naliases: first, second\npublish: false\n---\nBody\n"))
	require.NoError(t, err)
	assert.Equal(t, "Body\n", string(body))
	assert.Equal(t, "My Note", m.Title())
	assert.Equal(t, []string{"one", "two"}, m.Tags())
	assert.Equal(t, []string{"first", "second"}, m.Strings("aliases"))
	assert.False(t, m.Published())

	m, body, err = Parse([]byte("plain"))
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.Equal(t, "plain", string(body))
	assert.True(t, m.Published())
	assert.Empty(t, m.Title())
}

func TestDecode(t *testing.T) {
	m, err := Decode([]byte("count: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "3", m.String("count"))

	_, err = Decode([]byte(": not yaml"))
	require.Error(t, err)

	m, err = Decode([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

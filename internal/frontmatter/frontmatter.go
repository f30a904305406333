// Package frontmatter separates a note's YAML front matter from its Markdown
// body and exposes the few fields the site output cares about.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the note opened a front matter block
// that never closes.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Block is the result of splitting a note.
type Block struct {
	// Raw is the YAML between the delimiters, nil when Present is false.
	Raw []byte
	// Body is the Markdown following the block, or the whole input.
	Body []byte
	// Present reports whether the note started with a front matter block.
	Present bool
}

// Split separates `---` delimited YAML front matter from the body. The closing
// delimiter may be the last line of the file.
func Split(content []byte) (Block, error) {
	nl := newline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return Block{Body: content}, nil
	}

	rest := content[len(open):]
	if isDelimiterLine(rest, nl) {
		return Block{Raw: []byte{}, Body: afterLine(rest, nl), Present: true}, nil
	}

	for offset := 0; ; {
		idx := bytes.Index(rest[offset:], []byte(nl+"---"))
		if idx < 0 {
			return Block{}, ErrMissingClosingDelimiter
		}
		lineStart := offset + idx + len(nl)
		if isDelimiterLine(rest[lineStart:], nl) {
			return Block{
				Raw:     rest[:lineStart],
				Body:    afterLine(rest[lineStart:], nl),
				Present: true,
			}, nil
		}
		offset = lineStart
	}
}

func isDelimiterLine(b []byte, nl string) bool {
	if !bytes.HasPrefix(b, []byte("---")) {
		return false
	}
	tail := b[3:]
	return len(tail) == 0 || bytes.HasPrefix(tail, []byte(nl))
}

func afterLine(b []byte, nl string) []byte {
	if i := bytes.Index(b, []byte(nl)); i >= 0 {
		return b[i+len(nl):]
	}
	return b[len(b):]
}

func newline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Matter holds decoded front matter fields.
type Matter map[string]any

// Parse splits content and decodes its front matter. A note without front
// matter yields an empty Matter.
func Parse(content []byte) (Matter, []byte, error) {
	block, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	m, err := Decode(block.Raw)
	if err != nil {
		return nil, nil, err
	}
	return m, block.Body, nil
}

// Decode parses raw YAML front matter (without delimiters).
func Decode(raw []byte) (Matter, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Matter{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Matter(fields), nil
}

// String returns a scalar field rendered as a string, or "".
func (m Matter) String(key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// Strings returns a list field. A single scalar or a comma separated string
// is accepted as well, the way Obsidian reads tags and aliases.
func (m Matter) Strings(key string) []string {
	var out []string
	switch v := m[key].(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Title returns the `title` field.
func (m Matter) Title() string { return m.String("title") }

// Tags returns the `tags` field without leading hashes.
func (m Matter) Tags() []string {
	tags := m.Strings("tags")
	for i, t := range tags {
		tags[i] = strings.TrimPrefix(t, "#")
	}
	return tags
}

// Published reports whether the note may be written to the site output.
// Only an explicit `publish: false` excludes it.
func (m Matter) Published() bool {
	v, ok := m["publish"].(bool)
	return !ok || v
}

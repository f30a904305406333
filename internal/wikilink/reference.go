// Package wikilink parses Obsidian `[[target#anchor|alias]]` references,
// resolves them against the content index and rewrites them in the goldmark
// tree as links, images or embed placeholders.
package wikilink

import "strings"

// Reference is one parsed `[[...]]` or `![[...]]` token.
type Reference struct {
	// Raw is the token as written, brackets included.
	Raw string
	// RawTarget is everything before the alias with backslashes turned into
	// slashes, trimmed.
	RawTarget string
	Target    string
	Anchor    string
	Alias     string
	Embed     bool
}

// HasAnchor reports whether the reference points at a heading.
func (r Reference) HasAnchor() bool { return r.Anchor != "" }

// Label is the display text: the alias when given, else the raw target as
// typed, anchor included.
func (r Reference) Label() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.RawTarget
}

// ParseToken parses the content between `[[` and `]]`. It reports false for a
// token with no usable target, which callers leave as literal text.
//
// The first `|` separates the alias. Inside tables Obsidian writes the
// separator as `\|`; the escaping backslash is dropped.
func ParseToken(content string, embed bool) (Reference, bool) {
	ref := Reference{Embed: embed, Raw: "[[" + content + "]]"}
	if embed {
		ref.Raw = "!" + ref.Raw
	}

	target := content
	if i := strings.IndexByte(content, '|'); i >= 0 {
		target = strings.TrimSuffix(content[:i], `\`)
		ref.Alias = strings.TrimSpace(content[i+1:])
	}

	ref.RawTarget = strings.TrimSpace(strings.ReplaceAll(target, `\`, "/"))
	if ref.RawTarget == "" {
		return Reference{}, false
	}

	name, anchor, _ := strings.Cut(ref.RawTarget, "#")
	ref.Target = strings.TrimSpace(name)
	// a second '#' ends the anchor, as in [[Page#Section#Sub]] -> "Section"
	anchor, _, _ = strings.Cut(anchor, "#")
	ref.Anchor = strings.TrimSpace(anchor)
	return ref, true
}

// Package callout turns Obsidian callout blockquotes (`> [!type]± title`)
// into titled, optionally collapsible containers.
package callout

import (
	"regexp"
	"strings"
)

// Fold is the collapse state of a callout.
type Fold int

const (
	// FoldNone marks a callout that cannot be collapsed.
	FoldNone Fold = iota
	// FoldOpen is `+`: collapsible, initially open.
	FoldOpen
	// FoldClosed is `-`: collapsible, initially closed.
	FoldClosed
)

var headerPattern = regexp.MustCompile(`^\[!(\w[\w-]*)\]([+-]?)(?:[ \t]+(.*))?(?:\n|$)`)

// Header is the parsed first line of a callout.
type Header struct {
	// Type is lowercased.
	Type string
	Fold Fold
	// Title is the trailing text of the header line, or the capitalized type
	// when that is blank.
	Title string
}

// Collapsible reports whether the callout renders as <details>.
func (h Header) Collapsible() bool { return h.Fold != FoldNone }

// Open reports whether a collapsible callout starts expanded.
func (h Header) Open() bool { return h.Fold != FoldClosed }

// ParseHeader matches line against the callout header grammar.
func ParseHeader(line string) (Header, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Header{}, false
	}
	h := Header{Type: strings.ToLower(m[1])}
	switch m[2] {
	case "+":
		h.Fold = FoldOpen
	case "-":
		h.Fold = FoldClosed
	}
	h.Title = strings.TrimSpace(m[3])
	if h.Title == "" {
		h.Title = capitalize(h.Type)
	}
	return h, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

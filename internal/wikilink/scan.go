package wikilink

import (
	"iter"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/markdown"
)

// Span is a byte range [Start, End) within scanned text.
type Span struct {
	Start int
	End   int
}

// Scan lazily yields every reference token in text with its span. Tokens end
// at the first `]]`; degenerate tokens such as `[[ ]]` are skipped.
func Scan(text string) iter.Seq2[Reference, Span] {
	return func(yield func(Reference, Span) bool) {
		pos := 0
		for pos < len(text) {
			open := strings.Index(text[pos:], "[[")
			if open < 0 {
				return
			}
			open += pos
			closing := strings.Index(text[open+2:], "]]")
			if closing < 0 {
				return
			}
			closing += open + 2

			start, embed := open, false
			if open > 0 && text[open-1] == '!' {
				start, embed = open-1, true
			}
			ref, ok := ParseToken(text[open+2:closing], embed)
			pos = closing + 2
			if !ok {
				continue
			}
			if !yield(ref, Span{Start: start, End: pos}) {
				return
			}
		}
	}
}

// Occurrence locates a reference within a note body.
type Occurrence struct {
	Reference
	Line   int
	Column int
}

// ExtractReferences returns every reference in a raw note body, skipping code
// spans and code blocks. Columns are 1-based byte offsets.
func ExtractReferences(body []byte) []Occurrence {
	var out []Occurrence
	for line, text := range markdown.ProseLines(body) {
		for ref, span := range Scan(text) {
			out = append(out, Occurrence{Reference: ref, Line: line, Column: span.Start + 1})
		}
	}
	return out
}

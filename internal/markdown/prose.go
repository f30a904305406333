package markdown

import (
	"iter"
	"strings"
)

// ProseLines yields the 1-based number and text of every line of body that is
// not verbatim content. Fenced and indented code blocks are skipped and inline
// code spans are blanked with spaces so columns stay stable.
//
// It is a line scanner, not a parser: it serves quick reference extraction
// where building a full tree is not worth it.
func ProseLines(body []byte) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		inFence := false
		activeFence := ""
		for i, line := range strings.Split(string(body), "\n") {
			line = strings.TrimSuffix(line, "\r")
			trimmed := strings.TrimSpace(line)
			if fence := fenceMarker(trimmed); fence != "" {
				inFence, activeFence = toggleFence(inFence, activeFence, fence)
				continue
			}
			if inFence || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
				continue
			}
			if !yield(i+1, blankCodeSpans(line)) {
				return
			}
		}
	}
}

func fenceMarker(trimmed string) string {
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	}
	return ""
}

func toggleFence(inFence bool, activeFence, fence string) (bool, string) {
	if !inFence {
		return true, fence
	}
	if activeFence == fence {
		return false, ""
	}
	return inFence, activeFence
}

func blankCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '`' {
			out.WriteByte(s[i])
			i++
			continue
		}

		run := 1
		for i+run < len(s) && s[i+run] == '`' {
			run++
		}

		marker := strings.Repeat("`", run)
		closeRel := strings.Index(s[i+run:], marker)
		if closeRel == -1 {
			// unclosed span is literal text
			out.WriteString(marker)
			i += run
			continue
		}

		end := i + run + closeRel + run
		out.WriteString(strings.Repeat(" ", end-i))
		i = end
	}

	return out.String()
}

// Package slug turns arbitrary text into URL path segments and heading anchors.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Func converts text into a URL-friendly slug. Components accept a Func so the
// default algorithm can be replaced.
type Func func(text string) string

var (
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	nonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
)

// combining diacritical marks block (U+0300..U+036F)
var diacritics = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
})

// Slugify lowercases text, splits camelCase words, strips diacritics and joins
// alphanumeric runs with single hyphens.
//
//	Slugify("Hello World!")       // "hello-world"
//	Slugify("crème brûlée")       // "creme-brulee"
//	Slugify("myCamelCaseString")  // "my-camel-case-string"
func Slugify(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = camelBoundary.ReplaceAllString(text, "$1 $2")
	text = stripDiacritics(text)
	text = strings.ToLower(text)
	text = nonAlnumRun.ReplaceAllString(text, "-")
	return strings.Trim(text, "-")
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(diacritics))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// IsSlug reports whether s is already in canonical slug form.
func IsSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	prevHyphen := false
	for _, r := range s {
		switch {
		case r == '-':
			if prevHyphen {
				return false
			}
			prevHyphen = true
		case r < unicode.MaxASCII && (unicode.IsLower(r) || unicode.IsDigit(r)):
			prevHyphen = false
		default:
			return false
		}
	}
	return true
}

package site

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/vaultmark/internal/frontmatter"
)

// volatileKeys never influence a page fingerprint.
var volatileKeys = map[string]struct{}{
	mdfp.FingerprintField: {},
	"lastmod":             {},
	"uid":                 {},
}

// pageFingerprint hashes the page's front matter together with its final
// HTML. Map keys are serialized in sorted order so the result is stable.
func pageFingerprint(matter frontmatter.Matter, html []byte) (string, error) {
	fields := make(map[string]any, len(matter))
	for k, v := range matter {
		if _, skip := volatileKeys[k]; skip {
			continue
		}
		fields[k] = v
	}

	meta := ""
	if len(fields) > 0 {
		out, err := yaml.Marshal(fields)
		if err != nil {
			return "", err
		}
		meta = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(meta, string(html)), nil
}

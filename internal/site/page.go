package site

import (
	"html/template"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/frontmatter"
)

// Page is the data handed to the page template.
type Page struct {
	Title       string
	Path        string
	URL         string
	Tags        []string
	Content     template.HTML
	Backlinks   []Backlink
	Frontmatter frontmatter.Matter
}

// Backlink is a note referencing the page being rendered.
type Backlink struct {
	Title string
	URL   string
}

const defaultPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
</head>
<body>
<main>
<article>
{{ .Content }}
</article>
{{- if .Tags }}
<ul class="tags">
{{- range .Tags }}
<li>#{{ . }}</li>
{{- end }}
</ul>
{{- end }}
{{- if .Backlinks }}
<nav class="backlinks">
<h2>Linked from</h2>
<ul>
{{- range .Backlinks }}
<li><a href="{{ .URL }}">{{ .Title }}</a></li>
{{- end }}
</ul>
</nav>
{{- end }}
</main>
</body>
</html>
`

// loadTemplate parses the page template file, or the built-in one when file
// is empty.
func loadTemplate(file string) (*template.Template, error) {
	src := defaultPageTemplate
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "read page template").
				WithContext("path", file).Build()
		}
		src = string(data)
	}
	tmpl, err := template.New("page").Parse(src)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse page template").
			WithContext("path", file).Build()
	}
	return tmpl, nil
}

// pageTitle is the front matter title, else the file name without extension.
func pageTitle(matter frontmatter.Matter, logicalPath string) string {
	if t := strings.TrimSpace(matter.Title()); t != "" {
		return t
	}
	base := path.Base(logicalPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

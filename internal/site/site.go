// Package site writes a vault as a static HTML site: one page per note at the
// path its wiki-links point to, plus the image assets.
package site

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/frontmatter"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/pipeline"
	"git.home.luguber.info/inful/vaultmark/internal/vault"
	"git.home.luguber.info/inful/vaultmark/internal/wikilink"
)

// FingerprintStore remembers what was last written to each output file.
type FingerprintStore interface {
	Fingerprint(ctx context.Context, outputPath string) (string, bool, error)
	PutFingerprint(ctx context.Context, outputPath, fingerprint string) error
	ResetFingerprints(ctx context.Context) error
}

// Options configure a Builder.
type Options struct {
	OutputDir string
	// Clean removes OutputDir before building.
	Clean bool
	// PageTemplate is an html/template file; empty uses the built-in page.
	PageTemplate string
}

// Failure is a note that could not be written.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes a build.
type Report struct {
	RunID       string
	Documents   int
	Written     int
	Unchanged   int
	Unpublished int
	Images      int
	Failures    []Failure
	Duration    time.Duration
}

// Failed is the number of notes that could not be written.
func (r Report) Failed() int { return len(r.Failures) }

// Builder renders an indexed vault into an output directory.
type Builder struct {
	fsys         fs.FS
	index        *vault.Index
	transformer  *pipeline.Transformer
	opts         Options
	tmpl         *template.Template
	fingerprints FingerprintStore
	logger       *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithFingerprints skips rewriting pages whose fingerprint is unchanged.
func WithFingerprints(s FingerprintStore) Option {
	return func(b *Builder) { b.fingerprints = s }
}

// New returns a Builder reading notes and images from fsys.
func New(fsys fs.FS, index *vault.Index, t *pipeline.Transformer, opts Options, options ...Option) (*Builder, error) {
	if opts.OutputDir == "" {
		return nil, errors.ValidationError("output directory is required").Build()
	}
	tmpl, err := loadTemplate(opts.PageTemplate)
	if err != nil {
		return nil, err
	}
	b := &Builder{
		fsys:        fsys,
		index:       index,
		transformer: t,
		opts:        opts,
		tmpl:        tmpl,
		logger:      slog.Default(),
	}
	for _, o := range options {
		o(b)
	}
	return b, nil
}

// PagePath returns the output file of a note, relative to the output
// directory, e.g. "notes/my-page/index.html".
func (b *Builder) PagePath(logicalPath string) string {
	return PagePath(b.transformer.Options(), logicalPath)
}

// PagePath maps a note to its output file for the given transformer options.
// The URL prefix is where the site is served, so it does not appear on disk.
func PagePath(opts pipeline.Options, logicalPath string) string {
	r := wikilink.NewResolver(nil, opts.Slugify, "")
	u := strings.Trim(r.DocumentURL(logicalPath, ""), "/")
	if u == "" {
		return "index.html"
	}
	return u + "/index.html"
}

// Build renders every note and copies every image. Notes that fail are listed
// in the report; the returned error is reserved for failures of the build as
// a whole.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	if b.opts.Clean {
		if err := os.RemoveAll(b.opts.OutputDir); err != nil {
			return report, errors.WrapError(err, errors.CategoryFileSystem, "clean output directory").
				WithContext("path", b.opts.OutputDir).Build()
		}
		if b.fingerprints != nil {
			if err := b.fingerprints.ResetFingerprints(ctx); err != nil {
				return report, err
			}
		}
	}

	docs := b.index.Documents()
	report.Documents = len(docs)
	jobs := make([]pipeline.Job, 0, len(docs))
	sources := make([]source, 0, len(docs))
	for _, d := range docs {
		raw, err := fs.ReadFile(b.fsys, strings.TrimPrefix(d.Path, "/"))
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: d.Path,
				Err: errors.WrapError(err, errors.CategoryFileSystem, "read note").WithContext("path", d.Path).Build()})
			continue
		}
		jobs = append(jobs, pipeline.Job{Path: d.Path, Source: raw})
		if src, ok := rawSource(d.Path, raw); ok {
			sources = append(sources, src)
		}
	}

	batch := b.transformer.TransformAll(ctx, jobs)
	report.RunID = batch.RunID
	if err := ctx.Err(); err != nil {
		return report, errors.WrapError(err, errors.CategoryRuntime, "build canceled").Build()
	}
	links := backlinks(b.transformer.Resolver(), sources)

	for _, res := range batch.Results {
		if res.Err != nil {
			report.Failures = append(report.Failures, Failure{Path: res.Path, Err: res.Err})
			continue
		}
		if !res.Document.Frontmatter.Published() {
			report.Unpublished++
			continue
		}
		written, err := b.writePage(ctx, res, links[res.Path])
		switch {
		case err != nil:
			report.Failures = append(report.Failures, Failure{Path: res.Path, Err: err})
		case written:
			report.Written++
		default:
			report.Unchanged++
		}
	}

	for _, img := range b.index.Images() {
		copied, err := b.copyImage(img.Path)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: img.Path, Err: err})
			continue
		}
		if copied {
			report.Images++
		}
	}

	report.Duration = time.Since(start)
	for _, f := range report.Failures {
		b.logger.Warn("Output not written", logfields.Document(f.Path), logfields.Error(f.Err))
	}
	b.logger.Info("Site built",
		logfields.RunID(report.RunID),
		slog.Int("documents", report.Documents),
		slog.Int("written", report.Written),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("unpublished", report.Unpublished),
		slog.Int("images", report.Images),
		slog.Int("failed", report.Failed()),
		logfields.Since(start))
	return report, nil
}

func rawSource(logicalPath string, raw []byte) (source, bool) {
	matter, body, err := frontmatter.Parse(raw)
	if err != nil {
		return source{}, false
	}
	if !matter.Published() {
		return source{}, false
	}
	return source{path: logicalPath, title: pageTitle(matter, logicalPath), body: body}, true
}

func (b *Builder) writePage(ctx context.Context, res pipeline.Result, links []Backlink) (bool, error) {
	rel := b.PagePath(res.Path)
	full, err := outputPath(b.opts.OutputDir, rel)
	if err != nil {
		return false, err
	}

	matter := res.Document.Frontmatter
	page := Page{
		Title:       pageTitle(matter, res.Path),
		Path:        res.Path,
		URL:         b.transformer.Resolver().DocumentURL(res.Path, ""),
		Tags:        matter.Tags(),
		Content:     template.HTML(res.HTML), //nolint:gosec // rendered by the markdown engine
		Backlinks:   links,
		Frontmatter: matter,
	}
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, page); err != nil {
		return false, errors.WrapError(err, errors.CategoryRender, "execute page template").
			WithContext("document", res.Path).Build()
	}

	fp, err := pageFingerprint(matter, buf.Bytes())
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryInternal, "fingerprint page").
			WithContext("document", res.Path).Build()
	}
	if b.fingerprints != nil {
		prev, ok, err := b.fingerprints.Fingerprint(ctx, rel)
		if err != nil {
			b.logger.Warn("Fingerprint lookup failed", logfields.Path(rel), logfields.Error(err))
		} else if ok && prev == fp {
			if _, statErr := os.Stat(full); statErr == nil {
				return false, nil
			}
		}
	}

	if err := writeFile(full, buf.Bytes()); err != nil {
		return false, err
	}
	if b.fingerprints != nil {
		if err := b.fingerprints.PutFingerprint(ctx, rel, fp); err != nil {
			b.logger.Warn("Fingerprint not stored", logfields.Path(rel), logfields.Error(err))
		}
	}
	return true, nil
}

func (b *Builder) copyImage(logicalPath string) (bool, error) {
	dst, err := outputPath(b.opts.OutputDir, logicalPath)
	if err != nil {
		return false, err
	}
	name := strings.TrimPrefix(logicalPath, "/")
	f, err := b.fsys.Open(name)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "open image").
			WithContext("path", logicalPath).Build()
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "stat image").
			WithContext("path", logicalPath).Build()
	}
	return copyAsset(f, info, dst)
}

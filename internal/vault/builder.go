package vault

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
)

// DimensionCache remembers probed image sizes between index builds.
type DimensionCache interface {
	LookupDimensions(ctx context.Context, path string, size int64, modTime time.Time) (width, height int, ok bool)
	StoreDimensions(ctx context.Context, path string, size int64, modTime time.Time, width, height int) error
}

// Builder walks a vault filesystem and produces an Index.
type Builder struct {
	fsys    fs.FS
	logger  *slog.Logger
	cache   DimensionCache
	workers int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDimensionCache enables reuse of previously probed image sizes.
func WithDimensionCache(c DimensionCache) Option {
	return func(b *Builder) { b.cache = c }
}

// WithWorkers bounds the number of concurrent image probes.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// NewBuilder creates a Builder over fsys.
func NewBuilder(fsys fs.FS, opts ...Option) *Builder {
	b := &Builder{fsys: fsys, logger: slog.Default(), workers: 4}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildDir indexes the directory at root.
func BuildDir(ctx context.Context, root string, opts ...Option) (*Index, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotFound, "vault root not found").
			WithContext("root", root).Build()
	}
	if !st.IsDir() {
		return nil, errors.ValidationError("vault root is not a directory").
			WithContext("root", root).Build()
	}
	return NewBuilder(os.DirFS(root), opts...).Build(ctx)
}

type candidate struct {
	key  string
	desc Descriptor
}

// Build walks the filesystem and returns the finished index. Unreadable
// entries and corrupt images are skipped.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	start := time.Now()
	var docs []candidate
	var images []string

	err := fs.WalkDir(b.fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == "." {
				return walkErr
			}
			b.logger.Warn("Skipping unreadable vault entry", logfields.Path(p), logfields.Error(walkErr))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(path.Ext(d.Name()))
		switch {
		case IsImageExt(ext):
			images = append(images, p)
		case ext == ".md":
			desc := Descriptor{Kind: KindDocument, Path: "/" + p}
			base := strings.TrimSuffix(d.Name(), path.Ext(d.Name()))
			docs = append(docs, candidate{key: strings.ToLower(base), desc: desc})
			if rel := strings.TrimSuffix(p, path.Ext(p)); rel != base {
				docs = append(docs, candidate{key: strings.ToLower(rel), desc: desc})
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryIndex, "vault walk failed").Build()
	}

	probed := b.probeAll(ctx, images)
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "index build canceled").Build()
	}

	entries := make(map[string]Descriptor, len(docs)+len(probed))
	for _, c := range append(probed, docs...) {
		prev, exists := entries[c.key]
		if exists && !preferred(c.desc.Path, prev.Path) {
			b.logger.Debug("Index key collision", logfields.Target(c.key),
				logfields.Path(c.desc.Path), slog.String("kept", prev.Path))
			continue
		}
		entries[c.key] = c.desc
	}

	ix := NewIndex(entries)
	b.logger.Debug("Content index built",
		slog.Int("documents", len(ix.documents)),
		slog.Int("images", len(ix.images)),
		logfields.Since(start))
	return ix, nil
}

// preferred reports whether path a should win a key collision against b:
// shallower paths first, then lexical order.
func preferred(a, b string) bool {
	da, db := strings.Count(a, "/"), strings.Count(b, "/")
	if da != db {
		return da < db
	}
	return a < b
}

func (b *Builder) probeAll(ctx context.Context, paths []string) []candidate {
	out := make([]candidate, len(paths))
	ok := make([]bool, len(paths))
	sem := make(chan struct{}, b.workers)
	var wg sync.WaitGroup

	for i, p := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			w, h, err := b.dimensions(ctx, p)
			if err != nil {
				b.logger.Warn("Skipping unreadable image", logfields.Path(p), logfields.Error(err))
				return
			}
			out[i] = candidate{
				key:  strings.ToLower(path.Base(p)),
				desc: Descriptor{Kind: KindImage, Path: "/" + p, Width: w, Height: h},
			}
			ok[i] = true
		}(i, p)
	}
	wg.Wait()

	result := out[:0]
	for i := range out {
		if ok[i] {
			result = append(result, out[i])
		}
	}
	return result
}

func (b *Builder) dimensions(ctx context.Context, p string) (int, int, error) {
	info, err := fs.Stat(b.fsys, p)
	if err != nil {
		return 0, 0, err
	}
	if b.cache != nil {
		if w, h, ok := b.cache.LookupDimensions(ctx, p, info.Size(), info.ModTime()); ok {
			return w, h, nil
		}
	}
	f, err := b.fsys.Open(p)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()

	w, h, err := probeDimensions(f, strings.ToLower(path.Ext(p)))
	if err != nil {
		return 0, 0, err
	}
	if b.cache != nil {
		if err := b.cache.StoreDimensions(ctx, p, info.Size(), info.ModTime(), w, h); err != nil {
			b.logger.Debug("Dimension cache write failed", logfields.Path(p), logfields.Error(err))
		}
	}
	return w, h, nil
}

// Package diagnostics collects the non-fatal findings of a transform: broken
// references, embeds that could not be loaded or parsed, and embeds cut off
// at the depth bound. None of them stop a document from rendering.
package diagnostics

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"git.home.luguber.info/inful/vaultmark/internal/logfields"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindBrokenLink         Kind = "broken_link"
	KindEmbedLoadFailed    Kind = "embed_load_failed"
	KindEmbedParseFailed   Kind = "embed_parse_failed"
	KindEmbedDepthExceeded Kind = "embed_depth_exceeded"
)

// Diagnostic is a single finding.
type Diagnostic struct {
	Kind Kind
	// Document is the note being transformed when the finding occurred.
	Document string
	// Target is the referenced name or path.
	Target string
	Depth  int
	Err    error
}

// Message returns a short human readable description.
func (d Diagnostic) Message() string {
	switch d.Kind {
	case KindBrokenLink:
		return "unresolved reference"
	case KindEmbedLoadFailed:
		return "embedded note could not be loaded"
	case KindEmbedParseFailed:
		return "embedded note could not be parsed"
	case KindEmbedDepthExceeded:
		return "embed depth limit reached, linked instead"
	default:
		return string(d.Kind)
	}
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Report(ctx context.Context, d Diagnostic)
}

// Discard drops every diagnostic.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(context.Context, Diagnostic) {}

// Collector keeps diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Report(_ context.Context, d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// All returns a snapshot of the collected diagnostics.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Count returns the number of diagnostics of kind k.
func (c *Collector) Count(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Reset drops everything collected so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// LogSink writes diagnostics to a logger. Broken links log at debug level,
// embed problems at warn.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Report(ctx context.Context, d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelWarn
	if d.Kind == KindBrokenLink || d.Kind == KindEmbedDepthExceeded {
		level = slog.LevelDebug
	}
	attrs := []slog.Attr{
		logfields.Outcome(string(d.Kind)),
		logfields.Document(d.Document),
		logfields.Target(d.Target),
		logfields.Depth(d.Depth),
	}
	if d.Err != nil {
		attrs = append(attrs, logfields.Error(d.Err))
	}
	logger.LogAttrs(ctx, level, d.Message(), attrs...)
}

// Multi fans a diagnostic out to several sinks.
func Multi(sinks ...Sink) Sink {
	return multi(slices.DeleteFunc(slices.Clone(sinks), func(s Sink) bool { return s == nil }))
}

type multi []Sink

func (m multi) Report(ctx context.Context, d Diagnostic) {
	for _, s := range m {
		s.Report(ctx, d)
	}
}

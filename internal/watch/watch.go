// Package watch rebuilds the site whenever the vault changes on disk.
package watch

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/metrics"
)

// Rebuild triggers.
const (
	TriggerStartup = "startup"
	TriggerChange  = "change"
	TriggerRescan  = "rescan"
)

// RebuildFunc performs one full build. Errors are logged; watching continues.
type RebuildFunc func(ctx context.Context, trigger string) error

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration
	// RescanInterval forces a rebuild periodically; zero disables it.
	RescanInterval time.Duration
	// MetricsAddress serves /metrics while watching when set.
	MetricsAddress string
	Gatherer       prometheus.Gatherer
}

// Watcher runs rebuilds on a single worker, so at most one build runs at a
// time and changes arriving during a build collapse into one follow-up.
type Watcher struct {
	root     string
	rebuild  RebuildFunc
	opts     Options
	recorder metrics.Recorder
	logger   *slog.Logger
	requests chan string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Watcher) {
		if r != nil {
			w.recorder = r
		}
	}
}

// New returns a Watcher over the vault directory root.
func New(root string, rebuild RebuildFunc, opts Options, options ...Option) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	w := &Watcher{
		root:     root,
		rebuild:  rebuild,
		opts:     opts,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		requests: make(chan string, 1),
	}
	for _, o := range options {
		o(w)
	}
	return w
}

// Request queues a rebuild. A request made while one is already queued is
// absorbed by it.
func (w *Watcher) Request(trigger string) {
	select {
	case w.requests <- trigger:
	default:
		w.logger.Debug("Rebuild already pending", logfields.Event(trigger))
	}
}

// Run builds once, then watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "create file watcher").Build()
	}
	defer func() { _ = fsw.Close() }()
	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}

	scheduler, err := w.startScheduler()
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	srv := w.startMetricsServer()
	if srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.work(runCtx)
	}()

	debounce := newDebouncer(w.opts.Debounce, func() { w.Request(TriggerChange) })
	defer debounce.Stop()

	w.Request(TriggerStartup)
	w.logger.Info("Watching vault", logfields.Root(w.root),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("rescan_interval", w.opts.RescanInterval))

	w.loop(runCtx, fsw.Events, fsw.Errors,
		func(ev fsnotify.Event) bool { return w.handleEvent(fsw, ev) },
		debounce.Trigger)
	cancel()
	<-done
	w.logger.Info("Watch stopped")
	return nil
}

// loop dispatches watcher events until ctx is done or the watcher closes
// either channel.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	relevant func(fsnotify.Event) bool, trigger func(),
) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				w.logger.Warn("File watcher closed")
				return
			}
			if relevant(ev) {
				trigger()
			}
		case err, ok := <-errs:
			if !ok {
				w.logger.Warn("File watcher closed")
				return
			}
			w.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-w.requests:
			start := time.Now()
			w.recorder.IncRebuild(trigger)
			if err := w.rebuild(ctx, trigger); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Event(trigger), logfields.Error(err))
				continue
			}
			w.logger.Info("Rebuild finished", logfields.Event(trigger), logfields.Since(start))
		}
	}
}

// handleEvent reports whether ev should trigger a rebuild. New directories
// are added to the watch list.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if shouldIgnore(ev.Name) || insideHidden(w.root, ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addRecursive(fsw, ev.Name)
		}
	}
	w.logger.Debug("Vault change", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return errors.WrapError(err, errors.CategoryFileSystem, "watch vault").
					WithContext("path", dir).Build()
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && shouldIgnore(p) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	if w.opts.RescanInterval <= 0 {
		return nil, nil
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.RescanInterval),
		gocron.NewTask(func() { w.Request(TriggerRescan) }),
		gocron.WithName("vault-rescan"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.WrapError(err, errors.CategoryRuntime, "schedule rescan").Build()
	}
	s.Start()
	return s, nil
}

func (w *Watcher) startMetricsServer() *http.Server {
	if w.opts.MetricsAddress == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(w.opts.Gatherer))
	srv := &http.Server{
		Addr:              w.opts.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			w.logger.Error("Metrics server failed", slog.String("address", w.opts.MetricsAddress), logfields.Error(err))
		}
	}()
	w.logger.Info("Serving metrics", slog.String("address", w.opts.MetricsAddress))
	return srv
}

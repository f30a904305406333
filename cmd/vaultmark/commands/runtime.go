package commands

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/vaultmark/internal/config"
	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/embed"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/metrics"
	"git.home.luguber.info/inful/vaultmark/internal/notify"
	"git.home.luguber.info/inful/vaultmark/internal/pipeline"
	"git.home.luguber.info/inful/vaultmark/internal/retry"
	"git.home.luguber.info/inful/vaultmark/internal/site"
	"git.home.luguber.info/inful/vaultmark/internal/store"
	"git.home.luguber.info/inful/vaultmark/internal/vault"
)

// runtime wires the configured components for one command invocation.
type runtime struct {
	g           *Global
	cfg         *config.Config
	cache       *store.Store
	registry    *prometheus.Registry
	recorder    metrics.Recorder
	diagnostics *diagnostics.Collector
	publisher   notify.Publisher
}

func openRuntime(g *Global, root *CLI) (*runtime, error) {
	cfg, warnings, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(g, cfg, root.Verbose)
	for _, w := range warnings {
		g.Logger.Warn("Configuration adjusted", logfields.Path(root.Config), logfields.Event(w))
	}

	registry := prometheus.NewRegistry()
	rt := &runtime{
		g:           g,
		cfg:         cfg,
		registry:    registry,
		recorder:    metrics.NewPrometheusRecorder(registry),
		diagnostics: diagnostics.NewCollector(),
		publisher:   notify.NoopPublisher{},
	}
	if cfg.Vault.CachePath != "" {
		s, err := store.Open(cfg.Vault.CachePath)
		if err != nil {
			g.Logger.Warn("Build cache unavailable", logfields.Path(cfg.Vault.CachePath), logfields.Error(err))
		} else {
			rt.cache = s
		}
	}
	return rt, nil
}

// enableEvents connects the NATS publisher when events are configured.
func (rt *runtime) enableEvents() error {
	if rt.cfg.Events.NATSURL == "" {
		return nil
	}
	p, err := notify.NewNATSPublisher(rt.cfg.Events.NATSURL, rt.cfg.Events.Subject, rt.g.Logger)
	if err != nil {
		return err
	}
	rt.publisher = p
	return nil
}

func (rt *runtime) Close() {
	if err := rt.publisher.Close(); err != nil {
		rt.g.Logger.Warn("Closing event publisher failed", logfields.Error(err))
	}
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			rt.g.Logger.Warn("Closing build cache failed", logfields.Error(err))
		}
	}
}

func (rt *runtime) buildIndex(ctx context.Context) (*vault.Index, error) {
	opts := []vault.Option{
		vault.WithLogger(rt.g.Logger),
		vault.WithWorkers(rt.cfg.Build.Workers),
	}
	if rt.cache != nil {
		opts = append(opts, vault.WithDimensionCache(rt.cache))
	}
	ix, err := vault.BuildDir(ctx, rt.cfg.Vault.Root, opts...)
	if err != nil {
		return nil, err
	}
	rt.recorder.SetIndexSize(len(ix.Documents()), len(ix.Images()))
	return ix, nil
}

func (rt *runtime) transformer(ix *vault.Index) (*pipeline.Transformer, error) {
	sink := diagnostics.Multi(rt.diagnostics, diagnostics.LogSink{Logger: rt.g.Logger})
	return pipeline.New(ix, embed.NewFSLoader(os.DirFS(rt.cfg.Vault.Root)), rt.cfg.PipelineOptions(),
		pipeline.WithLogger(rt.g.Logger),
		pipeline.WithRecorder(rt.recorder),
		pipeline.WithSink(sink),
		pipeline.WithWorkers(rt.cfg.Build.Workers),
	)
}

// buildSite indexes the vault, renders it and publishes the build event.
func (rt *runtime) buildSite(ctx context.Context, trigger string, opts site.Options) (site.Report, error) {
	rt.diagnostics.Reset()
	ix, err := rt.buildIndex(ctx)
	if err != nil {
		return site.Report{}, err
	}
	tr, err := rt.transformer(ix)
	if err != nil {
		return site.Report{}, err
	}
	siteOpts := []site.Option{site.WithLogger(rt.g.Logger)}
	if rt.cache != nil {
		siteOpts = append(siteOpts, site.WithFingerprints(rt.cache))
	}
	b, err := site.New(os.DirFS(rt.cfg.Vault.Root), ix, tr, opts, siteOpts...)
	if err != nil {
		return site.Report{}, err
	}
	report, err := b.Build(ctx)
	if err != nil {
		return report, err
	}

	ev := notify.NewBuildEvent(trigger, report, rt.diagnostics.All())
	publish := func(ctx context.Context) error { return rt.publisher.Publish(ctx, ev) }
	if err := retry.Do(ctx, rt.cfg.Events.Retry.Policy(), publish); err != nil {
		rt.g.Logger.Warn("Build event not published", logfields.RunID(report.RunID), logfields.Error(err))
	}
	return report, nil
}

func (rt *runtime) siteOptions() site.Options {
	return site.Options{
		OutputDir:    rt.cfg.Output.Directory,
		Clean:        rt.cfg.Output.Clean,
		PageTemplate: rt.cfg.Output.PageTemplate,
	}
}

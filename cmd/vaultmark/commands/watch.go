package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/vaultmark/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output string `short:"o" help:"Override output.directory"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(g, root)
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.enableEvents(); err != nil {
		return err
	}

	opts := rt.siteOptions()
	if w.Output != "" {
		opts.OutputDir = w.Output
	}
	rebuild := func(ctx context.Context, trigger string) error {
		report, err := rt.buildSite(ctx, trigger, opts)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Out, "[%s] %d written, %d unchanged, %d failed\n",
			trigger, report.Written, report.Unchanged, report.Failed())
		return nil
	}

	watchOpts := watch.Options{
		Debounce:       rt.cfg.Watch.Debounce,
		RescanInterval: rt.cfg.Watch.RescanInterval,
	}
	if rt.cfg.Monitoring.Metrics.Enabled {
		watchOpts.MetricsAddress = rt.cfg.Monitoring.Metrics.Address
		watchOpts.Gatherer = rt.registry
	}
	return watch.New(rt.cfg.Vault.Root, rebuild, watchOpts,
		watch.WithLogger(g.Logger),
		watch.WithRecorder(rt.recorder),
	).Run(ctx)
}

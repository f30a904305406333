package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Output string `short:"o" help:"Override output.directory"`
	Clean  bool   `help:"Remove the output directory before rendering"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
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
	if r.Output != "" {
		opts.OutputDir = r.Output
	}
	if r.Clean {
		opts.Clean = true
	}

	report, err := rt.buildSite(ctx, "render", opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Rendered %d notes into %s (%d written, %d unchanged, %d unpublished, %d images)\n",
		report.Documents, opts.OutputDir, report.Written, report.Unchanged, report.Unpublished, report.Images)
	for _, f := range report.Failures {
		_, _ = fmt.Fprintf(g.Out, "  failed: %s: %v\n", f.Path, f.Err)
	}
	if n := report.Failed(); n > 0 {
		return errors.RenderError(fmt.Sprintf("%d notes failed to render", n)).Build()
	}
	return nil
}

package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/vaultmark/internal/config"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	// Out receives command output; it defaults to stdout.
	Out io.Writer
	// LogOut receives log lines; it defaults to stderr.
	LogOut io.Writer
}

// CLI is the root command line.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"vaultmark.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" help:"Render the vault into a static site"`
	Watch  WatchCmd  `cmd:"" help:"Render the vault and rebuild on every change"`
	Check  CheckCmd  `cmd:"" help:"Report broken references and failing embeds"`
	Index  IndexCmd  `cmd:"" help:"Print the content index"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// AfterApply installs a text logger until the configuration says otherwise.
func (c *CLI) AfterApply(g *Global) error {
	if g.Out == nil {
		g.Out = os.Stdout
	}
	if g.LogOut == nil {
		g.LogOut = os.Stderr
	}
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.LogOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// configureLogging swaps in the handler the configuration asks for. The
// verbose flag always wins over the configured level.
func configureLogging(g *Global, cfg *config.Config, verbose bool) {
	level := cfg.Monitoring.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Monitoring.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.LogOut, opts)
	} else {
		handler = slog.NewTextHandler(g.LogOut, opts)
	}
	g.Logger = slog.New(handler)
	slog.SetDefault(g.Logger)
}

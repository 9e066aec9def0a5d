package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// Global is shared by every subcommand.
type Global struct {
	// Stdout receives user-facing output. Defaults to os.Stdout.
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the site into the destination directory"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Discover DiscoverCmd `cmd:"" help:"List templates and content items without building"`
	History  HistoryCmd  `cmd:"" help:"List builds recorded with --history"`
	Serve    ServeCmd    `cmd:"" help:"Build, then serve the destination for local preview"`
}

// AfterApply runs after flag parsing and installs the default logger. The build
// command replaces it once the configured verbosity is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level))
	return nil
}

// configRequired reports whether the config file must exist: only the default
// path may be absent.
func (c *CLI) configRequired() bool {
	return c.Config != config.DefaultConfigFile
}

package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/discovery"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)"`
}

func (d *DiscoverCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadWithOverrides(root.Config, root.configRequired(), config.Overrides{Source: d.Source})
	if err != nil {
		return err
	}
	templates, err := discovery.Templates(cfg.SourcePath)
	if err != nil {
		return err
	}

	out := g.stdout()
	_, _ = fmt.Fprintf(out, "Templates in %s:\n", cfg.SourcePath)
	for _, tf := range templates {
		marker := ""
		switch {
		case cfg.ContentTemplatePath != "" && filepath.Clean(tf.Path) == filepath.Clean(cfg.ContentTemplatePath):
			marker = " (content template)"
		case tf.Dynamic():
			marker = " (dynamic route)"
		}
		_, _ = fmt.Fprintf(out, "  %s%s\n", filepath.ToSlash(tf.RelPath), marker)
	}
	_, _ = fmt.Fprintf(out, "Content items: %d\n", len(cfg.ContentDirectories))
	for _, dir := range cfg.ContentDirectories {
		_, _ = fmt.Fprintf(out, "  %s\n", dir)
	}
	return nil
}

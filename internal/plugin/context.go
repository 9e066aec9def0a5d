package plugin

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// PluginContext is what a hook receives.
type PluginContext struct {
	// Config is a private copy of the build configuration. Changes are not observed
	// by later phases.
	Config *config.BuildConfig

	// Options are the plugin's own options from its config entry.
	Options map[string]any

	// Logger is scoped to the plugin.
	Logger *slog.Logger

	// BuildID uniquely identifies this build.
	BuildID string
}

// NewPluginContext creates a context for one hook invocation.
func NewPluginContext(cfg *config.BuildConfig, ref config.PluginRef, logger *slog.Logger, buildID string) *PluginContext {
	if logger == nil {
		logger = slog.Default()
	}
	options := ref.Options
	if options == nil {
		options = map[string]any{}
	}
	return &PluginContext{
		Config:  cfg.Clone(),
		Options: options,
		Logger:  logger,
		BuildID: buildID,
	}
}

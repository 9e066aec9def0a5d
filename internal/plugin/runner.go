package plugin

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// loaded pairs a resolved plugin with the config entry that declared it.
type loaded struct {
	ref    config.PluginRef
	plugin Plugin
}

// Runner invokes lifecycle hooks of an ordered plugin list.
type Runner struct {
	plugins []loaded
	logger  *slog.Logger
}

// NewRunner resolves every plugin reference once, in order. Resolution failures
// abort before any hook runs.
func NewRunner(loader *Loader, refs []config.PluginRef, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{logger: logger, plugins: make([]loaded, 0, len(refs))}
	for _, ref := range refs {
		p, err := loader.Load(ref)
		if err != nil {
			return nil, err
		}
		r.plugins = append(r.plugins, loaded{ref: ref, plugin: p})
	}
	return r, nil
}

// Len returns the number of resolved plugins.
func (r *Runner) Len() int { return len(r.plugins) }

// Hooks returns how many plugins implement the hook for phase.
func (r *Runner) Hooks(phase Phase) int {
	n := 0
	for _, lp := range r.plugins {
		if lp.hook(phase) != nil {
			n++
		}
	}
	return n
}

func (lp loaded) hook(phase Phase) Hook {
	if sp, ok := lp.plugin.(*ScriptPlugin); ok && !sp.HasHook(phase) {
		return nil
	}
	return hookFor(lp.plugin, phase)
}

// Run invokes the phase hook of every plugin implementing it, sequentially and in
// declaration order. The first failing hook stops the phase and is returned.
func (r *Runner) Run(ctx context.Context, phase Phase, cfg *config.BuildConfig, buildID string) error {
	for _, lp := range r.plugins {
		hook := lp.hook(phase)
		if hook == nil {
			continue
		}

		logger := r.logger.With(logfields.Plugin(lp.ref.Locator), logfields.Phase(string(phase)))
		logger.Info("Plugin hook executing")

		t0 := time.Now()
		if err := hook(ctx, NewPluginContext(cfg, lp.ref, logger, buildID)); err != nil {
			return NewPluginError(lp.ref.Locator, string(phase), err)
		}
		logger.Debug("Plugin hook finished", logfields.DurationMS(float64(time.Since(t0).Microseconds())/1000))
	}
	return nil
}

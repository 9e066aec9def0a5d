package build

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/deps"
	"git.home.luguber.info/inful/sitebuilder/internal/discovery"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// State is shared by the stages of one build.
type State struct {
	Config  *config.BuildConfig
	BuildID string

	Templates  []discovery.TemplateFile
	Tracker    *deps.Tracker
	Exclusions *deps.ExclusionSet
	Plugins    *plugin.Runner
	Report     *Report

	renderer render.Renderer
	loader   *plugin.Loader
	logger   *slog.Logger
	recorder metrics.Recorder
	observer Observer
}

// recordRender tracks the dependencies of a render call and logs its outputs.
func (st *State) recordRender(ctx context.Context, res render.Result) {
	st.Tracker.Record(res.Dependencies...)
	for _, out := range res.Outputs {
		rel, err := filepath.Rel(st.Config.DestinationPath, out)
		if err != nil {
			rel = out
		}
		st.logger.InfoContext(ctx, "Page rendered", logfields.Output(filepath.ToSlash(rel)))
	}
}

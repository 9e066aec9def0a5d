package build

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/discovery"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

func stageDiscover(ctx context.Context, st *State) error {
	templates, err := discovery.Templates(st.Config.SourcePath)
	if err != nil {
		return err
	}
	st.Templates = templates
	st.Report.Templates = len(templates)
	st.logger.DebugContext(ctx, "Templates discovered", logfields.Count(len(templates)))

	if len(st.Config.ContentDirectories) > 0 && !st.Config.HasContentTemplate() {
		st.logger.WarnContext(ctx, "Content directories configured without a content template; skipping content rendering",
			logfields.Count(len(st.Config.ContentDirectories)))
	}
	return nil
}

func stageResolvePlugins(ctx context.Context, st *State) error {
	runner, err := plugin.NewRunner(st.loader, st.Config.Plugins, st.logger)
	if err != nil {
		return err
	}
	st.Plugins = runner
	st.Report.Plugins = runner.Len()
	st.logger.DebugContext(ctx, "Plugins resolved", logfields.Count(runner.Len()))
	return nil
}

func stageResetDestination(ctx context.Context, st *State) error {
	if err := output.Reset(st.Config.DestinationPath); err != nil {
		return err
	}
	st.logger.DebugContext(ctx, "Destination reset", logfields.Destination(st.Config.DestinationPath))
	return nil
}

func stageBeforeBuild(ctx context.Context, st *State) error {
	return runHooks(ctx, st, plugin.PhaseBeforeBuild)
}

func stageAfterBuild(ctx context.Context, st *State) error {
	return runHooks(ctx, st, plugin.PhaseAfterBuild)
}

func runHooks(ctx context.Context, st *State, phase plugin.Phase) error {
	st.Report.Hooks[string(phase)] += st.Plugins.Hooks(phase)
	return st.Plugins.Run(ctx, phase, st.Config, st.BuildID)
}

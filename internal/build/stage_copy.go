package build

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/deps"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
)

// stageComputeExclusions collects the source paths that must not be copied: the
// content template's directory, every tracked dependency inside the source root
// (including plugin scripts loaded from it) and every discovered template.
func stageComputeExclusions(ctx context.Context, st *State) error {
	st.Tracker.Record(st.loader.Files()...)

	contentTemplate := st.Config.ContentTemplatePath
	if contentTemplate != "" && filepath.Clean(filepath.Dir(contentTemplate)) == filepath.Clean(st.Config.SourcePath) {
		// A content template at the source root excludes only itself.
		st.logger.DebugContext(ctx, "Content template at source root; its directory stays copyable",
			logfields.Path(contentTemplate))
		contentTemplate = ""
	}

	templates := make([]string, len(st.Templates))
	for i, tf := range st.Templates {
		templates[i] = tf.Path
	}

	st.Exclusions = deps.NewExclusionSet(contentTemplate, st.Tracker.Within(st.Config.SourcePath), templates)
	st.Report.Exclusions = st.Exclusions.Len()
	for _, e := range st.Exclusions.Entries() {
		st.logger.DebugContext(ctx, "Excluded from copy", logfields.Path(e))
	}
	return nil
}

func stageCopyAssets(ctx context.Context, st *State) error {
	stats, err := output.CopyTree(st.Config.SourcePath, st.Config.DestinationPath, st.Exclusions)
	if err != nil {
		return err
	}
	st.Report.FilesCopied = stats.Files
	st.Report.FilesSkipped = stats.Skipped
	st.logger.InfoContext(ctx, "Assets copied", logfields.Count(stats.Files))
	return nil
}

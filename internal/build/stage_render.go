package build

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/discovery"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

func stageRenderContent(ctx context.Context, st *State) error {
	for _, dir := range st.Config.ContentDirectories {
		res, err := st.renderer.RenderContentItem(ctx, dir)
		if err != nil {
			return err
		}
		st.recordRender(ctx, res)
		st.Report.ContentPages += len(res.Outputs)
	}
	return nil
}

// stageRenderTemplates renders every template once, except dynamic routes and the
// content template, which only make sense per content item. The configured content
// template is skipped even when its path carries no [$path] marker.
func stageRenderTemplates(ctx context.Context, st *State) error {
	static := discovery.StaticTemplates(st.Templates)
	if skipped := len(st.Templates) - len(static); skipped > 0 {
		st.logger.DebugContext(ctx, "Dynamic routes skipped", logfields.Count(skipped))
	}

	contentTemplate := filepath.Clean(st.Config.ContentTemplatePath)
	for _, tf := range static {
		if st.Config.ContentTemplatePath != "" && filepath.Clean(tf.Path) == contentTemplate {
			st.logger.DebugContext(ctx, "Content template skipped", logfields.Path(tf.RelPath))
			continue
		}
		res, err := st.renderer.RenderTemplateFile(ctx, tf.RelPath)
		if err != nil {
			return err
		}
		st.recordRender(ctx, res)
		st.Report.TemplatePages += len(res.Outputs)
	}
	return nil
}

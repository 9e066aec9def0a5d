package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/discovery"
)

// TemplateOutputPath maps a template's source-relative path to its
// destination-relative HTML path: about.abell becomes about.html.
func TemplateOutputPath(relPath string) string {
	return strings.TrimSuffix(relPath, filepath.Ext(relPath)) + ".html"
}

// ContentOutputPath maps the content template's source-relative path and an item
// slug to the item's destination-relative HTML path. The route marker is replaced
// by the slug; without a marker the page lands next to the template as <slug>.html.
func ContentOutputPath(templateRel, slug string) string {
	if discovery.IsDynamicRoute(templateRel) {
		return TemplateOutputPath(strings.ReplaceAll(templateRel, discovery.DynamicRouteMarker, slug))
	}
	return filepath.Join(filepath.Dir(templateRel), slug+".html")
}

// URLPath is the site-absolute URL of a destination-relative output path.
func URLPath(outputRel string) string {
	return "/" + filepath.ToSlash(outputRel)
}

// resolveInRoot joins a slash-separated path onto root and rejects escapes.
func resolveInRoot(root, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q must be relative to the source directory", rel)
	}
	p := filepath.Join(root, filepath.FromSlash(rel))
	r, err := filepath.Rel(root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the source directory", rel)
	}
	return p, nil
}

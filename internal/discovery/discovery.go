// Package discovery enumerates template files in a source tree and separates
// static templates from dynamic per-item routes.
package discovery

import (
	"io/fs"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const (
	// TemplateExt is the extension of source template files.
	TemplateExt = ".abell"
	// DynamicRouteMarker marks a template that is instantiated once per content item.
	DynamicRouteMarker = "[$path]"
)

// TemplateFile is a discovered source template.
type TemplateFile struct {
	Path    string // absolute
	RelPath string // relative to the source root, OS separators
}

// Dynamic reports whether the template is a per-item route.
func (t TemplateFile) Dynamic() bool {
	return IsDynamicRoute(t.RelPath)
}

// IsDynamicRoute reports whether relPath carries the dynamic-route marker, either as a
// whole path segment or as part of one.
func IsDynamicRoute(relPath string) bool {
	return strings.Contains(relPath, DynamicRouteMarker)
}

// FindFiles returns the absolute paths of every file below root whose name ends with
// ext. Hidden files and directories are included. The walk is lexical, so the result
// is stable for an unchanged tree.
func FindFiles(root, ext string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve discovery root").
			Fatal().
			WithContext("path", root).
			Build()
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk source tree").
			Fatal().
			WithContext("path", absRoot).
			Build()
	}
	return files, nil
}

// Templates discovers every template file under root.
func Templates(root string) ([]TemplateFile, error) {
	paths, err := FindFiles(root, TemplateExt)
	if err != nil {
		return nil, err
	}
	absRoot, _ := filepath.Abs(root)

	templates := make([]TemplateFile, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "relativize template path").
				Fatal().
				WithContext("path", p).
				Build()
		}
		templates = append(templates, TemplateFile{Path: p, RelPath: rel})
	}
	return templates, nil
}

// StaticTemplates filters templates down to the set rendered once per file.
func StaticTemplates(templates []TemplateFile) []TemplateFile {
	out := make([]TemplateFile, 0, len(templates))
	for _, t := range templates {
		if t.Dynamic() {
			continue
		}
		out = append(out, t)
	}
	return out
}

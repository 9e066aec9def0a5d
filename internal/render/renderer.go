// Package render turns templates and content items into HTML files.
//
// Every render call reports the source files it read in Result.Dependencies.
// The build uses those reports, not a global load cache, to keep rendered sources
// out of the copied asset tree.
package render

import "context"

// Result describes the effect of one render call.
type Result struct {
	// Outputs are absolute paths of files written to the destination.
	Outputs []string
	// Dependencies are absolute paths of source files read while rendering.
	Dependencies []string
}

// Renderer renders content items and standalone templates.
type Renderer interface {
	// RenderContentItem renders the content template once for the item directory.
	RenderContentItem(ctx context.Context, itemDir string) (Result, error)
	// RenderTemplateFile renders one template identified by its path relative to
	// the source root.
	RenderTemplateFile(ctx context.Context, relPath string) (Result, error)
}

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/deps"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

const maxIncludeDepth = 32

// Data is the root value every template executes with.
type Data struct {
	Site *Site
	// Page is the current content item; nil for standalone templates.
	Page *Page
	// Path is the destination-relative output path, slash separated.
	Path    string
	BuildID string
}

// TemplateRenderer renders .abell files as html/template documents.
//
// Templates may call:
//
//	{{ include "components/nav.html" }}   render a partial with the current data
//	{{ include "components/card.html" . }} render a partial with explicit data
//	{{ data "data/menu.yaml" }}           load a YAML or JSON data file
//
// Paths are relative to the source root and may not escape it.
type TemplateRenderer struct {
	cfg       *config.BuildConfig
	buildID   string
	logger    *slog.Logger
	converter *markdown.Converter

	templateRel string
	pages       []*Page
	byDir       map[string]*Page
	loaded      bool
}

// NewTemplateRenderer creates a renderer for cfg. Content items are parsed lazily
// on the first render call.
func NewTemplateRenderer(cfg *config.BuildConfig, buildID string, logger *slog.Logger) *TemplateRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &TemplateRenderer{
		cfg:     cfg,
		buildID: buildID,
		logger:  logger,
		// Raw HTML in Markdown passes through unless sanitizing is enabled.
		converter: markdown.New(markdown.Options{Unsafe: true, Sanitize: cfg.SanitizeContent}),
		byDir:     map[string]*Page{},
	}
	if cfg.ContentTemplatePath != "" {
		r.templateRel = sourceRel(cfg.SourcePath, cfg.ContentTemplatePath)
	}
	return r
}

// Pages returns the parsed content items, newest first.
func (r *TemplateRenderer) Pages() ([]*Page, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	return r.pages, nil
}

func (r *TemplateRenderer) load() error {
	if r.loaded {
		return nil
	}
	pages := make([]*Page, 0, len(r.cfg.ContentDirectories))
	owners := make(map[string]string, len(r.cfg.ContentDirectories))
	for _, dir := range r.cfg.ContentDirectories {
		p, err := loadPage(filepath.Clean(dir), r.templateRel, r.converter)
		if err != nil {
			return err
		}
		out := ContentOutputPath(r.templateRel, p.Slug)
		if other, dup := owners[out]; dup {
			return ferrors.RenderError("content items share an output path").
				WithContext("path", p.dir).
				WithContext("other", other).
				WithContext("output", filepath.ToSlash(out)).
				Fatal().
				Build()
		}
		owners[out] = p.dir
		pages = append(pages, p)
		r.byDir[p.dir] = p
	}
	sortPages(pages)
	r.pages = pages
	r.loaded = true
	return nil
}

// RenderContentItem implements Renderer.
func (r *TemplateRenderer) RenderContentItem(ctx context.Context, itemDir string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if r.cfg.ContentTemplatePath == "" {
		return Result{}, ferrors.ConfigError("content item rendered without a content template").
			WithContext("path", itemDir).
			Build()
	}
	if err := r.load(); err != nil {
		return Result{}, err
	}
	page, ok := r.byDir[filepath.Clean(itemDir)]
	if !ok {
		var err error
		if page, err = loadPage(filepath.Clean(itemDir), r.templateRel, r.converter); err != nil {
			return Result{}, err
		}
	}

	c := r.newCall()
	c.track(page.index)
	outRel := ContentOutputPath(r.templateRel, page.Slug)
	data := &Data{Site: c.site(r.pages), Page: page, Path: filepath.ToSlash(outRel), BuildID: r.buildID}

	if err := c.renderFile(r.cfg.ContentTemplatePath, outRel, data); err != nil {
		return Result{}, err
	}
	return c.result(), nil
}

// RenderTemplateFile implements Renderer.
func (r *TemplateRenderer) RenderTemplateFile(ctx context.Context, relPath string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := r.load(); err != nil {
		return Result{}, err
	}
	src := filepath.Join(r.cfg.SourcePath, relPath)
	outRel := TemplateOutputPath(relPath)

	c := r.newCall()
	data := &Data{Site: c.site(r.pages), Path: filepath.ToSlash(outRel), BuildID: r.buildID}
	if err := c.renderFile(src, outRel, data); err != nil {
		return Result{}, err
	}
	return c.result(), nil
}

// call holds the state of a single render call.
type call struct {
	r       *TemplateRenderer
	deps    sets.Set[string]
	outputs []string
	depth   int
	data    *Data
}

func (r *TemplateRenderer) newCall() *call {
	return &call{r: r, deps: sets.New[string]()}
}

func (c *call) track(paths ...string) {
	for _, p := range paths {
		c.deps.Add(filepath.Clean(p))
	}
}

func (c *call) site(pages []*Page) *Site {
	return &Site{pages: pages, track: c.track}
}

func (c *call) result() Result {
	return Result{Outputs: c.outputs, Dependencies: sets.Sorted(c.deps)}
}

func (c *call) funcs() template.FuncMap {
	return template.FuncMap{
		"include": c.include,
		"data":    c.loadData,
	}
}

// parse reads and parses a template file, recording it as a dependency.
func (c *call) parse(path string) (*template.Template, error) {
	c.track(path)
	// #nosec G304 -- template paths are discovered below the source root.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "read template").
			WithContext("path", path).
			Fatal().
			Build()
	}
	tmpl, err := template.New(filepath.Base(path)).
		Option("missingkey=error").
		Funcs(c.funcs()).
		Parse(string(raw))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "parse template").
			WithContext("path", path).
			Fatal().
			Build()
	}
	return tmpl, nil
}

func (c *call) renderFile(src, outRel string, data *Data) error {
	c.data = data
	tmpl, err := c.parse(src)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRender, "execute template").
			WithContext("path", src).
			Fatal().
			Build()
	}

	out := filepath.Join(c.r.cfg.DestinationPath, outRel)
	if !deps.Contains(filepath.Clean(c.r.cfg.DestinationPath), out) {
		return ferrors.RenderError("output path escapes the destination").
			WithContext("path", src).
			WithContext("output", out).
			Fatal().
			Build()
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			WithContext("path", filepath.Dir(out)).
			Fatal().
			Build()
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- published site file
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write output").
			WithContext("path", out).
			Fatal().
			Build()
	}
	c.outputs = append(c.outputs, out)
	return nil
}

// include renders a partial below the source root. The optional argument
// replaces the current data.
func (c *call) include(rel string, args ...any) (template.HTML, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("include %q: expected at most one data argument", rel)
	}
	if c.depth >= maxIncludeDepth {
		return "", fmt.Errorf("include %q: nesting deeper than %d", rel, maxIncludeDepth)
	}
	path, err := resolveInRoot(c.r.cfg.SourcePath, rel)
	if err != nil {
		return "", fmt.Errorf("include: %w", err)
	}
	tmpl, err := c.parse(path)
	if err != nil {
		return "", err
	}

	var data any = c.data
	if len(args) == 1 {
		data = args[0]
	}
	c.depth++
	defer func() { c.depth-- }()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("include %q: %w", rel, err)
	}
	c.r.logger.Debug("Partial included", logfields.Path(path))
	return template.HTML(buf.String()), nil // #nosec G203 -- output of html/template
}

// loadData decodes a YAML or JSON file below the source root.
func (c *call) loadData(rel string) (any, error) {
	path, err := resolveInRoot(c.r.cfg.SourcePath, rel)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	c.track(path)
	// #nosec G304 -- resolved below the source root.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", rel, err)
	}

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &v)
	default:
		return nil, fmt.Errorf("data %q: unsupported file type", rel)
	}
	if err != nil {
		return nil, fmt.Errorf("data %q: %w", rel, err)
	}
	return v, nil
}

// sourceRel returns path relative to root; paths outside root fall back to the
// base name.
func sourceRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return rel
}

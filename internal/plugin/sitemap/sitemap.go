// Package sitemap provides the builtin:sitemap plugin, which writes a sitemap.xml
// listing every rendered page once the build has finished.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Name is the registry name of the plugin.
const Name = "sitemap"

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Options configure the plugin.
type Options struct {
	BaseURL  string `mapstructure:"base_url"`
	Filename string `mapstructure:"filename"`
}

// Plugin writes sitemap.xml into the destination.
type Plugin struct {
	opts Options
}

// New decodes options and returns the plugin.
func New(options map[string]any) (plugin.Plugin, error) {
	var opts Options
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("sitemap options: %w", err)
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("sitemap: base_url option is required")
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Filename == "" {
		opts.Filename = "sitemap.xml"
	}
	return &Plugin{opts: opts}, nil
}

// Metadata implements plugin.Plugin.
func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeBuiltin,
		Description: "Writes a sitemap of every rendered page",
	}
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc string `xml:"loc"`
}

// AfterBuild implements plugin.AfterBuilder.
func (p *Plugin) AfterBuild(_ context.Context, pc *plugin.PluginContext) error {
	dest := pc.Config.DestinationPath
	pages, err := htmlPages(dest)
	if err != nil {
		return err
	}

	set := urlSet{Xmlns: xmlns}
	for _, rel := range pages {
		set.URLs = append(set.URLs, url{Loc: p.opts.BaseURL + "/" + pagePath(rel)})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sitemap: %w", err)
	}
	out := append([]byte(xml.Header), data...)
	out = append(out, '\n')

	target := filepath.Join(dest, p.opts.Filename)
	if err := os.WriteFile(target, out, 0o644); err != nil { // #nosec G306 -- published site file
		return fmt.Errorf("write sitemap: %w", err)
	}
	pc.Logger.Info("Sitemap written", "path", target, "pages", len(set.URLs))
	return nil
}

// pagePath turns a destination-relative HTML path into its URL path; index.html
// collapses to its directory.
func pagePath(rel string) string {
	rel = filepath.ToSlash(rel)
	if rel == "index.html" {
		return ""
	}
	if strings.HasSuffix(rel, "/index.html") {
		return strings.TrimSuffix(rel, "index.html")
	}
	return rel
}

// htmlPages lists destination-relative paths of every .html file, sorted.
func htmlPages(root string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		pages = append(pages, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk destination: %w", err)
	}
	sort.Strings(pages)
	return pages, nil
}

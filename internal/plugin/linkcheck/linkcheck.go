// Package linkcheck provides the builtin:link-check plugin. After the build it
// parses every rendered page and verifies that site-internal links resolve to a
// file in the destination.
package linkcheck

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Name is the registry name of the plugin.
const Name = "link-check"

// Options configure the plugin.
type Options struct {
	// WarnOnly logs broken links instead of failing the build.
	WarnOnly bool `mapstructure:"warn_only"`
	// Ignore lists URL path prefixes that are never checked.
	Ignore []string `mapstructure:"ignore"`
}

// Broken is an internal link whose target does not exist.
type Broken struct {
	Page string
	Link Link
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: <%s> %s", filepath.ToSlash(b.Page), b.Link.Tag, b.Link.URL)
}

// Plugin verifies internal links.
type Plugin struct {
	opts Options
}

// New decodes options and returns the plugin.
func New(options map[string]any) (plugin.Plugin, error) {
	var opts Options
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("link-check options: %w", err)
	}
	return &Plugin{opts: opts}, nil
}

// Metadata implements plugin.Plugin.
func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeBuiltin,
		Description: "Verifies that internal links resolve to built files",
	}
}

// AfterBuild implements plugin.AfterBuilder.
func (p *Plugin) AfterBuild(ctx context.Context, pc *plugin.PluginContext) error {
	broken, checked, err := p.Check(ctx, pc.Config.DestinationPath)
	if err != nil {
		return err
	}
	for _, b := range broken {
		pc.Logger.Warn("Broken link", logfields.Path(b.Page), "url", b.Link.URL, "tag", b.Link.Tag)
	}
	pc.Logger.Info("Links checked", logfields.Count(checked), "broken", len(broken))
	if len(broken) > 0 && !p.opts.WarnOnly {
		return fmt.Errorf("%d broken link(s), first %s", len(broken), broken[0])
	}
	return nil
}

// Check scans every HTML file under root and returns the broken links together
// with the number of links verified.
func (p *Plugin) Check(ctx context.Context, root string) ([]Broken, int, error) {
	var pages []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".html" {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk destination: %w", err)
	}
	sort.Strings(pages)

	var broken []Broken
	checked := 0
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, checked, err
		}
		links, err := pageLinks(page)
		if err != nil {
			return nil, checked, err
		}
		rel, _ := filepath.Rel(root, page)
		for _, link := range links {
			if !ShouldVerify(link) || p.ignored(link.URL) {
				continue
			}
			checked++
			if !resolves(root, filepath.Dir(page), link.URL) {
				broken = append(broken, Broken{Page: rel, Link: link})
			}
		}
	}
	return broken, checked, nil
}

func pageLinks(path string) ([]Link, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = f.Close() }()

	links, err := ExtractLinks(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return links, nil
}

func (p *Plugin) ignored(raw string) bool {
	for _, prefix := range p.opts.Ignore {
		if prefix != "" && strings.HasPrefix(raw, prefix) {
			return true
		}
	}
	return false
}

// resolves reports whether a site-internal link points at an existing file.
// Root-relative links resolve against root, others against the page directory.
// A directory resolves through its index.html and an extensionless path may
// name an .html page.
func resolves(root, pageDir, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	target := filepath.FromSlash(u.Path)
	if strings.HasPrefix(u.Path, "/") {
		target = filepath.Join(root, target)
	} else {
		target = filepath.Join(pageDir, target)
	}
	if rel, err := filepath.Rel(root, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return true
		}
		return exists(filepath.Join(target, "index.html"))
	}
	return filepath.Ext(target) == "" && exists(target+".html")
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

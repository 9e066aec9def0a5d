// Package searchindex provides the builtin:search-index plugin. After the build it
// parses every rendered page and writes a JSON index of titles and leading text for
// client-side search.
package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Name is the registry name of the plugin.
const Name = "search-index"

// Options configure the plugin.
type Options struct {
	Filename string `mapstructure:"filename"`
	MaxText  int    `mapstructure:"max_text"`
}

// Entry is one indexed page.
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Plugin writes the search index.
type Plugin struct {
	opts Options
}

// New decodes options and returns the plugin.
func New(options map[string]any) (plugin.Plugin, error) {
	opts := Options{Filename: "search-index.json", MaxText: 500}
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("search-index options: %w", err)
	}
	if opts.MaxText <= 0 {
		return nil, fmt.Errorf("search-index: max_text must be positive")
	}
	return &Plugin{opts: opts}, nil
}

// Metadata implements plugin.Plugin.
func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeBuiltin,
		Description: "Writes a JSON search index of rendered pages",
	}
}

// AfterBuild implements plugin.AfterBuilder.
func (p *Plugin) AfterBuild(_ context.Context, pc *plugin.PluginContext) error {
	dest := pc.Config.DestinationPath
	var entries []Entry
	err := filepath.WalkDir(dest, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(dest, path)
		if err != nil {
			return err
		}
		entry, err := p.indexPage(path)
		if err != nil {
			return fmt.Errorf("index %s: %w", rel, err)
		}
		entry.URL = "/" + filepath.ToSlash(rel)
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].URL < entries[j].URL })

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	target := filepath.Join(dest, p.opts.Filename)
	if err := os.WriteFile(target, data, 0o644); err != nil { // #nosec G306 -- published site file
		return fmt.Errorf("write search index: %w", err)
	}
	pc.Logger.Info("Search index written", "path", target, "pages", len(entries))
	return nil
}

func (p *Plugin) indexPage(path string) (Entry, error) {
	// #nosec G304 -- path comes from walking the destination tree.
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	doc, err := html.Parse(f)
	if err != nil {
		return Entry{}, err
	}

	var title string
	var text strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "title":
				if title == "" {
					title = strings.TrimSpace(textOf(n))
				}
				return
			case "body":
				inBody = true
			}
		}
		if n.Type == html.TextNode && inBody {
			text.WriteString(n.Data)
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	walk(doc, false)

	return Entry{Title: title, Text: truncate(strings.Join(strings.Fields(text.String()), " "), p.opts.MaxText)}, nil
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}

package render

import (
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// ContentIndexFile is the document read from every content item directory.
const ContentIndexFile = "index.md"

// Page is one parsed content item.
type Page struct {
	Slug        string
	Title       string
	Description string
	Date        time.Time
	Tags        []string
	// Params holds every frontmatter field.
	Params   map[string]any
	Content  template.HTML
	Headings []markdown.Heading
	// Fingerprint identifies the content; it changes whenever frontmatter or body do.
	Fingerprint string
	// URL is the site-absolute URL of the rendered page.
	URL string

	dir   string
	index string
}

// Dir is the absolute item directory.
func (p *Page) Dir() string { return p.dir }

var titleCaser = cases.Title(language.English)

// loadPage reads and converts the index document of an item directory.
func loadPage(dir, templateRel string, conv *markdown.Converter) (*Page, error) {
	index := filepath.Join(dir, ContentIndexFile)
	// #nosec G304 -- content directories come from the build configuration.
	raw, err := os.ReadFile(index)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "read content item").
			WithContext("path", index).
			Fatal().
			Build()
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "parse content frontmatter").
			WithContext("path", index).
			Fatal().
			Build()
	}

	converted, err := conv.Convert(doc.Body)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "convert markdown").
			WithContext("path", index).
			Fatal().
			Build()
	}

	slug := filepath.Base(dir)
	if s, ok := frontmatter.String(doc.Fields, "slug"); ok {
		if !validSlug(s) {
			return nil, ferrors.RenderError("invalid content slug").
				WithContext("path", index).
				WithContext("slug", s).
				Fatal().
				Build()
		}
		slug = s
	}

	p := &Page{
		Slug:        slug,
		Title:       defaultTitle(slug),
		Tags:        frontmatter.Strings(doc.Fields, "tags"),
		Params:      doc.Fields,
		Content:     template.HTML(converted.HTML), // #nosec G203 -- goldmark output
		Headings:    converted.Headings,
		Fingerprint: fingerprint(doc.Fields, doc.Body),
		URL:         URLPath(ContentOutputPath(templateRel, slug)),
		dir:         dir,
		index:       index,
	}
	if t, ok := frontmatter.String(doc.Fields, "title"); ok {
		p.Title = t
	}
	if d, ok := frontmatter.String(doc.Fields, "description"); ok {
		p.Description = d
	}
	if d, ok := frontmatter.Time(doc.Fields, "date"); ok {
		p.Date = d
	}
	return p, nil
}

// validSlug reports whether s names a single output file: not empty, not a
// relative directory reference and free of path separators.
func validSlug(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}

// defaultTitle turns a slug like "my-first_post" into "My First Post".
func defaultTitle(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	return titleCaser.String(strings.Join(words, " "))
}

// fingerprint hashes the frontmatter (without a stored fingerprint) and body.
func fingerprint(fields map[string]any, body []byte) string {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k] = v
	}
	fm := ""
	if len(forHash) > 0 {
		if out, err := yaml.Marshal(forHash); err == nil {
			fm = strings.TrimSuffix(string(out), "\n")
		}
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body))
}

// sortPages orders pages newest first, then by slug.
func sortPages(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if !pages[i].Date.Equal(pages[j].Date) {
			return pages[i].Date.After(pages[j].Date)
		}
		return pages[i].Slug < pages[j].Slug
	})
}

// Site is the site-wide data visible to every template as .Site.
type Site struct {
	pages []*Page
	track func(paths ...string)
}

// Pages returns every content item, newest first. Reading the listing makes the
// calling render depend on every item's index document.
func (s *Site) Pages() []*Page {
	if s.track != nil {
		for _, p := range s.pages {
			s.track(p.index)
		}
	}
	return s.pages
}

// Tagged returns the pages carrying tag, newest first.
func (s *Site) Tagged(tag string) []*Page {
	var out []*Page
	for _, p := range s.Pages() {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

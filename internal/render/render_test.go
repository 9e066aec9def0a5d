package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newSite(t *testing.T, extra map[string]string) (*config.BuildConfig, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	files := map[string]string{
		"index.abell":                `<ul>{{ include "components/nav.html" }}{{ range .Site.Pages }}<li><a href="{{ .URL }}">{{ .Title }}</a></li>{{ end }}</ul>`,
		"components/nav.html":        `<nav>{{ .Path }}</nav>`,
		"blog/[$path].abell":         `<h1>{{ .Page.Title }}</h1>{{ .Page.Content }}<p>{{ .Path }}</p>`,
		"posts/first/index.md":       "---\ntitle: First Post\ndate: 2024-01-02\ntags: [go]\n---\n# Hello\n",
		"posts/second-post/index.md": "---\ndate: 2024-02-01\n---\nSecond\n",
	}
	for k, v := range extra {
		files[k] = v
	}
	writeFiles(t, src, files)

	cfg := &config.BuildConfig{
		SourcePath:          src,
		DestinationPath:     filepath.Join(root, "dist"),
		ContentTemplatePath: filepath.Join(src, "blog", "[$path].abell"),
		ContentDirectories: []string{
			filepath.Join(src, "posts", "first"),
			filepath.Join(src, "posts", "second-post"),
		},
	}
	return cfg, src
}

func TestRenderTemplateFile(t *testing.T) {
	cfg, src := newSite(t, nil)
	r := NewTemplateRenderer(cfg, "build-1", nil)

	res, err := r.RenderTemplateFile(context.Background(), "index.abell")
	require.NoError(t, err)

	out := filepath.Join(cfg.DestinationPath, "index.html")
	assert.Equal(t, []string{out}, res.Outputs)
	assert.Equal(t,
		`<ul><nav>index.html</nav><li><a href="/blog/second-post.html">Second Post</a></li><li><a href="/blog/first.html">First Post</a></li></ul>`,
		readFile(t, out))

	assert.ElementsMatch(t, []string{
		filepath.Join(src, "index.abell"),
		filepath.Join(src, "components", "nav.html"),
		filepath.Join(src, "posts", "first", "index.md"),
		filepath.Join(src, "posts", "second-post", "index.md"),
	}, res.Dependencies)
}

func TestRenderContentItem(t *testing.T) {
	cfg, src := newSite(t, nil)
	r := NewTemplateRenderer(cfg, "build-1", nil)

	res, err := r.RenderContentItem(context.Background(), filepath.Join(src, "posts", "first"))
	require.NoError(t, err)

	out := filepath.Join(cfg.DestinationPath, "blog", "first.html")
	assert.Equal(t, []string{out}, res.Outputs)
	html := readFile(t, out)
	assert.Contains(t, html, "<h1>First Post</h1>")
	assert.Contains(t, html, `<h1 id="hello">Hello</h1>`)
	assert.Contains(t, html, "<p>blog/first.html</p>")

	assert.ElementsMatch(t, []string{
		cfg.ContentTemplatePath,
		filepath.Join(src, "posts", "first", "index.md"),
	}, res.Dependencies)
}

func TestPagesSortedAndDecorated(t *testing.T) {
	cfg, _ := newSite(t, nil)
	pages, err := NewTemplateRenderer(cfg, "", nil).Pages()
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "second-post", pages[0].Slug)
	assert.Equal(t, "Second Post", pages[0].Title)
	assert.Equal(t, "first", pages[1].Slug)
	assert.Equal(t, []string{"go"}, pages[1].Tags)
	assert.NotEmpty(t, pages[1].Fingerprint)
	assert.NotEqual(t, pages[0].Fingerprint, pages[1].Fingerprint)
}

func TestDataFunction(t *testing.T) {
	cfg, src := newSite(t, map[string]string{
		"menu.abell":     `{{ range (data "data/menu.yaml").items }}{{ . }};{{ end }}{{ (data "data/site.json").name }}`,
		"data/menu.yaml": "items: [home, blog]\n",
		"data/site.json": `{"name": "Example"}`,
	})
	res, err := NewTemplateRenderer(cfg, "", nil).RenderTemplateFile(context.Background(), "menu.abell")
	require.NoError(t, err)

	assert.Equal(t, "home;blog;Example", readFile(t, filepath.Join(cfg.DestinationPath, "menu.html")))
	assert.Contains(t, res.Dependencies, filepath.Join(src, "data", "menu.yaml"))
	assert.Contains(t, res.Dependencies, filepath.Join(src, "data", "site.json"))
}

func TestRenderErrors(t *testing.T) {
	cfg, src := newSite(t, map[string]string{
		"missing.abell": `{{ .Nope }}`,
		"escape.abell":  `{{ include "../outside.html" }}`,
		"broken.abell":  `{{ if }}`,
		"loop.abell":    `{{ include "loop.abell" }}`,
	})
	r := NewTemplateRenderer(cfg, "", nil)

	for _, rel := range []string{"missing.abell", "escape.abell", "broken.abell", "loop.abell", "absent.abell"} {
		_, err := r.RenderTemplateFile(context.Background(), rel)
		require.Error(t, err, rel)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender), rel)
	}

	_, err := r.RenderContentItem(context.Background(), filepath.Join(src, "components"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
}

func TestRenderContentItemWithoutTemplate(t *testing.T) {
	cfg, src := newSite(t, nil)
	cfg.ContentTemplatePath = ""
	_, err := NewTemplateRenderer(cfg, "", nil).RenderContentItem(context.Background(), filepath.Join(src, "posts", "first"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestRenderHonoursCanceledContext(t *testing.T) {
	cfg, _ := newSite(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTemplateRenderer(cfg, "", nil).RenderTemplateFile(ctx, "index.abell")
	require.ErrorIs(t, err, context.Canceled)
}

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, "about.html", TemplateOutputPath("about.abell"))
	assert.Equal(t, filepath.Join("docs", "guide.html"), TemplateOutputPath(filepath.Join("docs", "guide.abell")))
	assert.Equal(t, filepath.Join("blog", "x.html"), ContentOutputPath(filepath.Join("blog", "[$path].abell"), "x"))
	assert.Equal(t, filepath.Join("blog", "x", "index.html"), ContentOutputPath(filepath.Join("blog", "[$path]", "index.abell"), "x"))
	assert.Equal(t, "x.html", ContentOutputPath("post.abell", "x"))
	assert.Equal(t, "/blog/x.html", URLPath(filepath.Join("blog", "x.html")))
	assert.Equal(t, "My First Post", defaultTitle("my-first_post"))
}

func TestRenderContentItemSanitized(t *testing.T) {
	cfg, src := newSite(t, map[string]string{
		"posts/first/index.md": "---\ntitle: First\n---\nHi<script>alert(1)</script>\n",
	})
	cfg.SanitizeContent = true
	r := NewTemplateRenderer(cfg, "b", nil)

	_, err := r.RenderContentItem(context.Background(), filepath.Join(src, "posts", "first"))
	require.NoError(t, err)
	out := readFile(t, filepath.Join(cfg.DestinationPath, "blog", "first.html"))
	assert.Contains(t, out, "Hi")
	assert.NotContains(t, out, "<script>")
}

func TestRenderContentItemRejectsUnsafeSlug(t *testing.T) {
	for _, slug := range []string{"../../escaped", "nested/page", `..\up`, "..", "."} {
		t.Run(slug, func(t *testing.T) {
			cfg, src := newSite(t, map[string]string{
				"posts/first/index.md": "---\nslug: '" + slug + "'\n---\nBody\n",
			})
			r := NewTemplateRenderer(cfg, "b", nil)

			_, err := r.RenderContentItem(context.Background(), filepath.Join(src, "posts", "first"))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))

			root := filepath.Dir(src)
			_, statErr := os.Stat(filepath.Join(root, "escaped.html"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRenderTemplateFileOutsideDestination(t *testing.T) {
	cfg, src := newSite(t, nil)
	writeFiles(t, filepath.Dir(src), map[string]string{"outside.abell": "<p>out</p>"})

	_, err := NewTemplateRenderer(cfg, "b", nil).RenderTemplateFile(context.Background(), filepath.Join("..", "outside.abell"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
	_, statErr := os.Stat(filepath.Join(filepath.Dir(cfg.DestinationPath), "outside.html"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderContentItemDuplicateSlug(t *testing.T) {
	cfg, src := newSite(t, map[string]string{
		"posts/second-post/index.md": "---\nslug: first\n---\nSecond\n",
	})
	r := NewTemplateRenderer(cfg, "b", nil)

	_, err := r.RenderContentItem(context.Background(), filepath.Join(src, "posts", "first"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.ElementsMatch(t,
		[]any{filepath.Join(src, "posts", "first"), filepath.Join(src, "posts", "second-post")},
		[]any{ce.Context()["path"], ce.Context()["other"]})

	_, statErr := os.Stat(filepath.Join(cfg.DestinationPath, "blog", "first.html"))
	assert.True(t, os.IsNotExist(statErr))
}

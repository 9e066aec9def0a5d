package linkcheck

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestExtractLinks(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="/main.css"><script src="app.js"></script></head>
<body><a href="about.html">About</a><img src="cover.png" alt=""><a>no href</a></body></html>`
	links, err := ExtractLinks(strings.NewReader(doc))
	require.NoError(t, err)

	var got []string
	for _, l := range links {
		got = append(got, l.Tag+"="+l.URL)
	}
	assert.Equal(t, []string{"link=/main.css", "script=app.js", "a=about.html", "img=cover.png"}, got)
}

func TestShouldVerify(t *testing.T) {
	cases := map[string]bool{
		"":                         false,
		"#top":                     false,
		"mailto:a@example.com":     false,
		"javascript:void(0)":       false,
		"data:image/png;base64,AA": false,
		"https://example.com/":     false,
		"//cdn.example.com/x.js":   false,
		"?page=2":                  false,
		"/about.html":              true,
		"../index.html#intro":      true,
		"cover.png":                true,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ShouldVerify(Link{URL: raw}), raw)
	}
}

func TestCheck(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html":       `<a href="/blog/">Blog</a><a href="about">About</a><a href="/missing.html">x</a>`,
		"about.html":       `<a href="index.html#top">Home</a><img src="/img/none.png">`,
		"blog/index.html":  `<a href="../about.html">About</a><a href="../../outside.html">escape</a>`,
		"blog/post.html":   `<a href="https://example.com/">external</a>`,
		"img/present.png":  "png",
		"drafts/note.html": `<a href="/drafts/gone.html">gone</a>`,
	})

	p := &Plugin{opts: Options{Ignore: []string{"/drafts/"}}}
	broken, checked, err := p.Check(context.Background(), root)
	require.NoError(t, err)

	var got []string
	for _, b := range broken {
		got = append(got, b.String())
	}
	assert.Equal(t, []string{
		"about.html: <img> /img/none.png",
		"blog/index.html: <a> ../../outside.html",
		"index.html: <a> /missing.html",
	}, got)
	assert.Equal(t, 7, checked)
}

func TestAfterBuild(t *testing.T) {
	root := writeSite(t, map[string]string{
		"index.html": `<a href="/gone.html">gone</a>`,
	})
	cfg := &config.BuildConfig{DestinationPath: root}

	failing, err := New(nil)
	require.NoError(t, err)
	pc := plugin.NewPluginContext(cfg, config.PluginRef{Locator: "builtin:" + Name}, nil, "b1")
	err = failing.(plugin.AfterBuilder).AfterBuild(context.Background(), pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 broken link(s)")

	lenient, err := New(map[string]any{"warn_only": true})
	require.NoError(t, err)
	assert.NoError(t, lenient.(plugin.AfterBuilder).AfterBuild(context.Background(), pc))
}

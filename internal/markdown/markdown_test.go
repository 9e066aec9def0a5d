package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_GFM(t *testing.T) {
	c := New(Options{})
	res, err := c.Convert([]byte("# Hello *World*\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n## Second\n"))
	require.NoError(t, err)

	assert.Contains(t, res.HTML, `<h1 id="hello-world">Hello <em>World</em></h1>`)
	assert.Contains(t, res.HTML, "<table>")
	assert.Contains(t, res.HTML, "<del>gone</del>")
	assert.Equal(t, []Heading{
		{Level: 1, ID: "hello-world", Text: "Hello World"},
		{Level: 2, ID: "second", Text: "Second"},
	}, res.Headings)
}

func TestConvert_RawHTML(t *testing.T) {
	body := []byte("<div class=\"x\">hi</div>\n")

	res, err := New(Options{}).Convert(body)
	require.NoError(t, err)
	assert.NotContains(t, res.HTML, `<div class="x">`)

	res, err = New(Options{Unsafe: true}).Convert(body)
	require.NoError(t, err)
	assert.Contains(t, res.HTML, `<div class="x">hi</div>`)
}

func TestConvert_Sanitize(t *testing.T) {
	body := []byte("# Title\n\n<script>alert(1)</script>\n\n<p onclick=\"x()\">click</p>\n\n[ok](https://example.com)\n")

	res, err := New(Options{Unsafe: true, Sanitize: true}).Convert(body)
	require.NoError(t, err)
	assert.NotContains(t, res.HTML, "<script>")
	assert.NotContains(t, res.HTML, "onclick")
	assert.Contains(t, res.HTML, `<h1 id="title">Title</h1>`)
	assert.Contains(t, res.HTML, "<p>click</p>")
	assert.Contains(t, res.HTML, `href="https://example.com"`)
}

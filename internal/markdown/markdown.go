// Package markdown converts content bodies to HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is a section heading found in a document.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is a converted document.
type Result struct {
	HTML     string
	Headings []Heading
}

// Converter renders GitHub-flavoured Markdown.
type Converter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Options tune the converter.
type Options struct {
	// Unsafe allows raw HTML in Markdown to pass through.
	Unsafe bool
	// Sanitize filters the rendered HTML through a user-content policy, removing
	// scripts, event handlers and unknown elements while keeping heading IDs.
	Sanitize bool
}

// New creates a converter with GFM extensions and automatic heading IDs.
func New(opts Options) *Converter {
	rendererOpts := []goldmark.Option{}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	md := goldmark.New(append(rendererOpts,
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)...)
	c := &Converter{md: md}
	if opts.Sanitize {
		c.policy = bluemonday.UGCPolicy()
	}
	return c
}

// Convert renders body (frontmatter already removed).
func (c *Converter) Convert(body []byte) (Result, error) {
	root := c.md.Parser().Parse(text.NewReader(body))

	var headings []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: string(nodeText(h, body))}
		if id, ok := h.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				heading.ID = string(b)
			}
		}
		headings = append(headings, heading)
		return gmast.WalkSkipChildren, nil
	})

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, root); err != nil {
		return Result{}, fmt.Errorf("render markdown: %w", err)
	}
	out := buf.Bytes()
	if c.policy != nil {
		out = c.policy.SanitizeBytes(out)
	}
	return Result{HTML: string(out), Headings: headings}, nil
}

// nodeText concatenates the text segments below n.
func nodeText(n gmast.Node, source []byte) []byte {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			out = append(out, t.Segment.Value(source)...)
			continue
		}
		out = append(out, nodeText(c, source)...)
	}
	return out
}

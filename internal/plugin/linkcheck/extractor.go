package linkcheck

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is a reference found in a rendered page.
type Link struct {
	URL  string // raw attribute value
	Tag  string // a, img, script, link, video, audio, source
	Line int    // approximate element index, for reporting
}

// linkAttrs maps elements to the attribute holding their reference.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
}

// ExtractLinks parses an HTML document and returns every link-bearing attribute in
// document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	var line int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			line++
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Line: line})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// ShouldVerify reports whether a link points into the site: anchors, special
// schemes and absolute URLs on another host are skipped.
func ShouldVerify(link Link) bool {
	raw := strings.TrimSpace(link.URL)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return false
	}
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(raw, scheme) {
			return false
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	if u.Scheme != "" || u.Host != "" {
		return false
	}
	return u.Path != ""
}

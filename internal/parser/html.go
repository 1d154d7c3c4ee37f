package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/seolens/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLParser handles HTML pages. Besides the heading outline it records
// the search signals the page already carries in DocTree.Meta.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{
		Title: titleFromName(filename),
		Meta:  pageMeta(doc),
	}
	if tree.Meta.Title != "" {
		tree.Title = tree.Meta.Title
	}

	o := newOutline()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	for _, n := range body.Nodes {
		walkHTML(n, o)
	}
	tree.Children = o.nodes()
	return tree, nil
}

func pageMeta(doc *goquery.Document) doctree.PageMeta {
	var m doctree.PageMeta
	m.Title = collapse(doc.Find("head title").First().Text())
	if m.Title == "" {
		m.Title = collapse(doc.Find("title").First().Text())
	}
	m.Description = metaContent(doc, "description", "og:description")
	m.Keywords = metaContent(doc, "keywords")
	m.Canonical, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			m.Headings = append(m.Headings, strings.ToUpper(goquery.NodeName(s))+": "+t)
		}
	})
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			m.JSONLD = append(m.JSONLD, t)
		}
	})
	return m
}

// metaContent returns the first non-empty content of a <meta> tag whose
// name or property equals one of names, in the order given.
func metaContent(doc *goquery.Document, names ...string) string {
	metas := doc.Find("meta[content]")
	for _, name := range names {
		var found string
		metas.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			key := s.AttrOr("name", s.AttrOr("property", ""))
			if !strings.EqualFold(key, name) {
				return true
			}
			found = collapse(s.AttrOr("content", ""))
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func walkHTML(n *html.Node, o *outline) {
	if n.Type == html.ElementNode {
		if level := headingLevel(n.DataAtom); level > 0 {
			if title := nodeText(n); title != "" {
				o.heading(level, title)
			}
			return
		}
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Nav, atom.Footer, atom.Header:
			return
		case atom.P, atom.Li, atom.Td, atom.Th, atom.Blockquote, atom.Dt, atom.Dd, atom.Figcaption, atom.Pre:
			o.paragraph(nodeText(n))
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, o)
	}
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func nodeText(n *html.Node) string {
	return collapse(goquery.NewDocumentFromNode(n).Text())
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Package goquery implements pagemirror.DocumentParser using goquery.
//
// Elements are located in the goquery tree, which sees the page the way a
// browser does. Serialization does not render that tree: rewritten attribute
// values are spliced into the original source, so character references,
// quoting, whitespace and the declared encoding survive byte for byte.
package goquery

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagemirror"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	_ pagemirror.DocumentParser = (*Parser)(nil)
	_ pagemirror.Document       = (*Document)(nil)
	_ pagemirror.Element        = (*Element)(nil)
)

// Parser parses HTML documents with goquery.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses html into a Document.
func (p *Parser) Parse(s string) (pagemirror.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, pagemirror.Errorf(pagemirror.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{doc: doc, src: s, tags: scanTags(s)}, nil
}

// Document is a goquery-backed pagemirror.Document.
type Document struct {
	doc  *goquery.Document
	src  string
	tags []*sourceTag // start tags in source order
}

// FindByTagAndAttribute returns HTML elements named tag that carry attr.
// Elements in foreign content (SVG, MathML) are skipped, as are elements the
// parser synthesized or renamed, since they have no source tag to rewrite.
func (d *Document) FindByTagAndAttribute(tag, attr string) []pagemirror.Element {
	tag = strings.ToLower(tag)
	want := atom.Lookup([]byte(tag))

	var elements []pagemirror.Element
	claimed := make(map[*sourceTag]bool)
	d.doc.Find(tag + "[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
		n := sel.Get(0)
		if n.Type != html.ElementNode {
			return
		}
		value, _ := nodeAttr(n, attr)
		src := d.match(tag, attr, value, claimed)
		if src == nil {
			return
		}
		// Foreign elements still claim their tag so an HTML sibling with
		// the same value is paired with its own.
		if n.Namespace != "" || (want != 0 && n.DataAtom != want) {
			return
		}
		elements = append(elements, &Element{node: n, src: src})
	})
	return elements
}

// match returns the first unclaimed source tag named tag whose attr has value.
func (d *Document) match(tag, attr, value string, claimed map[*sourceTag]bool) *sourceTag {
	for _, t := range d.tags {
		if t.name != tag || claimed[t] {
			continue
		}
		if a := t.attr(attr); a != nil && a.val == value {
			claimed[t] = true
			return t
		}
	}
	return nil
}

// Serialize returns the original source with every SetAttr applied.
func (d *Document) Serialize() (string, error) {
	var edits []splice
	for _, t := range d.tags {
		edits = append(edits, t.splices()...)
	}
	if len(edits) == 0 {
		return d.src, nil
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(d.src) + len(d.src)/8)
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			return "", pagemirror.Errorf(pagemirror.EINTERNAL, "overlapping edits at offset %d", e.start)
		}
		b.WriteString(d.src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(d.src[pos:])
	return b.String(), nil
}

// Element wraps a single HTML element node and the source tag it came from.
type Element struct {
	node *html.Node
	src  *sourceTag
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return nodeAttr(e.node, name)
}

// SetAttr sets the named attribute, keeping its position if it exists.
func (e *Element) SetAttr(name, value string) {
	e.src.set(name, value)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func nodeAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

package mock

import "github.com/fwojciec/pagemirror"

var _ pagemirror.DocumentParser = (*DocumentParser)(nil)

// DocumentParser is a mock implementation of pagemirror.DocumentParser.
type DocumentParser struct {
	ParseFn func(html string) (pagemirror.Document, error)
}

func (p *DocumentParser) Parse(html string) (pagemirror.Document, error) {
	return p.ParseFn(html)
}

var _ pagemirror.Document = (*Document)(nil)

// Document is a mock implementation of pagemirror.Document.
type Document struct {
	FindByTagAndAttributeFn func(tag, attr string) []pagemirror.Element
	SerializeFn             func() (string, error)
}

func (d *Document) FindByTagAndAttribute(tag, attr string) []pagemirror.Element {
	return d.FindByTagAndAttributeFn(tag, attr)
}

func (d *Document) Serialize() (string, error) {
	return d.SerializeFn()
}

var _ pagemirror.Element = (*Element)(nil)

// Element is a mock implementation of pagemirror.Element.
type Element struct {
	AttrFn    func(name string) (string, bool)
	SetAttrFn func(name, value string)
}

func (e *Element) Attr(name string) (string, bool) {
	return e.AttrFn(name)
}

func (e *Element) SetAttr(name, value string) {
	e.SetAttrFn(name, value)
}

package pagemirror

// Element is an HTML element whose attributes can be read and rewritten.
type Element interface {
	Attr(name string) (value string, ok bool)
	SetAttr(name, value string)
}

// Document is a parsed HTML document.
type Document interface {
	// FindByTagAndAttribute returns elements named tag that carry attr,
	// in document order.
	FindByTagAndAttribute(tag, attr string) []Element

	// Serialize renders the document, including any rewritten attributes.
	Serialize() (string, error)
}

// DocumentParser parses HTML into a Document.
type DocumentParser interface {
	Parse(html string) (Document, error)
}

// ExtractResult holds a rewritten document and the assets it now references.
type ExtractResult struct {
	HTML   string
	Assets []*Asset

	// Collisions are same-origin references left untouched because a
	// different URL already claimed their local name.
	Collisions []*Outcome
}

package mirror

import (
	"net/url"
	"strings"

	"github.com/fwojciec/pagemirror"
)

// resourceRef is an element attribute that may reference an asset.
type resourceRef struct {
	tag  string
	attr string
	rel  string // required rel token, if any
}

// resourceRefs lists the references rewritten to local copies, in scan order.
var resourceRefs = []resourceRef{
	{tag: "img", attr: "src"},
	{tag: "link", attr: "href", rel: "stylesheet"},
	{tag: "script", attr: "src"},
}

// Extractor finds same-origin assets in a document and rewrites their
// references to local paths.
type Extractor struct {
	Parser pagemirror.DocumentParser
}

// NewExtractor creates an Extractor using parser.
func NewExtractor(parser pagemirror.DocumentParser) *Extractor {
	return &Extractor{Parser: parser}
}

// Extract rewrites every same-origin image, stylesheet and script reference in
// html to assetsDirName/<name> and returns the assets to download.
//
// Cross-origin references are never touched. References to the same URL share
// one asset. A URL whose local name was already claimed by a different URL is
// left untouched and reported in Collisions.
func (e *Extractor) Extract(html, originURL, assetsDirName string) (*pagemirror.ExtractResult, error) {
	origin, err := url.Parse(originURL)
	if err != nil {
		return nil, pagemirror.Errorf(pagemirror.EINVALID, "invalid origin URL: %v", err)
	}

	doc, err := e.Parser.Parse(html)
	if err != nil {
		return nil, err
	}

	result := &pagemirror.ExtractResult{}
	byURL := make(map[string]*pagemirror.Asset)
	byName := make(map[string]string) // local name → URL that claimed it
	collided := make(map[string]bool)

	for _, ref := range resourceRefs {
		for _, el := range doc.FindByTagAndAttribute(ref.tag, ref.attr) {
			if ref.rel != "" && !hasRelToken(el, ref.rel) {
				continue
			}
			value, _ := el.Attr(ref.attr)
			resolved := resolveRef(origin, value)
			if resolved == nil || !pagemirror.SameOrigin(origin, resolved) {
				continue
			}
			key := resolved.String()

			if asset, ok := byURL[key]; ok {
				el.SetAttr(ref.attr, localRef(assetsDirName, asset.LocalFileName))
				continue
			}

			name := pagemirror.FileName(pagemirror.SlugSource(resolved), "")
			if owner, taken := byName[name]; taken {
				if !collided[key] {
					collided[key] = true
					result.Collisions = append(result.Collisions, &pagemirror.Outcome{
						Asset: &pagemirror.Asset{SourceURL: key, LocalFileName: name},
						Err: pagemirror.Errorf(pagemirror.ECOLLISION,
							"%s and %s both map to local file %q", owner, key, name),
					})
				}
				continue
			}

			asset := &pagemirror.Asset{SourceURL: key, LocalFileName: name}
			byURL[key] = asset
			byName[name] = key
			result.Assets = append(result.Assets, asset)
			el.SetAttr(ref.attr, localRef(assetsDirName, name))
		}
	}

	result.HTML, err = doc.Serialize()
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveRef resolves an attribute value against base.
// Returns nil for empty or unparseable values. Fragments are dropped.
func resolveRef(base *url.URL, value string) *url.URL {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	ref, err := url.Parse(value)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved
}

func hasRelToken(el pagemirror.Element, token string) bool {
	rel, ok := el.Attr("rel")
	if !ok {
		return false
	}
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// localRef builds the attribute value pointing at a local asset.
// HTML references always use forward slashes.
func localRef(dirName, fileName string) string {
	return dirName + "/" + fileName
}

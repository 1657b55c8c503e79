package goquery

import (
	"strings"

	"golang.org/x/net/html"
)

// sourceTag is a start tag as written in the source, with the byte offsets
// needed to rewrite its attributes in place.
type sourceTag struct {
	name  string
	attrs []sourceAttr
	// close is where new attributes go: before the tag's "/>" or ">".
	close int

	// Pending SetAttr calls, applied by splices.
	edits []attrEdit
}

// sourceAttr locates one attribute inside the source. Offsets are absolute.
type sourceAttr struct {
	key    string // lower case
	val    string // decoded
	keyEnd int
	// valStart and valEnd bound the value without its quotes;
	// both are -1 for a bare attribute.
	valStart, valEnd int
	quote            byte // 0 when unquoted
}

type attrEdit struct {
	key, val string
}

// splice replaces src[start:end] with text.
type splice struct {
	start, end int
	text       string
}

// scanTags tokenizes s and returns its start tags in source order.
// Concatenating the raw bytes of every token reproduces s, which is what
// makes the offsets valid.
func scanTags(s string) []*sourceTag {
	var tags []*sourceTag
	z := html.NewTokenizer(strings.NewReader(s))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return tags
		}
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			tag := parseTag(raw, offset)
			// Prefer the tokenizer's decoding, which follows the attribute
			// rules for character references.
			if tok := z.Token(); len(tok.Attr) == len(tag.attrs) {
				for i, a := range tok.Attr {
					tag.attrs[i].val = a.Val
				}
			}
			tags = append(tags, tag)
		}
		offset += len(raw)
	}
}

// parseTag locates the attributes of raw, a complete start tag beginning at
// offset in the source. It follows the tokenizer's attribute syntax.
func parseTag(raw string, offset int) *sourceTag {
	i := 1
	for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' {
		i++
	}
	tag := &sourceTag{name: strings.ToLower(raw[1:i])}

	for {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			tag.close = offset + closeAt(raw, tag.attrs, offset)
			return tag
		}

		keyStart := i
		i++ // a name may begin with '='
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '/' && raw[i] != '>' && raw[i] != '=' {
			i++
		}
		a := sourceAttr{
			key:      strings.ToLower(raw[keyStart:i]),
			keyEnd:   offset + i,
			valStart: -1,
			valEnd:   -1,
		}

		j := skipSpace(raw, i)
		if j < len(raw) && raw[j] == '=' {
			j = skipSpace(raw, j+1)
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				a.quote = raw[j]
				j++
				end := strings.IndexByte(raw[j:], a.quote)
				if end < 0 {
					end = len(raw) - j
				}
				a.valStart, a.valEnd = j, j+end
				i = min(j+end+1, len(raw))
			default:
				vs := j
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				a.valStart, a.valEnd = vs, j
				i = j
			}
			a.val = html.UnescapeString(raw[a.valStart:a.valEnd])
			a.valStart += offset
			a.valEnd += offset
		}
		tag.attrs = append(tag.attrs, a)
	}
}

// closeAt returns the offset within raw of its terminating "/>" or ">".
// A slash that ends an unquoted value belongs to the value.
func closeAt(raw string, attrs []sourceAttr, offset int) int {
	if !strings.HasSuffix(raw, ">") {
		return len(raw)
	}
	pos := len(raw) - 1
	if pos > 0 && raw[pos-1] == '/' {
		if n := len(attrs); n == 0 || attrs[n-1].quote != 0 || attrs[n-1].valEnd-offset != pos {
			pos--
		}
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// attr returns the first attribute named key. Later duplicates are ignored
// by the parser as well.
func (t *sourceTag) attr(key string) *sourceAttr {
	for i := range t.attrs {
		if t.attrs[i].key == key {
			return &t.attrs[i]
		}
	}
	return nil
}

func (t *sourceTag) set(key, val string) {
	for i := range t.edits {
		if t.edits[i].key == key {
			t.edits[i].val = val
			return
		}
	}
	t.edits = append(t.edits, attrEdit{key: key, val: val})
}

// splices turns pending edits into source replacements. Existing values are
// replaced inside their original quotes; new attributes go before the end of
// the tag.
func (t *sourceTag) splices() []splice {
	var out []splice
	for _, e := range t.edits {
		a := t.attr(e.key)
		switch {
		case a == nil:
			out = append(out, splice{
				start: t.close,
				end:   t.close,
				text:  " " + e.key + `="` + html.EscapeString(e.val) + `"`,
			})
		case a.valStart < 0:
			out = append(out, splice{start: a.keyEnd, end: a.keyEnd, text: `="` + html.EscapeString(e.val) + `"`})
		case a.quote == 0:
			out = append(out, splice{start: a.valStart, end: a.valEnd, text: `"` + html.EscapeString(e.val) + `"`})
		default:
			out = append(out, splice{start: a.valStart, end: a.valEnd, text: html.EscapeString(e.val)})
		}
	}
	return out
}

package fetcher

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Document is a parsed page that can be queried by element id.
type Document struct {
	doc *goquery.Document
}

// Element is a single node of a Document.
type Element struct {
	sel *goquery.Selection
}

// Parse decodes body to UTF-8 using contentType and any in-document hints,
// then builds the node tree.
func Parse(body []byte, contentType string) (*Document, error) {
	data := body
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	// The sniffer only sees the first 1024 bytes and guesses windows-1252
	// for an ASCII prefix. A body that is valid UTF-8 throughout is UTF-8.
	if !certain && name == "windows-1252" && utf8.Valid(body) {
		return newDocument(body)
	}
	if decoded, err := enc.NewDecoder().Bytes(body); err == nil {
		data = decoded
	} else if !utf8.Valid(body) {
		return nil, err
	}

	return newDocument(data)
}

func newDocument(data []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// FindByID returns the first element whose id attribute equals id, or nil.
func (d *Document) FindByID(id string) *Element {
	sel := d.doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("id", "") == id
	}).First()
	if sel.Length() == 0 {
		return nil
	}
	return &Element{sel: sel}
}

// OuterHTML serializes the element with its tag, attributes and children.
func (e *Element) OuterHTML() (string, error) {
	return goquery.OuterHtml(e.sel)
}

// Text returns the concatenated text of the element and its descendants.
func (e *Element) Text() string {
	return e.sel.Text()
}

// Preview returns the first n characters of the element text, trimmed.
func (e *Element) Preview(n int) string {
	text := e.Text()
	if utf8.RuneCountInString(text) > n {
		text = string([]rune(text)[:n])
	}
	return strings.TrimSpace(text)
}

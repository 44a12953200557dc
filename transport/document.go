// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html"
)

// A Document is a parsed XML or HTML response body.
//
// Exactly one of HTML and Root is non-nil.
type Document struct {
	// ContentType is the media type the document was parsed as.
	ContentType string
	// HTML is the root node of an HTML document.
	HTML *html.Node
	// Root is the document element of an XML document.
	Root *Element
}

// An Element is a node in a parsed XML document.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Element
	// Text is the concatenated character data directly inside the
	// element, with surrounding whitespace trimmed.
	Text string
}

// IsHTML reports whether d is an HTML document.
func (d *Document) IsHTML() bool {
	return d != nil && d.HTML != nil
}

// Find returns every element in the subtree rooted at e, e included,
// whose local name equals local, in document order.
func (e *Element) Find(local string) []*Element {
	var found []*Element
	var walk func(*Element)
	walk = func(x *Element) {
		if x.Name.Local == local {
			found = append(found, x)
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	if e != nil {
		walk(e)
	}
	return found
}

// Attribute returns the value of the attribute with the given local
// name, or "".
func (e *Element) Attribute(local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// ParseDocument parses body according to contentType. XML media types
// (text/xml, application/xml and any +xml suffix) are always parsed;
// text/html is parsed only if allowHTML is set. For any other media
// type ParseDocument returns nil and no error.
func ParseDocument(contentType string, body []byte, allowHTML bool) (*Document, error) {
	mt := mediaType(contentType)
	switch {
	case isXML(mt):
		root, err := parseXML(body)
		if err != nil {
			return nil, err
		}
		return &Document{ContentType: mt, Root: root}, nil
	case mt == "text/html" && allowHTML:
		n, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		return &Document{ContentType: mt, HTML: n}, nil
	default:
		return nil, nil
	}
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

func isXML(mt string) bool {
	return mt == "text/xml" || mt == "application/xml" || strings.HasSuffix(mt, "+xml")
}

func parseXML(body []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var stack []*Element
	var root *Element
	var text []*strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch x := tok.(type) {
		case xml.StartElement:
			e := &Element{Name: x.Name, Attr: x.Copy().Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			} else if root == nil {
				root = e
			}
			stack = append(stack, e)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Text = strings.TrimSpace(text[top].String())
			stack = stack[:top]
			text = text[:top]
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(x)
			}
		}
	}
	if root == nil {
		return nil, errors.New("questal/transport: empty XML document")
	}
	return root, nil
}

// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"strings"

	"github.com/gogama/questal/internal/textcase"
)

// Headers maps camel-cased response header names to their values.
//
// The contentType entry holds only the media type. Its subtype is
// also stored under encoding and its first parameter under the
// parameter's camel-cased name (usually charset). The cacheControl
// entry holds the first directive, and the second directive, if it
// has a value, is stored under its camel-cased name (for example
// maxAge).
type Headers map[string]string

// ParseHeaders parses a raw CRLF-separated header block.
func ParseHeaders(raw string) Headers {
	h := Headers{}
	for _, line := range strings.Split(raw, "\r\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		k := key(parts[0])
		if k == "" {
			continue
		}
		val := strings.TrimSpace(parts[1])
		switch k {
		case "contentType", "cacheControl":
			sep := ","
			if k == "contentType" {
				sep = ";"
			}
			sets := strings.Split(val, sep)
			first := strings.TrimSpace(sets[0])
			h[k] = first
			if k == "contentType" {
				if i := strings.IndexByte(first, '/'); i >= 0 {
					h["encoding"] = first[i+1:]
				}
			}
			if len(sets) > 1 {
				p := strings.SplitN(sets[1], "=", 2)
				if len(p) == 2 {
					h[key(p[0])] = strings.Trim(strings.TrimSpace(p[1]), `"`)
				}
			}
		default:
			h[k] = val
		}
	}
	return h
}

func key(name string) string {
	return textcase.Camel(strings.ToLower(strings.TrimSpace(name)))
}

// Get returns the value for a header given in its usual dashed form,
// for example "Content-Type".
func (h Headers) Get(name string) string {
	return h[key(name)]
}

// ContentType returns the media type of the response.
func (h Headers) ContentType() string {
	return h["contentType"]
}

// Encoding returns the media subtype of the response, for example
// "json" for application/json.
func (h Headers) Encoding() string {
	return h["encoding"]
}

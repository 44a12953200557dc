// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package params

import (
	"net/url"
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// ToObject decodes a URL-encoded parameter string into a mapping. A
// leading '?' is ignored. Each '&'-separated segment is split on its
// first '='; a segment without '=' maps to the empty string. Empty
// segments are skipped and, for duplicate keys, the last one wins.
func ToObject(s string) map[string]string {
	m := make(map[string]string)
	s = strings.TrimPrefix(s, "?")
	for _, seg := range strings.Split(s, "&") {
		if seg == "" {
			continue
		}
		kv := strings.SplitN(seg, "=", 2)
		var v string
		if len(kv) > 1 {
			v = Unescape(kv[1])
		}
		m[Unescape(kv[0])] = v
	}
	return m
}

// ToString encodes a mapping as a URL-encoded parameter string with
// keys in sorted order. If withMark is true and the result is not
// empty, it is prefixed with '?'.
func ToString(m map[string]string, withMark bool) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	if withMark {
		b.WriteByte('?')
	}
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(k))
		b.WriteByte('=')
		b.WriteString(Escape(m[k]))
	}
	return b.String()
}

// Escape percent-encodes s for use as a parameter key or value.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	t := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			t = append(t, c)
			continue
		}
		t = append(t, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(t)
}

// Unescape reverses Escape. A '+' is left as is. If s contains a
// malformed escape sequence, s is returned unchanged.
func Unescape(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package params

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
)

const badInputTypeMsg = "questal/params: invalid type (for parameters use nil, " +
	"string, []byte, map[string]string, map[string]interface{} or url.Values)"

// Data accumulates request parameters. Its zero value is empty and
// ready to use.
//
// Data keeps a mapping and an encoded string in step. Set merges new
// parameters into both; it never replaces what was set before.
type Data struct {
	m    map[string]string
	s    string
	segs []segment
	gen  int
}

// A segment is one encoded key=value pair of the string, tagged with
// the Set call (or, for strings, the pair) that produced it.
type segment struct {
	key string
	raw string
	gen int
}

// Set merges input into the accumulated parameters.
//
// A string (or []byte) is decoded with ToObject and shallow-merged into
// the mapping, and appended, joined by '&', to the encoded string as
// given. A mapping is shallow-merged into the mapping, and its ToString
// encoding is appended to the encoded string. Values of a
// map[string]interface{} are formatted with fmt.Sprint. For url.Values
// the last value of each key goes into the mapping and every value into
// the string. A nil input is a no-op.
//
// Note that the string accumulates duplicates when the same key is set
// more than once, whereas the mapping keeps only the last value. Query
// returns the string without the superseded pairs.
func (d *Data) Set(input interface{}) error {
	switch x := input.(type) {
	case nil:
		return nil
	case string:
		d.merge(ToObject(x), strings.TrimPrefix(x, "?"), false)
	case []byte:
		return d.Set(string(x))
	case map[string]string:
		d.merge(x, ToString(x, false), true)
	case map[string]interface{}:
		m := make(map[string]string, len(x))
		for k, v := range x {
			m[k] = fmt.Sprint(v)
		}
		d.merge(m, ToString(m, false), true)
	case url.Values:
		m := make(map[string]string, len(x))
		for k, vs := range x {
			if len(vs) > 0 {
				m[k] = vs[len(vs)-1]
			}
		}
		d.merge(m, encodeValues(x), true)
	default:
		return fmt.Errorf("%s, got %T", badInputTypeMsg, input)
	}
	return nil
}

// merge adds m to the mapping and s to the string. If grouped, all
// pairs of s share one generation, so repeated keys within s survive
// in Query.
func (d *Data) merge(m map[string]string, s string, grouped bool) {
	if d.m == nil {
		d.m = make(map[string]string, len(m))
	}
	for k, v := range m {
		d.m[k] = v
	}
	if grouped {
		d.gen++
	}
	for _, raw := range strings.Split(s, "&") {
		if raw == "" {
			continue
		}
		if !grouped {
			d.gen++
		}
		key, _, _ := strings.Cut(raw, "=")
		d.segs = append(d.segs, segment{key: Unescape(key), raw: raw, gen: d.gen})
	}
	switch {
	case s == "":
	case d.s == "":
		d.s = s
	default:
		d.s += "&" + s
	}
}

// Query returns the encoded string with every pair dropped whose key
// was set again later, so it agrees with the mapping. Pairs keep their
// order.
func (d *Data) Query() string {
	latest := make(map[string]int, len(d.segs))
	for _, seg := range d.segs {
		latest[seg.key] = seg.gen
	}
	parts := make([]string, 0, len(d.segs))
	for _, seg := range d.segs {
		if seg.gen == latest[seg.key] {
			parts = append(parts, seg.raw)
		}
	}
	return strings.Join(parts, "&")
}

// Map returns a copy of the accumulated mapping. It is never nil.
func (d *Data) Map() map[string]string {
	m := make(map[string]string, len(d.m))
	for k, v := range d.m {
		m[k] = v
	}
	return m
}

// Get returns the value for key in the mapping.
func (d *Data) Get(key string) (string, bool) {
	v, ok := d.m[key]
	return v, ok
}

// String returns the accumulated encoded string, without a leading
// '?'.
func (d *Data) String() string {
	return d.s
}

// Len returns the number of keys in the mapping.
func (d *Data) Len() int {
	return len(d.m)
}

// Empty reports whether no parameters have been set.
func (d *Data) Empty() bool {
	return d.s == "" && len(d.m) == 0
}

// JSON renders the mapping as a JSON object whose values are strings,
// with keys in sorted order.
func (d *Data) JSON() (string, error) {
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	doc := "{}"
	for _, k := range keys {
		var err error
		doc, err = sjson.Set(doc, escapePath(k), d.m[k])
		if err != nil {
			return "", fmt.Errorf("questal/params: key %q: %w", k, err)
		}
	}
	return doc, nil
}

func encodeValues(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		for _, val := range v[k] {
			parts = append(parts, Escape(k)+"="+Escape(val))
		}
	}
	return strings.Join(parts, "&")
}

// escapePath escapes the characters sjson treats as path syntax so
// that k is always used as a single literal key.
func escapePath(k string) string {
	var b strings.Builder
	for i := 0; i < len(k); i++ {
		switch c := k[i]; c {
		case '\\', '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

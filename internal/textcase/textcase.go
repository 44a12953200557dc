// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package textcase converts dashed header names to camel case.
package textcase

import "strings"

// Camel converts a dash-separated token such as "content-type" into
// its camel-cased form "contentType". The first segment is kept as is;
// every later segment has its first byte upper-cased. Surrounding
// whitespace is trimmed.
func Camel(s string) string {
	parts := strings.Split(strings.TrimSpace(s), "-")
	var b strings.Builder
	b.Grow(len(s))
	for i, p := range parts {
		if i > 0 && p != "" {
			b.WriteString(strings.ToUpper(p[:1]))
			b.WriteString(p[1:])
			continue
		}
		b.WriteString(p)
	}
	return strings.TrimSpace(b.String())
}

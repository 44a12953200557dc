// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import "strings"

var forbiddenPrefixes = []string{"sec-", "proxy-"}

var forbiddenNames = []string{
	"Accept-Charset",
	"Accept-Encoding",
	"Access-Control-Request-Headers",
	"Access-Control-Request-Method",
	"Connection",
	"Content-Length",
	"Cookie",
	"Cookie2",
	"Date",
	"DNT",
	"Expect",
	"Host",
	"Keep-Alive",
	"Origin",
	"Referer",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Via",
}

// IsForbidden reports whether name may not be set manually on a
// request. Names beginning with Sec- or Proxy-, and the fixed list of
// names the transport controls itself, are forbidden. Matching ignores
// case and surrounding whitespace.
func IsForbidden(name string) bool {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	for _, p := range forbiddenPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	for _, f := range forbiddenNames {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}

// Forbidden returns the fixed list of forbidden header names.
func Forbidden() []string {
	names := make([]string, len(forbiddenNames))
	copy(names, forbiddenNames)
	return names
}

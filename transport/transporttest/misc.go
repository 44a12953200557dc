// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transporttest

import (
	"net/http"
	"strings"
)

var statusText = map[int]string{}

func init() {
	for code := 100; code < 600; code++ {
		if text := http.StatusText(code); text != "" {
			statusText[code] = text
		}
	}
}

func contentTypeOf(rawHeaders string) string {
	for _, line := range strings.Split(rawHeaders, "\r\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "content-type") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

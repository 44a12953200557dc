// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package params converts request parameters between a key/value mapping
and a URL-encoded string, and accumulates them across calls.

A Data value keeps both representations in step:

	var d params.Data
	_ = d.Set("page=2")
	_ = d.Set(map[string]string{"sort": "asc"})
	d.String() // "page=2&sort=asc"
	d.Map()    // map[page:2 sort:asc]

Encoding follows RFC 3986: every byte except the unreserved characters
A-Z a-z 0-9 - _ . ! ~ * ' ( ) is percent-encoded, and a space is
written as %20, never as '+'.
*/
package params

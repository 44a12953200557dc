// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains Config, the caller-supplied description of a
request, and helpers for turning caller values into request bodies.

A Config is usually built in code:

	cfg := &request.Config{
		Method: "GET",
		URL:    "https://example.com/items?page=2",
		Data:   map[string]string{"sort": "asc"},
		Accept: []string{"json"},
	}

but it may also be kept in a YAML file and loaded with LoadConfig:

	method: post
	url: https://example.com/items
	encoding: json
	headers:
	  X-Api-Key: secret
	data:
	  name: widget
	timeout: 5000

A Config only describes a request. It is consumed by questal.NewRequest
and never modified by it, so one Config may seed any number of
requests.
*/
package request

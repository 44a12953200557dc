// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package header negotiates the request headers of one exchange.

A Negotiator collects pending headers, Accept media types and a request
Content-Type, and applies them to its transport exactly once, while the
transport still accepts request headers:

	n := header.NewNegotiator(t, log)
	n.Accept("json", "xml")
	n.Set("X-Api-Key", "secret")
	n.Set("Host", "evil.example") // forbidden, dropped with a warning
	...
	n.Init() // called when the transport becomes ready

Accept tokens are expanded through a fixed vocabulary (see ExpandAccept)
and a wildcard token collapses the whole list to the wildcard for the lifetime of
the negotiator.
*/
package header

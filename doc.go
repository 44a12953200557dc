// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package questal provides an event-driven HTTP request facade: one
Request drives one exchange over one transport, standardizing method
selection, header negotiation, parameter encoding, event naming and
response interpretation.

Create a Client to begin making requests.

	client := &questal.Client{}
	req, err := client.Get("https://example.com/items?page=2",
		map[string]string{"sort": "asc"})
	...
	err = req.Wait(ctx)
	fmt.Println(req.Success(), req.Response().Text())

Requests are asynchronous. Send, and the Client verb methods, return
as soon as the exchange has started; its progress is reported through
events. Install handlers to observe them:

	handlers := &questal.HandlerGroup{}
	handlers.PushBack(questal.Complete, questal.HandlerFunc(
		func(n *questal.Notification) {
			log.Printf("%s: %d", n.Request.URL(), n.Response().Code())
		}))
	client := &questal.Client{
		Handlers: handlers,
	}

For full control, configure a request yourself and drive it through
its states:

	req, err := questal.NewRequest(transport.NewHTTP(http.DefaultClient),
		&request.Config{
			Method:  "PUT",
			URL:     "https://example.com/items/7",
			Headers: map[string]string{"X-Api-Key": key},
			Accept:  []string{"json"},
		})
	...
	err = req.Open("", nil)  // fires Init, Change and Ready
	...
	err = req.Send(body)     // ResponseHeaders, LoadStart, Progress, Complete

The events of one exchange are, in order: Init; Change then Ready;
Change then ResponseHeaders; Change then LoadStart; any number of
Progress; Change; and finally Complete followed by Success if the
request succeeded, or one of Abort, Error or Timeout.

Request headers are held by the request until the transport becomes
Ready and are applied exactly once. Forbidden header names (Host,
Cookie, Sec-*, Proxy-* and so on, see package header) are never
applied. Diagnostics about dropped headers and the like are logged
with zerolog, never returned as errors; use WithLogger or
Client.Logger to see them.

Package questal provides basic interfaces for each verb of the client
(Requester, Getter, Poster, Putter, Patcher, Deleter and Header); a
combined interface that composes them (Dispatcher); and utility
functions for working with a Requester (Inflate, Get, Post, Put, Patch,
Delete and Head).
*/
package questal

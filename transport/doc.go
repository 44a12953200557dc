// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines the asynchronous HTTP exchange primitive that
a questal request drives, and provides HTTP, an implementation backed
by a GoLang standard HTTP client (or anything with the same Do method).

A Transport performs exactly one exchange. It moves through the ready
states Unsent, Ready, ResponseHeaders, LoadStart and Complete in that
order, never revisiting a state, and reports its progress to the
listeners installed with Listen:

	t := transport.NewHTTP(http.DefaultClient)
	t.Listen(func(ev transport.Event) {
		if ev.Kind == transport.Load {
			fmt.Println(t.Status(), t.ResponseText())
		}
	})
	_ = t.Open("GET", "https://example.com")
	_ = t.Send(nil)

Listeners for one transport are never run concurrently with each other.
*/
package transport

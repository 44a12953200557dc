// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import (
	"github.com/gogama/questal/response"
	"github.com/gogama/questal/transport"
)

// A Notification is passed to each Handler when an event fires.
type Notification struct {
	// Event is the event being handled.
	Event Event
	// Request is the request the event belongs to.
	Request *Request
	// Detail is the event payload. Events without a payload, and all
	// events fired on a transport that cannot carry details, have the
	// transport as their detail.
	Detail interface{}
	// Raw is the transport event that caused this one. It is nil for
	// Init, and for events fired with Fire without a raw event.
	Raw *transport.Event
}

// Headers returns the detail of a ResponseHeaders event.
func (n *Notification) Headers() response.Headers {
	h, _ := n.Detail.(response.Headers)
	return h
}

// Response returns the detail of a Complete or Success event.
func (n *Notification) Response() *response.Response {
	r, _ := n.Detail.(*response.Response)
	return r
}

// Progress returns the detail of a Progress event.
func (n *Notification) Progress() (transport.Progress, bool) {
	p, ok := n.Detail.(transport.Progress)
	return p, ok
}

// Err returns the detail of an Error or Timeout event.
func (n *Notification) Err() error {
	err, _ := n.Detail.(error)
	return err
}

// Transport returns the detail if it is the transport.
func (n *Notification) Transport() transport.Transport {
	t, _ := n.Detail.(transport.Transport)
	return t
}

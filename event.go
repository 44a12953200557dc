// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package questal

import "strings"

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Request, or in a Client, to
// observe the progress of an exchange.
type Event int

const (
	// Init identifies the event that occurs when Open is called,
	// after any URL and data overrides are merged but before the
	// method and URL are validated.
	//
	// The notification detail is the transport.
	Init Event = iota
	// Ready identifies the event that occurs when the transport enters
	// the Ready state.
	//
	// By the time Ready handlers run, the request headers have already
	// been applied to the transport, so headers set from a Ready
	// handler are ignored.
	Ready
	// ResponseHeaders identifies the event that occurs when the
	// response headers arrive. The notification detail is the parsed
	// response.Headers.
	ResponseHeaders
	// LoadStart identifies the event that occurs when the transport
	// starts reading the response body.
	LoadStart
	// Change identifies the event that occurs on every ready state
	// change. It fires before the named state event (Ready,
	// ResponseHeaders or LoadStart) for the same transition.
	Change
	// Complete identifies the event that occurs when the response has
	// been fully received. The notification detail is the
	// *response.Response.
	Complete
	// Success identifies the event that occurs right after Complete
	// when the request's success predicate accepts the status code.
	// The notification detail is the *response.Response.
	Success
	// Progress identifies the event that occurs as the response body
	// is read. The notification detail is a transport.Progress.
	Progress
	// Abort identifies the event that occurs when the exchange is
	// aborted.
	Abort
	// Error identifies the event that occurs when the exchange fails.
	// The notification detail is the error, usually a *url.Error.
	Error
	// Timeout identifies the event that occurs when the exchange times
	// out. The notification detail is the error.
	Timeout
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"init",
	"ready",
	"responseHeaders",
	"loadStart",
	"change",
	"complete",
	"success",
	"progress",
	"abort",
	"error",
	"timeout",
}

// Events returns a slice containing all events which can occur during
// a request.
func Events() []Event {
	return []Event{
		Init,
		Ready,
		ResponseHeaders,
		LoadStart,
		Change,
		Complete,
		Success,
		Progress,
		Abort,
		Error,
		Timeout,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}

// ParseEvent returns the event with the given name. Names are matched
// without regard to case, so "responseheaders" finds ResponseHeaders.
func ParseEvent(name string) (Event, bool) {
	for i, n := range eventNames {
		if strings.EqualFold(n, name) {
			return Event(i), true
		}
	}
	return 0, false
}

// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is returned by Transport methods called in a ready
// state that does not allow them, for example Send before Open, or
// SetRequestHeader after the request was sent.
var ErrInvalidState = errors.New("questal/transport: invalid state")

// A ReadyState is the progress stage of a transport's exchange.
type ReadyState int

const (
	// Unsent is the state of a transport that has not been opened.
	Unsent ReadyState = iota
	// Ready means the transport is open: request headers may be set
	// and the request may be sent.
	Ready
	// ResponseHeaders means the response status and headers have been
	// received.
	ResponseHeaders
	// LoadStart means the response body is being received.
	LoadStart
	// Complete means the exchange is over, whether it succeeded,
	// failed, timed out or was aborted.
	Complete
)

var stateNames = []string{
	"unsent",
	"ready",
	"responseHeaders",
	"loadStart",
	"complete",
}

// String returns the name of the ready state.
func (s ReadyState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("ReadyState(%d)", int(s))
	}
	return stateNames[s]
}

// A ResponseType selects how the transport decodes the response body
// into the value returned by Response.
type ResponseType string

const (
	// TypeDefault behaves like TypeText.
	TypeDefault ResponseType = ""
	// TypeArrayBuffer decodes the body as a []byte.
	TypeArrayBuffer ResponseType = "arraybuffer"
	// TypeBlob decodes the body as a Blob.
	TypeBlob ResponseType = "blob"
	// TypeDocument decodes the body as a *Document.
	TypeDocument ResponseType = "document"
	// TypeText decodes the body as a string.
	TypeText ResponseType = "text"
	// TypeJSON decodes the body as a generic JSON value.
	TypeJSON ResponseType = "json"
)

// ResponseTypes returns the settable response types.
func ResponseTypes() []ResponseType {
	return []ResponseType{TypeArrayBuffer, TypeBlob, TypeDocument, TypeText, TypeJSON}
}

// ParseResponseType converts a response type name to a ResponseType.
// The alias "buffer" means "arraybuffer". The second return value is
// false if the name is not a settable response type.
func ParseResponseType(name string) (ResponseType, bool) {
	if name == "buffer" {
		name = string(TypeArrayBuffer)
	}
	for _, t := range ResponseTypes() {
		if string(t) == name {
			return t, true
		}
	}
	return TypeDefault, false
}

// A Blob is the decoded response body for TypeBlob.
type Blob struct {
	// Type is the media type reported by the server.
	Type string
	// Data is the raw body.
	Data []byte
}

// An EventKind identifies a native transport notification.
type EventKind int

const (
	// ReadyStateChange fires each time the ready state advances.
	ReadyStateChange EventKind = iota
	// Load fires once the response has been received completely.
	Load
	// ProgressEvent fires while the response body is received. Its detail
	// is a Progress value.
	ProgressEvent
	// Abort fires when the exchange is aborted.
	Abort
	// Error fires when the exchange fails. Its detail is the error.
	Error
	// Timeout fires when the exchange exceeds its timeout.
	Timeout
)

var kindNames = []string{
	"readystatechange",
	"load",
	"progress",
	"abort",
	"error",
	"timeout",
}

// String returns the native name of the event kind.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return kindNames[k]
}

// An Event is a native transport notification.
type Event struct {
	Kind   EventKind
	Detail interface{}
}

// Progress is the detail of a ProgressEvent.
type Progress struct {
	// Loaded is the number of body bytes received so far.
	Loaded int64
	// Total is the expected body length, valid if LengthComputable.
	Total int64
	// LengthComputable indicates whether the server sent a length.
	LengthComputable bool
}

// A Listener receives native transport notifications.
type Listener func(Event)

// A Transport is an asynchronous, single-exchange HTTP primitive.
//
// Open moves the transport from Unsent to Ready. Send starts the
// exchange and returns immediately; progress is reported through
// listeners. All listener invocations for one Transport happen
// sequentially.
type Transport interface {
	// Open prepares the request. It fires ReadyStateChange before it
	// returns.
	Open(method, url string) error
	// Send starts the exchange with the given body.
	Send(body []byte) error
	// Abort cancels the exchange. It is a no-op unless the transport is
	// Ready or the exchange is in flight.
	Abort()
	// SetRequestHeader adds a request header. Valid only in Ready
	// before Send.
	SetRequestHeader(name, value string) error
	// AllResponseHeaders returns the response headers as lower-cased
	// "name: value" lines, each terminated by CRLF.
	AllResponseHeaders() string
	// ReadyState returns the current ready state.
	ReadyState() ReadyState
	// SetResponseType selects the response decoding. Valid only before
	// ResponseHeaders.
	SetResponseType(t ResponseType) error
	// ResponseType returns the selected response decoding.
	ResponseType() ResponseType
	// Status returns the response status code, or 0.
	Status() int
	// StatusText returns the response reason phrase, for example "OK".
	StatusText() string
	// ResponseText returns the body as text. It is empty unless the
	// response type is TypeDefault or TypeText.
	ResponseText() string
	// Response returns the body decoded per the response type.
	Response() interface{}
	// ResponseXML returns the body parsed as a document, or nil.
	ResponseXML() *Document
	// ResponseURL returns the final URL after redirects.
	ResponseURL() string
	// SetWithCredentials controls whether credentials such as cookies
	// accompany the request.
	SetWithCredentials(b bool)
	// SetTimeout sets the exchange timeout. Zero means no timeout.
	SetTimeout(d time.Duration)
	// Listen installs a listener for native notifications.
	Listen(l Listener)
}

// A DetailCarrier reports whether its notifications can carry detail
// values. Transports that do not implement DetailCarrier are assumed
// to carry details.
type DetailCarrier interface {
	CarriesDetail() bool
}

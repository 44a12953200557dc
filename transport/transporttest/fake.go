// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transporttest provides a scriptable transport.Transport for
// tests. Unlike transport.HTTP, a Fake never starts goroutines: every
// notification is delivered synchronously from the method the test
// calls, which makes event order fully deterministic.
package transporttest

import (
	"time"

	"github.com/gogama/questal/transport"
	"github.com/tidwall/gjson"
)

// A Header is a request header recorded by a Fake.
type Header struct {
	Name, Value string
}

// A Fake is a transport.Transport driven by the test. It is not safe
// for concurrent use.
type Fake struct {
	// State is the current ready state.
	State transport.ReadyState
	// Method and URL are recorded by Open.
	Method, URL string
	// Headers records every successful SetRequestHeader call.
	Headers []Header
	// Sent and Body are recorded by Send.
	Sent bool
	Body []byte
	// Aborted is set by Abort.
	Aborted bool
	// Type is the response type.
	Type transport.ResponseType
	// Timeout and Credentials are recorded by their setters.
	Timeout     time.Duration
	Credentials bool

	// Code, Text, RawHeaders, Payload, Doc and FinalURL are the
	// response, normally filled in by Respond.
	Code       int
	Text       string
	RawHeaders string
	Payload    interface{}
	Doc        *transport.Document
	FinalURL   string

	// NoDetail makes CarriesDetail report false.
	NoDetail bool
	// OpenErr, if set, is returned by Open.
	OpenErr error

	listeners []transport.Listener
}

// New returns a Fake in the Unsent state.
func New() *Fake {
	return &Fake{}
}

// CarriesDetail reports !f.NoDetail.
func (f *Fake) CarriesDetail() bool {
	return !f.NoDetail
}

// Listen installs l.
func (f *Fake) Listen(l transport.Listener) {
	f.listeners = append(f.listeners, l)
}

// Open records the method and URL and advances to Ready.
func (f *Fake) Open(method, url string) error {
	if f.OpenErr != nil {
		return f.OpenErr
	}
	if f.State != transport.Unsent {
		return transport.ErrInvalidState
	}
	f.Method, f.URL = method, url
	f.Advance(transport.Ready)
	return nil
}

// Send records the body. It does not advance the state; use Respond or
// Advance.
func (f *Fake) Send(body []byte) error {
	if f.State != transport.Ready || f.Sent {
		return transport.ErrInvalidState
	}
	f.Sent = true
	f.Body = body
	return nil
}

// Abort completes the exchange and fires Abort if it is in progress.
// Any response recorded so far is discarded.
func (f *Fake) Abort() {
	f.Aborted = true
	if f.State == transport.Unsent || f.State == transport.Complete {
		return
	}
	f.Code, f.RawHeaders = 0, ""
	f.Text, f.Payload, f.Doc = "", nil, nil
	f.Advance(transport.Complete)
	f.Fire(transport.Abort, nil)
}

// SetRequestHeader records a header.
func (f *Fake) SetRequestHeader(name, value string) error {
	if f.State != transport.Ready || f.Sent {
		return transport.ErrInvalidState
	}
	f.Headers = append(f.Headers, Header{name, value})
	return nil
}

// Header returns the recorded values of the named request header.
func (f *Fake) Header(name string) []string {
	var vs []string
	for _, h := range f.Headers {
		if h.Name == name {
			vs = append(vs, h.Value)
		}
	}
	return vs
}

// AllResponseHeaders returns RawHeaders once headers were received.
func (f *Fake) AllResponseHeaders() string {
	if f.State < transport.ResponseHeaders {
		return ""
	}
	return f.RawHeaders
}

// ReadyState returns f.State.
func (f *Fake) ReadyState() transport.ReadyState {
	return f.State
}

// SetResponseType sets f.Type.
func (f *Fake) SetResponseType(t transport.ResponseType) error {
	if f.State >= transport.ResponseHeaders {
		return transport.ErrInvalidState
	}
	f.Type = t
	return nil
}

// ResponseType returns f.Type.
func (f *Fake) ResponseType() transport.ResponseType {
	return f.Type
}

// Status returns f.Code.
func (f *Fake) Status() int {
	return f.Code
}

// StatusText returns the standard reason phrase for f.Code.
func (f *Fake) StatusText() string {
	return statusText[f.Code]
}

// ResponseText returns f.Text for the text response types.
func (f *Fake) ResponseText() string {
	if f.Type != transport.TypeDefault && f.Type != transport.TypeText {
		return ""
	}
	return f.Text
}

// Response returns f.Payload.
func (f *Fake) Response() interface{} {
	return f.Payload
}

// ResponseXML returns f.Doc.
func (f *Fake) ResponseXML() *transport.Document {
	return f.Doc
}

// ResponseURL returns f.FinalURL, or f.URL if it is empty.
func (f *Fake) ResponseURL() string {
	if f.FinalURL != "" {
		return f.FinalURL
	}
	return f.URL
}

// SetWithCredentials records b.
func (f *Fake) SetWithCredentials(b bool) {
	f.Credentials = b
}

// SetTimeout records d.
func (f *Fake) SetTimeout(d time.Duration) {
	f.Timeout = d
}

// Advance sets the ready state and fires ReadyStateChange.
func (f *Fake) Advance(s transport.ReadyState) {
	f.State = s
	f.Fire(transport.ReadyStateChange, nil)
}

// Fire delivers a native event to every listener.
func (f *Fake) Fire(kind transport.EventKind, detail interface{}) {
	for _, l := range f.listeners {
		l(transport.Event{Kind: kind, Detail: detail})
	}
}

// Respond plays a complete response: it records the status code, raw
// header block and body, decodes the body according to f.Type, and
// advances through ResponseHeaders, LoadStart and Complete, firing one
// ProgressEvent and finally Load.
func (f *Fake) Respond(code int, rawHeaders, body string) {
	f.Code = code
	f.RawHeaders = rawHeaders
	f.Advance(transport.ResponseHeaders)
	f.Advance(transport.LoadStart)
	f.Fire(transport.ProgressEvent, transport.Progress{Loaded: int64(len(body)), Total: int64(len(body)), LengthComputable: true})
	f.Text = body
	contentType := contentTypeOf(rawHeaders)
	switch f.Type {
	case transport.TypeArrayBuffer:
		f.Payload = []byte(body)
	case transport.TypeBlob:
		f.Payload = transport.Blob{Type: contentType, Data: []byte(body)}
	case transport.TypeJSON:
		f.Payload = nil
		if gjson.Valid(body) {
			f.Payload = gjson.Parse(body).Value()
		}
	case transport.TypeDocument:
		f.Doc, _ = transport.ParseDocument(contentType, []byte(body), true)
		f.Payload = f.Doc
	default:
		f.Payload = body
		f.Doc, _ = transport.ParseDocument(contentType, []byte(body), false)
	}
	f.Advance(transport.Complete)
	f.Fire(transport.Load, nil)
}
